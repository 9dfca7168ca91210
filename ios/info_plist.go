package ios

import (
	"fmt"

	"github.com/frantjc/adpatch"
	"github.com/frantjc/adpatch/internal/adpatchio"
	"howett.net/plist"
)

const (
	InfoPlistName = "Info.plist"
)

// Dict is a property list dictionary as decoded by howett.net/plist.
type Dict map[string]any

// Has reports whether key is set.
func (d Dict) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// GetString returns the value at key if it is a string.
func (d Dict) GetString(key string) (string, bool) {
	s, ok := d[key].(string)
	return s, ok
}

func (d Dict) SetString(key, value string) {
	d[key] = value
}

// Delete removes key and reports whether it was set.
func (d Dict) Delete(key string) bool {
	ok := d.Has(key)
	delete(d, key)
	return ok
}

// Array returns the array at key. ok is false if key is not set.
// It errors if key is set to something other than an array.
func (d Dict) Array(key string) (_ []any, ok bool, _ error) {
	v, ok := d[key]
	if !ok {
		return nil, false, nil
	}

	a, isArray := v.([]any)
	if !isArray {
		return nil, true, fmt.Errorf("%s is a %T, not an array", key, v)
	}

	return a, true, nil
}

// SetArray sets key to a. Appending to an array returned by Array
// must be followed by SetArray for the change to stick.
func (d Dict) SetArray(key string, a []any) {
	d[key] = a
}

// CreateArray sets key to an empty array and returns it.
func (d Dict) CreateArray(key string) []any {
	a := []any{}
	d.SetArray(key, a)
	return a
}

// AsDict converts a decoded plist value to a Dict if it is a dictionary.
func AsDict(v any) (Dict, bool) {
	switch d := v.(type) {
	case map[string]any:
		return d, true
	case Dict:
		return d, true
	}

	return nil, false
}

// InfoPlist is an Info.plist loaded into memory.
type InfoPlist struct {
	Name string
	Root Dict

	format int
}

// OpenInfoPlist reads the Info.plist at name.
func OpenInfoPlist(name string) (*InfoPlist, error) {
	b, exists, err := adpatchio.ReadFile(name)
	if !exists {
		return nil, &adpatch.NotFoundError{Path: name}
	} else if err != nil {
		return nil, err
	}

	return ParseInfoPlist(name, b)
}

// ParseInfoPlist parses b as a property list whose root is a dictionary.
// Any format that howett.net/plist understands is accepted and kept
// when the InfoPlist is serialized again.
func ParseInfoPlist(name string, b []byte) (*InfoPlist, error) {
	root := map[string]any{}
	format, err := plist.Unmarshal(b, &root)
	if err != nil {
		return nil, &adpatch.ParseError{Path: name, Err: err}
	}

	return &InfoPlist{Name: name, Root: root, format: format}, nil
}

// Bytes serializes the plist. Dictionary keys are written in
// sorted order, so serializing an unchanged InfoPlist twice
// gives identical bytes.
func (p *InfoPlist) Bytes() ([]byte, error) {
	format := p.format
	if format == 0 {
		format = plist.XMLFormat
	}

	return plist.MarshalIndent(map[string]any(p.Root), format, "\t")
}

// Save atomically writes the plist back to p.Name.
func (p *InfoPlist) Save() error {
	b, err := p.Bytes()
	if err != nil {
		return err
	}

	return adpatchio.WriteFile(p.Name, b)
}
