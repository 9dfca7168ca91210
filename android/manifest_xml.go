package android

import (
	"bytes"
	"errors"

	"github.com/beevik/etree"
	"github.com/frantjc/adpatch"
	"github.com/frantjc/adpatch/internal/adpatchio"
)

const (
	AndroidManifestName = "AndroidManifest.xml"
	NamespaceAndroid    = "http://schemas.android.com/apk/res/android"
)

const (
	elementManifest       = "manifest"
	elementApplication    = "application"
	elementUsesPermission = "uses-permission"
	elementMetaData       = "meta-data"

	attrName  = "android:name"
	attrValue = "android:value"
)

var (
	errNoManifestElement = errors.New("root element is not <manifest>")
)

// Manifest is an AndroidManifest.xml loaded into memory.
// Unlike a struct decoded with encoding/xml, it keeps every
// element, attribute and comment it does not know about.
type Manifest struct {
	Name string

	doc *etree.Document
}

// OpenManifest reads the AndroidManifest.xml at name.
func OpenManifest(name string) (*Manifest, error) {
	b, exists, err := adpatchio.ReadFile(name)
	if !exists {
		return nil, &adpatch.NotFoundError{Path: name}
	} else if err != nil {
		return nil, err
	}

	return ParseManifest(name, b)
}

// ParseManifest parses b as an AndroidManifest.xml. name is
// where Save writes it back to.
func ParseManifest(name string, b []byte) (*Manifest, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.PreserveCData = true
	if err := doc.ReadFromBytes(b); err != nil {
		return nil, &adpatch.ParseError{Path: name, Err: err}
	}

	if root := doc.Root(); root == nil || root.Tag != elementManifest {
		return nil, &adpatch.ParseError{Path: name, Err: errNoManifestElement}
	}

	return &Manifest{Name: name, doc: doc}, nil
}

// Bytes serializes the manifest with canonical 4-space indentation,
// so serializing an unchanged Manifest twice gives identical bytes.
// Indentation is left as-is when the document has CDATA or text mixed
// in with elements, since re-indenting those is not stable.
func (m *Manifest) Bytes() ([]byte, error) {
	if !hasMixedContent(&m.doc.Element) {
		m.doc.Indent(4)
	}

	buf := new(bytes.Buffer)
	if _, err := m.doc.WriteTo(buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func hasMixedContent(el *etree.Element) bool {
	var elements, text bool
	for _, tok := range el.Child {
		switch tok := tok.(type) {
		case *etree.Element:
			if hasMixedContent(tok) {
				return true
			}
			elements = true
		case *etree.CharData:
			if tok.IsCData() {
				return true
			}
			text = text || !tok.IsWhitespace()
		}
	}

	return elements && text
}

// Save atomically writes the manifest back to m.Name.
func (m *Manifest) Save() error {
	b, err := m.Bytes()
	if err != nil {
		return err
	}

	return adpatchio.WriteFile(m.Name, b)
}

// Package returns the package attribute of <manifest>.
func (m *Manifest) Package() string {
	return m.doc.Root().SelectAttrValue("package", "")
}

func (m *Manifest) root() *etree.Element {
	root := m.doc.Root()
	if root.SelectAttr("xmlns:android") == nil {
		root.CreateAttr("xmlns:android", NamespaceAndroid)
	}

	return root
}

// Application returns <application>, or nil if there isn't one.
func (m *Manifest) Application() *etree.Element {
	return m.doc.Root().SelectElement(elementApplication)
}

func (m *Manifest) application() *etree.Element {
	if application := m.Application(); application != nil {
		return application
	}

	return m.root().CreateElement(elementApplication)
}

func hasName(el *etree.Element, name string) bool {
	return el.SelectAttrValue(attrName, "") == name
}

func selectNamed(parent *etree.Element, tag, name string) []*etree.Element {
	var els []*etree.Element
	if parent == nil {
		return els
	}

	for _, el := range parent.SelectElements(tag) {
		if hasName(el, name) {
			els = append(els, el)
		}
	}

	return els
}

func removeNamed(parent *etree.Element, tag, name string) int {
	els := selectNamed(parent, tag, name)
	for _, el := range els {
		parent.RemoveChild(el)
	}

	return len(els)
}

// Permissions returns the names of all <uses-permission> elements in document order.
func (m *Manifest) Permissions() []string {
	var names []string
	for _, el := range m.doc.Root().SelectElements(elementUsesPermission) {
		names = append(names, el.SelectAttrValue(attrName, ""))
	}

	return names
}

// FindPermission returns the first <uses-permission> named name, or nil.
func (m *Manifest) FindPermission(name string) *etree.Element {
	if els := selectNamed(m.doc.Root(), elementUsesPermission, name); len(els) > 0 {
		return els[0]
	}

	return nil
}

// AddPermission appends a <uses-permission> named name to <manifest>.
// It does not check for an existing one.
func (m *Manifest) AddPermission(name string) *etree.Element {
	el := m.root().CreateElement(elementUsesPermission)
	el.CreateAttr(attrName, name)
	return el
}

// RemovePermission removes every <uses-permission> named name
// and returns how many were removed.
func (m *Manifest) RemovePermission(name string) int {
	return removeNamed(m.doc.Root(), elementUsesPermission, name)
}

// DedupePermission removes every <uses-permission> named name but the
// first and returns how many were removed.
func (m *Manifest) DedupePermission(name string) int {
	els := selectNamed(m.doc.Root(), elementUsesPermission, name)
	if len(els) < 2 {
		return 0
	}

	for _, el := range els[1:] {
		m.doc.Root().RemoveChild(el)
	}

	return len(els) - 1
}

// FindMetaData returns the first <application><meta-data> named name, or nil.
func (m *Manifest) FindMetaData(name string) *etree.Element {
	if els := selectNamed(m.Application(), elementMetaData, name); len(els) > 0 {
		return els[0]
	}

	return nil
}

// MetaData returns the values of every <application><meta-data> named name.
func (m *Manifest) MetaData(name string) []string {
	var values []string
	for _, el := range selectNamed(m.Application(), elementMetaData, name) {
		values = append(values, el.SelectAttrValue(attrValue, ""))
	}

	return values
}

// AddMetaData appends a <meta-data> to <application>, creating
// <application> if need be. It does not check for an existing one.
func (m *Manifest) AddMetaData(name, value string) *etree.Element {
	el := m.application().CreateElement(elementMetaData)
	el.CreateAttr(attrName, name)
	el.CreateAttr(attrValue, value)
	return el
}

// RemoveMetaData removes every <application><meta-data> named name
// and returns how many were removed.
func (m *Manifest) RemoveMetaData(name string) int {
	return removeNamed(m.Application(), elementMetaData, name)
}

// ApplicationName returns the android:name of <application>.
func (m *Manifest) ApplicationName() string {
	if application := m.Application(); application != nil {
		return application.SelectAttrValue(attrName, "")
	}

	return ""
}

// RemoveApplicationName removes android:name from <application>
// if it is set to name.
func (m *Manifest) RemoveApplicationName(name string) bool {
	if application := m.Application(); application != nil && hasName(application, name) {
		return application.RemoveAttr(attrName) != nil
	}

	return false
}
