package xcode

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/frantjc/adpatch"
	"github.com/frantjc/adpatch/internal/adpatchio"
	"github.com/opencontainers/go-digest"
	"howett.net/plist"
)

const (
	ProjectName        = "project.pbxproj"
	DefaultProjectName = "Unity-iPhone.xcodeproj"

	projectHeader = "// !$*UTF8*$!\n"
)

const (
	isaBuildFile            = "PBXBuildFile"
	isaFileReference        = "PBXFileReference"
	isaFrameworksBuildPhase = "PBXFrameworksBuildPhase"
	isaResourcesBuildPhase  = "PBXResourcesBuildPhase"
	isaGroup                = "PBXGroup"
	isaNativeTarget         = "PBXNativeTarget"
	isaProject              = "PBXProject"
)

const (
	SourceTreeSDKRoot    = "SDKROOT"
	SourceTreeSourceRoot = "SOURCE_ROOT"
	SourceTreeGroup      = "<group>"
)

var (
	errNoObjects = errors.New("no objects")
)

// FindProject returns the path to the project.pbxproj inside the
// .xcodeproj in dir. With no .xcodeproj, the Unity default is returned
// so that the caller can report it as missing.
func FindProject(dir string) string {
	matches, _ := filepath.Glob(filepath.Join(dir, "*.xcodeproj"))
	if len(matches) == 1 {
		return filepath.Join(matches[0], ProjectName)
	}

	for _, match := range matches {
		if filepath.Base(match) == DefaultProjectName {
			return filepath.Join(match, ProjectName)
		}
	}

	return filepath.Join(dir, DefaultProjectName, ProjectName)
}

// Project is a project.pbxproj loaded into memory. A pbxproj is an
// OpenStep property list: a root dictionary with "objects", a
// dictionary of every object in the project keyed by its ID.
type Project struct {
	Name string

	root    map[string]any
	objects map[string]any
}

// OpenProject reads the project.pbxproj at name.
func OpenProject(name string) (*Project, error) {
	b, exists, err := adpatchio.ReadFile(name)
	if !exists {
		return nil, &adpatch.NotFoundError{Path: name}
	} else if err != nil {
		return nil, err
	}

	return ParseProject(name, b)
}

// ParseProject parses b as a project.pbxproj.
func ParseProject(name string, b []byte) (*Project, error) {
	root := map[string]any{}
	if _, err := plist.Unmarshal(b, &root); err != nil {
		return nil, &adpatch.ParseError{Path: name, Err: err}
	}

	objects, ok := root["objects"].(map[string]any)
	if !ok {
		return nil, &adpatch.ParseError{Path: name, Err: errNoObjects}
	}

	return &Project{Name: name, root: root, objects: objects}, nil
}

// Bytes serializes the project in OpenStep format with sorted keys
// and UTF-8 strings. Comments are not kept.
func (p *Project) Bytes() ([]byte, error) {
	buf := bytes.NewBufferString(projectHeader)
	if err := encodeOpenStep(buf, p.root, 0); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')

	return buf.Bytes(), nil
}

// Save atomically writes the project back to p.Name.
func (p *Project) Save() error {
	b, err := p.Bytes()
	if err != nil {
		return err
	}

	return adpatchio.WriteFile(p.Name, b)
}

func (p *Project) object(id string) map[string]any {
	obj, _ := p.objects[id].(map[string]any)
	return obj
}

func (p *Project) ids(isa string) []string {
	ids := []string{}
	for _, id := range slices.Sorted(maps.Keys(p.objects)) {
		if obj := p.object(id); obj != nil && obj["isa"] == isa {
			ids = append(ids, id)
		}
	}

	return ids
}

func stringValue(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

func stringsValue(obj map[string]any, key string) []string {
	var ss []string
	switch v := obj[key].(type) {
	case string:
		ss = append(ss, v)
	case []any:
		for _, e := range v {
			if s, ok := e.(string); ok {
				ss = append(ss, s)
			}
		}
	}

	return ss
}

func appendValue(obj map[string]any, key, value string) {
	a, _ := obj[key].([]any)
	obj[key] = append(a, value)
}

// newID returns an object ID derived from seed that is not yet in use.
// IDs are 24 uppercase hex digits like the ones Xcode generates.
func (p *Project) newID(seed string) string {
	for i := 0; ; i++ {
		s := seed
		if i > 0 {
			s = fmt.Sprintf("%s#%d", seed, i)
		}

		id := strings.ToUpper(digest.FromString(s).Encoded()[:24])
		if _, taken := p.objects[id]; !taken {
			return id
		}
	}
}

func (p *Project) add(seed string, obj map[string]any) string {
	id := p.newID(seed)
	p.objects[id] = obj
	return id
}

// Target returns the ID of the native target named name.
func (p *Project) Target(name string) (string, bool) {
	for _, id := range p.ids(isaNativeTarget) {
		if stringValue(p.object(id), "name") == name {
			return id, true
		}
	}

	return "", false
}

func (p *Project) buildSettings(target string) []map[string]any {
	var (
		settings []map[string]any
		list     = p.object(stringValue(p.object(target), "buildConfigurationList"))
	)

	for _, id := range stringsValue(list, "buildConfigurations") {
		if cfg := p.object(id); cfg != nil {
			bs, ok := cfg["buildSettings"].(map[string]any)
			if !ok {
				bs = map[string]any{}
				cfg["buildSettings"] = bs
			}

			settings = append(settings, bs)
		}
	}

	return settings
}

// BuildProperty returns the values of the build setting name in
// each build configuration of target.
func (p *Project) BuildProperty(target, name string) [][]string {
	var values [][]string
	for _, bs := range p.buildSettings(target) {
		values = append(values, stringsValue(bs, name))
	}

	return values
}

// SetBuildProperty sets name to value in each build configuration
// of target. It reports whether anything changed.
func (p *Project) SetBuildProperty(target, name, value string) bool {
	changed := false
	for _, bs := range p.buildSettings(target) {
		if s, ok := bs[name].(string); !ok || s != value {
			bs[name] = value
			changed = true
		}
	}

	return changed
}

// AddBuildProperty adds value to the list setting name in each build
// configuration of target unless it is already there. A single value
// is turned into a list. It reports whether anything changed.
func (p *Project) AddBuildProperty(target, name, value string) bool {
	changed := false
	for _, bs := range p.buildSettings(target) {
		switch v := bs[name].(type) {
		case nil:
			bs[name] = value
		case string:
			if v == value {
				continue
			}
			bs[name] = []any{v, value}
		case []any:
			if slices.Contains(stringsValue(bs, name), value) {
				continue
			}
			bs[name] = append(v, value)
		default:
			bs[name] = value
		}

		changed = true
	}

	return changed
}

func (p *Project) findPhase(target, isa string) map[string]any {
	for _, id := range stringsValue(p.object(target), "buildPhases") {
		if obj := p.object(id); obj != nil && obj["isa"] == isa {
			return obj
		}
	}

	return nil
}

func (p *Project) phase(target, isa string) map[string]any {
	if obj := p.findPhase(target, isa); obj != nil {
		return obj
	}

	obj := map[string]any{
		"isa":                                isa,
		"buildActionMask":                    "2147483647",
		"files":                              []any{},
		"runOnlyForDeploymentPostprocessing": "0",
	}
	appendValue(p.object(target), "buildPhases", p.add(target+isa, obj))

	return obj
}

func (p *Project) phaseFileRefs(target, isa string) []string {
	var refs []string
	for _, id := range stringsValue(p.findPhase(target, isa), "files") {
		if ref := stringValue(p.object(id), "fileRef"); ref != "" {
			refs = append(refs, ref)
		}
	}

	return refs
}

func (p *Project) fileName(ref string) string {
	obj := p.object(ref)
	if name := stringValue(obj, "name"); name != "" {
		return name
	}

	return filepath.Base(stringValue(obj, "path"))
}

// ContainsFramework reports whether target links framework,
// e.g. "StoreKit" or "StoreKit.framework".
func (p *Project) ContainsFramework(target, framework string) bool {
	framework = frameworkName(framework)
	return slices.ContainsFunc(p.phaseFileRefs(target, isaFrameworksBuildPhase), func(ref string) bool {
		return p.fileName(ref) == framework
	})
}

func frameworkName(framework string) string {
	if filepath.Ext(framework) == "" {
		return framework + ".framework"
	}

	return framework
}

// AddFramework links the system framework to target without checking
// whether it already is. Weak frameworks are linked optionally.
func (p *Project) AddFramework(target, framework string, weak bool) string {
	framework = frameworkName(framework)
	ref := p.AddFileReference("System/Library/Frameworks/"+framework, framework, SourceTreeSDKRoot)
	p.addToPhase(target, isaFrameworksBuildPhase, ref, weak)
	return ref
}

// FindFileReference returns the ID of the file reference with path.
func (p *Project) FindFileReference(path string) (string, bool) {
	for _, id := range p.ids(isaFileReference) {
		if stringValue(p.object(id), "path") == path {
			return id, true
		}
	}

	return "", false
}

// AddFileReference returns the ID of the file reference with path,
// creating it in the Frameworks group, or the main group if there
// is none, when there isn't one.
func (p *Project) AddFileReference(path, name, sourceTree string) string {
	if id, ok := p.FindFileReference(path); ok {
		return id
	}

	obj := map[string]any{
		"isa":        isaFileReference,
		"name":       name,
		"path":       path,
		"sourceTree": sourceTree,
	}
	if fileType := lastKnownFileType(path); fileType != "" {
		obj["lastKnownFileType"] = fileType
	}
	id := p.add(path, obj)

	if group := p.group("Frameworks"); group != nil && sourceTree == SourceTreeSDKRoot {
		appendValue(group, "children", id)
	} else if group := p.mainGroup(); group != nil {
		appendValue(group, "children", id)
	}

	return id
}

func lastKnownFileType(path string) string {
	switch filepath.Ext(path) {
	case ".framework":
		return "wrapper.framework"
	case ".dylib":
		return "compiled.mach-o.dylib"
	case ".tbd":
		return "sourcecode.text-based-dylib-definition"
	case ".plist":
		return "text.plist.xml"
	}

	return ""
}

func (p *Project) mainGroup() map[string]any {
	project := p.object(stringValue(p.root, "rootObject"))
	if project == nil || project["isa"] != isaProject {
		return nil
	}

	return p.object(stringValue(project, "mainGroup"))
}

func (p *Project) group(name string) map[string]any {
	main := p.mainGroup()
	for _, id := range stringsValue(main, "children") {
		if obj := p.object(id); obj != nil && obj["isa"] == isaGroup &&
			(stringValue(obj, "name") == name || stringValue(obj, "path") == name) {
			return obj
		}
	}

	return nil
}

// ContainsFileInBuild reports whether the file reference ref is
// linked by target's frameworks build phase.
func (p *Project) ContainsFileInBuild(target, ref string) bool {
	return slices.Contains(p.phaseFileRefs(target, isaFrameworksBuildPhase), ref)
}

// AddFileToBuild links the file reference ref to target
// unless it already is. It reports whether anything changed.
func (p *Project) AddFileToBuild(target, ref string) bool {
	if p.ContainsFileInBuild(target, ref) {
		return false
	}

	p.addToPhase(target, isaFrameworksBuildPhase, ref, false)
	return true
}

// AddFileToResources copies the file reference ref into target's
// bundle unless it already is. It reports whether anything changed.
func (p *Project) AddFileToResources(target, ref string) bool {
	if slices.Contains(p.phaseFileRefs(target, isaResourcesBuildPhase), ref) {
		return false
	}

	p.addToPhase(target, isaResourcesBuildPhase, ref, false)
	return true
}

func (p *Project) addToPhase(target, isa, ref string, weak bool) {
	obj := map[string]any{
		"isa":     isaBuildFile,
		"fileRef": ref,
	}
	if weak {
		obj["settings"] = map[string]any{"ATTRIBUTES": []any{"Weak"}}
	}

	appendValue(p.phase(target, isa), "files", p.add(target+ref, obj))
}
