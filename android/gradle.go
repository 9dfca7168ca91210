package android

import (
	"context"
	"strings"

	"github.com/frantjc/adpatch"
	"github.com/frantjc/adpatch/internal/adpatchio"
)

const (
	GradleTemplateName = "mainTemplate.gradle"

	GradleDependenciesMarker = "**DEPS**"
	GradleMultidexDependency = "implementation 'androidx.multidex:multidex:2.0.1'"
	GradleMultidexEnabled    = "multiDexEnabled true"

	gradleDependenciesBlock  = "dependencies {"
	gradleDefaultConfigBlock = "defaultConfig {"
	gradleIndent             = "    "
)

// GradleTemplate is a Gradle build script template held as lines.
type GradleTemplate struct {
	Name string

	lines []string
	eol   string
}

// OpenGradleTemplate reads the Gradle template at name.
func OpenGradleTemplate(name string) (*GradleTemplate, error) {
	b, exists, err := adpatchio.ReadFile(name)
	if !exists {
		return nil, &adpatch.NotFoundError{Path: name}
	} else if err != nil {
		return nil, err
	}

	return ParseGradleTemplate(name, b), nil
}

// ParseGradleTemplate splits b into lines, remembering whether it used CRLF.
func ParseGradleTemplate(name string, b []byte) *GradleTemplate {
	var (
		s   = string(b)
		eol = "\n"
	)

	if strings.Contains(s, "\r\n") {
		eol = "\r\n"
		s = strings.ReplaceAll(s, "\r\n", "\n")
	}

	return &GradleTemplate{Name: name, lines: strings.Split(s, "\n"), eol: eol}
}

func (g *GradleTemplate) Bytes() []byte {
	return []byte(strings.Join(g.lines, g.eol))
}

// Save atomically writes the template back to g.Name.
func (g *GradleTemplate) Save() error {
	return adpatchio.WriteFile(g.Name, g.Bytes())
}

func (g *GradleTemplate) index(match func(string) bool) int {
	for i, line := range g.lines {
		if match(strings.TrimSpace(line)) {
			return i
		}
	}

	return -1
}

// Contains reports whether any line, ignoring surrounding whitespace, is line.
func (g *GradleTemplate) Contains(line string) bool {
	return g.index(func(l string) bool { return l == line }) >= 0
}

// Remove deletes every line that, ignoring surrounding whitespace,
// is line and returns how many were deleted.
func (g *GradleTemplate) Remove(line string) int {
	kept := g.lines[:0]
	for _, l := range g.lines {
		if strings.TrimSpace(l) != line {
			kept = append(kept, l)
		}
	}

	n := len(g.lines) - len(kept)
	g.lines = kept
	return n
}

// InsertAfter inserts line after the first line that contains
// anchor, one level deeper than it. It reports false if there is no anchor.
func (g *GradleTemplate) InsertAfter(anchor, line string) bool {
	i := g.index(func(l string) bool { return strings.Contains(l, anchor) })
	if i < 0 {
		return false
	}

	g.insert(i+1, leadingSpace(g.lines[i])+gradleIndent+line)
	return true
}

// InsertBefore inserts line before the first line that contains
// anchor, one level deeper than it. Unity's **DEPS** marker shares
// its line with the closing brace of dependencies, hence this.
func (g *GradleTemplate) InsertBefore(anchor, line string) bool {
	i := g.index(func(l string) bool { return strings.Contains(l, anchor) })
	if i < 0 {
		return false
	}

	g.insert(i, leadingSpace(g.lines[i])+gradleIndent+line)
	return true
}

func (g *GradleTemplate) insert(i int, line string) {
	g.lines = append(g.lines[:i], append([]string{line}, g.lines[i:]...)...)
}

func leadingSpace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}

// ReconcileGradleMultidex converges the multidex dependency and
// multiDexEnabled flag of g to enabled. It reports whether g changed.
func ReconcileGradleMultidex(ctx context.Context, g *GradleTemplate, enabled bool) bool {
	var (
		log     = adpatch.LoggerFrom(ctx)
		changed = false
	)

	for _, entry := range []struct {
		line   string
		insert []func() bool
	}{
		{
			line: GradleMultidexDependency,
			insert: []func() bool{
				func() bool { return g.InsertBefore(GradleDependenciesMarker, GradleMultidexDependency) },
				func() bool { return g.InsertAfter(gradleDependenciesBlock, GradleMultidexDependency) },
			},
		},
		{
			line: GradleMultidexEnabled,
			insert: []func() bool{
				func() bool { return g.InsertAfter(gradleDefaultConfigBlock, GradleMultidexEnabled) },
			},
		},
	} {
		present := g.Contains(entry.line)

		switch {
		case enabled && !present:
			inserted := false
			for _, insert := range entry.insert {
				if inserted = insert(); inserted {
					break
				}
			}

			if inserted {
				log.Info("added gradle line", "template", g.Name, "line", entry.line)
				changed = true
			} else {
				log.Error(nil, "no dependencies or defaultConfig block to add gradle line to", "template", g.Name, "line", entry.line)
			}
		case !enabled && present:
			n := g.Remove(entry.line)
			log.Info("removed gradle line", "template", g.Name, "line", entry.line, "count", n)
			changed = true
		default:
			log.V(1).Info("gradle line up to date", "template", g.Name, "line", entry.line, "enabled", enabled)
		}
	}

	return changed
}
