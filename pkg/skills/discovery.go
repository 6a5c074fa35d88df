package skills

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/g2-project/g2/pkg/logger"
)

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9]+(-[a-zA-Z0-9]+)*$`)

const (
	maxSkillNameLength = 64
	maxSkillDescLength = 1024
)

// SkillPackageInfo is a discovered, not-yet-applied skill package: a
// directory containing a manifest.yaml, found by Discovery.List the way the
// teacher's SkillsLoader.ListSkills finds SKILL.md-fronted prompt skills.
type SkillPackageInfo struct {
	Name        string
	Path        string
	Source      string
	Description string
	Version     string
}

func (info SkillPackageInfo) validate() error {
	var errs error
	if info.Name == "" {
		errs = errors.Join(errs, errors.New("name is required"))
	} else {
		if len(info.Name) > maxSkillNameLength {
			errs = errors.Join(errs, fmt.Errorf("name exceeds %d characters", maxSkillNameLength))
		}
		if !namePattern.MatchString(info.Name) {
			errs = errors.Join(errs, errors.New("name must be alphanumeric with hyphens"))
		}
	}
	if len(info.Description) > maxSkillDescLength {
		errs = errors.Join(errs, fmt.Errorf("description exceeds %d characters", maxSkillDescLength))
	}
	return errs
}

// Discovery lists skill packages across the project's own shipped
// directory and any additional search directories, in priority order, the
// way the teacher layers workspace/global/builtin skill sources.
type Discovery struct {
	dirs []struct {
		path   string
		source string
	}
}

// NewDiscovery builds a Discovery that searches the project's
// .claude/skills directory first, then any extra directories given (e.g. a
// user-level skill package library), in order.
func NewDiscovery(projectShippedDir string, extra ...string) *Discovery {
	d := &Discovery{}
	d.dirs = append(d.dirs, struct {
		path   string
		source string
	}{projectShippedDir, "project"})
	for _, dir := range extra {
		d.dirs = append(d.dirs, struct {
			path   string
			source string
		}{dir, "library"})
	}
	return d
}

// List returns every discovered skill package across all search
// directories, skipping duplicate names (first source wins).
func (d *Discovery) List() []SkillPackageInfo {
	var out []SkillPackageInfo
	seen := map[string]bool{}

	for _, dir := range d.dirs {
		if dir.path == "" {
			continue
		}
		entries, err := os.ReadDir(dir.path)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			skillDir := filepath.Join(dir.path, entry.Name())
			manifest, err := ReadManifest(skillDir)
			if err != nil {
				continue
			}
			info := SkillPackageInfo{
				Name:        manifest.Skill,
				Path:        skillDir,
				Source:      dir.source,
				Description: manifest.Description,
				Version:     manifest.Version,
			}
			if err := info.validate(); err != nil {
				logger.WarnCF("skills", "invalid skill package from "+dir.source, map[string]any{"name": info.Name, "error": err.Error()})
				continue
			}
			if seen[info.Name] {
				continue
			}
			seen[info.Name] = true
			out = append(out, info)
		}
	}
	return out
}

// Find locates a single skill package by name across every search
// directory, in priority order.
func (d *Discovery) Find(name string) (SkillPackageInfo, bool) {
	for _, info := range d.List() {
		if info.Name == name {
			return info, true
		}
	}
	return SkillPackageInfo{}, false
}

// Summary renders the discovered skill packages as the XML block the
// teacher's SkillsLoader.BuildSkillsSummary produces, for embedding into a
// prompt or status display.
func (d *Discovery) Summary() string {
	all := d.List()
	if len(all) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<skills>\n")
	for _, s := range all {
		b.WriteString("  <skill>\n")
		fmt.Fprintf(&b, "    <name>%s</name>\n", escapeXML(s.Name))
		fmt.Fprintf(&b, "    <description>%s</description>\n", escapeXML(s.Description))
		fmt.Fprintf(&b, "    <version>%s</version>\n", escapeXML(s.Version))
		fmt.Fprintf(&b, "    <location>%s</location>\n", escapeXML(s.Path))
		fmt.Fprintf(&b, "    <source>%s</source>\n", s.Source)
		b.WriteString("  </skill>\n")
	}
	b.WriteString("</skills>")
	return b.String()
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// DefaultSkillSource builds a SkillSource that resolves an applied skill's
// name back to its package directory under the project's shipped skills
// directory, used by replay to re-read a skill's manifest and file content
// during uninstall.
func DefaultSkillSource(e *Engine) SkillSource {
	return func(name string) (string, error) {
		dir := filepath.Join(e.shippedSkillsDir(), name)
		if _, err := os.Stat(filepath.Join(dir, manifestFileName)); err != nil {
			return "", err
		}
		return dir, nil
	}
}
