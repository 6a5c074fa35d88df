package skills

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var envKeyPattern = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)=`)
var envNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// areRangesCompatible decides whether a requested semver range is already
// satisfied by an existing one, implementing only the '^' and '~' prefix
// forms; anything else falls through to a byte-for-byte equality check,
// matching original_source's are_ranges_compatible. Two '^' ranges are
// compatible when their major versions match, two '~' ranges when major
// and minor match; the higher of the two then wins.
func areRangesCompatible(existing, requested string) (bool, string) {
	if existing == requested {
		return true, existing
	}
	exPrefix, exRest := rangePrefix(existing)
	reqPrefix, reqRest := rangePrefix(requested)
	if exPrefix == "" || reqPrefix == "" || exPrefix != reqPrefix {
		return false, existing
	}
	exParts, reqParts := semverParts(exRest), semverParts(reqRest)
	if exParts[0] != reqParts[0] || (exPrefix == "~" && exParts[1] != reqParts[1]) {
		return false, existing
	}
	if compareSemver(reqRest, exRest) > 0 {
		return true, requested
	}
	return true, existing
}

func rangePrefix(v string) (string, string) {
	if strings.HasPrefix(v, "^") {
		return "^", v[1:]
	}
	if strings.HasPrefix(v, "~") {
		return "~", v[1:]
	}
	return "", v
}

// mergeNPMDependencies merges newDeps into pkgPath's "dependencies" object,
// applying areRangesCompatible to decide the winning range on overlap and
// failing with KindIncompatible when no compatible range exists.
func (e *Engine) mergeNPMDependencies(pkgPath string, newDeps map[string]string) error {
	raw, err := os.ReadFile(pkgPath)
	if err != nil {
		return newErr(KindIO, "merge_npm_dependencies").withErr(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return newErr(KindInvalidInput, "merge_npm_dependencies").withErr(err)
	}

	depsRaw, _ := doc["dependencies"].(map[string]any)
	if depsRaw == nil {
		depsRaw = map[string]any{}
	}
	for name, wantRange := range newDeps {
		existing, ok := depsRaw[name].(string)
		if !ok {
			depsRaw[name] = wantRange
			continue
		}
		compatible, winner := areRangesCompatible(existing, wantRange)
		if !compatible {
			return newErr(KindIncompatible, "merge_npm_dependencies").withPath(name)
		}
		depsRaw[name] = winner
	}
	doc["dependencies"] = depsRaw

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return newErr(KindIO, "merge_npm_dependencies").withErr(err)
	}
	if err := os.WriteFile(pkgPath, append(out, '\n'), 0o644); err != nil {
		return newErr(KindIO, "merge_npm_dependencies").withErr(err)
	}
	return nil
}

// mergeEnvAdditions appends a "NAME=" line for every bare variable name in
// additions that isn't already declared in envPath (by key, regardless of
// its current value), under a single "# Added by skill" banner. additions
// are names, not KEY=VALUE pairs; matching original_source's
// merge_env_additions, the value side is always left empty for the project
// to fill in.
func (e *Engine) mergeEnvAdditions(envPath string, additions []string) error {
	existing := map[string]bool{}
	raw, err := os.ReadFile(envPath)
	if err != nil && !os.IsNotExist(err) {
		return newErr(KindIO, "merge_env_additions").withErr(err)
	}
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		line := scanner.Text()
		if m := envKeyPattern.FindStringSubmatch(line); m != nil {
			existing[m[1]] = true
		}
	}

	var toAdd []string
	for _, name := range additions {
		if !envNamePattern.MatchString(name) {
			return newErr(KindInvalidInput, "merge_env_additions").withPath(name)
		}
		if existing[name] {
			continue
		}
		toAdd = append(toAdd, name)
	}
	if len(toAdd) == 0 {
		return nil
	}

	f, err := os.OpenFile(envPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return newErr(KindIO, "merge_env_additions").withErr(err)
	}
	defer f.Close()
	if _, err := f.WriteString("\n# Added by skill\n"); err != nil {
		return newErr(KindIO, "merge_env_additions").withErr(err)
	}
	for _, name := range toAdd {
		if _, err := f.WriteString(name + "=\n"); err != nil {
			return newErr(KindIO, "merge_env_additions").withErr(err)
		}
	}
	return nil
}

// mergeDockerComposeServices merges services into composePath's top-level
// "services" map, rejecting a merge that would bind two services to the
// same host port.
func (e *Engine) mergeDockerComposeServices(composePath string, services map[string]any) error {
	raw, err := os.ReadFile(composePath)
	if err != nil {
		return newErr(KindIO, "merge_docker_compose").withErr(err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return newErr(KindInvalidInput, "merge_docker_compose").withErr(err)
	}
	existing, _ := doc["services"].(map[string]any)
	if existing == nil {
		existing = map[string]any{}
	}

	usedPorts := map[string]string{}
	for name, svc := range existing {
		for _, port := range hostPorts(svc) {
			usedPorts[port] = name
		}
	}

	for name, svc := range services {
		for _, port := range hostPorts(svc) {
			if owner, taken := usedPorts[port]; taken && owner != name {
				return newErr(KindIncompatible, "merge_docker_compose").withPath(port)
			}
			usedPorts[port] = name
		}
		existing[name] = svc
	}
	doc["services"] = existing

	out, err := yaml.Marshal(doc)
	if err != nil {
		return newErr(KindIO, "merge_docker_compose").withErr(err)
	}
	if err := os.WriteFile(composePath, out, 0o644); err != nil {
		return newErr(KindIO, "merge_docker_compose").withErr(err)
	}
	return nil
}

// hostPorts extracts the host-side port from a service definition's ports
// list, where each entry is either "HOST:CONTAINER" or a bare container
// port (which claims no host port).
func hostPorts(svc any) []string {
	m, ok := svc.(map[string]any)
	if !ok {
		return nil
	}
	portsRaw, ok := m["ports"].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, p := range portsRaw {
		s, ok := p.(string)
		if !ok {
			continue
		}
		parts := strings.SplitN(s, ":", 2)
		if len(parts) == 2 {
			if _, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil {
				out = append(out, parts[0])
			}
		}
	}
	return out
}
