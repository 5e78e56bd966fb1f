package core

import (
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	pep440 "github.com/aquasecurity/go-pep440-version"
)

// versionGate compares catalog version annotations against the platform
// version a bundle targets. Parsed specifiers and versions are memoized;
// the gate is shared by concurrent validations, so the caches are locked.
type versionGate struct {
	platform pep440.Version
	set      bool

	mu       sync.Mutex
	specs    map[string]pep440.Specifiers
	versions map[string]pep440.Version
}

// newVersionGate parses platform. An empty platform yields a gate that
// admits every component and treats every deprecation as reached.
func newVersionGate(platform string) (*versionGate, error) {
	gate := &versionGate{
		specs:    map[string]pep440.Specifiers{},
		versions: map[string]pep440.Version{},
	}
	if platform == "" {
		return gate, nil
	}
	parsed, err := pep440.Parse(platform)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid platform version: " + platform).
			WithCause(err)
	}
	gate.platform = parsed
	gate.set = true
	return gate, nil
}

// satisfies reports whether the platform version meets a PEP 440
// specifier such as ">=1.7,<2".
func (g *versionGate) satisfies(specifier string) (bool, error) {
	if !g.set || specifier == "" {
		return true, nil
	}
	spec, err := g.specifier(specifier)
	if err != nil {
		return false, err
	}
	return spec.Check(g.platform), nil
}

// reached reports whether the platform version is at or beyond version.
func (g *versionGate) reached(version string) (bool, error) {
	if !g.set {
		return true, nil
	}
	parsed, err := g.version(version)
	if err != nil {
		return false, err
	}
	return g.platform.Compare(parsed) >= 0, nil
}

func (g *versionGate) specifier(value string) (pep440.Specifiers, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if parsed, ok := g.specs[value]; ok {
		return parsed, nil
	}
	parsed, err := pep440.NewSpecifiers(value)
	if err != nil {
		return pep440.Specifiers{}, err
	}
	g.specs[value] = parsed
	return parsed, nil
}

func (g *versionGate) version(value string) (pep440.Version, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if parsed, ok := g.versions[value]; ok {
		return parsed, nil
	}
	parsed, err := pep440.Parse(value)
	if err != nil {
		return pep440.Version{}, err
	}
	g.versions[value] = parsed
	return parsed, nil
}
