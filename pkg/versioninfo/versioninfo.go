package versioninfo

import (
	"strings"

	"github.com/coreos/go-semver/semver"
)

// A Info contains a version.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
	BuiltBy string `json:"built_by,omitempty"`
}

// Semver returns the normalized version with a "v" prefix, "dev" when the
// version is unset, or the raw version when it is not semantic.
func (vi Info) Semver() string {
	if vi.Version == "" {
		return "dev"
	}
	version, err := semver.NewVersion(strings.TrimPrefix(vi.Version, "v"))
	if err != nil {
		return vi.Version
	}
	return "v" + version.String()
}

// Normalized returns a copy with Version replaced by Semver.
func (vi Info) Normalized() Info {
	vi.Version = vi.Semver()
	return vi
}

func (vi Info) String() string {
	versionElems := []string{vi.Semver()}
	if vi.Commit != "" {
		versionElems = append(versionElems, "commit "+vi.Commit)
	}
	if vi.BuiltBy != "" {
		versionElems = append(versionElems, "built by "+vi.BuiltBy)
	}
	return strings.Join(versionElems, ", ")
}
