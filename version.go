package envconfigs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

const devVersion = "dev"

// Version is a platform version: either "dev" or a strict MAJOR.MINOR.PATCH semantic
// version. A pre-release or build suffix is kept in String but ignored for comparisons.
type Version struct {
	raw string
	sem *semver.Version
}

// ParseVersion parses s into a Version. Surrounding whitespace and line breaks are ignored.
func ParseVersion(s string) (Version, error) {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\n", ""))
	if raw == "" {
		return Version{}, errors.New("empty version")
	}
	if raw == devVersion {
		return Version{raw: raw}, nil
	}

	sem, err := semver.StrictNewVersion(raw)
	if err != nil {
		return Version{}, fmt.Errorf("version '%s': %w", raw, err)
	}
	return Version{raw: raw, sem: sem}, nil
}

// String returns the version as it was configured.
func (v Version) String() string {
	return v.raw
}

// IsDev reports whether v is the development version.
func (v Version) IsDev() bool {
	return v.raw == devVersion
}

// Major returns the major component; zero for dev.
func (v Version) Major() uint64 {
	if v.sem == nil {
		return 0
	}
	return v.sem.Major()
}

// Minor returns the minor component; zero for dev.
func (v Version) Minor() uint64 {
	if v.sem == nil {
		return 0
	}
	return v.sem.Minor()
}

// Patch returns the patch component; zero for dev.
func (v Version) Patch() uint64 {
	if v.sem == nil {
		return 0
	}
	return v.sem.Patch()
}

// core drops the pre-release and build metadata.
func (v Version) core() *semver.Version {
	return semver.New(v.Major(), v.Minor(), v.Patch(), "", "")
}

// Compare returns -1, 0 or +1 comparing major, minor and patch. The dev version
// is greater than every release.
func (v Version) Compare(other Version) int {
	switch {
	case v.IsDev() && other.IsDev():
		return 0
	case v.IsDev():
		return 1
	case other.IsDev():
		return -1
	}
	return v.core().Compare(other.core())
}

// CompatibleWith reports whether v and other share major and minor versions.
// The dev version is compatible with everything.
func (v Version) CompatibleWith(other Version) bool {
	if v.IsDev() || other.IsDev() {
		return true
	}
	return v.Major() == other.Major() && v.Minor() == other.Minor()
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.raw), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
