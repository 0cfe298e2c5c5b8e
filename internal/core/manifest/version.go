package manifest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// VersionRecord is a manifest version split into its semantic base and build number.
type VersionRecord struct {
	Base     string
	Build    int
	HasBuild bool
}

// ParseVersion splits "1.2.3+45" into base "1.2.3" and build 45. A missing or
// non-numeric suffix leaves HasBuild false; only the base is required.
func ParseVersion(s string) (VersionRecord, error) {
	s = strings.TrimSpace(s)
	base, suffix, found := strings.Cut(s, "+")
	if base == "" {
		return VersionRecord{}, fmt.Errorf("version %q has no base version", s)
	}

	rec := VersionRecord{Base: base}
	if found {
		if n, err := strconv.Atoi(suffix); err == nil && n >= 0 {
			rec.Build = n
			rec.HasBuild = true
		}
	}
	return rec, nil
}

// WithBuild returns a copy carrying build number n.
func (v VersionRecord) WithBuild(n int) VersionRecord {
	v.Build = n
	v.HasBuild = true
	return v
}

// String renders the record as "{base}+{build}", or just the base when no build is set.
func (v VersionRecord) String() string {
	if !v.HasBuild {
		return v.Base
	}
	return v.Base + "+" + strconv.Itoa(v.Build)
}

// ValidateBase reports whether the base is a strict X.Y.Z semantic version.
func (v VersionRecord) ValidateBase() error {
	if _, err := semver.StrictNewVersion(v.Base); err != nil {
		if errors.Is(err, semver.ErrInvalidSemVer) {
			return fmt.Errorf("base version %q is not semver X.Y.Z", v.Base)
		}
		return fmt.Errorf("base version %q: %w", v.Base, err)
	}
	return nil
}
