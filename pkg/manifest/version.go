package manifest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stenciltools/stencil/pkg/errors"
)

// SemVer is a strict major.minor.patch version with numeric components.
type SemVer struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion parses "major.minor.patch". Anything else (missing
// components, non-numeric parts, pre-release suffixes) fails with
// ErrVersionInvalid.
func ParseVersion(s string) (SemVer, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return SemVer{}, errors.Newf(errors.ErrVersionInvalid, "version %q is not major.minor.patch", s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return SemVer{}, errors.Newf(errors.ErrVersionInvalid, "version %q has non-numeric component %q", s, p)
		}
		nums[i] = n
	}
	return SemVer{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// String renders the version as "major.minor.patch".
func (v SemVer) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Ordering is the result of comparing two versions.
type Ordering int

const (
	Older Ordering = -1
	Same  Ordering = 0
	Newer Ordering = 1
)

// String returns the ordering name.
func (o Ordering) String() string {
	switch o {
	case Older:
		return "older"
	case Newer:
		return "newer"
	default:
		return "same"
	}
}

// Compare orders a relative to b, comparing major, then minor, then
// patch numerically (so 1.10.0 is newer than 1.9.0).
func Compare(a, b SemVer) Ordering {
	pairs := [3][2]int{
		{a.Major, b.Major},
		{a.Minor, b.Minor},
		{a.Patch, b.Patch},
	}
	for _, p := range pairs {
		if p[0] < p[1] {
			return Older
		}
		if p[0] > p[1] {
			return Newer
		}
	}
	return Same
}
