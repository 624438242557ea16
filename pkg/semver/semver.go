// SPDX-License-Identifier: Apache-2.0

// Package semver implements the strict MAJOR.MINOR.PATCH[-LABEL] version model
// used by the persisted-store migration engine.
//
// Parsing is total and unambiguous: a raw string either yields exactly one
// Version or an InvalidFormat error, never a silent default. The total order
// compares major, minor and patch numerically; a version without a label sorts
// strictly above one with a label when the numeric parts are equal; two labeled
// versions with equal numeric parts compare lexicographically by label.
package semver

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joomcode/errorx"
)

var (
	ErrNamespace  = errorx.NewNamespace("semver")
	InvalidFormat = ErrNamespace.NewType("invalid_format")
)

// versionPattern matches MAJOR.MINOR.PATCH with an optional -LABEL suffix.
var versionPattern = regexp.MustCompile(`^([0-9]+)\.([0-9]+)\.([0-9]+)(?:-([0-9A-Za-z][0-9A-Za-z.\-]*))?$`)

// Version is an immutable parsed semantic version.
type Version struct {
	major uint64
	minor uint64
	patch uint64
	label string
	raw   string
}

// Parse parses raw into a Version. It fails with InvalidFormat if raw does not
// match MAJOR.MINOR.PATCH[-LABEL] with non-negative integer parts.
func Parse(raw string) (Version, error) {
	trimmed := strings.TrimSpace(raw)

	m := versionPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return Version{}, InvalidFormat.New(
			"failed to parse version %q: expected MAJOR.MINOR.PATCH[-LABEL]", raw)
	}

	major, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return Version{}, InvalidFormat.Wrap(err, "failed to parse major part of version %q", raw)
	}

	minor, err := strconv.ParseUint(m[2], 10, 64)
	if err != nil {
		return Version{}, InvalidFormat.Wrap(err, "failed to parse minor part of version %q", raw)
	}

	patch, err := strconv.ParseUint(m[3], 10, 64)
	if err != nil {
		return Version{}, InvalidFormat.Wrap(err, "failed to parse patch part of version %q", raw)
	}

	return Version{
		major: major,
		minor: minor,
		patch: patch,
		label: m[4],
		raw:   trimmed,
	}, nil
}

// MustParse parses raw and panics on failure. Reserved for compiled-in version
// literals where a malformed string is a programmer error.
func MustParse(raw string) Version {
	v, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) Major() uint64 { return v.major }
func (v Version) Minor() uint64 { return v.minor }
func (v Version) Patch() uint64 { return v.patch }
func (v Version) Label() string { return v.label }

// Raw returns the original string the version was parsed from.
func (v Version) Raw() string { return v.raw }

func (v Version) String() string { return v.raw }

// Compare returns -1, 0 or 1 if v is less than, equal to or greater than o.
func (v Version) Compare(o Version) int {
	if c := compareUint(v.major, o.major); c != 0 {
		return c
	}
	if c := compareUint(v.minor, o.minor); c != 0 {
		return c
	}
	if c := compareUint(v.patch, o.patch); c != 0 {
		return c
	}

	// equal numeric parts: an unlabeled version outranks a labeled one
	switch {
	case v.label == "" && o.label != "":
		return 1
	case v.label != "" && o.label == "":
		return -1
	}

	return strings.Compare(v.label, o.label)
}

func (v Version) LessThan(o Version) bool    { return v.Compare(o) < 0 }
func (v Version) GreaterThan(o Version) bool { return v.Compare(o) > 0 }
func (v Version) Equal(o Version) bool       { return v.Compare(o) == 0 }

func compareUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
