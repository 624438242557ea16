// SPDX-License-Identifier: Apache-2.0

package semver

import (
	"testing"

	"github.com/joomcode/errorx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	var testCases = []struct {
		input  string
		major  uint64
		minor  uint64
		patch  uint64
		label  string
		errMsg string
	}{
		{
			input: "0.0.1",
			patch: 1,
		},
		{
			input: "1.2.3",
			major: 1,
			minor: 2,
			patch: 3,
		},
		{
			input: "10.20.30",
			major: 10,
			minor: 20,
			patch: 30,
		},
		{
			input: "1.2.3-alpha",
			major: 1,
			minor: 2,
			patch: 3,
			label: "alpha",
		},
		{
			input: "1.2.3-rc.1",
			major: 1,
			minor: 2,
			patch: 3,
			label: "rc.1",
		},
		{
			input: " 2.1.0 ", // surrounding whitespace is tolerated
			major: 2,
			minor: 1,
		},
		{
			input:  "",
			errMsg: "failed to parse",
		},
		{
			input:  "1.2",
			errMsg: "failed to parse",
		},
		{
			input:  "1.2.3.4",
			errMsg: "failed to parse",
		},
		{
			input:  "v1.2.3",
			errMsg: "failed to parse",
		},
		{
			input:  "a.2.3",
			errMsg: "failed to parse",
		},
		{
			input:  "1.b.3",
			errMsg: "failed to parse",
		},
		{
			input:  "1.2.c",
			errMsg: "failed to parse",
		},
		{
			input:  "-1.2.3",
			errMsg: "failed to parse",
		},
		{
			input:  "1.2.3-",
			errMsg: "failed to parse",
		},
		{
			input:  "INVALID",
			errMsg: "failed to parse",
		},
	}

	for _, test := range testCases {
		v, err := Parse(test.input)
		if test.errMsg != "" {
			assert.Error(t, err, "input %q", test.input)
			assert.Contains(t, err.Error(), test.errMsg)
			assert.True(t, errorx.IsOfType(err, InvalidFormat))
		} else {
			require.NoError(t, err, "input %q", test.input)
			assert.Equal(t, test.major, v.Major())
			assert.Equal(t, test.minor, v.Minor())
			assert.Equal(t, test.patch, v.Patch())
			assert.Equal(t, test.label, v.Label())
		}
	}
}

func TestParse_RawRoundTrip(t *testing.T) {
	for _, raw := range []string{"1.0.0", "2.10.3", "1.0.0-beta", "3.1.4-rc.2"} {
		v, err := Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, v.Raw())
		assert.Equal(t, raw, v.String())

		again, err := Parse(v.Raw())
		require.NoError(t, err)
		assert.True(t, v.Equal(again))
	}
}

func TestVersion_Compare(t *testing.T) {
	var testCases = []struct {
		v1     string
		v2     string
		output int
	}{
		{v1: "1.0.0", v2: "1.0.0", output: 0},
		{v1: "1.0.0", v2: "2.0.0", output: -1},
		{v1: "2.0.0", v2: "1.0.0", output: 1},
		{v1: "1.1.0", v2: "1.2.0", output: -1},
		{v1: "1.0.9", v2: "1.0.10", output: -1},
		{v1: "1.10.0", v2: "1.9.0", output: 1},
		// unlabeled outranks labeled at equal numeric parts
		{v1: "1.0.0", v2: "1.0.0-alpha", output: 1},
		{v1: "1.0.0-alpha", v2: "1.0.0", output: -1},
		// labeled versions compare lexicographically by label
		{v1: "1.0.0-alpha", v2: "1.0.0-beta", output: -1},
		{v1: "1.0.0-beta", v2: "1.0.0-alpha", output: 1},
		{v1: "1.0.0-rc.1", v2: "1.0.0-rc.1", output: 0},
		{v1: "1.0.0-rc.1", v2: "1.0.0-rc.2", output: -1},
		// label never outweighs the numeric parts
		{v1: "1.0.1-alpha", v2: "1.0.0", output: 1},
	}

	for _, test := range testCases {
		version1, err := Parse(test.v1)
		require.NoError(t, err)

		version2, err := Parse(test.v2)
		require.NoError(t, err)

		assert.Equalf(t, test.output, version1.Compare(version2), "%s vs %s", test.v1, test.v2)
		// antisymmetry
		assert.Equalf(t, -test.output, version2.Compare(version1), "%s vs %s reversed", test.v2, test.v1)

		assert.Equal(t, test.output < 0, version1.LessThan(version2))
		assert.Equal(t, test.output > 0, version1.GreaterThan(version2))
		assert.Equal(t, test.output == 0, version1.Equal(version2))
	}
}

func TestVersion_Compare_Transitive(t *testing.T) {
	ordered := []string{
		"0.9.0",
		"1.0.0-alpha",
		"1.0.0-beta",
		"1.0.0",
		"1.0.1",
		"1.1.0-rc.1",
		"1.1.0",
		"2.0.0",
	}

	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			a := MustParse(ordered[i])
			b := MustParse(ordered[j])
			assert.Truef(t, a.LessThan(b), "%s < %s", ordered[i], ordered[j])
		}
	}
}

func TestMustParse_PanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() { MustParse("not-a-version") })
	assert.NotPanics(t, func() { MustParse("1.0.0") })
}
