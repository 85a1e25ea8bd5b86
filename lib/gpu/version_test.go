package gpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	cases := map[string]string{
		"4.6.0 NVIDIA 535.54.03":       "4.6.0",
		"2.1 Mesa 23.0.4":              "2.1.0",
		"OpenGL ES 3.2 Mesa 23.0.4":    "3.2.0",
		"3.3 (Core Profile) Mesa 24.1": "3.3.0",
		"  2.0  ":                      "2.0.0",
	}
	for in, want := range cases {
		v, err := ParseVersion(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, v.String(), in)
	}
}

func TestParseVersionGarbage(t *testing.T) {
	_, err := ParseVersion("")
	assert.Error(t, err)

	_, err = ParseVersion("not a version")
	assert.Error(t, err)
}

func TestCheckVersion(t *testing.T) {
	assert.NoError(t, CheckVersion("2.0"))
	assert.NoError(t, CheckVersion("4.1 ATI-4.14.1"))

	err := CheckVersion("1.4 Microsoft")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedVersion))
}

func TestUniformValid(t *testing.T) {
	assert.False(t, Uniform(-1).Valid())
	assert.True(t, Uniform(0).Valid())
	assert.False(t, Program(0).Valid())
}
