package gpu

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

var ErrUnsupportedVersion = errors.New("OpenGL 2.0 or newer is required")

var minimumVersion = semver.MustParse("2.0")

// ParseVersion extracts the numeric part of a GL_VERSION string such as
// "4.6.0 NVIDIA 535.54" or "OpenGL ES 3.2 Mesa 23.0".
func ParseVersion(version string) (*semver.Version, error) {
	s := strings.TrimSpace(version)
	s = strings.TrimPrefix(s, "OpenGL ES-CM ")
	s = strings.TrimPrefix(s, "OpenGL ES ")
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty OpenGL version string")
	}
	v, err := semver.NewVersion(fields[0])
	if err != nil {
		return nil, fmt.Errorf("could not parse OpenGL version %q: %w", version, err)
	}
	return v, nil
}

func CheckVersion(version string) error {
	v, err := ParseVersion(version)
	if err != nil {
		return err
	}
	if v.LessThan(minimumVersion) {
		return fmt.Errorf("%w, driver reports %s", ErrUnsupportedVersion, v)
	}
	return nil
}
