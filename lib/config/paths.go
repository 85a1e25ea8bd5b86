package config

import (
	"path/filepath"

	yaml "github.com/goccy/go-yaml"
)

type CfgPath string

// UnmarshalBase is the directory relative CfgPaths are resolved against.
// It is set by Decode right before decoding, which makes decoding configs
// concurrently a bad idea.
var UnmarshalBase string

func (c *CfgPath) UnmarshalYAML(b []byte) error {
	var path string

	err := yaml.Unmarshal(b, &path)
	if err != nil {
		return err
	}

	if path == "" || filepath.IsAbs(path) {
		*c = CfgPath(path)
	} else {
		*c = CfgPath(filepath.Join(UnmarshalBase, path))
	}
	return nil
}
