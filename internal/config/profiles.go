package config

import (
	"fmt"
	"maps"
	"os"
	"strings"

	"fetcharr/internal/models"

	"github.com/BurntSushi/toml"
)

type profilesFile struct {
	Profile []models.FormatProfile `toml:"profile"`
}

// LoadProfiles decodes a TOML file of [[profile]] tables and merges it over base.
func LoadProfiles(path string, base map[models.FormatKey]models.FormatProfile) (map[models.FormatKey]models.FormatProfile, error) {
	checkPath, err := os.Stat(path)

	switch {
	case err != nil:
		return nil, err
	case checkPath.IsDir():
		return nil, fmt.Errorf("profiles file passed in as directory %q, should be file", path)
	case !checkPath.Mode().IsRegular():
		return nil, fmt.Errorf("%q is not a regular file", path)
	case checkPath.Size() == 0:
		return nil, fmt.Errorf("file %q is empty", path)
	}

	var pf profilesFile
	if _, err := toml.DecodeFile(path, &pf); err != nil {
		return nil, fmt.Errorf("failed to decode profiles file %q: %w", path, err)
	}

	out := make(map[models.FormatKey]models.FormatProfile, len(base)+len(pf.Profile))
	maps.Copy(out, base)

	for i, p := range pf.Profile {
		key, err := models.ParseFormatKey(string(p.Key))
		if err != nil {
			// Requested keys are matched lowercased.
			key = models.FormatKey(strings.ToLower(strings.TrimSpace(string(p.Key))))
		}
		if key == "" || p.Expression == "" || p.Extension == "" {
			return nil, fmt.Errorf("profile #%d in %q needs key, format and ext", i+1, path)
		}
		p.Key = key
		if p.Label == "" {
			p.Label = string(key)
		}
		out[key] = p
	}
	return out, nil
}
