package lantern

import (
	"fmt"

	"github.com/goccy/go-yaml"
)

type manifestFile struct {
	Assets []AssetDefinition `yaml:"assets"`
}

// ParseManifest parses a YAML asset list:
//
//	assets:
//	  - name: hero
//	    path: sprites/hero.png
//	  - name: theme
//	    path: https://example.com/theme.ogg
//	    type: audio
//
// A missing type is inferred from the path. Names must be unique.
func ParseManifest(data []byte) ([]AssetDefinition, error) {
	var m manifestFile
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: manifest: %v", ErrInvalidArgument, err)
	}
	seen := make(map[string]bool, len(m.Assets))
	for i := range m.Assets {
		def := &m.Assets[i]
		if def.Name == "" || def.Path == "" {
			return nil, fmt.Errorf("%w: manifest entry %d needs name and path", ErrInvalidArgument, i)
		}
		if seen[def.Name] {
			return nil, fmt.Errorf("%w: duplicate asset %q", ErrInvalidArgument, def.Name)
		}
		seen[def.Name] = true
		switch def.Type {
		case "":
			def.Type = Classify(urlPath(def.Path))
		case AssetImage, AssetFont, AssetAudio:
		default:
			return nil, fmt.Errorf("%w: asset %q has type %q", ErrInvalidArgument, def.Name, def.Type)
		}
	}
	return m.Assets, nil
}
