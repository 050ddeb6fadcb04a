package toml

import "fmt"

const currentSchemaVersion = 1

type documentSchema struct {
	Version int               `toml:"version"`
	Items   map[string]string `toml:"items"`
}

func (s *documentSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
	if s.Items == nil {
		s.Items = map[string]string{}
	}
}

func (s documentSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported storage schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}
