package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version     int                `toml:"version"`
	Calibration *calibrationSchema `toml:"calibration,omitempty"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported calibration schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type calibrationSchema struct {
	LeftBase   int64  `toml:"left_base"`
	RightBase  int64  `toml:"right_base"`
	CapturedAt string `toml:"captured_at"`
}
