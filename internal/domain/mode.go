package domain

import (
	"fmt"
	"strings"
)

// AnimMode binds a grabbed-object tag to the profile its animation renders.
type AnimMode struct {
	Tag     string
	Profile IntensityProfile
}

type ModeTable []AnimMode

func DefaultModes() ModeTable {
	return ModeTable{
		{Tag: "GrabA", Profile: ProfileWeak},
		{Tag: "GrabB", Profile: ProfileMiddle},
		{Tag: "GrabC", Profile: ProfileStrong},
	}
}

// Resolve returns the mode for tag. Empty or unknown tags fall back to the first mode.
func (t ModeTable) Resolve(tag string) (AnimMode, bool) {
	if len(t) == 0 {
		return AnimMode{}, false
	}

	trimmed := strings.TrimSpace(tag)
	if trimmed != "" {
		for _, mode := range t {
			if mode.Tag == trimmed {
				return mode, true
			}
		}
	}

	return t[0], false
}

func (t ModeTable) Validate() error {
	seen := make(map[string]struct{}, len(t))
	for _, mode := range t {
		if strings.TrimSpace(mode.Tag) == "" {
			return fmt.Errorf("mode tag is required")
		}
		if _, ok := seen[mode.Tag]; ok {
			return fmt.Errorf("duplicate mode tag %q", mode.Tag)
		}
		seen[mode.Tag] = struct{}{}
		if _, err := ParseIntensityProfile(string(mode.Profile)); err != nil {
			return fmt.Errorf("mode %q: %w", mode.Tag, err)
		}
	}

	return nil
}
