package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bnema/haptic-handshake/internal/logging"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Validate checks every field and returns all failures as ValidationErrors.
func (c Config) Validate() error {
	var errs ValidationErrors
	add := func(field string, value any, message string) {
		errs = append(errs, ValidationError{Field: field, Value: value, Message: message})
	}

	if strings.TrimSpace(c.Serial.Port) == "" {
		add("serial.port", c.Serial.Port, "must not be empty")
	}
	if c.Serial.Baud <= 0 {
		add("serial.baud", c.Serial.Baud, "must be positive")
	}
	if c.Serial.ReadTimeout <= 0 {
		add("serial.read_timeout", c.Serial.ReadTimeout, "must be positive")
	}

	if c.Motion.EncoderPerMM <= 0 {
		add("motion.encoder_per_mm", c.Motion.EncoderPerMM, "must be positive")
	}
	if c.Motion.FullScaleMM <= 0 {
		add("motion.full_scale_mm", c.Motion.FullScaleMM, "must be positive")
	}

	if c.Session.Duration <= 0 {
		add("session.duration", c.Session.Duration, "must be positive")
	}
	if c.Session.Cooldown < 0 {
		add("session.cooldown", c.Session.Cooldown, "must not be negative")
	}
	if c.Session.WatchdogSlack < 0 {
		add("session.watchdog_slack", c.Session.WatchdogSlack, "must not be negative")
	}
	if c.Session.Settle < 0 {
		add("session.settle", c.Session.Settle, "must not be negative")
	}
	if c.Session.PendingTimeout < 0 {
		add("session.pending_timeout", c.Session.PendingTimeout, "must not be negative")
	}

	if c.Host.TickRate <= 0 || c.Host.TickRate > 1000 {
		add("host.tick_rate", c.Host.TickRate, "must be between 1 and 1000")
	}

	if strings.TrimSpace(c.Calibration.Path) == "" {
		add("calibration.path", c.Calibration.Path, "must not be empty")
	}

	if !slices.Contains(logging.ValidLevels(), strings.ToLower(c.Log.Level)) {
		add("log.level", c.Log.Level, "must be one of "+strings.Join(logging.ValidLevels(), ", "))
	}
	if format := strings.ToLower(c.Log.Format); format != logging.FormatText && format != logging.FormatJSON {
		add("log.format", c.Log.Format, "must be text or json")
	}

	for profile, params := range c.Profiles {
		if err := params.Validate(); err != nil {
			add("profiles."+string(profile), params.Amplitude, err.Error())
		}
	}
	if len(c.Modes) == 0 {
		add("modes", c.Modes, "at least one mode is required")
	} else if err := c.Modes.Validate(); err != nil {
		add("modes", len(c.Modes), err.Error())
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
