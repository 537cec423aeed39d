package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bnema/haptic-handshake/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenNoConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	defaults := Default()
	assert.Equal(t, defaults.Serial, cfg.Serial)
	assert.Equal(t, defaults.Motion, cfg.Motion)
	assert.Equal(t, defaults.Session, cfg.Session)
	assert.Equal(t, defaults.Host, cfg.Host)
	assert.Equal(t, defaults.Profiles, cfg.Profiles)
	assert.Equal(t, defaults.Modes, cfg.Modes)
	assert.True(t, strings.HasSuffix(cfg.Calibration.Path, filepath.Join(".haptics", "calibration.toml")))
	assert.True(t, cfg.Calibration.Restore)
}

func TestLoadReadsTOMLFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join([]string{
		"modes = [\"Wave=strong\", \"Tap=weak\"]",
		"",
		"[serial]",
		"port = \"COM12\"",
		"baud = 57600",
		"",
		"[session]",
		"duration = \"6s\"",
		"cooldown = \"3s\"",
		"require_calibration = true",
		"",
		"[profiles.weak]",
		"amplitude = 2.5",
		"balance = [\"0s=3\", \"2s=5\"]",
	}, "\n")), 0o600))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "COM12", cfg.Serial.Port)
	assert.Equal(t, 57600, cfg.Serial.Baud)
	assert.Equal(t, 6*time.Second, cfg.Session.Duration)
	assert.Equal(t, 3*time.Second, cfg.Session.Cooldown)
	assert.True(t, cfg.Session.RequireCalibration)

	weak := cfg.Profiles[domain.ProfileWeak]
	assert.Equal(t, 2.5, weak.Amplitude)
	assert.Equal(t, []domain.Waypoint{{At: 0, Value: 3}, {At: 2 * time.Second, Value: 5}}, weak.Balance)
	assert.Equal(t, 500*time.Millisecond, weak.Attack)

	require.Len(t, cfg.Modes, 2)
	assert.Equal(t, domain.AnimMode{Tag: "Wave", Profile: domain.ProfileStrong}, cfg.Modes[0])
}

func TestLoadAppliesEnvironmentOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("HS_SERIAL_PORT", "/dev/ttyACM3")
	t.Setenv("HS_HOST_TICK_RATE", "120")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM3", cfg.Serial.Port)
	assert.Equal(t, 120, cfg.Host.TickRate)
	assert.Equal(t, time.Second/120, cfg.Host.TickInterval())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join([]string{
		"[serial]",
		"baud = 0",
		"",
		"[session]",
		"duration = \"0s\"",
	}, "\n")), 0o600))

	_, err := Load(viper.New(), path)
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
	assert.Contains(t, err.Error(), "serial.baud")
	assert.Contains(t, err.Error(), "session.duration")
}

func TestLoadRejectsMalformedWaypoints(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[profiles.strong]\nbalance = [\"soon=4\"]\n"), 0o600))

	_, err := Load(viper.New(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profiles.strong.balance")
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Calibration.Path = "/tmp/calibration.toml"
	require.NoError(t, cfg.Validate())

	cfg.Serial.Port = " "
	cfg.Motion.EncoderPerMM = 0
	cfg.Host.TickRate = 0
	cfg.Log.Level = "loud"
	cfg.Log.Format = "xml"
	cfg.Modes = nil

	err := cfg.Validate()
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 6)
	assert.Contains(t, err.Error(), "6 validation errors")
}

func TestFormatAndParseWaypoints(t *testing.T) {
	waypoints := domain.DefaultProfiles()[domain.ProfileStrong].Balance

	formatted := formatWaypoints(waypoints)
	assert.Equal(t, []string{"0s=3", "1s=5", "2s=3", "4s=4"}, formatted)

	parsed, err := parseWaypoints(formatted)
	require.NoError(t, err)
	assert.Equal(t, waypoints, parsed)
}
