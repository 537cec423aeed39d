package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/haptic-handshake/internal/domain"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".haptics"
	envPrefix  = "HS"

	calibrationFile = "calibration.toml"
)

type Config struct {
	Serial      SerialConfig
	Motion      MotionConfig
	Session     SessionConfig
	Host        HostConfig
	Calibration CalibrationConfig
	Log         LogConfig
	Profiles    map[domain.IntensityProfile]domain.ProfileParams
	Modes       domain.ModeTable
}

type SerialConfig struct {
	Port        string
	Baud        int
	ReadTimeout time.Duration
}

type MotionConfig struct {
	EncoderPerMM float64
	FullScaleMM  float64
}

type SessionConfig struct {
	Duration           time.Duration
	Cooldown           time.Duration
	WatchdogSlack      time.Duration
	Settle             time.Duration
	PendingTimeout     time.Duration
	RequireCalibration bool
}

type HostConfig struct {
	TickRate int
}

type CalibrationConfig struct {
	Path    string
	Restore bool
}

type LogConfig struct {
	Level  string
	Format string
}

func (c MotionConfig) Scale() domain.MotionScale {
	return domain.MotionScale{FullScaleMM: c.FullScaleMM, EncoderPerMM: c.EncoderPerMM}
}

func (c HostConfig) TickInterval() time.Duration {
	if c.TickRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(c.TickRate)
}

// Default returns the configuration used when no file or environment override exists.
func Default() Config {
	return Config{
		Serial: SerialConfig{
			Port:        "/dev/ttyUSB0",
			Baud:        115200,
			ReadTimeout: 100 * time.Millisecond,
		},
		Motion: MotionConfig{
			EncoderPerMM: 90.8,
			FullScaleMM:  5,
		},
		Session: SessionConfig{
			Duration:       4 * time.Second,
			Cooldown:       1500 * time.Millisecond,
			WatchdogSlack:  250 * time.Millisecond,
			Settle:         120 * time.Millisecond,
			PendingTimeout: 2 * time.Second,
		},
		Host: HostConfig{
			TickRate: 60,
		},
		Calibration: CalibrationConfig{
			Path:    filepath.Join(configDir, calibrationFile),
			Restore: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Profiles: domain.DefaultProfiles(),
		Modes:    domain.DefaultModes(),
	}
}

// SetDefaults registers every default with v. homeDir anchors the calibration path.
func SetDefaults(v *viper.Viper, homeDir string) {
	defaults := Default()

	v.SetDefault("serial.port", defaults.Serial.Port)
	v.SetDefault("serial.baud", defaults.Serial.Baud)
	v.SetDefault("serial.read_timeout", defaults.Serial.ReadTimeout)

	v.SetDefault("motion.encoder_per_mm", defaults.Motion.EncoderPerMM)
	v.SetDefault("motion.full_scale_mm", defaults.Motion.FullScaleMM)

	v.SetDefault("session.duration", defaults.Session.Duration)
	v.SetDefault("session.cooldown", defaults.Session.Cooldown)
	v.SetDefault("session.watchdog_slack", defaults.Session.WatchdogSlack)
	v.SetDefault("session.settle", defaults.Session.Settle)
	v.SetDefault("session.pending_timeout", defaults.Session.PendingTimeout)
	v.SetDefault("session.require_calibration", defaults.Session.RequireCalibration)

	v.SetDefault("host.tick_rate", defaults.Host.TickRate)

	v.SetDefault("calibration.path", filepath.Join(homeDir, defaults.Calibration.Path))
	v.SetDefault("calibration.restore", defaults.Calibration.Restore)

	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)

	for profile, params := range defaults.Profiles {
		prefix := "profiles." + string(profile) + "."
		v.SetDefault(prefix+"amplitude", params.Amplitude)
		v.SetDefault(prefix+"attack", params.Attack)
		v.SetDefault(prefix+"hold", params.Hold)
		v.SetDefault(prefix+"release", params.Release)
		v.SetDefault(prefix+"balance", formatWaypoints(params.Balance))
	}

	modes := make([]string, 0, len(defaults.Modes))
	for _, mode := range defaults.Modes {
		modes = append(modes, mode.Tag+"="+string(mode.Profile))
	}
	v.SetDefault("modes", modes)
}

// Load reads ~/.haptics/config.toml (or configFile when set), applies HS_*
// environment overrides and validates the result.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve home directory: %w", err)
	}

	SetDefaults(v, homeDir)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(filepath.Join(homeDir, configDir))
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg, err := FromViper(v)
	if err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// FromViper decodes an already-populated viper instance without validating it.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Serial: SerialConfig{
			Port:        v.GetString("serial.port"),
			Baud:        v.GetInt("serial.baud"),
			ReadTimeout: v.GetDuration("serial.read_timeout"),
		},
		Motion: MotionConfig{
			EncoderPerMM: v.GetFloat64("motion.encoder_per_mm"),
			FullScaleMM:  v.GetFloat64("motion.full_scale_mm"),
		},
		Session: SessionConfig{
			Duration:           v.GetDuration("session.duration"),
			Cooldown:           v.GetDuration("session.cooldown"),
			WatchdogSlack:      v.GetDuration("session.watchdog_slack"),
			Settle:             v.GetDuration("session.settle"),
			PendingTimeout:     v.GetDuration("session.pending_timeout"),
			RequireCalibration: v.GetBool("session.require_calibration"),
		},
		Host: HostConfig{
			TickRate: v.GetInt("host.tick_rate"),
		},
		Calibration: CalibrationConfig{
			Path:    v.GetString("calibration.path"),
			Restore: v.GetBool("calibration.restore"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Profiles: make(map[domain.IntensityProfile]domain.ProfileParams, 3),
	}

	for _, profile := range domain.AllProfiles() {
		prefix := "profiles." + string(profile) + "."
		balance, err := parseWaypoints(v.GetStringSlice(prefix + "balance"))
		if err != nil {
			return Config{}, fmt.Errorf("decode %sbalance: %w", prefix, err)
		}
		cfg.Profiles[profile] = domain.ProfileParams{
			Amplitude: v.GetFloat64(prefix + "amplitude"),
			Attack:    v.GetDuration(prefix + "attack"),
			Hold:      v.GetDuration(prefix + "hold"),
			Release:   v.GetDuration(prefix + "release"),
			Balance:   balance,
		}
	}

	modes, err := parseModes(v.GetStringSlice("modes"))
	if err != nil {
		return Config{}, fmt.Errorf("decode modes: %w", err)
	}
	cfg.Modes = modes

	return cfg, nil
}

// Waypoints are written as "<duration>=<value>", e.g. "1s=4".
func parseWaypoints(raw []string) ([]domain.Waypoint, error) {
	waypoints := make([]domain.Waypoint, 0, len(raw))
	for _, entry := range raw {
		at, value, ok := strings.Cut(strings.TrimSpace(entry), "=")
		if !ok {
			return nil, fmt.Errorf("invalid waypoint %q (want <duration>=<value>)", entry)
		}
		d, err := time.ParseDuration(strings.TrimSpace(at))
		if err != nil {
			return nil, fmt.Errorf("invalid waypoint time %q: %w", at, err)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid waypoint value %q: %w", value, err)
		}
		waypoints = append(waypoints, domain.Waypoint{At: d, Value: x})
	}

	return waypoints, nil
}

func formatWaypoints(waypoints []domain.Waypoint) []string {
	out := make([]string, 0, len(waypoints))
	for _, wp := range waypoints {
		out = append(out, wp.At.String()+"="+strconv.FormatFloat(wp.Value, 'f', -1, 64))
	}
	return out
}

func parseModes(raw []string) (domain.ModeTable, error) {
	modes := make(domain.ModeTable, 0, len(raw))
	for _, entry := range raw {
		tag, profile, ok := strings.Cut(strings.TrimSpace(entry), "=")
		if !ok {
			return nil, fmt.Errorf("invalid mode %q (want <tag>=<profile>)", entry)
		}
		parsed, err := domain.ParseIntensityProfile(profile)
		if err != nil {
			return nil, err
		}
		modes = append(modes, domain.AnimMode{Tag: strings.TrimSpace(tag), Profile: parsed})
	}

	return modes, nil
}
