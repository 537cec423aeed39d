package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bnema/haptic-handshake/internal/domain"
	"github.com/bnema/haptic-handshake/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	calibrationPathKey     = "calibration.path"
	defaultCalibrationDir  = ".haptics"
	defaultCalibrationFile = "calibration.toml"
	calibrationFileMode    = 0o600
	calibrationDirMode     = 0o700
	tempFilePattern        = ".calibration-*.toml.tmp"
)

// Repository persists the calibration baseline in a versioned TOML file.
type Repository struct {
	path string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.CalibrationRepository = (*Repository)(nil)

// NewRepository resolves the file location from the calibration.path key,
// falling back to ~/.haptics/calibration.toml.
func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		return nil, errors.New("calibration config is nil")
	}

	path := cfg.GetString(calibrationPathKey)
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(homeDir, defaultCalibrationDir, defaultCalibrationFile)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve calibration path: %w", err)
	}
	absPath = filepath.Clean(absPath)

	return &Repository{path: absPath, mu: lockForPath(absPath)}, nil
}

func (r *Repository) Path() string {
	return r.path
}

func (r *Repository) Load(ctx context.Context) (domain.CalibrationBaseline, error) {
	if err := ctx.Err(); err != nil {
		return domain.CalibrationBaseline{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.CalibrationBaseline{}, err
	}
	if file.Calibration == nil {
		return domain.CalibrationBaseline{}, domain.ErrCalibrationNotFound
	}

	return fromSchema(*file.Calibration), nil
}

func (r *Repository) Save(ctx context.Context, baseline domain.CalibrationBaseline) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !baseline.IsSet {
		return errors.New("refusing to persist an unset calibration baseline")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	encoded := toSchema(baseline)
	file.Calibration = &encoded

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read calibration file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode calibration file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.path), calibrationDirMode); err != nil {
		return fmt.Errorf("create calibration directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode calibration file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp calibration file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp calibration file: %w", err)
	}

	if err := tempFile.Chmod(calibrationFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp calibration file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp calibration file: %w", err)
	}

	if err := os.Rename(tempName, r.path); err != nil {
		return fmt.Errorf("replace calibration file: %w", err)
	}

	cleanup = false
	return nil
}

func toSchema(baseline domain.CalibrationBaseline) calibrationSchema {
	return calibrationSchema{
		LeftBase:   baseline.Base.Left,
		RightBase:  baseline.Base.Right,
		CapturedAt: formatTime(baseline.CapturedAt),
	}
}

func fromSchema(entry calibrationSchema) domain.CalibrationBaseline {
	return domain.CalibrationBaseline{
		Base:       domain.EncoderPair{Left: entry.LeftBase, Right: entry.RightBase},
		IsSet:      true,
		CapturedAt: parseTime(entry.CapturedAt),
	}
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339Nano)
}
