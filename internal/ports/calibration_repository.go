package ports

import (
	"context"

	"github.com/bnema/haptic-handshake/internal/domain"
)

type CalibrationRepository interface {
	Load(ctx context.Context) (domain.CalibrationBaseline, error)
	Save(ctx context.Context, baseline domain.CalibrationBaseline) error
}
