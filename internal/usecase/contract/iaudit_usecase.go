package usecasecontract

import (
	"context"

	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
)

// AuditOptions controls an integrity sweep.
type AuditOptions struct {
	DryRun    bool
	BatchSize int
}

// IIntegrityAuditor repairs post to media references out of band.
type IIntegrityAuditor interface {
	Run(ctx context.Context, opts AuditOptions) (*entity.AuditReport, error)
	PurgeCategory(ctx context.Context, category entity.MediaCategory, dryRun bool) (*entity.PurgeReport, error)
	Stats(ctx context.Context) (*entity.StoreStats, error)
}
