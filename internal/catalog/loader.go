package catalog

import (
	"context"

	"go.uber.org/zap"

	"akara-desktop/internal/domain"
)

// Fetcher reads the language catalog from the backend.
type Fetcher interface {
	Languages(ctx context.Context) (domain.LanguageCatalog, error)
}

// Loader resolves the catalog once per call, substituting the fallback table
// on any failure.
type Loader struct {
	fetcher Fetcher
	logger  *zap.Logger
}

// NewLoader creates a loader backed by fetcher.
func NewLoader(fetcher Fetcher, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{fetcher: fetcher, logger: logger}
}

// Load returns the backend catalog, or the fallback table if the fetch fails
// for any reason. The returned flag reports whether the fallback was used.
func (l *Loader) Load(ctx context.Context) (domain.LanguageCatalog, bool) {
	if l.fetcher == nil {
		return Fallback(), true
	}

	fetched, err := l.fetcher.Languages(ctx)
	if err != nil {
		l.logger.Warn("language catalog unavailable, using fallback table", zap.Error(err))
		return Fallback(), true
	}

	l.logger.Debug("language catalog loaded",
		zap.Int("source", len(fetched.Source)),
		zap.Int("target", len(fetched.Target)),
	)
	return fetched.Clone(), false
}
