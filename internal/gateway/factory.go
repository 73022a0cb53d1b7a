package gateway

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/config"
	"github.com/mamadbah2/stockroom/internal/metrics"
	"github.com/mamadbah2/stockroom/internal/repository/mongodb"
	"github.com/mamadbah2/stockroom/internal/repository/sheets"
	"github.com/mamadbah2/stockroom/pkg/clients/supabase"
)

// Closer releases resources held by a backend.
type Closer func(ctx context.Context) error

func noopCloser(context.Context) error { return nil }

// FromConfig selects and builds the backend named in cfg.Sync.Backend. Missing
// settings do not fail construction: the backend reports them and every call
// returns models.ErrBackendUnavailable.
func FromConfig(ctx context.Context, cfg *config.Config, local LocalStore, reg *metrics.Registry, logger *zap.Logger) (*Gateway, Closer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		backend Backend
		closer  Closer = noopCloser
	)

	switch cfg.Sync.Backend {
	case config.BackendLocal:
		backend = NewLocalBackend(local, logger.Named("backend.local"))
	case config.BackendSheets:
		missing := missingSettings(map[string]string{
			"GOOGLE_SHEETS_CREDENTIALS_PATH": cfg.Sheets.CredentialsPath,
			"GOOGLE_SHEET_DATABASE_ID":       cfg.Sheets.SpreadsheetID,
		})
		var (
			repo    *sheets.GoogleSheetRepository
			initErr error
		)
		if len(missing) == 0 {
			repo, initErr = sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, logger.Named("repo.sheets"))
		}
		if repo != nil {
			backend = NewSheetsBackend(repo, missing, initErr, reg, logger.Named("backend.sheets"))
		} else {
			backend = NewSheetsBackend(nil, missing, initErr, reg, logger.Named("backend.sheets"))
		}
	case config.BackendSupabase:
		missing := missingSettings(map[string]string{
			"SUPABASE_URL":      cfg.Supabase.URL,
			"SUPABASE_ANON_KEY": cfg.Supabase.AnonKey,
			"SUPABASE_EMAIL":    cfg.Supabase.Email,
			"SUPABASE_PASSWORD": cfg.Supabase.Password,
		})
		backend = NewSupabaseBackend(supabase.NewClient(cfg.Supabase), missing, reg, logger.Named("backend.supabase"))
	case config.BackendMongo:
		missing := missingSettings(map[string]string{
			"MONGODB_URI":     cfg.MongoDB.URI,
			"MONGODB_DB_NAME": cfg.MongoDB.DBName,
			"MONGODB_USER_ID": cfg.MongoDB.UserID,
		})
		var (
			repo    *mongodb.MongoDBRepository
			initErr error
		)
		if len(missing) == 0 {
			repo, initErr = mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		}
		if repo != nil {
			closer = repo.Close
			backend = NewMongoBackend(repo, cfg.MongoDB.UserID, missing, initErr, reg, logger.Named("backend.mongo"))
		} else {
			backend = NewMongoBackend(nil, cfg.MongoDB.UserID, missing, initErr, reg, logger.Named("backend.mongo"))
		}
	default:
		return nil, nil, fmt.Errorf("unknown sync backend %q", cfg.Sync.Backend)
	}

	return New(backend, reg, logger.Named("gateway")), closer, nil
}

func missingSettings(settings map[string]string) []string {
	keys := make([]string, 0, len(settings))
	for key := range settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var missing []string
	for _, key := range keys {
		if settings[key] == "" {
			missing = append(missing, key)
		}
	}
	return missing
}
