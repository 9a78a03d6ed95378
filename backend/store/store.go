// Package store persists per-user progress documents outside the relational
// database.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"roadmaptracker/backend/config"
	"roadmaptracker/backend/models"
)

var ErrClosed = errors.New("progress store closed")

// ProgressStore loads and saves one document per user key. Load never fails
// on a missing or unreadable document; it returns an empty one instead.
type ProgressStore interface {
	Load(ctx context.Context, userKey string) (*models.ProgressDocument, error)
	Save(ctx context.Context, userKey string, doc *models.ProgressDocument) error
	Close() error
}

// Open builds the backend selected by cfg.ProgressBackend.
func Open(cfg *config.Config, logger *zap.Logger) (ProgressStore, error) {
	switch cfg.ProgressBackend {
	case "badger":
		return OpenBadgerStore(cfg.ProgressPath, logger)
	case "file":
		return NewFileStore(cfg.ProgressPath, logger), nil
	case "redis":
		return NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger), nil
	default:
		return nil, fmt.Errorf("unknown progress backend %q", cfg.ProgressBackend)
	}
}

func encode(doc *models.ProgressDocument) ([]byte, error) {
	if doc == nil {
		doc = models.NewProgressDocument()
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal progress: %w", err)
	}
	return data, nil
}

// decode falls back to an empty document on malformed input.
func decode(data []byte, userKey string, logger *zap.Logger) *models.ProgressDocument {
	doc := models.NewProgressDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		logger.Warn("discarding malformed progress document",
			zap.String("user_key", userKey), zap.Error(err))
		return models.NewProgressDocument()
	}
	doc.Normalize()
	return doc
}
