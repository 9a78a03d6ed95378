package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"roadmaptracker/backend/models"
)

const progressKeyPrefix = "progress:"

type BadgerStore struct {
	db     *badger.DB
	logger *zap.Logger
}

// OpenBadgerStore opens a badger database in dir. An empty dir opens an
// in-memory database.
func OpenBadgerStore(dir string, logger *zap.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return NewBadgerStore(db, logger), nil
}

func NewBadgerStore(db *badger.DB, logger *zap.Logger) *BadgerStore {
	return &BadgerStore{db: db, logger: logger}
}

func (s *BadgerStore) Load(ctx context.Context, userKey string) (*models.ProgressDocument, error) {
	if s.db.IsClosed() {
		return nil, ErrClosed
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(progressKeyPrefix + userKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get progress: %w", err)
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return models.NewProgressDocument(), nil
	}
	return decode(data, userKey, s.logger), nil
}

func (s *BadgerStore) Save(ctx context.Context, userKey string, doc *models.ProgressDocument) error {
	if s.db.IsClosed() {
		return ErrClosed
	}

	data, err := encode(doc)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(progressKeyPrefix+userKey), data); err != nil {
			return fmt.Errorf("set progress: %w", err)
		}
		return nil
	})
}

func (s *BadgerStore) Close() error {
	if s.db.IsClosed() {
		return nil
	}
	return s.db.Close()
}
