package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"roadmaptracker/backend/models"
)

// FileStore keeps every user's document in one JSON object on disk, keyed by
// user key. Writes replace the file atomically; the mutex only serializes
// writers inside this process.
type FileStore struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

func NewFileStore(path string, logger *zap.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

func (s *FileStore) Load(ctx context.Context, userKey string) (*models.ProgressDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll()
	if errors.Is(err, errCorruptFile) {
		s.logger.Warn("progress file is not a JSON object, serving empty document",
			zap.String("path", s.path), zap.Error(err))
		return models.NewProgressDocument(), nil
	}
	if err != nil {
		return nil, err
	}
	raw, ok := all[userKey]
	if !ok {
		return models.NewProgressDocument(), nil
	}
	return decode(raw, userKey, s.logger), nil
}

func (s *FileStore) Save(ctx context.Context, userKey string, doc *models.ProgressDocument) error {
	data, err := encode(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll()
	if errors.Is(err, errCorruptFile) {
		if all, err = s.quarantine(err); err != nil {
			return err
		}
	}
	if err != nil {
		return err
	}
	all[userKey] = data

	out, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("marshal progress file: %w", err)
	}
	return s.writeAtomic(out)
}

func (s *FileStore) Close() error {
	return nil
}

var errCorruptFile = errors.New("progress file is not a JSON object")

// readAll returns an empty map when the file is missing, and errCorruptFile
// when it holds anything but a JSON object.
func (s *FileStore) readAll() (map[string]json.RawMessage, error) {
	all := make(map[string]json.RawMessage)
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return all, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read progress file: %w", err)
	}
	if len(data) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorruptFile, err)
	}
	return all, nil
}

// quarantine moves an unreadable progress file aside so the next write does
// not destroy whatever other users' data it still holds.
func (s *FileStore) quarantine(cause error) (map[string]json.RawMessage, error) {
	aside := fmt.Sprintf("%s.corrupt-%s", s.path, time.Now().UTC().Format("20060102T150405.000000000"))
	if err := os.Rename(s.path, aside); err != nil {
		return nil, fmt.Errorf("move corrupt progress file: %w", err)
	}
	s.logger.Error("moved corrupt progress file aside",
		zap.String("path", s.path), zap.String("moved_to", aside), zap.Error(cause))
	return make(map[string]json.RawMessage), nil
}

func (s *FileStore) writeAtomic(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create progress dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".progress-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace progress file: %w", err)
	}
	return nil
}
