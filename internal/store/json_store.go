package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// JSONStore keeps every record in a single JSON object on disk.
type JSONStore struct {
	filePath string
	mu       sync.RWMutex
	records  map[string]json.RawMessage
}

func NewJSONStore(filePath string) (*JSONStore, error) {
	if filePath == "" {
		return nil, errors.New("json store: empty file path")
	}
	s := &JSONStore{
		filePath: filePath,
		records:  make(map[string]json.RawMessage),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *JSONStore) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Save stores data under key. data must be valid JSON; it is embedded
// verbatim in the file.
func (s *JSONStore) Save(ctx context.Context, key string, data []byte) error {
	if !json.Valid(data) {
		return errors.New("json store: value is not valid JSON")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.records[key]
	s.records[key] = append(json.RawMessage(nil), data...)
	if err := s.persistLocked(); err != nil {
		if had {
			s.records[key] = prev
		} else {
			delete(s.records, key)
		}
		return err
	}
	return nil
}

func (s *JSONStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.records[key]
	if !ok {
		return nil
	}
	delete(s.records, key)
	if err := s.persistLocked(); err != nil {
		s.records[key] = prev
		return err
	}
	return nil
}

func (s *JSONStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	var records map[string]json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}
	if records == nil {
		records = make(map[string]json.RawMessage)
	}
	s.records = records
	return nil
}

func (s *JSONStore) persistLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(s.records)
	if err != nil {
		return err
	}

	tmpPath := s.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpPath, s.filePath)
}
