package storage

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/Comcast/dtable/core"
)

// MemStorage keeps copies of table sources in memory.
type MemStorage struct {
	sync.RWMutex
	tables map[string][]byte
}

func NewMemStorage() *MemStorage {
	return &MemStorage{
		tables: make(map[string][]byte),
	}
}

func (s *MemStorage) Open(ctx context.Context) error {
	return nil
}

func (s *MemStorage) Close(ctx context.Context) error {
	return nil
}

func (s *MemStorage) PutTable(ctx context.Context, src *core.TableSource) error {
	if err := CheckName(src.Name); err != nil {
		return err
	}
	js, err := json.Marshal(src)
	if err != nil {
		return err
	}
	s.Lock()
	s.tables[src.Name] = js
	s.Unlock()
	return nil
}

func (s *MemStorage) GetTable(ctx context.Context, name string) (*core.TableSource, error) {
	s.RLock()
	js, have := s.tables[name]
	s.RUnlock()
	if !have {
		return nil, nil
	}
	var src core.TableSource
	if err := json.Unmarshal(js, &src); err != nil {
		return nil, err
	}
	return &src, nil
}

func (s *MemStorage) RemTable(ctx context.Context, name string) error {
	s.Lock()
	delete(s.tables, name)
	s.Unlock()
	return nil
}

func (s *MemStorage) ListTables(ctx context.Context) ([]string, error) {
	s.RLock()
	acc := make([]string, 0, len(s.tables))
	for name := range s.tables {
		acc = append(acc, name)
	}
	s.RUnlock()
	sort.Strings(acc)
	return acc, nil
}
