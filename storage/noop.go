package storage

import (
	"context"

	"github.com/Comcast/dtable/core"
)

// NoopStorage stores nothing.
type NoopStorage struct {
}

func (s *NoopStorage) Open(ctx context.Context) error {
	return nil
}

func (s *NoopStorage) Close(ctx context.Context) error {
	return nil
}

func (s *NoopStorage) PutTable(ctx context.Context, src *core.TableSource) error {
	return CheckName(src.Name)
}

func (s *NoopStorage) GetTable(ctx context.Context, name string) (*core.TableSource, error) {
	return nil, nil
}

func (s *NoopStorage) RemTable(ctx context.Context, name string) error {
	return nil
}

func (s *NoopStorage) ListTables(ctx context.Context) ([]string, error) {
	return nil, nil
}
