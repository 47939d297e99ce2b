// Package storage defines persistence for table sources.
package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/Comcast/dtable/core"
)

// BadName occurs when a table name is empty or contains a '/'.
var BadName = errors.New("bad table name")

// Storage is a persistence interface for TableSources.
type Storage interface {
	Open(ctx context.Context) error

	Close(ctx context.Context) error

	// PutTable writes (or replaces) the source under its Name.
	PutTable(ctx context.Context, src *core.TableSource) error

	// GetTable returns nil (and no error) if there is no such
	// table.
	GetTable(ctx context.Context, name string) (*core.TableSource, error)

	RemTable(ctx context.Context, name string) error

	// ListTables returns the names of stored tables in sorted
	// order.
	ListTables(ctx context.Context) ([]string, error)
}

// CheckName returns BadName for names that can't be stored.
func CheckName(name string) error {
	if name == "" || strings.Contains(name, "/") {
		return BadName
	}
	return nil
}
