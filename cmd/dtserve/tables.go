package main

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Comcast/dtable/core"
	"github.com/Comcast/dtable/storage"
	"github.com/Comcast/dtable/tools"
	"github.com/Comcast/dtable/util"

	"github.com/fsnotify/fsnotify"
	"github.com/gorhill/cronexpr"
)

// TableInfo describes a loaded table.
type TableInfo struct {
	Name     string `json:"name"`
	Id       string `json:"id"`
	Doc      string `json:"doc,omitempty"`
	Mode     string `json:"mode"`
	Columns  int    `json:"columns"`
	Rows     int    `json:"rows"`
	Size     uint64 `json:"size"`
	Stored   bool   `json:"stored,omitempty"`
	Filename string `json:"filename,omitempty"`
}

type entry struct {
	info    TableInfo
	decider *core.Decider
}

// FileSystemTableProvider holds compiled tables read from a directory
// and from Storage.
//
// Tables in Storage take precedence over files with the same name.
type FileSystemTableProvider struct {
	sync.RWMutex

	Dir          string
	Store        storage.Storage
	Interpreters map[string]core.Interpreter

	// writing serializes ReadTables, Put, and Rem so that a reread
	// can't swap out a table that was Put after it listed Store.
	writing sync.Mutex

	tables map[string]*entry
}

func NewFileSystemTableProvider(dir string, store storage.Storage, interpreters map[string]core.Interpreter) *FileSystemTableProvider {
	if store == nil {
		store = storage.NewMemStorage()
	}
	return &FileSystemTableProvider{
		Dir:          dir,
		Store:        store,
		Interpreters: interpreters,
		tables:       make(map[string]*entry, 32),
	}
}

// Find returns the named table's Decider.
func (p *FileSystemTableProvider) Find(name string) (*core.Decider, error) {
	p.RLock()
	e, have := p.tables[name]
	p.RUnlock()

	if !have {
		return nil, &NotFound{Name: name}
	}
	return e.decider, nil
}

// Info returns the named table's info.
func (p *FileSystemTableProvider) Info(name string) (*TableInfo, error) {
	p.RLock()
	e, have := p.tables[name]
	p.RUnlock()

	if !have {
		return nil, &NotFound{Name: name}
	}
	info := e.info
	return &info, nil
}

// List returns info for all tables sorted by name.
func (p *FileSystemTableProvider) List() []TableInfo {
	p.RLock()
	acc := make([]TableInfo, 0, len(p.tables))
	for _, e := range p.tables {
		acc = append(acc, e.info)
	}
	p.RUnlock()

	sort.Slice(acc, func(i, j int) bool {
		return acc[i].Name < acc[j].Name
	})
	return acc
}

// compile compiles the source without letting a Raising source
// panic.
func (p *FileSystemTableProvider) compile(ctx context.Context, src *core.TableSource) (d *core.Decider, err error) {
	defer func() {
		if x := recover(); x != nil {
			err = fmt.Errorf("table %s: %v", src.Name, x)
		}
	}()
	return src.Compile(ctx, p.Interpreters)
}

func (p *FileSystemTableProvider) makeEntry(ctx context.Context, src *core.TableSource) (*entry, error) {
	if _, err := tools.SetTableId(src); err != nil {
		return nil, err
	}
	d, err := p.compile(ctx, src)
	if err != nil {
		return nil, err
	}
	t := d.Table
	return &entry{
		info: TableInfo{
			Name:    src.Name,
			Id:      src.Id,
			Doc:     src.Doc,
			Mode:    t.Mode().String(),
			Columns: len(t.Columns()),
			Rows:    t.Len(),
			Size:    t.Size(),
		},
		decider: d,
	}, nil
}

// ReadTables rereads the directory and Storage.
//
// Either every table is replaced or, on any error, none are.
func (p *FileSystemTableProvider) ReadTables(ctx context.Context) error {
	p.writing.Lock()
	defer p.writing.Unlock()

	tables := make(map[string]*entry, 32)

	if p.Dir != "" {
		files, err := ioutil.ReadDir(p.Dir)
		if os.IsNotExist(err) {
			util.Warnf("no tables directory %s", p.Dir)
		} else if err != nil {
			return err
		}
		for _, fi := range files {
			name := fi.Name()
			if !isTableFile(name) {
				continue
			}
			filename := filepath.Join(p.Dir, name)
			src, err := tools.ReadTableSource(filename)
			if err != nil {
				return err
			}
			e, err := p.makeEntry(ctx, src)
			if err != nil {
				return fmt.Errorf("%s: %w", filename, err)
			}
			e.info.Filename = name
			util.Logf("Read and compiled %s [%s]", src.Name, src.Id)
			tables[src.Name] = e
		}
	}

	names, err := p.Store.ListTables(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		src, err := p.Store.GetTable(ctx, name)
		if err != nil {
			return err
		}
		if src == nil {
			continue
		}
		e, err := p.makeEntry(ctx, src)
		if err != nil {
			return fmt.Errorf("stored %s: %w", name, err)
		}
		e.info.Stored = true
		tables[name] = e
	}

	p.Lock()
	p.tables = tables
	p.Unlock()

	log.Printf("Loaded %d tables", len(tables))

	return nil
}

// Put compiles, stores, and installs the source.
//
// Nothing is stored if the source doesn't compile.
func (p *FileSystemTableProvider) Put(ctx context.Context, src *core.TableSource) (*TableInfo, error) {
	if err := storage.CheckName(src.Name); err != nil {
		return nil, err
	}

	p.writing.Lock()
	defer p.writing.Unlock()

	e, err := p.makeEntry(ctx, src)
	if err != nil {
		return nil, err
	}
	if err = p.Store.PutTable(ctx, src); err != nil {
		return nil, err
	}
	e.info.Stored = true

	p.Lock()
	p.tables[src.Name] = e
	p.Unlock()

	info := e.info
	return &info, nil
}

// Rem removes a stored table.  Tables from files can't be removed
// (except by removing their files).
func (p *FileSystemTableProvider) Rem(ctx context.Context, name string) error {
	p.writing.Lock()
	defer p.writing.Unlock()

	p.Lock()
	defer p.Unlock()

	e, have := p.tables[name]
	if !have {
		return &NotFound{Name: name}
	}
	if !e.info.Stored {
		return fmt.Errorf("%w: %s", NotStored, name)
	}
	if err := p.Store.RemTable(ctx, name); err != nil {
		return err
	}
	delete(p.tables, name)
	return nil
}

// Reload calls ReadTables according to the cron expression until the
// context is done.  Errors are logged, and the previous tables stay
// in place.
func (p *FileSystemTableProvider) Reload(ctx context.Context, cronExpr string) error {
	expr, err := cronexpr.Parse(strings.TrimSpace(cronExpr))
	if err != nil {
		return err
	}

	go func() {
		for {
			next := expr.Next(time.Now())
			if next.IsZero() {
				log.Printf("Reload schedule %q has no next time", cronExpr)
				return
			}
			timer := time.NewTimer(time.Until(next))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				if err := p.ReadTables(ctx); err != nil {
					log.Printf("Reload error: %v", err)
				}
			}
		}
	}()

	return nil
}

// isTableFile reports whether ReadTables would read the file.
func isTableFile(name string) bool {
	switch filepath.Ext(name) {
	case ".yaml", ".yml", ".json", ".md":
		return true
	}
	return false
}

// Watch calls ReadTables whenever a table file in Dir changes until
// the context is done.  A burst of changes less than debounce apart
// causes one reread.
func (p *FileSystemTableProvider) Watch(ctx context.Context, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err = watcher.Add(p.Dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", p.Dir, err)
	}

	go func() {
		defer watcher.Close()

		var timer *time.Timer
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				if !isTableFile(event.Name) {
					continue
				}
				util.Logf("Watch saw %s", event)
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounce, func() {
					if err := p.ReadTables(ctx); err != nil {
						log.Printf("Watch reload error: %v", err)
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("Watcher error: %v", err)
			}
		}
	}()

	return nil
}

// NotStored occurs when removing a table that came from a file.
var NotStored = errors.New("table isn't stored")

// NotFound occurs when there's no table with the given name.
type NotFound struct {
	Name string
}

func (e *NotFound) Error() string {
	return fmt.Sprintf(`no table named "%s"`, e.Name)
}
