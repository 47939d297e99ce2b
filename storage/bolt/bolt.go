// Package bolt is a storage.Storage backed by a bbolt file.
package bolt

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/Comcast/dtable/core"
	"github.com/Comcast/dtable/storage"

	bolt "go.etcd.io/bbolt"
)

// TablesBucket is the name of the bucket that holds table sources.
var TablesBucket = []byte("tables")

// NotOpen occurs when the Storage is used before Open.
var NotOpen = errors.New("storage not open")

func JS(x interface{}) string {
	js, err := json.Marshal(&x)
	if err != nil {
		panic(err)
	}
	return string(js)
}

type Storage struct {
	Debug    bool
	filename string
	db       *bolt.DB
}

func NewStorage(filename string) (*Storage, error) {
	return &Storage{
		filename: filename,
	}, nil
}

func (s *Storage) Open(ctx context.Context) error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(s.filename, 0644, opts)
	if err != nil {
		return err
	}
	s.db = db
	return db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(TablesBucket)
		return err
	})
}

func (s *Storage) Close(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Storage) logf(format string, args ...interface{}) {
	if s.Debug {
		log.Printf("BoltDB Storage."+format, args...)
	}
}

func (s *Storage) PutTable(ctx context.Context, src *core.TableSource) error {
	if s.db == nil {
		return NotOpen
	}
	if err := storage.CheckName(src.Name); err != nil {
		return err
	}
	s.logf("PutTable %s", src.Name)

	js, err := json.Marshal(src)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(TablesBucket).Put([]byte(src.Name), js)
	})
}

func (s *Storage) GetTable(ctx context.Context, name string) (*core.TableSource, error) {
	if s.db == nil {
		return nil, NotOpen
	}
	s.logf("GetTable %s", name)

	var src *core.TableSource
	err := s.db.View(func(tx *bolt.Tx) error {
		bs := tx.Bucket(TablesBucket).Get([]byte(name))
		if bs == nil {
			return nil
		}
		src = &core.TableSource{}
		return json.Unmarshal(bs, src)
	})
	if err != nil {
		return nil, err
	}

	if src != nil {
		s.logf("GetTable %s found %s", name, JS(src))
	}

	return src, nil
}

func (s *Storage) RemTable(ctx context.Context, name string) error {
	if s.db == nil {
		return NotOpen
	}
	s.logf("RemTable %s", name)
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(TablesBucket).Delete([]byte(name))
	})
}

func (s *Storage) ListTables(ctx context.Context) ([]string, error) {
	if s.db == nil {
		return nil, NotOpen
	}
	names := make([]string, 0, 32)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(TablesBucket).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			names = append(names, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logf("ListTables found %d tables", len(names))
	return names, nil
}
