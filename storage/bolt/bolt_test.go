package bolt

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Comcast/dtable/core"
	"github.com/Comcast/dtable/storage"
)

func TestImpl(t *testing.T) {
	// Just confirm that this code compiles.
	var _ storage.Storage = &Storage{}
}

func TestBasics(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "storage.db")

	s, err := NewStorage(filename)
	if err != nil {
		t.Fatal(err)
	}
	s.Debug = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.PutTable(ctx, &core.TableSource{Name: "early"}); err != NotOpen {
		t.Fatalf("expected NotOpen, got %v", err)
	}

	if err := s.Open(ctx); err != nil {
		t.Fatal(err)
	}

	defer func() {
		if err := s.Close(ctx); err != nil {
			t.Fatal(err)
		}
	}()

	src := &core.TableSource{
		Name:     "visibility",
		Mode:     "generalized",
		Registry: core.NewRegistry("status", "public", "show").Declare("status", "public"),
		Derive:   map[string]string{"status": `_.msg.status`},
		Source:   "| status |   |\n|---|---|\n| public | show |\n",
	}

	if err := s.PutTable(ctx, src); err != nil {
		t.Fatal(err)
	}
	if err := s.PutTable(ctx, &core.TableSource{Name: "other", Source: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := s.PutTable(ctx, &core.TableSource{Name: ""}); err != storage.BadName {
		t.Fatalf("expected BadName, got %v", err)
	}

	got, err := s.GetTable(ctx, "visibility")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("didn't find the table")
	}
	if got.Source != src.Source || got.Mode != src.Mode || !reflect.DeepEqual(got.Derive, src.Derive) {
		t.Fatalf("got %s", JS(got))
	}
	if !reflect.DeepEqual(got.Registry.Enums, src.Registry.Enums) {
		t.Fatalf("enums %v", got.Registry.Enums)
	}

	// The stored source still compiles.
	got.Derive = nil
	d, err := got.Compile(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if sym := d.Table.MustEvaluate(core.Bindings{"status": "public"}); sym != "show" {
		t.Fatalf("got %s", sym)
	}

	names, err := s.ListTables(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(names, []string{"other", "visibility"}) {
		t.Fatalf("names %v", names)
	}

	if err := s.RemTable(ctx, "other"); err != nil {
		t.Fatal(err)
	}
	if got, err = s.GetTable(ctx, "other"); err != nil || got != nil {
		t.Fatalf("%v %v", got, err)
	}
}
