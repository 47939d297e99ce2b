package core

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

// fieldInterpreter treats an expression as the name of a message
// property, optionally negated with a leading '!'.
type fieldInterpreter struct {
	compiled int
}

func (i *fieldInterpreter) Compile(ctx context.Context, src string) (interface{}, error) {
	if strings.TrimSpace(src) == "" {
		return nil, errors.New("empty expression")
	}
	i.compiled++
	return strings.TrimSpace(src), nil
}

func (i *fieldInterpreter) Exec(ctx context.Context, msg Bindings, src string, compiled interface{}) (interface{}, error) {
	name := compiled.(string)
	negate := strings.HasPrefix(name, "!")
	name = strings.TrimPrefix(name, "!")
	v, have := msg[name]
	if !have {
		return nil, errors.New("no property " + name)
	}
	if negate {
		b, _ := truth(v)
		return !b, nil
	}
	return v, nil
}

func visibilitySource() *TableSource {
	return &TableSource{
		Name:     "visibility",
		Mode:     "generalized",
		Registry: visibilityRegistry(),
		Source:   visibilitySrc,
	}
}

func TestTableSourceCompile(t *testing.T) {
	ctx := context.Background()

	d, err := visibilitySource().Compile(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if d.Deriver != nil {
		t.Fatal("unexpected Deriver")
	}
	if d.Table.Name() != "visibility" || d.Table.Mode() != Generalized {
		t.Fatalf("table %s %s", d.Table.Name(), d.Table.Mode())
	}

	sym, err := d.Decide(ctx, Bindings{"status": "public", "allowed": false})
	if err != nil {
		t.Fatal(err)
	}
	if sym != "teaser" {
		t.Fatalf("got %s", sym)
	}
}

func TestTableSourceErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		description string
		modify      func(s *TableSource)
		check       func(error) bool
	}{
		{
			description: "bad mode",
			modify:      func(s *TableSource) { s.Mode = "fuzzy" },
			check: func(err error) bool {
				return err != nil && strings.Contains(err.Error(), "fuzzy")
			},
		},
		{
			description: "boolean mode rejects symbols",
			modify:      func(s *TableSource) { s.Mode = "" },
			check: func(err error) bool {
				var e *InvalidCellValue
				return errors.As(err, &e) && strings.HasPrefix(err.Error(), "table visibility: ")
			},
		},
		{
			description: "no registry",
			modify:      func(s *TableSource) { s.Registry = nil },
			check: func(err error) bool {
				var e *UnknownSymbol
				return errors.As(err, &e) && e.Token == "status"
			},
		},
		{
			description: "missing interpreter",
			modify: func(s *TableSource) {
				s.Interpreter = "cobol"
				s.Derive = map[string]string{"allowed": "ok"}
			},
			check: func(err error) bool {
				return errors.Is(err, InterpreterNotFound)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			s := visibilitySource()
			tc.modify(s)
			_, err := s.Compile(ctx, map[string]Interpreter{})
			if !tc.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
		})
	}
}

func TestRaising(t *testing.T) {
	ctx := context.Background()

	t.Run("compile", func(t *testing.T) {
		s := visibilitySource()
		s.Raising = true
		s.Mode = "boolean"
		defer func() {
			if recover() == nil {
				t.Fatal("didn't panic")
			}
		}()
		s.Compile(ctx, nil)
	})

	t.Run("decide", func(t *testing.T) {
		s := visibilitySource()
		s.Raising = true
		d, err := s.Compile(ctx, nil)
		if err != nil {
			t.Fatal(err)
		}
		if sym, err := d.Decide(ctx, Bindings{"status": "public", "allowed": true}); err != nil || sym != "show" {
			t.Fatalf("got %s %v", sym, err)
		}
		defer func() {
			r := recover()
			f, is := r.(*OutcomeFailure)
			if !is || f.Message != "Account closed" {
				t.Fatalf("panicked with %#v", r)
			}
		}()
		d.Decide(ctx, Bindings{"status": "closed", "allowed": false})
	})
}

func TestDerive(t *testing.T) {
	ctx := context.Background()
	i := &fieldInterpreter{}

	s := visibilitySource()
	s.Interpreter = "field"
	s.Derive = map[string]string{
		"status":  "visibility",
		"allowed": "!blocked",
	}

	d, err := s.Compile(ctx, map[string]Interpreter{"field": i})
	if err != nil {
		t.Fatal(err)
	}
	if i.compiled != 2 {
		t.Fatalf("compiled %d expressions", i.compiled)
	}
	if cols := d.Deriver.Columns(); len(cols) != 2 || cols[0] != "allowed" || cols[1] != "status" {
		t.Fatalf("columns %v", cols)
	}

	msg := Bindings{"visibility": "public", "blocked": true, "user": "homer"}
	sym, err := d.Decide(ctx, msg)
	if err != nil {
		t.Fatal(err)
	}
	if sym != "teaser" {
		t.Fatalf("got %s", sym)
	}
	if _, have := msg["status"]; have {
		t.Fatal("message was modified")
	}

	bs, err := d.Bindings(ctx, msg)
	if err != nil {
		t.Fatal(err)
	}
	if bs["user"] != "homer" || bs["allowed"] != false {
		t.Fatalf("bindings %#v", bs)
	}

	_, err = d.Decide(ctx, Bindings{"blocked": false})
	var de *DerivationError
	if !errors.As(err, &de) || de.Column != "status" {
		t.Fatalf("expected a DerivationError, got %v", err)
	}

	s.Derive["status"] = " "
	if _, err = s.Compile(ctx, map[string]Interpreter{"field": i}); err == nil {
		t.Fatal("should have failed to compile")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(" a ", "b").Declare("color", "red", "green")
	for _, tok := range []string{"a", "b", "color", "red", " green ", "true", "false"} {
		if _, ok := r.Resolve(tok); !ok {
			t.Fatalf("didn't resolve %q", tok)
		}
	}
	if _, ok := r.Resolve("blue"); ok {
		t.Fatal("resolved blue")
	}
	if enum := r.Enum("color"); len(enum) != 2 || enum[1] != "green" {
		t.Fatalf("enum %v", enum)
	}
	if r.Enum("a") != nil {
		t.Fatal("a has no enum")
	}
	if names := r.Names(); len(names) != 7 || names[0] != "a" {
		t.Fatalf("names %v", names)
	}
}

func TestBindings(t *testing.T) {
	type user struct {
		Name  string `json:"name"`
		Level int    `json:"level"`
	}
	bs := Bindings{
		"user":   user{"homer", 2},
		"admin":  true,
		"tags":   []string{"a"},
		"status": Symbol("public"),
	}

	c := bs.Copy()
	c["admin"] = false
	if bs["admin"] != true {
		t.Fatal("Copy shares the map")
	}

	canon, err := bs.Canonical()
	if err != nil {
		t.Fatal(err)
	}
	want := Bindings{
		"user":   map[string]interface{}{"name": "homer", "level": float64(2)},
		"admin":  true,
		"tags":   []interface{}{"a"},
		"status": "public",
	}
	if !reflect.DeepEqual(canon, want) {
		t.Fatalf("%#v", canon)
	}

	if canon, err = Bindings(nil).Canonical(); err != nil || canon == nil || len(canon) != 0 {
		t.Fatalf("%#v %v", canon, err)
	}

	if _, err = (Bindings{"f": func() {}}).Canonical(); err == nil {
		t.Fatal("expected an error")
	}
}
