package tools

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/Comcast/dtable/core"
	"github.com/Comcast/dtable/grid"

	"github.com/jsccast/yaml"
)

// ReadTableSource reads a TableSource from a file.
//
// A ".md" file is just the table text, and its Registry is learned
// from the text (see LearnRegistry).  Anything else is parsed as
// YAML (and therefore JSON).  When the source has no name, the file's
// base name (without its extension) is used.
func ReadTableSource(filename string) (*core.TableSource, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	base := filepath.Base(filename)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)

	if ext == ".md" {
		r, err := LearnRegistry(string(bs))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		return &core.TableSource{
			Name:     name,
			Registry: r,
			Source:   string(bs),
		}, nil
	}

	s, err := ParseTableSource(bs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if s.Name == "" {
		s.Name = name
	}
	return s, nil
}

// ParseTableSource parses YAML (or JSON) into a TableSource.
func ParseTableSource(bs []byte) (*core.TableSource, error) {
	var s core.TableSource
	if err := yaml.Unmarshal(bs, &s); err != nil {
		return nil, err
	}
	if strings.TrimSpace(s.Source) == "" {
		return nil, fmt.Errorf("table source has no table text")
	}
	return &s, nil
}

// LearnRegistry makes a Registry that resolves every header and body
// cell in the table text.  Failure outcome cells are skipped.
//
// A learned Registry can't catch misspelled symbols, so it's only
// for tables that don't come with their own Registry.
func LearnRegistry(text string) (*core.Registry, error) {
	g, err := grid.Markdown.Parse(text)
	if err != nil {
		return nil, err
	}
	var (
		seen  = make(map[string]bool)
		r     = core.NewRegistry()
		empty = core.NewRegistry()
	)
	add := func(cell string) {
		cell = strings.TrimSpace(cell)
		if cell == "" || seen[cell] {
			return
		}
		seen[cell] = true
		r.Add(cell)
	}
	for _, h := range g.Header {
		add(h)
	}
	for _, row := range g.Rows {
		for i, cell := range row {
			if i == len(row)-1 {
				if o, err := core.ParseOutcome(cell, empty); err == nil && o.Failed {
					continue
				}
			}
			add(cell)
		}
	}
	return r, nil
}

// Hash computes the Base64-encoded SHA256 hash of the given data.
func Hash(data []byte) string {
	h := sha256.New()
	h.Write(data)
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// SetTableId generates and sets the Id of the TableSource based on
// its JSON representation (without any previous Id).
func SetTableId(s *core.TableSource) (string, error) {
	s.Id = ""
	js, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	id := Hash(js)
	s.Id = id
	return id, nil
}
