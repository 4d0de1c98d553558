// Package loader discovers register-description source files under the
// RTL tree and the overlay directory and decodes them to UTF-8 text.
//
// Each discovered file becomes one Unit, tagged with its origin (base
// vs overlay) and a stable identifier (slash-separated relative path)
// used for diagnostics and deterministic ordering. Units are returned
// sorted by identifier so every downstream stage sees the same order
// on every run. Like the later stages, loading batch-collects its
// failures: every unreadable or undecodable file in the tree is
// reported in one pass.
package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/joshuapare/regkit/regmap/ast"
)

// Ext is the register-description file extension.
const Ext = ".rd"

// Unit is one decoded source unit.
type Unit struct {
	// ID is the slash-separated path relative to the tree root.
	ID     string
	Origin ast.Origin
	Text   string
}

// IOError reports a missing or unreadable input path.
type IOError struct {
	Path string
	Op   string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// EncodingError reports source content that could not be decoded as
// text.
type EncodingError struct {
	Unit string
	Err  error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Unit, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// Load discovers and decodes all description files under the RTL tree
// and, when overlayDir is non-empty, the overlay directory. The RTL
// tree must exist; a missing overlay directory is an error too, since
// the caller asked for it explicitly. Per-file read and decode failures
// are collected across the whole walk, so one bad file does not hide
// its siblings' problems.
func Load(rtlDir, overlayDir string) ([]Unit, []error) {
	units, errs := LoadTree(rtlDir, ast.OriginBase)
	if overlayDir != "" {
		overlay, oerrs := LoadTree(overlayDir, ast.OriginOverlay)
		units = append(units, overlay...)
		errs = append(errs, oerrs...)
	}
	return units, errs
}

// LoadTree walks one directory tree and returns its decoded units in
// sorted ID order, plus every per-file failure encountered. A missing
// or non-directory root is terminal: no units, one error.
func LoadTree(root string, origin ast.Origin) ([]Unit, []error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, []error{&IOError{Path: root, Op: "stat", Err: err}}
	}
	if !info.IsDir() {
		return nil, []error{&IOError{Path: root, Op: "stat", Err: fmt.Errorf("not a directory")}}
	}

	var (
		units []Unit
		errs  []error
	)
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = append(errs, &IOError{Path: path, Op: "walk", Err: err})
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), Ext) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			errs = append(errs, &IOError{Path: path, Op: "rel", Err: err})
			return nil
		}
		id := filepath.ToSlash(rel)

		raw, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, &IOError{Path: path, Op: "read", Err: err})
			return nil
		}
		text, err := Decode(raw)
		if err != nil {
			errs = append(errs, &EncodingError{Unit: id, Err: err})
			return nil
		}
		units = append(units, Unit{ID: id, Origin: origin, Text: text})
		return nil
	})

	sort.Slice(units, func(i, j int) bool { return units[i].ID < units[j].ID })
	return units, errs
}

// Decode converts raw file bytes to UTF-8 text. Files are UTF-8 by
// default; a UTF-16 byte-order mark switches decoding accordingly,
// matching the editors hardware teams tend to produce files with.
func Decode(raw []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, raw)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(out) {
		return "", fmt.Errorf("content is not valid text")
	}
	if idx := indexNUL(out); idx >= 0 {
		return "", fmt.Errorf("content contains NUL byte at offset %d", idx)
	}
	return string(out), nil
}

func indexNUL(b []byte) int {
	for i, c := range b {
		if c == 0 {
			return i
		}
	}
	return -1
}
