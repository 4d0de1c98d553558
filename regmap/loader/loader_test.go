package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regkit/regmap/ast"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_TagsOriginAndSortsUnits(t *testing.T) {
	rtl := t.TempDir()
	overlay := t.TempDir()
	writeFile(t, rtl, "sub/uart.rd", "peripheral UART { base = 0x1000 }")
	writeFile(t, rtl, "aaa.rd", "peripheral SPI { base = 0x2000 }")
	writeFile(t, rtl, "ignored.txt", "not a description")
	writeFile(t, overlay, "fix.rd", "override UART.CTRL.width = 16")

	units, errs := Load(rtl, overlay)
	require.Empty(t, errs)
	require.Len(t, units, 3)

	// Base units come first, sorted by relative path; the overlay
	// unit follows with its own origin tag.
	assert.Equal(t, "aaa.rd", units[0].ID)
	assert.Equal(t, ast.OriginBase, units[0].Origin)
	assert.Equal(t, "sub/uart.rd", units[1].ID)
	assert.Equal(t, "fix.rd", units[2].ID)
	assert.Equal(t, ast.OriginOverlay, units[2].Origin)
}

func TestLoad_NoOverlayDirectory(t *testing.T) {
	rtl := t.TempDir()
	writeFile(t, rtl, "uart.rd", "peripheral UART { base = 0x1000 }")

	units, errs := Load(rtl, "")
	require.Empty(t, errs)
	require.Len(t, units, 1)
	assert.Equal(t, ast.OriginBase, units[0].Origin)
}

func TestLoad_MissingTreeIsIOError(t *testing.T) {
	units, errs := Load(filepath.Join(t.TempDir(), "nope"), "")
	assert.Empty(t, units)
	require.Len(t, errs, 1)
	var ioErr *IOError
	require.ErrorAs(t, errs[0], &ioErr)
}

func TestLoad_FileAsRootIsIOError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "file.rd", "x")

	_, errs := Load(filepath.Join(dir, "file.rd"), "")
	require.Len(t, errs, 1)
	var ioErr *IOError
	require.ErrorAs(t, errs[0], &ioErr)
}

func TestDecode_UTF8Passthrough(t *testing.T) {
	text, err := Decode([]byte("peripheral UART { base = 0x1000 }"))
	require.NoError(t, err)
	assert.Equal(t, "peripheral UART { base = 0x1000 }", text)
}

// TestDecode_UTF16BOM verifies that files saved as UTF-16 (common with
// vendor tooling on Windows) decode transparently.
func TestDecode_UTF16BOM(t *testing.T) {
	src := "reg X { offset = 0 }"
	raw := []byte{0xFF, 0xFE} // UTF-16LE BOM
	for _, r := range src {
		raw = append(raw, byte(r), 0x00)
	}

	text, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, src, text)
}

func TestDecode_UTF8BOMStripped(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("peripheral X { base = 0 }")...)
	text, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "peripheral X { base = 0 }", text)
}

func TestLoad_BinaryContentIsEncodingError(t *testing.T) {
	rtl := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(rtl, "bad.rd"),
		[]byte{0x00, 0x01, 0x02, 0xFF},
		0o644,
	))

	units, errs := Load(rtl, "")
	assert.Empty(t, units)
	require.Len(t, errs, 1)
	var encErr *EncodingError
	require.ErrorAs(t, errs[0], &encErr)
	assert.Equal(t, "bad.rd", encErr.Unit)
}

// TestLoad_CollectsAllDecodeFailures verifies one undecodable file does
// not stop sibling files from loading and every failure is reported.
func TestLoad_CollectsAllDecodeFailures(t *testing.T) {
	rtl := t.TempDir()
	writeFile(t, rtl, "good.rd", "peripheral UART { base = 0x1000 }")
	for _, name := range []string{"bad1.rd", "bad2.rd"} {
		require.NoError(t, os.WriteFile(
			filepath.Join(rtl, name), []byte{0x00, 0xFF}, 0o644))
	}

	units, errs := Load(rtl, "")
	require.Len(t, units, 1)
	assert.Equal(t, "good.rd", units[0].ID)

	require.Len(t, errs, 2)
	seen := map[string]bool{}
	for _, err := range errs {
		var encErr *EncodingError
		require.ErrorAs(t, err, &encErr)
		seen[encErr.Unit] = true
	}
	assert.True(t, seen["bad1.rd"])
	assert.True(t, seen["bad2.rd"])
}
