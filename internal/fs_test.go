package internal

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsArchive(t *testing.T) {
	exts := []string{".zip", ".tar", ".gz", ".bz2", ".xz", ".rar", ".7z", ".zst", ".TGZ"}
	for _, e := range exts {
		assert.True(t, IsArchive("x"+e), e)
	}
	assert.False(t, IsArchive("file.txt"))
}

type zipEntry struct {
	name, body string
}

// storedZip builds an uncompressed zip so entry bodies appear verbatim.
func storedZip(t *testing.T, entries ...zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Store})
		require.NoError(t, err)
		_, err = io.WriteString(w, e.body)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func gzipped(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := io.WriteString(zw, body)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestWalk_ArchivesOnMemfs(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/r/a.txt.gz", gzipped(t, "1\n2\n3\n"), 0644))
	require.NoError(t, util.WriteFile(fs, "/r/b.zip", storedZip(t,
		zipEntry{"x.txt", "x\n"},
		zipEntry{"sub/y.txt", "y\ny"},
	), 0644))

	var rec recorder
	res, err := NewTreeWalker(fs, WalkOptions{Archives: true}).Walk(context.Background(), "/r", rec.on)
	require.NoError(t, err)

	assert.Equal(t, int64(3+1+2), res.TotalLines)
	assert.Equal(t, int64(3), res.Files)

	inner := map[string]int64{}
	for _, ev := range rec.of(EventFileScanned) {
		inner[ev.Name+":"+ev.InnerPath] = ev.Lines
	}
	assert.Equal(t, map[string]int64{
		"a.txt.gz:a.txt":  3,
		"b.zip:x.txt":     1,
		"b.zip:sub/y.txt": 2,
	}, inner)
}

func TestWalk_ArchiveFailingMidwayReportsNoEntries(t *testing.T) {
	data := storedZip(t,
		zipEntry{"ok.txt", "1\n2\n"},
		zipEntry{"bad.txt", "XXXXXXXX\nYYYY\n"},
	)
	// corrupt the second body so its checksum fails after the first entry was counted
	data = bytes.Replace(data, []byte("XXXXXXXX"), []byte("ZZZZZZZZ"), 1)

	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/r/broken.zip", data, 0644))
	require.NoError(t, util.WriteFile(fs, "/r/plain.txt", []byte("p\n"), 0644))

	t.Run("fatal", func(t *testing.T) {
		_, err := NewTreeWalker(fs, WalkOptions{Archives: true}).Walk(context.Background(), "/r", nil)
		require.ErrorIs(t, err, ErrIOFailure)
	})

	t.Run("keep-going", func(t *testing.T) {
		var rec recorder
		res, err := NewTreeWalker(fs, WalkOptions{Archives: true, KeepGoing: true}).Walk(context.Background(), "/r", rec.on)
		require.NoError(t, err)

		var reported int64
		for _, ev := range rec.of(EventFileScanned) {
			assert.Empty(t, ev.InnerPath, ev.Name)
			reported += ev.Lines
		}
		assert.Equal(t, res.TotalLines, reported)
		assert.Equal(t, int64(1), res.TotalLines)
		assert.Equal(t, int64(1), res.SkippedFiles)
		assert.Equal(t, []string{"/r/broken.zip"}, rec.paths(EventFileSkipped))
	})
}

func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(w, body)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func TestWalk_Archives(t *testing.T) {
	dir := t.TempDir()
	writeZip(t, filepath.Join(dir, "test.zip"), map[string]string{
		"a.txt":     "foo\nbar1\n",
		"dir/b.txt": "nope\nbar2\nlast",
	})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plain.txt"), []byte("1\n2\n"), 0644))

	t.Run("disabled counts raw bytes", func(t *testing.T) {
		var rec recorder
		_, err := NewTreeWalker(osfs.Default, WalkOptions{}).Walk(context.Background(), dir, rec.on)
		require.NoError(t, err)
		for _, ev := range rec.of(EventFileScanned) {
			assert.Empty(t, ev.InnerPath)
		}
		assert.Len(t, rec.of(EventFileScanned), 2)
	})

	t.Run("enabled counts entries", func(t *testing.T) {
		var rec recorder
		res, err := NewTreeWalker(osfs.Default, WalkOptions{Archives: true}).Walk(context.Background(), dir, rec.on)
		require.NoError(t, err)

		assert.Equal(t, int64(2+2+3), res.TotalLines)
		assert.Equal(t, int64(3), res.Files)

		inner := map[string]int64{}
		for _, ev := range rec.of(EventFileScanned) {
			if ev.InnerPath != "" {
				assert.Equal(t, "test.zip", ev.Name)
				inner[ev.InnerPath] = ev.Lines
			}
		}
		assert.Equal(t, map[string]int64{"a.txt": 2, "dir/b.txt": 3}, inner)
	})
}

func TestWalk_BrokenArchiveFallsBackToBytes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fake.zip"), []byte("hello\nworld"), 0644))

	var rec recorder
	res, err := NewTreeWalker(osfs.Default, WalkOptions{Archives: true}).Walk(context.Background(), dir, rec.on)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.TotalLines)

	scanned := rec.of(EventFileScanned)
	require.Len(t, scanned, 1)
	assert.Equal(t, "fake.zip", scanned[0].Name)
	assert.Empty(t, scanned[0].InnerPath)
}
