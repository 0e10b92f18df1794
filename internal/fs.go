package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/mholt/archives"
	"github.com/sirupsen/logrus"
)

const maxArchiveFiles = 10000 // zip-bomb protection

// IsArchive by extension. O(1) map lookup
var archiveExt = map[string]struct{}{
	".zip": {}, ".tar": {}, ".gz": {}, ".bz2": {}, ".xz": {},
	".rar": {}, ".br": {}, ".lz4": {}, ".lz": {}, ".mz": {},
	".sz": {}, ".s2": {}, ".zz": {}, ".zst": {}, ".7z": {},
	".tgz": {},
}

var errNotArchive = errors.New("not an archive")

func IsArchive(path string) bool {
	_, ok := archiveExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// scanArchive counts every regular entry of the archive open as f. All
// reading goes through f, never through the OS path. Entry events are
// delivered only once the whole archive has been counted.
func (w *TreeWalker) scanArchive(ctx context.Context, archivePath string, fi os.FileInfo, f billy.File, onEvent func(Event)) (lines, files int64, err error) {
	format, _, err := archives.Identify(ctx, fi.Name(), f)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", errNotArchive, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, 0, fmt.Errorf("rewind %q: %w", archivePath, err)
	}

	var events []Event
	switch format := format.(type) {
	case archives.Extractor:
		events, err = w.extractEntries(ctx, archivePath, fi.Name(), format, f)
	case archives.Decompressor:
		var ev Event
		if ev, err = w.decompressEntry(archivePath, fi, format, f); err == nil {
			events = []Event{ev}
		}
	default:
		return 0, 0, fmt.Errorf("%w: %s", errNotArchive, format.Extension())
	}
	if err != nil {
		if len(events) == 0 && ctx.Err() == nil {
			// nothing readable inside: let the caller count raw bytes
			return 0, 0, fmt.Errorf("%w: %w", errNotArchive, err)
		}
		return 0, 0, err
	}

	for _, ev := range events {
		files++
		lines += ev.Lines
		onEvent(ev)
	}
	return lines, files, nil
}

func (w *TreeWalker) extractEntries(ctx context.Context, archivePath, name string, ex archives.Extractor, f billy.File) ([]Event, error) {
	var events []Event
	err := ex.Extract(ctx, f, func(ctx context.Context, entry archives.FileInfo) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !entry.Mode().IsRegular() {
			return nil
		}
		if len(events) >= maxArchiveFiles {
			logrus.Warnf("Archive %s truncated: too many files (>= %d)", archivePath, maxArchiveFiles)
			return iofs.SkipAll
		}

		inner := path.Clean(strings.TrimPrefix(entry.NameInArchive, "/"))
		start := w.clock.Now()
		ef, err := entry.Open()
		if err != nil {
			return fmt.Errorf("open %s in %q: %w", inner, archivePath, err)
		}
		r, err := w.counter.Scan(ef)
		ef.Close()
		if err != nil {
			return fmt.Errorf("scan %s in %q: %w", inner, archivePath, err)
		}

		events = append(events, Event{
			Kind:      EventFileScanned,
			Path:      archivePath,
			Name:      name,
			InnerPath: inner,
			Size:      entry.Size(),
			Lines:     r.Lines,
			Ending:    r.Ending,
			Elapsed:   w.clock.Now().Sub(start),
		})
		return nil
	})
	return events, err
}

// decompressEntry counts a single compressed file. The entry is named after
// the archive without its extension.
func (w *TreeWalker) decompressEntry(archivePath string, fi os.FileInfo, dec archives.Decompressor, f billy.File) (Event, error) {
	name := fi.Name()
	start := w.clock.Now()
	rc, err := dec.OpenReader(f)
	if err != nil {
		return Event{}, fmt.Errorf("decompress %q: %w", archivePath, err)
	}
	defer rc.Close()

	r, err := w.counter.Scan(rc)
	if err != nil {
		return Event{}, fmt.Errorf("scan %q: %w", archivePath, err)
	}
	return Event{
		Kind:      EventFileScanned,
		Path:      archivePath,
		Name:      name,
		InnerPath: strings.TrimSuffix(name, filepath.Ext(name)),
		Size:      fi.Size(),
		Lines:     r.Lines,
		Ending:    r.Ending,
		Elapsed:   w.clock.Now().Sub(start),
	}, nil
}
