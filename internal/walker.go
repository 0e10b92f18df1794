package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/sirupsen/logrus"

	"LineCounter/internal/scanner"
)

// Filesystem is the subset of billy.Filesystem the walker reads through.
// osfs.Default and memfs satisfy it.
type Filesystem interface {
	Stat(filename string) (os.FileInfo, error)
	ReadDir(path string) ([]os.FileInfo, error)
	Open(filename string) (billy.File, error)
	Join(elem ...string) string
}

// TreeWalker walks a directory tree with an explicit LIFO stack and counts
// the lines of every regular file it meets.
type TreeWalker struct {
	fs      Filesystem
	counter *scanner.Counter
	clock   Clock
	opts    WalkOptions
}

// NewTreeWalker creates a walker over fsys.
func NewTreeWalker(fsys Filesystem, opts WalkOptions) *TreeWalker {
	opts.Prepare()
	return &TreeWalker{
		fs:      fsys,
		counter: scanner.New(scanner.WithBufferSize(opts.BufferSize)),
		clock:   realClock{},
		opts:    opts,
	}
}

// WithClock replaces the clock used to time file scans.
func (w *TreeWalker) WithClock(c Clock) *TreeWalker {
	w.clock = c
	return w
}

// Walk counts lines below root and reports progress to onEvent.
//
// Directories that cannot be listed and files that vanish before they are
// opened are reported and skipped. Any other filesystem error stops the walk
// (unless KeepGoing is set) and is returned wrapped in ErrIOFailure along
// with the totals gathered so far.
func (w *TreeWalker) Walk(ctx context.Context, root string, onEvent func(Event)) (TraversalResult, error) {
	var res TraversalResult
	if onEvent == nil {
		onEvent = func(Event) {}
	}

	if st, err := w.fs.Stat(root); err != nil || !st.IsDir() {
		return res, fmt.Errorf("%w: the specified directory %q doesn't exist", ErrInvalidArgument, root)
	}

	dirs := make([]string, 0, 20)
	dirs = append(dirs, root)

	for len(dirs) > 0 {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		current := dirs[len(dirs)-1]
		dirs = dirs[:len(dirs)-1]

		res.Dirs++
		onEvent(Event{Kind: EventDirEnter, Path: current})

		subDirs, err := w.listDirs(current)
		if err != nil {
			if err := w.skipDir(current, err, &res, onEvent); err != nil {
				return res, err
			}
			continue
		}
		files, err := w.listFiles(current)
		if err != nil {
			if err := w.skipDir(current, err, &res, onEvent); err != nil {
				return res, err
			}
			continue
		}
		logrus.WithFields(logrus.Fields{"dir": current, "dirs": len(subDirs), "files": len(files)}).Debug("listed directory")

		var elapsed time.Duration
		for _, fi := range files {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			path := w.fs.Join(current, fi.Name())
			d, err := w.scanFile(ctx, path, fi, &res, onEvent)
			if err != nil {
				if err := w.skipFile(path, fi, err, &res, onEvent); err != nil {
					return res, err
				}
				continue
			}
			elapsed += d
		}
		onEvent(Event{Kind: EventDirDone, Path: current, Elapsed: elapsed})

		// Popped in reverse listing order.
		dirs = append(dirs, subDirs...)
	}
	return res, nil
}

func (w *TreeWalker) listDirs(dir string) ([]string, error) {
	entries, err := w.fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list directories of %q: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, w.fs.Join(dir, e.Name()))
		}
	}
	return out, nil
}

func (w *TreeWalker) listFiles(dir string) ([]os.FileInfo, error) {
	entries, err := w.fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list files of %q: %w", dir, err)
	}
	var out []os.FileInfo
	for _, e := range entries {
		if e.Mode().IsRegular() {
			out = append(out, e)
		}
	}
	return out, nil
}

// scanFile opens, counts and closes one file. The returned duration covers
// the open and the whole scan.
func (w *TreeWalker) scanFile(ctx context.Context, path string, fi os.FileInfo, res *TraversalResult, onEvent func(Event)) (time.Duration, error) {
	start := w.clock.Now()
	f, err := w.fs.Open(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return 0, fmt.Errorf("%w: open %q: %w", ErrFileVanished, path, err)
		}
		return 0, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	if w.opts.Archives && IsArchive(fi.Name()) {
		lines, n, err := w.scanArchive(ctx, path, fi, f, onEvent)
		switch {
		case err == nil:
			res.Files += n
			res.TotalLines += lines
			return w.clock.Now().Sub(start), nil
		case errors.Is(err, errNotArchive):
			logrus.WithFields(logrus.Fields{"file": path, "err": err}).Debug("not an archive, counting raw bytes")
			if _, err := f.Seek(0, io.SeekStart); err != nil {
				return 0, fmt.Errorf("rewind %q: %w", path, err)
			}
		default:
			return 0, err
		}
	}

	r, err := w.counter.Scan(f)
	if err != nil {
		return 0, fmt.Errorf("scan %q: %w", path, err)
	}
	elapsed := w.clock.Now().Sub(start)

	res.Files++
	res.TotalLines += r.Lines
	onEvent(Event{
		Kind:    EventFileScanned,
		Path:    path,
		Name:    fi.Name(),
		Size:    fi.Size(),
		Lines:   r.Lines,
		Ending:  r.Ending,
		Elapsed: elapsed,
	})
	return elapsed, nil
}

func (w *TreeWalker) skipDir(dir string, err error, res *TraversalResult, onEvent func(Event)) error {
	switch {
	case errors.Is(err, iofs.ErrPermission), errors.Is(err, iofs.ErrNotExist):
		err = fmt.Errorf("%w: %w", ErrListingFailure, err)
	case w.opts.KeepGoing:
		err = fmt.Errorf("%w: %w", ErrIOFailure, err)
	default:
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	res.SkippedDirs++
	onEvent(Event{Kind: EventListingFailed, Path: dir, Err: err})
	return nil
}

func (w *TreeWalker) skipFile(path string, fi os.FileInfo, err error, res *TraversalResult, onEvent func(Event)) error {
	switch {
	case errors.Is(err, ErrFileVanished):
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case w.opts.KeepGoing:
		err = fmt.Errorf("%w: %w", ErrIOFailure, err)
	default:
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	res.SkippedFiles++
	onEvent(Event{Kind: EventFileSkipped, Path: path, Name: fi.Name(), Size: fi.Size(), Err: err})
	return nil
}
