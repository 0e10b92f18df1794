package internal

import (
	"time"

	"LineCounter/internal/scanner"
)

// EventKind tells what an Event reports.
type EventKind int

const (
	// EventDirEnter is sent when a directory is popped off the work stack.
	EventDirEnter EventKind = iota
	// EventFileScanned carries the result of one file (or archive entry).
	EventFileScanned
	// EventDirDone carries the summed scan time of a directory's files.
	EventDirDone
	// EventListingFailed is sent when a directory is skipped.
	EventListingFailed
	// EventFileSkipped is sent when a single file is skipped.
	EventFileSkipped
)

func (k EventKind) String() string {
	switch k {
	case EventDirEnter:
		return "dir-enter"
	case EventFileScanned:
		return "file-scanned"
	case EventDirDone:
		return "dir-done"
	case EventListingFailed:
		return "listing-failed"
	case EventFileSkipped:
		return "file-skipped"
	default:
		return "unknown"
	}
}

// Event is reported to the walk callback.
type Event struct {
	Kind      EventKind
	Path      string // directory path, or full file path
	Name      string // file base name
	InnerPath string // entry path inside an archive
	Size      int64
	Lines     int64
	Ending    scanner.Ending
	Elapsed   time.Duration
	Err       error
}

// TraversalResult is what a finished (or aborted) walk produced.
type TraversalResult struct {
	TotalLines   int64
	Dirs         int64
	Files        int64
	SkippedDirs  int64
	SkippedFiles int64
}
