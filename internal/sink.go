package internal

import (
	"fmt"
	"io"
	"path"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// NewConsoleSink returns a callback that prints walk events to out. It starts
// the stats timer; skipped directories and files go to the logger and are
// counted in stats.Errors.
func NewConsoleSink(out io.Writer, stats *AppStats) func(Event) {
	stats.Start()
	dirColor := color.New(color.FgCyan)
	timeColor := color.New(color.FgGreen)

	return func(ev Event) {
		switch ev.Kind {
		case EventDirEnter:
			dirColor.Fprintf(out, "Searching in '%s':\n", ev.Path)

		case EventFileScanned:
			name := ev.Name
			if ev.InnerPath != "" {
				name = path.Join(ev.Name, ev.InnerPath)
			}
			fmt.Fprintf(out, "%s | %d | %d lines | %dms\n", name, ev.Size, ev.Lines, ev.Elapsed.Milliseconds())

		case EventDirDone:
			fmt.Fprintln(out)
			timeColor.Fprintf(out, "Time elapsed: %sms\n", formatMillis(ev.Elapsed))
			fmt.Fprintln(out)

		case EventListingFailed:
			stats.Errors.Add(1)
			logrus.WithFields(logrus.Fields{"dir": ev.Path, "err": ev.Err}).Warn("Skipping directory")

		case EventFileSkipped:
			stats.Errors.Add(1)
			logrus.WithFields(logrus.Fields{"file": ev.Path, "err": ev.Err}).Warn("Skipping file")
		}
	}
}

// formatMillis renders d in fractional milliseconds without trailing zeros.
func formatMillis(d time.Duration) string {
	return fmt.Sprintf("%g", float64(d)/float64(time.Millisecond))
}
