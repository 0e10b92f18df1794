package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// waitForKey blocks until a key is pressed when in is an interactive
// terminal. Piped or redirected runs return immediately.
func waitForKey(in *os.File, out io.Writer) {
	fd := in.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return
	}
	fmt.Fprintln(out, "\nPress any key to exit!")

	state, err := term.MakeRaw(int(fd))
	if err == nil {
		defer term.Restore(int(fd), state)
	}
	var b [1]byte
	_, _ = in.Read(b[:])
}
