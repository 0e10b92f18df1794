package internal

import (
	"errors"

	"LineCounter/internal/scanner"
)

var (
	// ErrInvalidArgument is returned for a root that is not an existing directory.
	ErrInvalidArgument = scanner.ErrInvalidArgument

	// ErrListingFailure marks a directory whose contents could not be listed.
	ErrListingFailure = errors.New("listing failure")

	// ErrFileVanished marks a file that disappeared between listing and open.
	ErrFileVanished = errors.New("file vanished")

	// ErrIOFailure wraps any other filesystem error hit during the walk.
	ErrIOFailure = errors.New("i/o failure")
)
