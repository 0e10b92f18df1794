package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LineCounter/internal/scanner"
)

func TestWalkOptions_Validate(t *testing.T) {
	o := WalkOptions{}
	require.Error(t, o.Validate(), "empty root")

	o.Root = "."
	o.BufferSize = -1
	require.Error(t, o.Validate(), "negative buffer size")

	o.BufferSize = 0
	o.LogLevel = "loud"
	require.Error(t, o.Validate(), "unknown log level")

	o.LogLevel = "warn"
	require.NoError(t, o.Validate())
}

func TestWalkOptions_Prepare(t *testing.T) {
	o := WalkOptions{Root: "."}
	o.Prepare()
	assert.Equal(t, scanner.DefaultBufferSize, o.BufferSize)
	assert.Equal(t, "info", o.LogLevel)

	o = WalkOptions{Root: ".", BufferSize: 16, LogLevel: "debug"}
	o.Prepare()
	assert.Equal(t, 16, o.BufferSize)
	assert.Equal(t, "debug", o.LogLevel)
}
