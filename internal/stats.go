package internal

import (
	"sync/atomic"
	"time"
)

// AppStats times a run and counts the directories and files it had to skip.
type AppStats struct {
	start  time.Time
	Errors atomic.Int64
}

func (s *AppStats) Start() {
	s.start = time.Now()
}

func (s *AppStats) Elapsed() time.Duration {
	return time.Since(s.start)
}
