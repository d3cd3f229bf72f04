package internal

import (
	"github.com/robinovitch61/bw/internal/job"
	"time"
)

type Config struct {
	// Dir is the directory the job runs in and the root of what's watched
	Dir      string
	Job      job.Job
	Debounce time.Duration
	Wrap     bool
	Version  string
}
