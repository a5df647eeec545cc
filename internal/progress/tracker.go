// Package progress renders a terminal progress bar over the tables
// processed during a generation run.
package progress

import (
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Tracker tracks per-table generation progress.
type Tracker struct {
	bar     *progressbar.ProgressBar
	current atomic.Int64
}

// New creates a tracker for the given table count.
func New(total int) *Tracker {
	t := &Tracker{}
	t.bar = progressbar.NewOptions(
		total,
		progressbar.OptionSetDescription("Generating"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(50*time.Millisecond),
		progressbar.OptionSetItsString("tables"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
	)
	return t
}

// Step records one processed table.
func (t *Tracker) Step() {
	t.current.Add(1)
	if t.bar != nil {
		_ = t.bar.Add(1)
	}
}

// Current returns the number of tables processed so far.
func (t *Tracker) Current() int64 {
	return t.current.Load()
}

// Finish completes the bar.
func (t *Tracker) Finish() {
	if t.bar != nil {
		_ = t.bar.Finish()
	}
}
