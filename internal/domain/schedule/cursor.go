package schedule

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// DateLayout is the calendar date format used in queries and keys.
const DateLayout = "2006-01-02"

const bannerLayout = "Monday, Jan 2, 2006"

// Warmer fills caches for a date without presenting the result.
type Warmer interface {
	Warm(ctx context.Context, date string) error
}

// DateCursor holds the active calendar date in a fixed location. Shifts use
// local calendar arithmetic so the result never drifts across a UTC offset
// or a daylight-saving change.
type DateCursor struct {
	mu        sync.Mutex
	date      string
	loc       *time.Location
	now       func() time.Time
	warmer    Warmer
	listeners map[int]func(string)
	nextID    int
}

// NewDateCursor starts at initial, or today in loc when initial is not a
// valid date. A nil loc means time.Local.
func NewDateCursor(loc *time.Location, initial string) *DateCursor {
	if loc == nil {
		loc = time.Local
	}
	c := &DateCursor{
		loc:       loc,
		now:       time.Now,
		listeners: make(map[int]func(string)),
	}
	c.date = ParseDateOrToday(initial, loc, c.now)
	return c
}

// ParseDateOrToday returns value when it is a valid YYYY-MM-DD date and
// today's date in loc otherwise.
func ParseDateOrToday(value string, loc *time.Location, now func() time.Time) string {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	value = strings.TrimSpace(value)
	if t, err := time.ParseInLocation(DateLayout, value, loc); err == nil {
		return t.Format(DateLayout)
	}
	return now().In(loc).Format(DateLayout)
}

// Today returns the current date in the cursor's location.
func (c *DateCursor) Today() string {
	return c.now().In(c.loc).Format(DateLayout)
}

func (c *DateCursor) Date() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.date
}

func (c *DateCursor) Location() *time.Location {
	return c.loc
}

// Peek returns the date dir days away from the current one without moving.
func (c *DateCursor) Peek(dir int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return shiftDate(c.date, dir, c.loc)
}

// Shift moves the cursor by dir days and returns the new date.
func (c *DateCursor) Shift(dir int) string {
	c.mu.Lock()
	next := shiftDate(c.date, dir, c.loc)
	changed := next != c.date
	c.date = next
	listeners := c.snapshotListenersLocked()
	c.mu.Unlock()

	if changed {
		for _, fn := range listeners {
			fn(next)
		}
	}
	return next
}

// Set moves the cursor to date. An invalid date falls back to today and is
// reported through the error; the cursor still moves.
func (c *DateCursor) Set(date string) (string, error) {
	var err error
	if _, parseErr := time.ParseInLocation(DateLayout, strings.TrimSpace(date), c.loc); parseErr != nil {
		err = fmt.Errorf("invalid date %q: %w", date, parseErr)
	}
	next := ParseDateOrToday(date, c.loc, c.now)

	c.mu.Lock()
	changed := next != c.date
	c.date = next
	listeners := c.snapshotListenersLocked()
	c.mu.Unlock()

	if changed {
		for _, fn := range listeners {
			fn(next)
		}
	}
	return next, err
}

// Range returns the inclusive start and end dates of a window of windowDays
// beginning at the current date. windowDays below one is treated as one.
func (c *DateCursor) Range(windowDays int) (string, string) {
	start := c.Date()
	return start, WindowEnd(start, windowDays, c.loc)
}

// WindowEnd returns the last date of a window of windowDays starting at start.
func WindowEnd(start string, windowDays int, loc *time.Location) string {
	if windowDays < 1 {
		windowDays = 1
	}
	if loc == nil {
		loc = time.Local
	}
	return shiftDate(start, windowDays-1, loc)
}

// SetWarmer registers the collaborator used by Prefetch.
func (c *DateCursor) SetWarmer(w Warmer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warmer = w
}

// Prefetch warms the date dir days away. Errors are dropped.
func (c *DateCursor) Prefetch(ctx context.Context, dir int) {
	c.PrefetchJob(dir)(ctx)
}

// PrefetchJob fixes the date dir days away now and returns a job that warms
// it later, so a shift between scheduling and running does not move the
// target.
func (c *DateCursor) PrefetchJob(dir int) func(context.Context) {
	c.mu.Lock()
	w := c.warmer
	target := shiftDate(c.date, dir, c.loc)
	c.mu.Unlock()

	return func(ctx context.Context) {
		if w == nil {
			return
		}
		_ = w.Warm(ctx, target)
	}
}

// Subscribe registers fn for date changes and returns its cancel function.
func (c *DateCursor) Subscribe(fn func(date string)) func() {
	if fn == nil {
		return func() {}
	}
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Banner renders the heading for the current date, e.g.
// "Matches for Monday, Mar 11, 2024".
func (c *DateCursor) Banner() string {
	return Banner(c.Date(), c.loc)
}

func Banner(date string, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return "Matches"
	}
	return "Matches for " + t.Format(bannerLayout)
}

func (c *DateCursor) snapshotListenersLocked() []func(string) {
	out := make([]func(string), 0, len(c.listeners))
	for id := 0; id < c.nextID; id++ {
		if fn, ok := c.listeners[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func shiftDate(date string, dir int, loc *time.Location) string {
	t, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return date
	}
	y, m, d := t.Date()
	return time.Date(y, m, d+dir, 0, 0, 0, 0, loc).Format(DateLayout)
}
