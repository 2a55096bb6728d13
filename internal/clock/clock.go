// Package clock drives simulation time. A Clock counts ticks, and in calendar
// mode also maps each tick onto a real period (day, month or year) between a
// configured start and end.
package clock

import (
	"fmt"
	"strings"
	"time"
)

// Freq is the calendar unit one tick advances by.
type Freq int

const (
	FreqTick Freq = iota // plain counter, no calendar
	FreqDay
	FreqMonth
	FreqYear
)

func (f Freq) String() string {
	switch f {
	case FreqTick:
		return "tick"
	case FreqDay:
		return "day"
	case FreqMonth:
		return "month"
	case FreqYear:
		return "year"
	}
	return fmt.Sprintf("Freq(%d)", int(f))
}

// ParseFreq accepts both the long names and the single-letter forms common in
// model configs.
func ParseFreq(s string) (Freq, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "tick":
		return FreqTick, nil
	case "d", "day":
		return FreqDay, nil
	case "m", "month":
		return FreqMonth, nil
	case "y", "year":
		return FreqYear, nil
	}
	return 0, fmt.Errorf("parse freq %q: want tick, day, month or year", s)
}

const (
	defaultStart = "2000-01-01"
	defaultEnd   = "2023-01-01"
	dateLayout   = "2006-01-02"
)

// Config is the [time] table of a model config file.
type Config struct {
	Start string `toml:"start"`
	End   string `toml:"end"`
	Freq  string `toml:"freq"`
}

// Clock is the time driver. Not safe for concurrent use; the simulation loop
// owns it.
type Clock struct {
	freq    Freq
	start   time.Time
	end     time.Time
	current time.Time
	tick    int
}

// New builds a clock from config. Empty fields fall back to the defaults; in
// tick mode the start and end dates are ignored.
func New(cfg Config) (*Clock, error) {
	freq, err := ParseFreq(cfg.Freq)
	if err != nil {
		return nil, err
	}
	c := &Clock{freq: freq}
	if freq == FreqTick {
		return c, nil
	}
	c.start, err = parseDate(cfg.Start, defaultStart)
	if err != nil {
		return nil, fmt.Errorf("time.start: %w", err)
	}
	c.end, err = parseDate(cfg.End, defaultEnd)
	if err != nil {
		return nil, fmt.Errorf("time.end: %w", err)
	}
	if !c.end.After(c.start) {
		return nil, fmt.Errorf("time: end %s is not after start %s",
			c.end.Format(dateLayout), c.start.Format(dateLayout))
	}
	c.current = c.start
	return c, nil
}

func parseDate(s, fallback string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		s = fallback
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func (c *Clock) Freq() Freq { return c.freq }

// Tick is the number of completed steps.
func (c *Clock) Tick() int { return c.tick }

// Time is the current period's start. Zero in tick mode.
func (c *Clock) Time() time.Time { return c.current }

func (c *Clock) Year() int {
	return c.current.Year()
}

func (c *Clock) Month() time.Month {
	return c.current.Month()
}

func (c *Clock) Day() int {
	return c.current.Day()
}

// Expired reports whether the calendar has run past its end date. A tick-mode
// clock never expires; whoever runs the loop bounds it by step count.
func (c *Clock) Expired() bool {
	if c.freq == FreqTick {
		return false
	}
	return c.current.After(c.end) || c.current.Equal(c.end)
}

// Advance moves the clock forward the given number of ticks.
func (c *Clock) Advance(steps int) {
	if steps <= 0 {
		return
	}
	c.tick += steps
	switch c.freq {
	case FreqTick:
	case FreqDay:
		c.current = c.current.AddDate(0, 0, steps)
	case FreqMonth:
		c.current = c.current.AddDate(0, steps, 0)
	case FreqYear:
		c.current = c.current.AddDate(steps, 0, 0)
	}
}

func (c *Clock) String() string {
	if c.freq == FreqTick {
		return fmt.Sprintf("<tick %d>", c.tick)
	}
	return fmt.Sprintf("<tick %d, %s>", c.tick, c.current.Format(dateLayout))
}
