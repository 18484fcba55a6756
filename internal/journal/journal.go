// Package journal keeps the append-only record of successful renewals
// and gates runs that would come too soon after the previous one.
//
// The record file is the single source of truth for the last success
// time. It is written by one process at a time; concurrent invocations
// are expected to be serialized by the scheduler that starts the bot.
package journal

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	statusToken = "成功"
	timeLayout  = "2006-01-02 15:04:05"
)

type Journal struct {
	path   string
	zone   string
	logger zerolog.Logger

	now func() time.Time
}

func New(path, zone string, logger zerolog.Logger) *Journal {
	return &Journal{path: path, zone: zone, logger: logger, now: time.Now}
}

// RecordSuccess appends one line: "<timestamp> <zone-label> 成功".
// Existing lines are never touched.
func (j *Journal) RecordSuccess() error {
	loc, label := j.location()
	line := fmt.Sprintf("%s %s %s\n", j.now().In(loc).Format(timeLayout), label, statusToken)
	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open record: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	j.logger.Info().Str("line", strings.TrimSpace(line)).Str("path", j.path).Msg("recorded success")
	return nil
}

// LastSuccess parses the newest record line. A missing file or an
// unparseable tail means no known prior success.
func (j *Journal) LastSuccess() (time.Time, bool) {
	data, err := os.ReadFile(j.path)
	if err != nil {
		return time.Time{}, false
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		loc, err := time.LoadLocation(fields[2])
		if err != nil {
			loc = time.UTC
		}
		ts, err := time.ParseInLocation(timeLayout, fields[0]+" "+fields[1], loc)
		if err != nil {
			continue
		}
		return ts, true
	}
	return time.Time{}, false
}

// ShouldSkip reports whether the run falls inside the minimum interval
// since the last success. Force bypasses the gate entirely.
func (j *Journal) ShouldSkip(minInterval time.Duration, force bool) (time.Time, bool) {
	if force {
		return time.Time{}, false
	}
	last, ok := j.LastSuccess()
	if !ok {
		return time.Time{}, false
	}
	if j.now().Sub(last) < minInterval {
		return last, true
	}
	return last, false
}

func (j *Journal) location() (*time.Location, string) {
	loc, err := time.LoadLocation(j.zone)
	if err != nil || loc == nil {
		return time.UTC, "UTC"
	}
	return loc, j.zone
}
