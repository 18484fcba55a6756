// Package capture writes diagnostic page state at named checkpoints.
// Outputs are a side channel for the operator; nothing in the run
// depends on them, and a capture fault never affects the outcome.
package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/rs/zerolog"
)

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_\-.]+`)

// Source is whatever can render the current page state.
type Source interface {
	Screenshot(ctx context.Context, path string) error
	Content(ctx context.Context) (string, error)
}

type Recorder struct {
	shotDir string
	pageDir string
	src     Source
	logger  zerolog.Logger
	now     func() time.Time
}

func NewRecorder(src Source, shotDir, pageDir string, logger zerolog.Logger) *Recorder {
	return &Recorder{
		shotDir: shotDir,
		pageDir: pageDir,
		src:     src,
		logger:  logger,
		now:     time.Now,
	}
}

// Checkpoint saves a full-page screenshot named after the step.
func (r *Recorder) Checkpoint(ctx context.Context, name string) {
	path := r.target(r.shotDir, name, "png")
	if path == "" {
		return
	}
	if err := r.src.Screenshot(ctx, path); err != nil {
		r.logger.Warn().Err(err).Str("step", name).Msg("screenshot failed")
		return
	}
	r.logger.Debug().Str("path", path).Msg("saved screenshot")
}

// DumpHTML saves the raw page markup, used on failures where a
// screenshot alone does not show why a lookup missed.
func (r *Recorder) DumpHTML(ctx context.Context, name string) {
	path := r.target(r.pageDir, name, "html")
	if path == "" {
		return
	}
	html, err := r.src.Content(ctx)
	if err != nil {
		r.logger.Warn().Err(err).Str("step", name).Msg("page dump failed")
		return
	}
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		r.logger.Warn().Err(err).Str("step", name).Msg("page dump write failed")
		return
	}
	r.logger.Debug().Str("path", path).Msg("saved page html")
}

func (r *Recorder) target(dir, name, ext string) string {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		r.logger.Warn().Err(err).Str("dir", dir).Msg("capture dir")
		return ""
	}
	safe := unsafeName.ReplaceAllString(name, "_")
	return filepath.Join(dir, fmt.Sprintf("%d_%s.%s", r.now().Unix(), safe, ext))
}
