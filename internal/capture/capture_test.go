package capture_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hisui-dev/xmgame-autorenew/internal/capture"
)

type stubSource struct {
	html    string
	shotErr error
}

func (s *stubSource) Screenshot(ctx context.Context, path string) error {
	if s.shotErr != nil {
		return s.shotErr
	}
	return os.WriteFile(path, []byte("png"), 0o644)
}

func (s *stubSource) Content(ctx context.Context) (string, error) {
	return s.html, nil
}

func TestCheckpointSanitizesStepName(t *testing.T) {
	shotDir := t.TempDir()
	rec := capture.NewRecorder(&stubSource{}, shotDir, t.TempDir(), zerolog.Nop())

	rec.Checkpoint(context.Background(), "after click/確認 step!")

	entries, err := os.ReadDir(shotDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Regexp(t, regexp.MustCompile(`^\d+_[A-Za-z0-9_\-.]+\.png$`), entries[0].Name())
}

func TestDumpHTMLWritesPageContent(t *testing.T) {
	pageDir := t.TempDir()
	rec := capture.NewRecorder(&stubSource{html: "<html>確認</html>"}, t.TempDir(), pageDir, zerolog.Nop())

	rec.DumpHTML(context.Background(), "submit_failed")

	entries, err := os.ReadDir(pageDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	data, err := os.ReadFile(filepath.Join(pageDir, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, "<html>確認</html>", string(data))
}

func TestCaptureFaultsAreSwallowed(t *testing.T) {
	shotDir := t.TempDir()
	rec := capture.NewRecorder(&stubSource{shotErr: errors.New("page gone")}, shotDir, t.TempDir(), zerolog.Nop())

	// Must not panic or write anything.
	rec.Checkpoint(context.Background(), "boom")

	entries, err := os.ReadDir(shotDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
