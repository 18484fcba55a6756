package wizard_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hisui-dev/xmgame-autorenew/internal/browsertest"
	"github.com/hisui-dev/xmgame-autorenew/internal/capture"
	"github.com/hisui-dev/xmgame-autorenew/internal/config"
	"github.com/hisui-dev/xmgame-autorenew/internal/locate"
	"github.com/hisui-dev/xmgame-autorenew/internal/wizard"
)

const indexURL = "https://panel.example/index"

func baseConfig() config.Config {
	return config.Config{
		IndexURL:      indexURL,
		RenewHours:    72,
		NavTimeout:    time.Second,
		ActionTimeout: 100 * time.Millisecond,
	}
}

type harness struct {
	ctrl    *browsertest.Controller
	driver  *wizard.Driver
	pageDir string
}

func newHarness(t *testing.T, cfg config.Config) *harness {
	t.Helper()
	ctrl := browsertest.NewController()
	pageDir := t.TempDir()
	rec := capture.NewRecorder(ctrl, t.TempDir(), pageDir, zerolog.Nop())
	chain := locate.NewChain(cfg.ActionTimeout, zerolog.Nop())
	return &harness{
		ctrl:    ctrl,
		driver:  wizard.NewDriver(ctrl, chain, cfg, rec, zerolog.Nop()),
		pageDir: pageDir,
	}
}

// buildHappyPath wires index -> management -> extend surface -> confirm
// -> completion, every control under its first-priority label.
func buildHappyPath(ctrl *browsertest.Controller) (duration *browsertest.Element, boxes []*browsertest.Element) {
	done := browsertest.NewDoc("延長手続きが完了しました")

	confirm := browsertest.NewDoc("お申し込み内容の確認")
	final := confirm.Add("role:button:期限を延長する")
	final.OnClick = func() { ctrl.Current = done }

	surface := browsertest.NewDoc("アップグレード・期限延長")
	surface.Add("role:button:期限を延長する")
	duration = surface.Add("label:+72時間延長")
	boxes = []*browsertest.Element{{Present: true}, {Present: true}}
	surface.Elems[`input[type="checkbox"]`] = boxes
	toConfirm := surface.Add("role:button:確認画面に進む")
	toConfirm.OnClick = func() { ctrl.Current = confirm }

	manage := browsertest.NewDoc("ゲーム管理画面")
	open := manage.Add("role:button:アップグレード・期限延長")
	open.OnClick = func() { ctrl.Current = surface }

	index := browsertest.NewDoc("サーバー一覧")
	entry := index.Add(`css:button:has-text("ゲーム管理")`)
	entry.OnClick = func() { ctrl.Current = manage }
	ctrl.Pages[indexURL] = index

	return duration, boxes
}

func TestRunHappyPath(t *testing.T) {
	h := newHarness(t, baseConfig())
	duration, boxes := buildHappyPath(h.ctrl)

	require.NoError(t, h.driver.Run(context.Background()))

	assert.Equal(t, []string{indexURL}, h.ctrl.Nav)
	assert.Equal(t, 1, duration.Clicked)
	for _, box := range boxes {
		assert.True(t, box.Checked(), "agreement checkbox checked")
	}
	assert.NotEmpty(t, h.ctrl.ShotPaths, "checkpoints captured")
}

func TestRunPrefersTargetRow(t *testing.T) {
	cfg := baseConfig()
	cfg.TargetGame = "waters"
	h := newHarness(t, cfg)

	manage := browsertest.NewDoc("ゲーム管理画面")

	index := browsertest.NewDoc("サーバー一覧")
	other := browsertest.NewScope("lobby-01 稼働中")
	otherBtn := other.Add(`css:button:has-text("ゲーム管理")`)
	target := browsertest.NewScope("waters 稼働中")
	targetBtn := target.Add(`css:button:has-text("ゲーム管理")`)
	targetBtn.OnClick = func() { h.ctrl.Current = manage }
	index.Rows["tbody tr"] = []*browsertest.Scope{other, target}
	h.ctrl.Pages[indexURL] = index

	// The management page is empty, so the run stops at the surface
	// step; row selection is what this test pins down.
	err := h.driver.Run(context.Background())
	require.ErrorIs(t, err, wizard.ErrSurfaceNotFound)
	assert.Equal(t, 1, targetBtn.Clicked)
	assert.Zero(t, otherBtn.Clicked)
}

func TestRunScansRowsWhenNoDirectAction(t *testing.T) {
	h := newHarness(t, baseConfig())

	manage := browsertest.NewDoc("ゲーム管理画面")
	index := browsertest.NewDoc("サーバー一覧")
	bare := browsertest.NewScope("ヘッダ行")
	actionable := browsertest.NewScope("game-02")
	btn := actionable.Add(`css:a:has-text("ゲーム管理")`)
	btn.OnClick = func() { h.ctrl.Current = manage }
	index.Rows["tbody tr"] = []*browsertest.Scope{bare, actionable}
	h.ctrl.Pages[indexURL] = index

	err := h.driver.Run(context.Background())
	require.ErrorIs(t, err, wizard.ErrSurfaceNotFound)
	assert.Equal(t, 1, btn.Clicked)
}

func TestRunEntryNotFound(t *testing.T) {
	h := newHarness(t, baseConfig())
	h.ctrl.Pages[indexURL] = browsertest.NewDoc("サーバー一覧")

	err := h.driver.Run(context.Background())
	require.ErrorIs(t, err, wizard.ErrEntryNotFound)

	entries, readErr := os.ReadDir(h.pageDir)
	require.NoError(t, readErr)
	assert.NotEmpty(t, entries, "diagnostic dump written")
}

func TestRunSubmitNotFound(t *testing.T) {
	h := newHarness(t, baseConfig())

	// Confirmation page with no commit control at all.
	confirm := browsertest.NewDoc("お申し込み内容の確認")

	surface := browsertest.NewDoc("アップグレード・期限延長")
	surface.Add("label:+72時間延長")
	toConfirm := surface.Add("role:button:確認画面に進む")
	toConfirm.OnClick = func() { h.ctrl.Current = confirm }

	manage := browsertest.NewDoc("ゲーム管理画面")
	open := manage.Add("role:link:期限延長")
	open.OnClick = func() { h.ctrl.Current = surface }

	index := browsertest.NewDoc("サーバー一覧")
	entry := index.Add(`css:button:has-text("ゲーム管理")`)
	entry.OnClick = func() { h.ctrl.Current = manage }
	h.ctrl.Pages[indexURL] = index

	err := h.driver.Run(context.Background())
	require.ErrorIs(t, err, wizard.ErrSubmitNotFound)

	entries, readErr := os.ReadDir(h.pageDir)
	require.NoError(t, readErr)
	assert.NotEmpty(t, entries, "diagnostic dump written")
}

func TestRunSoftStepsMayAllMiss(t *testing.T) {
	h := newHarness(t, baseConfig())

	// No entry button, no duration option, no checkboxes, no confirm
	// step: only the final commit exists, and no success marker shows
	// afterwards. Optimistic detection still treats this as success.
	surface := browsertest.NewDoc("期限延長")
	surface.Add("role:button:実行する")

	manage := browsertest.NewDoc("ゲーム管理画面")
	open := manage.Add("role:link:期限延長")
	open.OnClick = func() { h.ctrl.Current = surface }

	index := browsertest.NewDoc("サーバー一覧")
	entry := index.Add(`css:button:has-text("ゲーム管理")`)
	entry.OnClick = func() { h.ctrl.Current = manage }
	h.ctrl.Pages[indexURL] = index

	require.NoError(t, h.driver.Run(context.Background()))
}

func TestRunStrictSuccessDetection(t *testing.T) {
	cfg := baseConfig()
	cfg.StrictSuccess = true
	h := newHarness(t, cfg)

	surface := browsertest.NewDoc("期限延長")
	surface.Add("role:button:実行する")

	manage := browsertest.NewDoc("ゲーム管理画面")
	open := manage.Add("role:link:期限延長")
	open.OnClick = func() { h.ctrl.Current = surface }

	index := browsertest.NewDoc("サーバー一覧")
	entry := index.Add(`css:button:has-text("ゲーム管理")`)
	entry.OnClick = func() { h.ctrl.Current = manage }
	h.ctrl.Pages[indexURL] = index

	err := h.driver.Run(context.Background())
	require.ErrorIs(t, err, wizard.ErrSuccessUnverified)
}

func TestRunFinalSubmitCSSFallback(t *testing.T) {
	h := newHarness(t, baseConfig())

	done := browsertest.NewDoc("完了しました")
	surface := browsertest.NewDoc("期限延長")
	generic := surface.Add(`css:button[type="submit"]:not([disabled])`)
	generic.OnClick = func() { h.ctrl.Current = done }

	manage := browsertest.NewDoc("ゲーム管理画面")
	open := manage.Add("role:link:期限延長")
	open.OnClick = func() { h.ctrl.Current = surface }

	index := browsertest.NewDoc("サーバー一覧")
	entry := index.Add(`css:button:has-text("ゲーム管理")`)
	entry.OnClick = func() { h.ctrl.Current = manage }
	h.ctrl.Pages[indexURL] = index

	require.NoError(t, h.driver.Run(context.Background()))
	assert.Equal(t, 1, generic.Clicked)
}

func TestDurationLabels(t *testing.T) {
	assert.Equal(t, []string{
		"+72時間延長", "＋72時間延長",
		"72時間延長",
		"+72時間", "＋72時間",
		"72時間", "72 時間",
	}, wizard.DurationLabels(72))
}
