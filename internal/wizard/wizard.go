// Package wizard drives the multi-page renewal transaction. Steps run
// strictly in sequence; optional steps absorb their own misses, the
// required ones surface a typed error so the process can exit with a
// condition the operator can act on.
package wizard

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hisui-dev/xmgame-autorenew/internal/browser"
	"github.com/hisui-dev/xmgame-autorenew/internal/capture"
	"github.com/hisui-dev/xmgame-autorenew/internal/config"
	"github.com/hisui-dev/xmgame-autorenew/internal/locate"
)

var (
	ErrEntryNotFound     = errors.New("management entry not found")
	ErrSurfaceNotFound   = errors.New("upgrade/extend surface not found")
	ErrSubmitNotFound    = errors.New("final submission control not found")
	ErrSuccessUnverified = errors.New("success markers not found after submission")
)

// Rows inspected before giving up on the management entry.
const maxRowScan = 10

// Checkboxes checked per acknowledgment pass.
const maxCheckboxes = 5

type Driver struct {
	ctrl   browser.Controller
	chain  locate.Chain
	cfg    config.Config
	rec    *capture.Recorder
	logger zerolog.Logger
}

func NewDriver(ctrl browser.Controller, chain locate.Chain, cfg config.Config, rec *capture.Recorder, logger zerolog.Logger) *Driver {
	return &Driver{ctrl: ctrl, chain: chain, cfg: cfg, rec: rec, logger: logger}
}

// Run executes the wizard against an already-authenticated session.
func (d *Driver) Run(ctx context.Context) error {
	if err := d.ctrl.Navigate(ctx, d.cfg.IndexURL); err != nil {
		return fmt.Errorf("open game index: %w", err)
	}
	d.rec.Checkpoint(ctx, "on_game_index")

	if !d.openManagement(ctx) {
		d.logger.Error().Str("step", "management").Msg("row-level manage control not found")
		d.rec.Checkpoint(ctx, "game_management_not_found")
		d.rec.DumpHTML(ctx, "game_management_not_found")
		return ErrEntryNotFound
	}
	d.logger.Info().Str("step", "management").Msg("opened game management")

	if !d.openExtendSurface(ctx) {
		d.logger.Error().Str("step", "surface").Msg("upgrade/extend entry not found")
		return ErrSurfaceNotFound
	}
	d.logger.Info().Str("step", "surface").Msg("on upgrade/extend surface")

	return d.extend(ctx)
}

// openManagement finds the row for the target game on the index table
// and clicks its manage control. With no target, or when the target row
// does not match, the first row offering the control wins; at most
// maxRowScan rows are inspected before declaring the entry missing.
func (d *Driver) openManagement(ctx context.Context) bool {
	doc := d.ctrl.Doc()

	if d.cfg.TargetGame != "" {
		rows := doc.Query("tbody tr", d.cfg.TargetGame)
		if len(rows) == 0 {
			rows = doc.Query("tr", d.cfg.TargetGame)
		}
		if len(rows) > 0 && d.clickRowAction(rows[0]) {
			d.rec.Checkpoint(ctx, "clicked_row_game_management_target")
			d.ctrl.WaitQuiet(ctx, d.cfg.NavTimeout)
			return true
		}
		d.logger.Warn().Str("target", d.cfg.TargetGame).Msg("target row not actionable, falling back to first row")
	}

	for _, sel := range rowActionSelectors {
		el := doc.BySelector(sel)
		if el.Visible() && locate.TryClick(el, d.cfg.ActionTimeout) {
			d.rec.Checkpoint(ctx, "clicked_row_game_management_first")
			d.ctrl.WaitQuiet(ctx, d.cfg.NavTimeout)
			return true
		}
	}

	rows := doc.Query("tbody tr", "")
	for i, row := range rows {
		if i >= maxRowScan {
			break
		}
		if d.clickRowAction(row) {
			d.rec.Checkpoint(ctx, fmt.Sprintf("clicked_row_game_management_index_%d", i))
			d.ctrl.WaitQuiet(ctx, d.cfg.NavTimeout)
			return true
		}
	}
	return false
}

func (d *Driver) clickRowAction(row locate.Scope) bool {
	for _, sel := range rowActionSelectors {
		el := row.BySelector(sel)
		if el != nil && el.Visible() && locate.TryClick(el, d.cfg.ActionTimeout) {
			return true
		}
	}
	return false
}

// openExtendSurface looks for the upgrade/extend entry on the current
// page, then escalates through the detail and contract/billing pages.
func (d *Driver) openExtendSurface(ctx context.Context) bool {
	doc := d.ctrl.Doc()
	if d.chain.Click(doc, upgradeLabels...) {
		d.rec.Checkpoint(ctx, "after_click_upgrade_extend")
		d.ctrl.WaitQuiet(ctx, d.cfg.NavTimeout)
		return true
	}

	d.logger.Warn().Msg("upgrade/extend not on management page, trying detail/billing")
	if d.openDetail(ctx) {
		d.ctrl.WaitQuiet(ctx, d.cfg.NavTimeout)
		d.rec.Checkpoint(ctx, "after_open_detail")
		if d.chain.Click(doc, upgradeLabels...) {
			d.rec.Checkpoint(ctx, "after_click_upgrade_extend_from_detail")
			d.ctrl.WaitQuiet(ctx, d.cfg.NavTimeout)
			return true
		}
		if d.chain.Click(doc, contractLabels...) {
			d.ctrl.WaitQuiet(ctx, d.cfg.NavTimeout)
			d.rec.Checkpoint(ctx, "after_open_contract_or_billing")
			if d.chain.Click(doc, upgradeLabels...) {
				d.rec.Checkpoint(ctx, "after_click_upgrade_extend_from_contract")
				d.ctrl.WaitQuiet(ctx, d.cfg.NavTimeout)
				return true
			}
		}
	}

	d.rec.Checkpoint(ctx, "open_upgrade_extend_failed")
	d.rec.DumpHTML(ctx, "open_upgrade_extend_failed")
	return false
}

func (d *Driver) openDetail(ctx context.Context) bool {
	_ = ctx
	doc := d.ctrl.Doc()
	if d.cfg.TargetGame != "" {
		for _, row := range doc.Query("tbody tr", d.cfg.TargetGame) {
			for _, label := range detailLabels {
				if locate.TryClick(row.ByText(label), d.cfg.ActionTimeout) {
					return true
				}
			}
		}
	}
	return d.chain.Click(doc, detailLabels...)
}

// extend runs duration selection, acknowledgments, confirmation and the
// final submission. Only the final submission is required.
func (d *Driver) extend(ctx context.Context) error {
	doc := d.ctrl.Doc()

	d.ctrl.ScrollToBottom(ctx)
	if d.chain.Click(doc, extendEntryLabels...) {
		d.ctrl.WaitQuiet(ctx, d.cfg.NavTimeout)
		d.rec.Checkpoint(ctx, "after_click_entry_extend")
	} else {
		d.logger.Warn().Msg("bottom extend entry button not found, continuing")
	}

	if d.selectDuration(ctx) {
		d.rec.Checkpoint(ctx, fmt.Sprintf("selected_%dh", d.cfg.RenewHours))
	} else {
		// The surface often preselects the shortest duration, which is
		// the one we want, so a miss here is not fatal.
		d.logger.Warn().Int("hours", d.cfg.RenewHours).Msg("could not select duration option")
		d.rec.Checkpoint(ctx, fmt.Sprintf("failed_select_%dh", d.cfg.RenewHours))
	}

	d.acceptRequiredChecks(ctx)

	if d.chain.Click(doc, confirmLabels...) {
		d.ctrl.WaitQuiet(ctx, d.cfg.NavTimeout)
		d.rec.Checkpoint(ctx, "after_go_confirm")
	} else {
		d.logger.Warn().Msg("confirm-step button not found, may already be on confirm page")
	}

	d.ctrl.ScrollToBottom(ctx)
	d.acceptRequiredChecks(ctx)

	if !d.finalSubmit(ctx) {
		d.logger.Error().Str("step", "submit").Msg("no final commit control matched")
		d.rec.Checkpoint(ctx, "final_submit_not_found")
		d.rec.DumpHTML(ctx, "final_submit_not_found")
		return ErrSubmitNotFound
	}
	d.ctrl.WaitQuiet(ctx, d.cfg.NavTimeout)
	d.rec.Checkpoint(ctx, "after_final_submit")

	return d.detectSuccess(ctx)
}

// selectDuration tries every surface form of the configured duration
// across labeled radios, plain labels and value attributes.
func (d *Driver) selectDuration(ctx context.Context) bool {
	_ = ctx
	doc := d.ctrl.Doc()
	labels := DurationLabels(d.cfg.RenewHours)

	for _, label := range labels {
		if locate.TryClick(doc.ByLabel(label), d.cfg.ActionTimeout) {
			return true
		}
	}
	for _, label := range labels {
		if locate.TryClick(doc.ByRole("radio", label), d.cfg.ActionTimeout) {
			return true
		}
	}
	for _, label := range labels {
		sel := fmt.Sprintf(`label:has-text("%s")`, label)
		if locate.TryClick(doc.BySelector(sel), d.cfg.ActionTimeout) {
			return true
		}
	}
	for _, sel := range durationValueSelectors(d.cfg.RenewHours) {
		if locate.TryClick(doc.BySelector(sel), d.cfg.ActionTimeout) {
			return true
		}
	}
	return d.chain.Click(doc, labels...)
}

// acceptRequiredChecks clicks agreement labels and checks up to
// maxCheckboxes visible unchecked boxes. Best effort; the submit button
// stays disabled until these are done, but a miss never fails the run.
func (d *Driver) acceptRequiredChecks(ctx context.Context) {
	_ = ctx
	doc := d.ctrl.Doc()
	for _, keyword := range agreementKeywords {
		sel := fmt.Sprintf(`label:has-text("%s")`, keyword)
		locate.TryClick(doc.BySelector(sel), d.cfg.ActionTimeout/4)
	}

	checked := 0
	for i, box := range doc.Elements(`input[type="checkbox"]`) {
		if i >= maxCheckboxes {
			break
		}
		if box.Visible() && !box.Checked() && locate.TryCheck(box, d.cfg.ActionTimeout/4) {
			checked++
		}
	}
	if checked > 0 {
		d.logger.Info().Int("count", checked).Msg("checked agreement checkboxes")
	}
}

func (d *Driver) finalSubmit(ctx context.Context) bool {
	_ = ctx
	doc := d.ctrl.Doc()
	if d.chain.Click(doc, finalLabels...) {
		return true
	}
	for _, sel := range submitFallbackCSS {
		el := doc.BySelector(sel)
		if el.Visible() && locate.TryClick(el, d.cfg.ActionTimeout) {
			return true
		}
	}
	return false
}

// detectSuccess looks for confirmation wording after submission. The
// panel's wording is not stable, so an ambiguous outcome is optimistic
// success unless strict detection is configured: retrying a renewal
// that actually succeeded resets the instance, which costs more than a
// missed failure the operator catches in the captures and the record.
func (d *Driver) detectSuccess(ctx context.Context) error {
	for _, marker := range successMarkers {
		if d.ctrl.TextVisible(ctx, marker) {
			d.logger.Info().Str("marker", marker).Msg("renewal confirmed")
			return nil
		}
	}
	d.logger.Warn().Msg("no success marker found, treating submission as successful")
	d.rec.Checkpoint(ctx, "success_markers_missing")
	if d.cfg.StrictSuccess {
		return ErrSuccessUnverified
	}
	return nil
}
