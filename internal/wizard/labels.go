package wizard

import "fmt"

// Candidate label sets for every wizard step. The panel's wording has
// drifted before, so each logical control carries every surface form it
// has been seen with, in priority order. Operators extending the lists
// should keep the most specific wording first.

// Row action on the game index table.
const manageLabel = "ゲーム管理"

// Selectors for the manage control inside one table row. The panel has
// rendered it as a button, a role=button div and a styled anchor.
var rowActionSelectors = []string{
	`button:has-text("` + manageLabel + `")`,
	`[role="button"]:has-text("` + manageLabel + `")`,
	`a:has-text("` + manageLabel + `")`,
	`:is(button,a,div,span)[class*="btn"]:has-text("` + manageLabel + `")`,
	`:is(button,a,div,span):has-text("` + manageLabel + `")`,
}

// Entry points into the upgrade/extend surface.
var upgradeLabels = []string{
	"アップグレード・期限延長", "アップグレード/期限延長", "アップグレード ・ 期限延長",
	"期限延長", "期限を延長する", "更新", "更新手続き",
	"プラン変更・期限延長", "プラン変更",
}

// Alternate path: detail/settings pages that host the same entry.
var detailLabels = []string{"詳細", "管理", "設定", "ゲーム詳細", "サービス詳細", "契約情報", "メニュー"}

// Second alternate hop: contract/billing pages.
var contractLabels = []string{"契約", "契約情報", "料金", "お支払い", "支払い", "請求", "更新", "延長", "プラン変更"}

// Explicit extend button at the bottom of the upgrade surface.
var extendEntryLabels = []string{"期限を延長する", "延長する"}

// Keywords on agreement labels that gate the submit button.
var agreementKeywords = []string{"同意", "確認", "承諾", "同意します", "確認しました", "規約", "注意事項"}

// Advance to the confirmation page.
var confirmLabels = []string{
	"確認画面に進む", "確認へ進む", "確認画面へ", "確認画面へ進む",
	"申込内容を確認", "申し込み内容を確認", "申込み内容を確認",
	"確認する", "次へ", "次に進む", "進む",
}

// Final commit on the confirmation page.
var finalLabels = []string{
	"期限を延長する", "延長する", "実行する",
	"延長を確定する", "確定する", "申し込む", "お申し込みを確定する",
}

// Generic primary-submit controls, the last resort when no commit label
// matched anywhere.
var submitFallbackCSS = []string{
	`button[type="submit"]:not([disabled])`,
	`input[type="submit"]:not([disabled])`,
	`button:not([disabled]).is-primary, button:not([disabled]).btn-primary, button:not([disabled]).c-btn--primary`,
	`a.button--primary, a.btn-primary`,
}

// Fragments that confirm a completed renewal.
var successMarkers = []string{
	"延長手続きが完了", "お手続きが完了", "手続きが完了",
	"受け付けました", "完了しました", "ありがとうございました",
}

// DurationLabels renders a renewal duration into every surface form the
// panel has used for its radio options, most specific first. Both ASCII
// and full-width plus signs appear in the wild.
func DurationLabels(hours int) []string {
	h := fmt.Sprintf("%d", hours)
	return []string{
		"+" + h + "時間延長", "＋" + h + "時間延長",
		h + "時間延長",
		"+" + h + "時間", "＋" + h + "時間",
		h + "時間", h + " 時間",
	}
}

func durationValueSelectors(hours int) []string {
	h := fmt.Sprintf("%d", hours)
	return []string{
		`input[type="radio"][value="` + h + `"]`,
		`input[type="radio"][value*="` + h + `"]`,
		`input[value="` + h + `"]`,
		`input[value*="` + h + `"]`,
	}
}
