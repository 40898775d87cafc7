// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize strips dangerous markup from user-authored HTML
// before it is stored (CRM entry notes, email templates, call scripts).
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

var (
	// ugc allows the formatting users reasonably paste into notes and
	// templates while stripping scripts, event handlers, and iframes.
	ugc = bluemonday.UGCPolicy()

	// strict strips all markup; used for single-line fields.
	strict = bluemonday.StrictPolicy()
)

// Body sanitizes multi-line rich content.
func Body(html string) string {
	return ugc.Sanitize(html)
}

// Line strips every tag from a single-line field.
func Line(s string) string {
	return strict.Sanitize(s)
}
