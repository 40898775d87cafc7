// Package formutil provides helpers for form re-rendering with validation
// errors: the user's values echoed back, an error message, and the common
// page fields.
package formutil

import (
	"html/template"
	"net/http"

	"github.com/dalemusser/leadscout/internal/app/system/viewdata"
)

// Base carries the common page fields plus a validation error slot. Embed it
// in form data structs so the template sees the usual BaseVM fields and an
// Error.
type Base struct {
	viewdata.BaseVM
	Error template.HTML
}

// SetBase populates the common fields from the request context.
func SetBase(b *Base, r *http.Request, title, backDefault string) {
	b.BaseVM = viewdata.NewBaseVM(r, title, backDefault)
}

// SetError sets the validation error shown above the form.
func (b *Base) SetError(msg string) {
	b.Error = template.HTML(msg)
}
