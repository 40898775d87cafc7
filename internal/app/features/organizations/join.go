// internal/app/features/organizations/join.go
package organizations

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/leadscout/internal/app/system/gates"
	"github.com/dalemusser/leadscout/internal/app/system/timeouts"
	"github.com/dalemusser/leadscout/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type joinFormData struct {
	viewdata.BaseVM
	Error string
	Code  string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /organizations/join                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeJoin(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r, "/login")
	if !res.OK {
		return
	}
	if res.OrgID != primitive.NilObjectID {
		http.Redirect(w, r, "/organizations", http.StatusSeeOther)
		return
	}

	templates.Render(w, r, "organization_join", joinFormData{
		BaseVM: viewdata.NewBaseVM(r, "Join an organization", "/"),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /organizations/join                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r, "/login")
	if !res.OK {
		return
	}
	if res.OrgID != primitive.NilObjectID {
		http.Redirect(w, r, "/organizations", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/organizations/join")
		return
	}

	code := strings.ToUpper(strings.TrimSpace(r.FormValue("code")))
	if code == "" {
		h.renderJoinWithError(w, r, "Please enter an invite code.", code)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	joined, err := h.Invites.Join(ctx, res.UserID, code)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "redeem invite", err, "A server error occurred.", "/organizations/join")
		return
	}
	if !joined {
		// Deliberately vague: covers unknown, expired, and already-used codes.
		h.renderJoinWithError(w, r, "That invite code is not valid.", code)
		return
	}

	h.Log.Info("user joined organization",
		zap.String("user_id", res.UserID.Hex()))

	http.Redirect(w, r, "/organizations", http.StatusSeeOther)
}

func (h *Handler) renderJoinWithError(w http.ResponseWriter, r *http.Request, msg, code string) {
	w.WriteHeader(http.StatusUnprocessableEntity)
	templates.Render(w, r, "organization_join", joinFormData{
		BaseVM: viewdata.NewBaseVM(r, "Join an organization", "/"),
		Error:  msg,
		Code:   code,
	})
}
