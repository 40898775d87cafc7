// internal/app/features/organizations/new.go
package organizations

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/leadscout/internal/app/system/formutil"
	"github.com/dalemusser/leadscout/internal/app/system/gates"
	"github.com/dalemusser/leadscout/internal/app/system/timeouts"
	"github.com/dalemusser/leadscout/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type newFormData struct {
	formutil.Base
	OrgName string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /organizations/new                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r, "/login")
	if !res.OK {
		return
	}
	if res.OrgID != primitive.NilObjectID {
		http.Redirect(w, r, "/organizations", http.StatusSeeOther)
		return
	}

	var data newFormData
	formutil.SetBase(&data.Base, r, "New organization", "/organizations/join")
	templates.Render(w, r, "organization_new", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /organizations/new                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r, "/login")
	if !res.OK {
		return
	}
	if res.OrgID != primitive.NilObjectID {
		http.Redirect(w, r, "/organizations", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/organizations/new")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	promo := strings.TrimSpace(r.FormValue("promo_code"))

	if name == "" {
		h.renderNewWithError(w, r, "Please enter an organization name.", name)
		return
	}

	plan := models.PlanBronze
	if promo != "" {
		// Promo codes are case-insensitive.
		if h.PromoCode == "" || !strings.EqualFold(promo, h.PromoCode) {
			h.renderNewWithError(w, r, "That promo code is not valid.", name)
			return
		}
		plan = models.PlanUnlimited
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	org, err := h.Orgs.Create(ctx, models.Organization{
		Name: name,
		Plan: plan,
	})
	switch {
	case err == nil:
		// created
	case isDuplicateOrg(err):
		h.renderNewWithError(w, r, "An organization with that name already exists.", name)
		return
	default:
		h.ErrLog.LogServerError(w, r, "DB create organization", err, "A server error occurred.", "/organizations/new")
		return
	}

	assigned, err := h.Users.SetOrganization(ctx, res.UserID, org.ID, models.RoleAdmin)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "assign creator to organization", err, "A server error occurred.", "/organizations/new")
		return
	}
	if !assigned {
		// The user joined some organization between the gate check and the
		// assignment. The fresh org has no members; retire it.
		if derr := h.Orgs.Disable(ctx, org.ID); derr != nil {
			h.Log.Error("disable orphaned organization", zap.Error(derr),
				zap.String("organization_id", org.ID.Hex()))
		}
		http.Redirect(w, r, "/organizations", http.StatusSeeOther)
		return
	}

	h.Log.Info("organization created",
		zap.String("organization_id", org.ID.Hex()),
		zap.String("plan", string(org.Plan)),
		zap.String("created_by", res.UserID.Hex()))

	http.Redirect(w, r, "/organizations", http.StatusSeeOther)
}

func (h *Handler) renderNewWithError(w http.ResponseWriter, r *http.Request, msg, name string) {
	w.WriteHeader(http.StatusUnprocessableEntity)
	data := newFormData{OrgName: name}
	formutil.SetBase(&data.Base, r, "New organization", "/organizations/join")
	data.SetError(msg)
	templates.Render(w, r, "organization_new", data)
}
