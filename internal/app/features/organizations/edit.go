// internal/app/features/organizations/edit.go
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
	"go.uber.org/zap"
)

type editFormData struct {
	formutil.Base
	OrgName string
	Plan    string
	Plans   []string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /organizations/edit                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAdmin(w, r, "Only admins can edit the organization.", "/organizations")
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	org, err := h.Tenant.CurrentOrganization(ctx, r)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB find organization", err, "A server error occurred.", "/organizations")
		return
	}
	if org == nil {
		http.Redirect(w, r, "/organizations/join", http.StatusSeeOther)
		return
	}

	data := editFormData{
		OrgName: org.Name,
		Plan:    string(org.Plan),
		Plans:   planChoices,
	}
	formutil.SetBase(&data.Base, r, "Edit organization", "/organizations")
	templates.Render(w, r, "organization_edit", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /organizations/edit                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAdmin(w, r, "Only admins can edit the organization.", "/organizations")
	if !res.OK {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/organizations/edit")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	planRaw := r.FormValue("plan")

	if name == "" {
		h.renderEditWithError(w, r, "Organization name cannot be empty.", name, planRaw)
		return
	}
	plan, ok := models.ParsePlan(planRaw)
	if !ok {
		h.renderEditWithError(w, r, "Unknown plan.", name, planRaw)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err := h.Orgs.Update(ctx, res.OrgID, models.Organization{Name: name, Plan: plan})
	switch {
	case err == nil:
		// updated
	case isDuplicateOrg(err):
		h.renderEditWithError(w, r, "An organization with that name already exists.", name, planRaw)
		return
	default:
		h.ErrLog.LogServerError(w, r, "DB update organization", err, "A server error occurred.", "/organizations")
		return
	}

	h.Log.Info("organization updated",
		zap.String("organization_id", res.OrgID.Hex()),
		zap.String("plan", string(plan)),
		zap.String("updated_by", res.UserID.Hex()))

	http.Redirect(w, r, "/organizations", http.StatusSeeOther)
}

func (h *Handler) renderEditWithError(w http.ResponseWriter, r *http.Request, msg, name, plan string) {
	w.WriteHeader(http.StatusUnprocessableEntity)
	data := editFormData{
		OrgName: name,
		Plan:    plan,
		Plans:   planChoices,
	}
	formutil.SetBase(&data.Base, r, "Edit organization", "/organizations")
	data.SetError(msg)
	templates.Render(w, r, "organization_edit", data)
}
