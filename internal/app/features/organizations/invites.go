// internal/app/features/organizations/invites.go
package organizations

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/leadscout/internal/app/system/gates"
	"github.com/dalemusser/leadscout/internal/app/system/invites"
	"github.com/dalemusser/leadscout/internal/app/system/timeouts"
	"github.com/dalemusser/leadscout/internal/app/system/viewdata"
	"github.com/dalemusser/leadscout/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type inviteVM struct {
	Code      string
	Role      string
	ExpiresAt time.Time
}

type invitesPageData struct {
	viewdata.BaseVM
	Invites []inviteVM
	NewCode string // set right after generation so it can be highlighted
	Error   string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /organizations/invites                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeInvites(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAdminOrManager(w, r, "Only admins and managers can manage invites.", "/organizations")
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	h.renderInvites(ctx, w, r, res.OrgID, r.URL.Query().Get("new"), "")
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /organizations/invites                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleGenerateInvite(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAdminOrManager(w, r, "Only admins and managers can create invites.", "/organizations")
	if !res.OK {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/organizations/invites")
		return
	}

	role := r.FormValue("role")
	switch role {
	case models.RoleManager, models.RoleCaller:
		// fine for both admins and managers
	case models.RoleAdmin:
		if res.Role != models.RoleAdmin {
			h.ErrLog.LogBadRequest(w, r, "manager tried to mint admin invite", nil,
				"Only admins can create admin invites.", "/organizations/invites")
			return
		}
	default:
		h.ErrLog.LogBadRequest(w, r, "unknown role in invite form", nil, "Unknown role.", "/organizations/invites")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	inv, err := h.Invites.Generate(ctx, res.OrgID, role, invites.DefaultValidity)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "generate invite", err, "A server error occurred.", "/organizations/invites")
		return
	}

	h.Log.Info("invite generated",
		zap.String("organization_id", res.OrgID.Hex()),
		zap.String("role", role),
		zap.String("created_by", res.UserID.Hex()))

	http.Redirect(w, r, "/organizations/invites?new="+inv.Code, http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /organizations/invites/deactivate                                      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleDeactivateInvite(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAdminOrManager(w, r, "Only admins and managers can manage invites.", "/organizations")
	if !res.OK {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/organizations/invites")
		return
	}

	code := strings.TrimSpace(r.FormValue("code"))
	if code == "" {
		h.ErrLog.LogBadRequest(w, r, "missing invite code", nil, "Missing invite code.", "/organizations/invites")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	revoked, err := h.Invites.DeactivateForOrganization(ctx, res.OrgID, code)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "deactivate invite", err, "A server error occurred.", "/organizations/invites")
		return
	}
	if !revoked {
		h.ErrLog.LogNotFound(w, r, "invite not found for deactivation", "Unknown invite code.", "/organizations/invites")
		return
	}

	h.Log.Info("invite deactivated",
		zap.String("organization_id", res.OrgID.Hex()),
		zap.String("deactivated_by", res.UserID.Hex()))

	http.Redirect(w, r, "/organizations/invites", http.StatusSeeOther)
}

func (h *Handler) renderInvites(ctx context.Context, w http.ResponseWriter, r *http.Request, orgID primitive.ObjectID, newCode, errMsg string) {
	active, err := h.Invites.ActiveInvites(ctx, orgID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB list invites", err, "A server error occurred.", "/organizations")
		return
	}

	vms := make([]inviteVM, 0, len(active))
	for _, inv := range active {
		vms = append(vms, inviteVM{
			Code:      inv.Code,
			Role:      inv.Role,
			ExpiresAt: inv.ExpiresAt,
		})
	}

	templates.Render(w, r, "organization_invites", invitesPageData{
		BaseVM:  viewdata.NewBaseVM(r, "Invites", "/organizations"),
		Invites: vms,
		NewCode: newCode,
		Error:   errMsg,
	})
}
