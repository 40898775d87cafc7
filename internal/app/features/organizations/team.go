// internal/app/features/organizations/team.go
package organizations

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/leadscout/internal/app/system/gates"
	"github.com/dalemusser/leadscout/internal/app/system/timeouts"
	"github.com/dalemusser/leadscout/internal/app/system/viewdata"
	"github.com/dalemusser/leadscout/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type teamMemberVM struct {
	ID             string
	Name           string
	Email          string
	Role           string
	IsSelf         bool
	CanSearch      bool
	CanViewHistory bool
	CanManageCRM   bool
}

type teamPageData struct {
	viewdata.BaseVM
	Members []teamMemberVM
	IsAdmin bool
	Error   string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /organizations/team                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeTeam(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAdminOrManager(w, r, "Only admins and managers can view the team.", "/organizations")
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	members, err := h.Users.ListByOrganization(ctx, res.OrgID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB list members", err, "A server error occurred.", "/organizations")
		return
	}

	perms, err := h.Perms.ListByOrganization(ctx, res.OrgID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB list permissions", err, "A server error occurred.", "/organizations")
		return
	}
	permByUser := make(map[primitive.ObjectID]models.OrganizationPermissions, len(perms))
	for _, p := range perms {
		permByUser[p.UserID] = p
	}

	vms := make([]teamMemberVM, 0, len(members))
	for _, m := range members {
		p, has := permByUser[m.ID]
		if !has {
			p = models.DefaultPermissions(m.ID, res.OrgID)
		}
		vms = append(vms, teamMemberVM{
			ID:             m.ID.Hex(),
			Name:           m.FullName,
			Email:          m.Email,
			Role:           m.Role,
			IsSelf:         m.ID == res.UserID,
			CanSearch:      p.CanSearch,
			CanViewHistory: p.CanViewHistory,
			CanManageCRM:   p.CanManageCRM,
		})
	}

	templates.Render(w, r, "organization_team", teamPageData{
		BaseVM:  viewdata.NewBaseVM(r, "Team", "/organizations"),
		Members: vms,
		IsAdmin: res.Role == models.RoleAdmin,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /organizations/team/role                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAdmin(w, r, "Only admins can change roles.", "/organizations/team")
	if !res.OK {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/organizations/team")
		return
	}

	role := r.FormValue("role")
	if role != models.RoleAdmin && role != models.RoleManager && role != models.RoleCaller {
		h.ErrLog.LogBadRequest(w, r, "unknown role in form", nil, "Unknown role.", "/organizations/team")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	target, ok := h.memberFromForm(ctx, w, r, res.OrgID)
	if !ok {
		return
	}
	if target.ID == res.UserID {
		h.ErrLog.LogBadRequest(w, r, "admin tried to change own role", nil,
			"You cannot change your own role.", "/organizations/team")
		return
	}

	if err := h.Users.SetRole(ctx, target.ID, role); err != nil {
		h.ErrLog.LogServerError(w, r, "DB set role", err, "A server error occurred.", "/organizations/team")
		return
	}

	h.Log.Info("member role changed",
		zap.String("organization_id", res.OrgID.Hex()),
		zap.String("user_id", target.ID.Hex()),
		zap.String("role", role),
		zap.String("changed_by", res.UserID.Hex()))

	http.Redirect(w, r, "/organizations/team", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /organizations/team/remove                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAdmin(w, r, "Only admins can remove members.", "/organizations/team")
	if !res.OK {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/organizations/team")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	target, ok := h.memberFromForm(ctx, w, r, res.OrgID)
	if !ok {
		return
	}
	if target.ID == res.UserID {
		h.ErrLog.LogBadRequest(w, r, "admin tried to remove self", nil,
			"You cannot remove yourself from the organization.", "/organizations/team")
		return
	}

	if err := h.Users.RemoveFromOrganization(ctx, target.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "DB remove member", err, "A server error occurred.", "/organizations/team")
		return
	}

	h.Log.Info("member removed",
		zap.String("organization_id", res.OrgID.Hex()),
		zap.String("user_id", target.ID.Hex()),
		zap.String("removed_by", res.UserID.Hex()))

	http.Redirect(w, r, "/organizations/team", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /organizations/team/permissions                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandlePermissions(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAdmin(w, r, "Only admins can change permissions.", "/organizations/team")
	if !res.OK {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/organizations/team")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	target, ok := h.memberFromForm(ctx, w, r, res.OrgID)
	if !ok {
		return
	}

	err := h.Perms.Upsert(ctx, models.OrganizationPermissions{
		UserID:         target.ID,
		OrganizationID: res.OrgID,
		CanSearch:      r.FormValue("can_search") == "on",
		CanViewHistory: r.FormValue("can_view_history") == "on",
		CanManageCRM:   r.FormValue("can_manage_crm") == "on",
		UpdatedAt:      time.Now().UTC(),
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB upsert permissions", err, "A server error occurred.", "/organizations/team")
		return
	}

	h.Log.Info("member permissions changed",
		zap.String("organization_id", res.OrgID.Hex()),
		zap.String("user_id", target.ID.Hex()),
		zap.String("changed_by", res.UserID.Hex()))

	http.Redirect(w, r, "/organizations/team", http.StatusSeeOther)
}

// memberFromForm resolves the "user_id" form field to a member of orgID.
// Renders an error page and returns ok=false for malformed ids, missing
// users, and users belonging to another organization (reported identically,
// so the response doesn't confirm foreign ids exist).
func (h *Handler) memberFromForm(ctx context.Context, w http.ResponseWriter, r *http.Request, orgID primitive.ObjectID) (models.User, bool) {
	id, err := primitive.ObjectIDFromHex(r.FormValue("user_id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad user id in form", err, "Unknown member.", "/organizations/team")
		return models.User{}, false
	}

	u, err := h.Users.GetByID(ctx, id)
	if err != nil && !isUserNotFound(err) {
		h.ErrLog.LogServerError(w, r, "DB find member", err, "A server error occurred.", "/organizations/team")
		return models.User{}, false
	}
	if err != nil || u.OrganizationID == nil || *u.OrganizationID != orgID {
		h.ErrLog.LogNotFound(w, r, "member not in organization", "Unknown member.", "/organizations/team")
		return models.User{}, false
	}
	return u, true
}
