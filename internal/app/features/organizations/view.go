// internal/app/features/organizations/view.go
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
)

type viewPageData struct {
	viewdata.BaseVM
	Org         models.Organization
	MemberCount int64
	CanManage   bool // admin or manager
	IsAdmin     bool

	// Quota position for today
	Plan       string
	Unlimited  bool
	DailyLimit int
	UsedToday  int
	Remaining  int
	NextReset  time.Time
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /organizations – the organization dashboard                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireOrganization(w, r)
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	org, err := h.Tenant.CurrentOrganization(ctx, r)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB find organization", err, "A server error occurred.", "/")
		return
	}
	if org == nil {
		// Session references an organization that no longer exists.
		http.Redirect(w, r, "/organizations/join", http.StatusSeeOther)
		return
	}

	members, err := h.Users.CountByOrganization(ctx, res.OrgID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB count members", err, "A server error occurred.", "/")
		return
	}

	st, err := h.Quota.Status(ctx, res.OrgID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "quota status", err, "A server error occurred.", "/")
		return
	}

	templates.Render(w, r, "organization_view", viewPageData{
		BaseVM:      viewdata.NewBaseVM(r, org.Name, "/"),
		Org:         *org,
		MemberCount: members,
		CanManage:   res.Role == models.RoleAdmin || res.Role == models.RoleManager,
		IsAdmin:     res.Role == models.RoleAdmin,
		Plan:        string(st.Plan),
		Unlimited:   st.Unlimited(),
		DailyLimit:  st.DailyLimit,
		UsedToday:   st.UsedToday,
		Remaining:   st.Remaining,
		NextReset:   st.NextReset,
	})
}
