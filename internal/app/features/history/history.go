// internal/app/features/history/history.go
package history

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/leadscout/internal/app/features/errors"
	savedsearchstore "github.com/dalemusser/leadscout/internal/app/store/savedsearches"
	"github.com/dalemusser/leadscout/internal/app/system/auth"
	"github.com/dalemusser/leadscout/internal/app/system/gates"
	"github.com/dalemusser/leadscout/internal/app/system/timeouts"
	"github.com/dalemusser/leadscout/internal/app/system/viewdata"
	"github.com/dalemusser/leadscout/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type searchVM struct {
	Term        string
	Location    string
	Category    string
	ResultCount int
	RunBy       string
	RunAt       string
	ShareToken  string
}

type usageVM struct {
	Day         string
	SearchCount int
	ResultCount int
}

type historyPageData struct {
	viewdata.BaseVM
	Searches []searchVM
	Usage    []usageVM
}

type sharedPageData struct {
	viewdata.BaseVM
	Search searchVM
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /history – recent searches and the daily usage ledger                   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeHistory(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireOrganization(w, r)
	if !res.OK {
		return
	}
	if !h.canViewHistory(w, r) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	searches, err := h.Saved.ListByOrganization(ctx, res.OrgID, defaultHistoryLimit)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB list saved searches", err, "A server error occurred.", "/")
		return
	}
	usage, err := h.Usage.HistoryByOrganization(ctx, res.OrgID, 30)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB list usage history", err, "A server error occurred.", "/")
		return
	}

	names := h.memberNames(ctx, res.OrgID)

	data := historyPageData{
		BaseVM: viewdata.NewBaseVM(r, "Search history", "/"),
	}
	for _, ss := range searches {
		data.Searches = append(data.Searches, toSearchVM(ss, names))
	}
	for _, u := range usage {
		data.Usage = append(data.Usage, usageVM{
			Day:         u.Day,
			SearchCount: u.SearchCount,
			ResultCount: u.ResultCount,
		})
	}

	templates.Render(w, r, "history", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /history/shared/{token} – one search by share link                      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeShared(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireOrganization(w, r)
	if !res.OK {
		return
	}
	if !h.canViewHistory(w, r) {
		return
	}

	token := strings.TrimSpace(chi.URLParam(r, "token"))
	if token == "" {
		h.ErrLog.LogBadRequest(w, r, "missing share token", nil, "Unknown shared search.", "/history")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	// Token resolution is tenant-scoped: a token from another organization
	// behaves exactly like an unknown one.
	ss, err := h.Saved.GetByToken(ctx, res.OrgID, token)
	if errors.Is(err, savedsearchstore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "shared search not found", "Unknown shared search.", "/history")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB load shared search", err, "A server error occurred.", "/history")
		return
	}

	templates.Render(w, r, "history_shared", sharedPageData{
		BaseVM: viewdata.NewBaseVM(r, "Shared search", "/history"),
		Search: toSearchVM(ss, h.memberNames(ctx, res.OrgID)),
	})
}

// canViewHistory enforces the per-user history permission flag. Admins
// always pass.
func (h *Handler) canViewHistory(w http.ResponseWriter, r *http.Request) bool {
	u, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return false
	}
	if u.Role == models.RoleAdmin || u.CanViewHistory {
		return true
	}
	uierrors.RenderForbidden(w, r, "History is disabled for your account. Ask an admin to enable it.", "/")
	return false
}

// memberNames maps user ids to display names for the RunBy column. A lookup
// failure degrades to hex ids rather than failing the page.
func (h *Handler) memberNames(ctx context.Context, orgID primitive.ObjectID) map[primitive.ObjectID]string {
	names := make(map[primitive.ObjectID]string)
	members, err := h.Users.ListByOrganization(ctx, orgID)
	if err != nil {
		return names
	}
	for _, m := range members {
		names[m.ID] = m.FullName
	}
	return names
}

func toSearchVM(ss models.SavedSearch, names map[primitive.ObjectID]string) searchVM {
	runBy := names[ss.RunBy]
	if runBy == "" {
		runBy = ss.RunBy.Hex()
	}
	return searchVM{
		Term:        ss.Term,
		Location:    ss.Location,
		Category:    ss.Category,
		ResultCount: ss.ResultCount,
		RunBy:       runBy,
		RunAt:       ss.CreatedAt.Local().Format("Jan 2 15:04"),
		ShareToken:  ss.ShareToken,
	}
}
