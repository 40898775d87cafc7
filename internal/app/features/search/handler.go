// internal/app/features/search/handler.go
package search

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	uierrors "github.com/dalemusser/leadscout/internal/app/features/errors"
	savedsearchstore "github.com/dalemusser/leadscout/internal/app/store/savedsearches"
	"github.com/dalemusser/leadscout/internal/app/system/auth"
	"github.com/dalemusser/leadscout/internal/app/system/directory"
	"github.com/dalemusser/leadscout/internal/app/system/gates"
	"github.com/dalemusser/leadscout/internal/app/system/quota"
	"github.com/dalemusser/leadscout/internal/app/system/timeouts"
	"github.com/dalemusser/leadscout/internal/app/system/viewdata"
	"github.com/dalemusser/leadscout/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	defaultMaxResults = 25
	hardMaxResults    = 100
)

// Handler serves the business search page. Every successful search charges
// the organization's daily quota and is recorded in the search history.
type Handler struct {
	DB        *mongo.Database
	Log       *zap.Logger
	ErrLog    *uierrors.ErrorLogger
	Directory directory.Client
	Quota     *quota.Tracker
	Saved     *savedsearchstore.Store
}

func NewHandler(
	db *mongo.Database,
	errLog *uierrors.ErrorLogger,
	dir directory.Client,
	tracker *quota.Tracker,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		DB:        db,
		Log:       logger,
		ErrLog:    errLog,
		Directory: dir,
		Quota:     tracker,
		Saved:     savedsearchstore.New(db),
	}
}

type searchPageData struct {
	viewdata.BaseVM
	Error      string
	Term       string
	Location   string
	Category   string
	MaxResults int
	Results    []directory.Business
	Searched   bool

	// Quota position shown alongside the form
	Unlimited bool
	Remaining int
	NextReset time.Time
}

type quotaPageData struct {
	viewdata.BaseVM
	DailyLimit int
	UsedToday  int
	NextReset  time.Time
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /search                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeSearch(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireOrganization(w, r)
	if !res.OK {
		return
	}
	if !h.canSearch(w, r) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	st, err := h.Quota.Status(ctx, res.OrgID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "quota status", err, "A server error occurred.", "/")
		return
	}

	templates.Render(w, r, "search", searchPageData{
		BaseVM:     viewdata.NewBaseVM(r, "Search", "/"),
		MaxResults: defaultMaxResults,
		Unlimited:  st.Unlimited(),
		Remaining:  st.Remaining,
		NextReset:  st.NextReset,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /search                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireOrganization(w, r)
	if !res.OK {
		return
	}
	if !h.canSearch(w, r) {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/search")
		return
	}

	term := strings.TrimSpace(r.FormValue("term"))
	location := strings.TrimSpace(r.FormValue("location"))
	category := strings.TrimSpace(r.FormValue("category"))

	maxResults := defaultMaxResults
	if raw := r.FormValue("max_results"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.renderSearchError(w, r, res.OrgID, "Result limit must be a positive number.", term, location, category)
			return
		}
		maxResults = n
	}
	if maxResults > hardMaxResults {
		maxResults = hardMaxResults
	}

	if term == "" {
		h.renderSearchError(w, r, res.OrgID, "Please enter a search term.", term, location, category)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	// Pre-check: refuse before calling the directory when today's budget
	// clearly can't cover the request.
	ok, err := h.Quota.CanSearch(ctx, res.OrgID, maxResults)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "quota pre-check", err, "A server error occurred.", "/search")
		return
	}
	if !ok {
		h.renderQuotaExceeded(w, r, res.OrgID)
		return
	}

	results, err := h.Directory.Search(ctx, directory.Query{
		Term:       term,
		Location:   location,
		Category:   category,
		MaxResults: maxResults,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "directory search", err,
			"The business directory is not responding. Please try again shortly.", "/search")
		return
	}

	// Charge what actually came back. The write re-checks the limit, so a
	// concurrent search can still bounce us to the quota page here.
	if err := h.Quota.Record(ctx, res.OrgID, len(results)); err != nil {
		if errors.Is(err, quota.ErrQuotaExceeded) {
			h.renderQuotaExceeded(w, r, res.OrgID)
			return
		}
		h.ErrLog.LogServerError(w, r, "quota record", err, "A server error occurred.", "/search")
		return
	}

	if _, err := h.Saved.Record(ctx, models.SavedSearch{
		OrganizationID: res.OrgID,
		RunBy:          res.UserID,
		Term:           term,
		Location:       location,
		Category:       category,
		ResultCount:    len(results),
	}); err != nil {
		// History is best-effort; the search already succeeded and was charged.
		h.Log.Warn("failed to save search history", zap.Error(err))
	}

	st, err := h.Quota.Status(ctx, res.OrgID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "quota status", err, "A server error occurred.", "/search")
		return
	}

	templates.Render(w, r, "search", searchPageData{
		BaseVM:     viewdata.NewBaseVM(r, "Search", "/"),
		Term:       term,
		Location:   location,
		Category:   category,
		MaxResults: maxResults,
		Results:    results,
		Searched:   true,
		Unlimited:  st.Unlimited(),
		Remaining:  st.Remaining,
		NextReset:  st.NextReset,
	})
}

// canSearch enforces the per-user search permission flag. Admins always pass.
func (h *Handler) canSearch(w http.ResponseWriter, r *http.Request) bool {
	u, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return false
	}
	if u.Role == models.RoleAdmin || u.CanSearch {
		return true
	}
	uierrors.RenderForbidden(w, r, "Searching is disabled for your account. Ask an admin to enable it.", "/organizations")
	return false
}

func (h *Handler) renderQuotaExceeded(w http.ResponseWriter, r *http.Request, orgID primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	st, err := h.Quota.Status(ctx, orgID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "quota status", err, "A server error occurred.", "/")
		return
	}

	w.WriteHeader(http.StatusTooManyRequests)
	templates.Render(w, r, "search_quota_exceeded", quotaPageData{
		BaseVM:     viewdata.NewBaseVM(r, "Daily limit reached", "/organizations"),
		DailyLimit: st.DailyLimit,
		UsedToday:  st.UsedToday,
		NextReset:  st.NextReset,
	})
}

func (h *Handler) renderSearchError(w http.ResponseWriter, r *http.Request, orgID primitive.ObjectID, msg, term, location, category string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	st, err := h.Quota.Status(ctx, orgID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "quota status", err, "A server error occurred.", "/")
		return
	}

	w.WriteHeader(http.StatusUnprocessableEntity)
	templates.Render(w, r, "search", searchPageData{
		BaseVM:     viewdata.NewBaseVM(r, "Search", "/"),
		Error:      msg,
		Term:       term,
		Location:   location,
		Category:   category,
		MaxResults: defaultMaxResults,
		Unlimited:  st.Unlimited(),
		Remaining:  st.Remaining,
		NextReset:  st.NextReset,
	})
}
