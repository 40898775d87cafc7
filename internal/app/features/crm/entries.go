// internal/app/features/crm/entries.go
package crm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/leadscout/internal/app/features/errors"
	"github.com/dalemusser/leadscout/internal/app/policy/crmpolicy"
	crmentrystore "github.com/dalemusser/leadscout/internal/app/store/crmentries"
	"github.com/dalemusser/leadscout/internal/app/system/gates"
	"github.com/dalemusser/leadscout/internal/app/system/htmlsanitize"
	"github.com/dalemusser/leadscout/internal/app/system/timeouts"
	"github.com/dalemusser/leadscout/internal/app/system/viewdata"
	"github.com/dalemusser/leadscout/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var entryStatuses = []string{"new", "contacted", "qualified", "closed"}

func validStatus(s string) bool {
	for _, v := range entryStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type memberVM struct {
	ID   string
	Name string
}

type entryPageData struct {
	viewdata.BaseVM
	ListID    string
	Entry     entryDetailVM
	Statuses  []string
	Members   []memberVM
	CanAssign bool
	Error     string
}

type entryDetailVM struct {
	ID           string
	BusinessName string
	Phone        string
	Email        string
	Website      string
	Address      string
	Category     string
	Status       string
	Notes        string
	AssignedTo   string
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /crm/{listID}/entries – save a business into a list                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleCreateEntry(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireOrganization(w, r)
	if !res.OK {
		return
	}
	if !h.canManageCRM(w, r) {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/crm")
		return
	}

	listID, ok := crmpolicy.ExtractRecordID(r, "listID")
	if !ok {
		h.ErrLog.LogBadRequest(w, r, "bad list id", nil, "Unknown list.", "/crm")
		return
	}
	name := strings.TrimSpace(r.FormValue("business_name"))
	if name == "" {
		h.ErrLog.LogBadRequest(w, r, "missing business name", nil, "Please enter a business name.", "/crm/"+listID.Hex())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	// The list lookup is tenant-scoped, so a foreign list id dies here.
	if _, err := h.Lists.GetByID(ctx, res.OrgID, listID); err != nil {
		h.ErrLog.LogNotFound(w, r, "crm list not found", "Unknown list.", "/crm")
		return
	}

	entry := models.CRMEntry{
		OrganizationID: res.OrgID,
		ListID:         listID,
		BusinessName:   htmlsanitize.Line(name),
		Phone:          htmlsanitize.Line(r.FormValue("phone")),
		Email:          htmlsanitize.Line(r.FormValue("email")),
		Website:        htmlsanitize.Line(r.FormValue("website")),
		Address:        htmlsanitize.Line(r.FormValue("address")),
		Category:       htmlsanitize.Line(r.FormValue("category")),
		Notes:          htmlsanitize.Body(r.FormValue("notes")),
	}

	// A caller saving a lead works it themselves.
	if crmpolicy.OwnershipRequired(res.Role) {
		uid := res.UserID
		entry.AssignedTo = &uid
	}

	created, err := h.Entries.Create(ctx, entry)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB create crm entry", err, "A server error occurred.", "/crm/"+listID.Hex())
		return
	}

	h.Log.Info("crm entry created",
		zap.String("organization_id", res.OrgID.Hex()),
		zap.String("entry_id", created.ID.Hex()),
		zap.String("list_id", listID.Hex()))

	http.Redirect(w, r, "/crm/"+listID.Hex(), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /crm/{listID}/entries/{entryID} – edit form                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeEntry(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireOrganization(w, r)
	if !res.OK {
		return
	}

	entry, ok := h.loadGuardedEntry(w, r, res)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	data := entryPageData{
		BaseVM:    viewdata.NewBaseVM(r, entry.BusinessName, "/crm/"+entry.ListID.Hex()),
		ListID:    entry.ListID.Hex(),
		Entry:     entryDetail(entry),
		Statuses:  entryStatuses,
		CanAssign: res.Role == models.RoleAdmin || res.Role == models.RoleManager,
	}
	if data.CanAssign {
		members, err := h.Users.ListByOrganization(ctx, res.OrgID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "DB list members", err, "A server error occurred.", "/crm")
			return
		}
		for _, m := range members {
			data.Members = append(data.Members, memberVM{ID: m.ID.Hex(), Name: m.FullName})
		}
	}

	templates.Render(w, r, "crm_entry", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /crm/{listID}/entries/{entryID} – update                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleEditEntry(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireOrganization(w, r)
	if !res.OK {
		return
	}
	if !h.canManageCRM(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/crm")
		return
	}

	entry, ok := h.loadGuardedEntry(w, r, res)
	if !ok {
		return
	}

	name := strings.TrimSpace(r.FormValue("business_name"))
	if name == "" {
		h.ErrLog.LogBadRequest(w, r, "missing business name", nil, "Please enter a business name.", "/crm/"+entry.ListID.Hex())
		return
	}
	status := strings.ToLower(strings.TrimSpace(r.FormValue("status")))
	if status == "" {
		status = entry.Status
	}
	if !validStatus(status) {
		h.ErrLog.LogBadRequest(w, r, "bad entry status", nil, "Unknown status.", "/crm/"+entry.ListID.Hex())
		return
	}

	entry.BusinessName = htmlsanitize.Line(name)
	entry.Phone = htmlsanitize.Line(r.FormValue("phone"))
	entry.Email = htmlsanitize.Line(r.FormValue("email"))
	entry.Website = htmlsanitize.Line(r.FormValue("website"))
	entry.Address = htmlsanitize.Line(r.FormValue("address"))
	entry.Category = htmlsanitize.Line(r.FormValue("category"))
	entry.Status = status
	entry.Notes = htmlsanitize.Body(r.FormValue("notes"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Entries.Update(ctx, res.OrgID, entry); err != nil {
		h.ErrLog.LogServerError(w, r, "DB update crm entry", err, "A server error occurred.", "/crm")
		return
	}

	http.Redirect(w, r, "/crm/"+entry.ListID.Hex(), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /crm/{listID}/entries/{entryID}/assign – admin/manager only            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAdminOrManager(w, r, "Only admins and managers can assign entries.", "/crm")
	if !res.OK {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/crm")
		return
	}

	entryID, ok := crmpolicy.ExtractRecordID(r, "entryID")
	if !ok {
		h.ErrLog.LogBadRequest(w, r, "bad entry id", nil, "Unknown entry.", "/crm")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	entry, err := h.Entries.GetByID(ctx, res.OrgID, entryID)
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "crm entry not found", "Unknown entry.", "/crm")
		return
	}

	// Empty assignee clears the assignment.
	var assignee *primitive.ObjectID
	if raw := strings.TrimSpace(r.FormValue("assigned_to")); raw != "" {
		uid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			h.ErrLog.LogBadRequest(w, r, "bad assignee id", err, "Unknown team member.", "/crm")
			return
		}
		// Assignee must be a member of the same organization.
		target, err := h.Users.GetByID(ctx, uid)
		if err != nil || target.OrganizationID == nil || *target.OrganizationID != res.OrgID {
			h.ErrLog.LogNotFound(w, r, "assignee not in organization", "Unknown team member.", "/crm")
			return
		}
		assignee = &uid
	}

	if err := h.Entries.Assign(ctx, res.OrgID, entryID, assignee); err != nil {
		h.ErrLog.LogServerError(w, r, "DB assign crm entry", err, "A server error occurred.", "/crm")
		return
	}

	h.Log.Info("crm entry assigned",
		zap.String("organization_id", res.OrgID.Hex()),
		zap.String("entry_id", entryID.Hex()),
		zap.String("assigned_by", res.UserID.Hex()))

	http.Redirect(w, r, "/crm/"+entry.ListID.Hex(), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /crm/{listID}/entries/{entryID}/delete                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireOrganization(w, r)
	if !res.OK {
		return
	}
	if !h.canManageCRM(w, r) {
		return
	}

	entry, ok := h.loadGuardedEntry(w, r, res)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	deleted, err := h.Entries.Delete(ctx, res.OrgID, entry.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB delete crm entry", err, "A server error occurred.", "/crm")
		return
	}
	if deleted == 0 {
		h.ErrLog.LogNotFound(w, r, "crm entry not found for delete", "Unknown entry.", "/crm")
		return
	}

	http.Redirect(w, r, "/crm/"+entry.ListID.Hex(), http.StatusSeeOther)
}

// loadGuardedEntry resolves the target entry and runs the ownership policy.
// Failures are already written to the response; callers just return on !ok.
//
// The policy denies restricted roles outright when no entry id can be pulled
// from the request, so a malformed URL never widens a caller's access.
func (h *Handler) loadGuardedEntry(w http.ResponseWriter, r *http.Request, res gates.Result) (models.CRMEntry, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var loaded models.CRMEntry
	var loadErr error
	allowed := crmpolicy.RequireEntryAccess(r, func(id primitive.ObjectID) (models.CRMEntry, bool) {
		loaded, loadErr = h.Entries.GetByID(ctx, res.OrgID, id)
		return loaded, loadErr == nil
	}, "entryID")

	if !allowed {
		if errors.Is(loadErr, crmentrystore.ErrNotFound) {
			h.ErrLog.LogNotFound(w, r, "crm entry not found", "Unknown entry.", "/crm")
		} else {
			uierrors.RenderForbidden(w, r, "You can only work entries assigned to you.", "/crm")
		}
		return models.CRMEntry{}, false
	}

	// Admin/manager paths skip the policy's lookup; load here if needed.
	if loaded.ID.IsZero() {
		entryID, ok := crmpolicy.ExtractRecordID(r, "entryID")
		if !ok {
			h.ErrLog.LogBadRequest(w, r, "bad entry id", nil, "Unknown entry.", "/crm")
			return models.CRMEntry{}, false
		}
		entry, err := h.Entries.GetByID(ctx, res.OrgID, entryID)
		if err != nil {
			h.ErrLog.LogNotFound(w, r, "crm entry not found", "Unknown entry.", "/crm")
			return models.CRMEntry{}, false
		}
		return entry, true
	}
	return loaded, true
}

func entryDetail(e models.CRMEntry) entryDetailVM {
	vm := entryDetailVM{
		ID:           e.ID.Hex(),
		BusinessName: e.BusinessName,
		Phone:        e.Phone,
		Email:        e.Email,
		Website:      e.Website,
		Address:      e.Address,
		Category:     e.Category,
		Status:       e.Status,
		Notes:        e.Notes,
	}
	if e.AssignedTo != nil {
		vm.AssignedTo = e.AssignedTo.Hex()
	}
	return vm
}
