// internal/app/features/crm/lists.go
package crm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/leadscout/internal/app/features/errors"
	"github.com/dalemusser/leadscout/internal/app/policy/crmpolicy"
	crmliststore "github.com/dalemusser/leadscout/internal/app/store/crmlists"
	"github.com/dalemusser/leadscout/internal/app/system/auth"
	"github.com/dalemusser/leadscout/internal/app/system/gates"
	"github.com/dalemusser/leadscout/internal/app/system/htmlsanitize"
	"github.com/dalemusser/leadscout/internal/app/system/timeouts"
	"github.com/dalemusser/leadscout/internal/app/system/viewdata"
	"github.com/dalemusser/leadscout/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type listVM struct {
	ID          string
	Name        string
	Description string
}

type listsPageData struct {
	viewdata.BaseVM
	Lists     []listVM
	CanManage bool
	Error     string
}

type entryVM struct {
	ID           string
	BusinessName string
	Phone        string
	Status       string
	AssignedTo   string
}

type listPageData struct {
	viewdata.BaseVM
	List      listVM
	Entries   []entryVM
	CanManage bool
	Error     string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /crm – all lists                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLists(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireOrganization(w, r)
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	lists, err := h.Lists.ListByOrganization(ctx, res.OrgID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB list crm lists", err, "A server error occurred.", "/")
		return
	}

	vms := make([]listVM, 0, len(lists))
	for _, l := range lists {
		vms = append(vms, listVM{ID: l.ID.Hex(), Name: l.Name, Description: l.Description})
	}

	templates.Render(w, r, "crm_lists", listsPageData{
		BaseVM:    viewdata.NewBaseVM(r, "CRM lists", "/"),
		Lists:     vms,
		CanManage: res.Role == models.RoleAdmin || res.Role == models.RoleManager,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /crm – create a list                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleCreateList(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAdminOrManager(w, r, "Only admins and managers can create lists.", "/crm")
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

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		h.ErrLog.LogBadRequest(w, r, "missing list name", nil, "Please enter a list name.", "/crm")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Lists.Create(ctx, models.CRMList{
		OrganizationID: res.OrgID,
		Name:           name,
		Description:    htmlsanitize.Line(r.FormValue("description")),
		CreatedBy:      res.UserID,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB create crm list", err, "A server error occurred.", "/crm")
		return
	}

	h.Log.Info("crm list created",
		zap.String("organization_id", res.OrgID.Hex()),
		zap.String("list_id", list.ID.Hex()),
		zap.String("created_by", res.UserID.Hex()))

	http.Redirect(w, r, "/crm/"+list.ID.Hex(), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /crm/{listID} – one list with its entries                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireOrganization(w, r)
	if !res.OK {
		return
	}

	listID, ok := crmpolicy.ExtractRecordID(r, "listID")
	if !ok {
		h.ErrLog.LogBadRequest(w, r, "bad list id", nil, "Unknown list.", "/crm")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Lists.GetByID(ctx, res.OrgID, listID)
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "crm list not found", "Unknown list.", "/crm")
		return
	}

	// Callers see only their assigned entries, even inside a shared list.
	var entries []models.CRMEntry
	if crmpolicy.OwnershipRequired(res.Role) {
		entries, err = h.Entries.ListAssignedTo(ctx, res.OrgID, res.UserID)
		if err == nil {
			entries = filterByList(entries, listID)
		}
	} else {
		entries, err = h.Entries.ListByList(ctx, res.OrgID, listID)
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB list crm entries", err, "A server error occurred.", "/crm")
		return
	}

	vms := make([]entryVM, 0, len(entries))
	for _, e := range entries {
		vm := entryVM{
			ID:           e.ID.Hex(),
			BusinessName: e.BusinessName,
			Phone:        e.Phone,
			Status:       e.Status,
		}
		if e.AssignedTo != nil {
			vm.AssignedTo = e.AssignedTo.Hex()
		}
		vms = append(vms, vm)
	}

	templates.Render(w, r, "crm_list", listPageData{
		BaseVM:    viewdata.NewBaseVM(r, list.Name, "/crm"),
		List:      listVM{ID: list.ID.Hex(), Name: list.Name, Description: list.Description},
		Entries:   vms,
		CanManage: res.Role == models.RoleAdmin || res.Role == models.RoleManager,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /crm/{listID} – rename / redescribe a list                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleEditList(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAdminOrManager(w, r, "Only admins and managers can edit lists.", "/crm")
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
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		h.ErrLog.LogBadRequest(w, r, "missing list name", nil, "Please enter a list name.", "/crm/"+listID.Hex())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err := h.Lists.Update(ctx, res.OrgID, listID, name, htmlsanitize.Line(r.FormValue("description")))
	if errors.Is(err, crmliststore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "crm list not found for edit", "Unknown list.", "/crm")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB update crm list", err, "A server error occurred.", "/crm")
		return
	}

	http.Redirect(w, r, "/crm/"+listID.Hex(), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /crm/{listID}/delete                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleDeleteList(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAdminOrManager(w, r, "Only admins and managers can delete lists.", "/crm")
	if !res.OK {
		return
	}
	if !h.canManageCRM(w, r) {
		return
	}

	listID, ok := crmpolicy.ExtractRecordID(r, "listID")
	if !ok {
		h.ErrLog.LogBadRequest(w, r, "bad list id", nil, "Unknown list.", "/crm")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	// Entries go first so a failure can't orphan them silently.
	if _, err := h.Entries.DeleteByList(ctx, res.OrgID, listID); err != nil {
		h.ErrLog.LogServerError(w, r, "DB delete crm entries", err, "A server error occurred.", "/crm")
		return
	}
	deleted, err := h.Lists.Delete(ctx, res.OrgID, listID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB delete crm list", err, "A server error occurred.", "/crm")
		return
	}
	if deleted == 0 {
		h.ErrLog.LogNotFound(w, r, "crm list not found for delete", "Unknown list.", "/crm")
		return
	}

	h.Log.Info("crm list deleted",
		zap.String("organization_id", res.OrgID.Hex()),
		zap.String("list_id", listID.Hex()),
		zap.String("deleted_by", res.UserID.Hex()))

	http.Redirect(w, r, "/crm", http.StatusSeeOther)
}

func filterByList(entries []models.CRMEntry, listID primitive.ObjectID) []models.CRMEntry {
	out := entries[:0]
	for _, e := range entries {
		if e.ListID == listID {
			out = append(out, e)
		}
	}
	return out
}

// canManageCRM enforces the per-user CRM permission flag for mutations.
// Admins always pass.
func (h *Handler) canManageCRM(w http.ResponseWriter, r *http.Request) bool {
	u, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return false
	}
	if u.Role == models.RoleAdmin || u.CanManageCRM {
		return true
	}
	uierrors.RenderForbidden(w, r, "CRM changes are disabled for your account. Ask an admin to enable them.", "/crm")
	return false
}
