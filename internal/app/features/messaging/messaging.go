// internal/app/features/messaging/messaging.go
package messaging

import (
	"context"
	"errors"
	"net/http"
	"strings"

	templatestore "github.com/dalemusser/leadscout/internal/app/store/messagetemplates"
	"github.com/dalemusser/leadscout/internal/app/system/auth"
	"github.com/dalemusser/leadscout/internal/app/system/gates"
	"github.com/dalemusser/leadscout/internal/app/system/htmlsanitize"
	"github.com/dalemusser/leadscout/internal/app/system/mailer"
	"github.com/dalemusser/leadscout/internal/app/system/timeouts"
	"github.com/dalemusser/leadscout/internal/app/system/viewdata"
	"github.com/dalemusser/leadscout/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type templateVM struct {
	ID      string
	Name    string
	Subject string
	Body    string
}

type indexPageData struct {
	viewdata.BaseVM
	EmailTemplates []templateVM
	CallScripts    []templateVM
	CanManage      bool
	Error          string
}

type editPageData struct {
	viewdata.BaseVM
	Template templateVM
	Kind     string
	Error    string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /messaging – templates and scripts side by side                         |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeIndex(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireOrganization(w, r)
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	emails, err := h.Templates.ListByKind(ctx, res.OrgID, models.TemplateKindEmail)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB list email templates", err, "A server error occurred.", "/")
		return
	}
	scripts, err := h.Templates.ListByKind(ctx, res.OrgID, models.TemplateKindScript)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB list call scripts", err, "A server error occurred.", "/")
		return
	}

	templates.Render(w, r, "messaging_index", indexPageData{
		BaseVM:         viewdata.NewBaseVM(r, "Messaging", "/"),
		EmailTemplates: toVMs(emails),
		CallScripts:    toVMs(scripts),
		CanManage:      res.Role == models.RoleAdmin || res.Role == models.RoleManager,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /messaging – create a template or script                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAdminOrManager(w, r, "Only admins and managers can edit messaging material.", "/messaging")
	if !res.OK {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/messaging")
		return
	}

	kind := strings.ToLower(strings.TrimSpace(r.FormValue("kind")))
	if kind != models.TemplateKindEmail && kind != models.TemplateKindScript {
		h.ErrLog.LogBadRequest(w, r, "bad template kind", nil, "Unknown template kind.", "/messaging")
		return
	}
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		h.ErrLog.LogBadRequest(w, r, "missing template name", nil, "Please enter a name.", "/messaging")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	tpl, err := h.Templates.Create(ctx, models.MessageTemplate{
		OrganizationID: res.OrgID,
		Kind:           kind,
		Name:           htmlsanitize.Line(name),
		Subject:        htmlsanitize.Line(r.FormValue("subject")),
		Body:           htmlsanitize.Body(r.FormValue("body")),
		CreatedBy:      res.UserID,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB create message template", err, "A server error occurred.", "/messaging")
		return
	}

	h.Log.Info("message template created",
		zap.String("organization_id", res.OrgID.Hex()),
		zap.String("template_id", tpl.ID.Hex()),
		zap.String("kind", kind))

	http.Redirect(w, r, "/messaging", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /messaging/{templateID} – edit form                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAdminOrManager(w, r, "Only admins and managers can edit messaging material.", "/messaging")
	if !res.OK {
		return
	}

	tpl, ok := h.loadTemplate(w, r, res)
	if !ok {
		return
	}

	templates.Render(w, r, "messaging_edit", editPageData{
		BaseVM:   viewdata.NewBaseVM(r, tpl.Name, "/messaging"),
		Template: templateVM{ID: tpl.ID.Hex(), Name: tpl.Name, Subject: tpl.Subject, Body: tpl.Body},
		Kind:     tpl.Kind,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /messaging/{templateID} – update                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAdminOrManager(w, r, "Only admins and managers can edit messaging material.", "/messaging")
	if !res.OK {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/messaging")
		return
	}

	tpl, ok := h.loadTemplate(w, r, res)
	if !ok {
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		h.ErrLog.LogBadRequest(w, r, "missing template name", nil, "Please enter a name.", "/messaging")
		return
	}

	tpl.Name = htmlsanitize.Line(name)
	tpl.Subject = htmlsanitize.Line(r.FormValue("subject"))
	tpl.Body = htmlsanitize.Body(r.FormValue("body"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Templates.Update(ctx, res.OrgID, tpl); err != nil {
		h.ErrLog.LogServerError(w, r, "DB update message template", err, "A server error occurred.", "/messaging")
		return
	}

	http.Redirect(w, r, "/messaging", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /messaging/{templateID}/delete                                         |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAdminOrManager(w, r, "Only admins and managers can edit messaging material.", "/messaging")
	if !res.OK {
		return
	}

	tpl, ok := h.loadTemplate(w, r, res)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.Templates.Delete(ctx, res.OrgID, tpl.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "DB delete message template", err, "A server error occurred.", "/messaging")
		return
	}

	http.Redirect(w, r, "/messaging", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /messaging/{templateID}/test – send the template to yourself           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleSendTest(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAdminOrManager(w, r, "Only admins and managers can send test emails.", "/messaging")
	if !res.OK {
		return
	}

	tpl, ok := h.loadTemplate(w, r, res)
	if !ok {
		return
	}
	if tpl.Kind != models.TemplateKindEmail {
		h.ErrLog.LogBadRequest(w, r, "test send of non-email template", nil, "Only email templates can be test-sent.", "/messaging")
		return
	}

	u, ok := auth.CurrentUser(r)
	if !ok || u.Email == "" {
		h.ErrLog.LogBadRequest(w, r, "no email on session for test send", nil, "Your account has no email address.", "/messaging")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	err := h.Mail.Send(ctx, mailer.Message{
		To:      u.Email,
		Subject: tpl.Subject,
		HTML:    tpl.Body,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "test email send failed", err, "The test email could not be sent.", "/messaging")
		return
	}

	h.Log.Info("test email sent",
		zap.String("organization_id", res.OrgID.Hex()),
		zap.String("template_id", tpl.ID.Hex()),
		zap.String("to", u.Email))

	http.Redirect(w, r, "/messaging", http.StatusSeeOther)
}

// loadTemplate resolves the {templateID} route parameter inside the caller's
// organization. A foreign template id behaves as missing.
func (h *Handler) loadTemplate(w http.ResponseWriter, r *http.Request, res gates.Result) (models.MessageTemplate, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "templateID"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad template id", err, "Unknown template.", "/messaging")
		return models.MessageTemplate{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	tpl, err := h.Templates.GetByID(ctx, res.OrgID, id)
	if errors.Is(err, templatestore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "message template not found", "Unknown template.", "/messaging")
		return models.MessageTemplate{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB load message template", err, "A server error occurred.", "/messaging")
		return models.MessageTemplate{}, false
	}
	return tpl, true
}

func toVMs(tpls []models.MessageTemplate) []templateVM {
	vms := make([]templateVM, 0, len(tpls))
	for _, t := range tpls {
		vms = append(vms, templateVM{ID: t.ID.Hex(), Name: t.Name, Subject: t.Subject, Body: t.Body})
	}
	return vms
}
