// Copyright (C) 2025 the quixsi maintainers
// See root-dir/LICENSE for more information

package templates

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jeremywohl/flatten/v2"
	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/compose/internal/composition"
	"github.com/quixsi/compose/internal/db"
	"github.com/quixsi/compose/internal/model"
	"github.com/quixsi/compose/internal/parser/form"
)

//go:embed *.html
var templates embed.FS

func NewInviteHandler(sStore db.StateStore, tStore db.ThemeStore) *InviteHandler {
	coreTemplates := []string{"main.html", "main.style.html", "footer.html"}
	createTemplates := []string{"create.html", "theme-select.html", "preview.html"}
	viewTemplates := []string{"view.html", "preview.html"}
	adminTemplates := []string{"admin.html"}

	return &InviteHandler{
		tmplCreate: template.Must(template.ParseFS(templates, append(coreTemplates, createTemplates...)...)),
		tmplView:   template.Must(template.ParseFS(templates, append(coreTemplates, viewTemplates...)...)),
		tmplAdmin:  template.Must(template.ParseFS(templates, append(coreTemplates, adminTemplates...)...)),
		sStore:     sStore,
		tStore:     tStore,
		logger:     slog.Default().WithGroup("http"),
	}
}

type InviteHandler struct {
	tmplCreate *template.Template
	tmplView   *template.Template
	tmplAdmin  *template.Template
	sStore     db.StateStore
	tStore     db.ThemeStore
	logger     *slog.Logger
}

// previewData is the view model both preview surfaces render from.
type previewData struct {
	HasTheme    bool
	ThemeKind   model.ThemeKind
	ThemeURL    string
	ThemeName   string
	EventName   string
	DateLine    string
	Location    string
	Description string
	Details     string
}

// formInput covers the fields posted by the create form. Pointer fields
// keep absent inputs distinguishable from cleared ones.
type formInput struct {
	ThemeID         *string `form:"theme_id"`
	EventName       *string `form:"event_name"`
	StartDate       *string `form:"start_date"`
	StartTime       *string `form:"start_time"`
	EndDate         *string `form:"end_date"`
	EndTime         *string `form:"end_time"`
	Location        *string `form:"location"`
	Description     *string `form:"description"`
	Timezone        *string `form:"timezone"`
	RequireApproval *bool   `form:"require_approval"`
	Capacity        *string `form:"capacity"`
}

func (h *InviteHandler) RenderCreate(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "InviteHandler.RenderCreate")
	defer span.End()

	formData, err := h.sStore.FormData(ctx)
	if err != nil {
		span.RecordError(err)
		h.logger.ErrorContext(ctx, "could not read form data", "error", err)
		c.String(http.StatusInternalServerError, "could not read form data")
		return
	}

	themes, err := h.tStore.ListThemes(ctx)
	if err != nil {
		span.RecordError(err)
		h.logger.ErrorContext(ctx, "could not list themes", "error", err)
		c.String(http.StatusInternalServerError, "could not list themes")
		return
	}

	if err := h.tmplCreate.Execute(c.Writer, gin.H{
		"form":    formData,
		"themes":  themes,
		"preview": buildPreview(formData),
	}); err != nil {
		span.RecordError(err)
		h.logger.ErrorContext(ctx, "unable to execute create template", "error", err)
	}
}

// UpdateForm applies the posted fields to the draft. htmx requests get
// the refreshed preview fragment back, plain form posts a redirect.
func (h *InviteHandler) UpdateForm(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "InviteHandler.UpdateForm")
	defer span.End()

	if err := c.Request.ParseForm(); err != nil {
		span.RecordError(err)
		h.logger.ErrorContext(ctx, "could not parse form", "error", err)
		c.String(http.StatusBadRequest, "could not parse form")
		return
	}

	var input formInput
	if err := form.Unmarshal(c.Request.PostForm, &input); err != nil {
		span.RecordError(err)
		h.logger.ErrorContext(ctx, "could not parse form fields", "error", err)
		c.String(http.StatusBadRequest, "could not parse form fields")
		return
	}

	patch, err := h.buildPatch(ctx, &input)
	if err != nil {
		span.RecordError(err)
		h.logger.ErrorContext(ctx, "could not build form patch", "error", err)
		c.String(http.StatusBadRequest, "could not build form patch")
		return
	}

	formData, err := h.sStore.UpdateFormData(ctx, patch)
	if err != nil {
		span.RecordError(err)
		h.logger.ErrorContext(ctx, "could not update form data", "error", err)
		c.String(http.StatusInternalServerError, "could not update form data")
		return
	}

	h.respondPreview(c, formData)
}

func (h *InviteHandler) ResetForm(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "InviteHandler.ResetForm")
	defer span.End()

	formData, err := h.sStore.ResetForm(ctx)
	if err != nil {
		span.RecordError(err)
		h.logger.ErrorContext(ctx, "could not reset form", "error", err)
		c.String(http.StatusInternalServerError, "could not reset form")
		return
	}

	h.respondPreview(c, formData)
}

func (h *InviteHandler) SaveInvite(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "InviteHandler.SaveInvite")
	defer span.End()

	invite, err := h.sStore.SaveInvite(ctx)
	if err != nil {
		span.RecordError(err)
		h.logger.ErrorContext(ctx, "could not save invite", "error", err)
		c.String(http.StatusInternalServerError, "could not save invite")
		return
	}

	span.AddEvent("invite saved")
	h.logger.InfoContext(ctx, "invite saved", "id", invite.ID)
	c.Redirect(http.StatusSeeOther, "/view")
}

// RenderView shows the current invite. Without one it falls back to a
// snapshot of the draft, so the page stays useful while editing.
func (h *InviteHandler) RenderView(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "InviteHandler.RenderView")
	defer span.End()

	invite, err := h.sStore.CurrentInvite(ctx)
	if err != nil {
		span.RecordError(err)
		h.logger.ErrorContext(ctx, "could not read current invite", "error", err)
		c.String(http.StatusInternalServerError, "could not read current invite")
		return
	}
	if invite == nil {
		formData, err := h.sStore.FormData(ctx)
		if err != nil {
			span.RecordError(err)
			h.logger.ErrorContext(ctx, "could not read form data", "error", err)
			c.String(http.StatusInternalServerError, "could not read form data")
			return
		}
		invite = formData.Snapshot(time.Now().UTC())
		invite.ID = "preview"
	}

	h.renderInvite(c, invite)
}

// RenderInvite shows one saved invite and makes it the current one.
func (h *InviteHandler) RenderInvite(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "InviteHandler.RenderInvite")
	defer span.End()

	invite, err := h.sStore.GetInviteByID(ctx, c.Param("id"))
	if err != nil {
		span.RecordError(err)
		h.logger.WarnContext(ctx, "invite not found", "error", err, "id", c.Param("id"))
		c.String(http.StatusNotFound, "invite not found")
		return
	}

	if err := h.sStore.SetCurrentInvite(ctx, invite); err != nil {
		span.RecordError(err)
		h.logger.ErrorContext(ctx, "could not set current invite", "error", err)
	}

	h.renderInvite(c, invite)
}

func (h *InviteHandler) renderInvite(c *gin.Context, invite *model.Invite) {
	if err := h.tmplView.Execute(c.Writer, gin.H{
		"invite":  invite,
		"preview": buildPreview(&invite.InviteFormData),
		"player": gin.H{
			"fps":      composition.FPS,
			"duration": composition.DurationInFrames,
			"width":    composition.Width,
			"height":   composition.Height,
		},
	}); err != nil {
		h.logger.Error("unable to execute view template", "error", err)
	}
}

func (h *InviteHandler) RenderAdminOverview(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "InviteHandler.RenderAdminOverview")
	defer span.End()

	invites, err := h.sStore.ListInvites(ctx)
	if err != nil {
		span.RecordError(err)
		h.logger.ErrorContext(ctx, "could not list invites", "error", err)
		c.String(http.StatusInternalServerError, "could not list invites")
		return
	}

	status := struct {
		Total    int
		Themed   int
		Approval int
	}{Total: len(invites)}
	for _, inv := range invites {
		if inv.Theme != nil {
			status.Themed++
		}
		if inv.RequireApproval {
			status.Approval++
		}
	}

	formData, err := h.sStore.FormData(ctx)
	if err != nil {
		span.RecordError(err)
		h.logger.ErrorContext(ctx, "could not read form data", "error", err)
		c.String(http.StatusInternalServerError, "could not read form data")
		return
	}

	// Flatten the draft into dotted key/value pairs for the overview
	// table.
	out, _ := json.Marshal(formData)
	flattened, _ := flatten.FlattenString(string(out), "", flatten.DotStyle)
	draft := make(map[string]any)
	_ = json.Unmarshal([]byte(flattened), &draft)

	if err := h.tmplAdmin.Execute(c.Writer, gin.H{
		"status":  status,
		"invites": invites,
		"draft":   draft,
	}); err != nil {
		span.RecordError(err)
		h.logger.ErrorContext(ctx, "unable to execute admin template", "error", err)
	}
}

// respondPreview renders the preview fragment for htmx requests and
// redirects plain form posts back to the editor.
func (h *InviteHandler) respondPreview(c *gin.Context, formData *model.InviteFormData) {
	if c.Request.Header.Get("Hx-Request") != "true" {
		c.Redirect(http.StatusSeeOther, "/create")
		return
	}

	wrapperTemplate, _ := template.New("wrapper").Parse("{{ template \"PREVIEW\" .}}")
	t, err := wrapperTemplate.ParseFS(templates, "preview.html")
	if err != nil {
		h.logger.Error("unable to parse preview template", "error", err)
		return
	}
	if err := t.Execute(c.Writer, gin.H{"preview": buildPreview(formData)}); err != nil {
		h.logger.Error("unable to execute preview template", "error", err)
	}
}

func (h *InviteHandler) buildPatch(ctx context.Context, input *formInput) (*model.FormPatch, error) {
	patch := &model.FormPatch{
		EventName:       input.EventName,
		StartTime:       input.StartTime,
		EndTime:         input.EndTime,
		Location:        input.Location,
		Description:     input.Description,
		Timezone:        input.Timezone,
		RequireApproval: input.RequireApproval,
		Capacity:        input.Capacity,
	}

	if input.ThemeID != nil && *input.ThemeID != "" {
		theme, err := h.tStore.GetThemeByID(ctx, *input.ThemeID)
		if err != nil {
			return nil, err
		}
		patch.Theme = theme
	}
	if input.StartDate != nil && *input.StartDate != "" {
		d, err := time.Parse("2006-01-02", *input.StartDate)
		if err != nil {
			return nil, err
		}
		patch.StartDate = &d
	}
	if input.EndDate != nil && *input.EndDate != "" {
		d, err := time.Parse("2006-01-02", *input.EndDate)
		if err != nil {
			return nil, err
		}
		patch.EndDate = &d
	}
	return patch, nil
}

func buildPreview(f *model.InviteFormData) previewData {
	p := previewData{
		EventName:   f.EventName,
		Location:    f.Location,
		Description: f.Description,
	}
	if p.EventName == "" {
		p.EventName = "Event Name"
	}
	if f.Theme != nil {
		p.HasTheme = true
		p.ThemeKind = f.Theme.Kind
		p.ThemeURL = f.Theme.URL
		p.ThemeName = f.Theme.Name
	}
	if f.StartDate != nil {
		p.DateLine = f.StartDate.Format("Mon, Jan 02")
		if f.StartTime != "" {
			p.DateLine += " · " + f.StartTime
		}
		if f.EndTime != "" {
			p.DateLine += " - " + f.EndTime
		}
	}
	var details []string
	if f.Capacity != "" {
		details = append(details, f.Capacity+" capacity")
	}
	if f.RequireApproval {
		details = append(details, "Approval required")
	}
	p.Details = strings.Join(details, " • ")
	return p
}
