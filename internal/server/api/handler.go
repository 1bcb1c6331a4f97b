// Copyright (C) 2025 the quixsi maintainers
// See root-dir/LICENSE for more information

package api

import (
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/compose/internal/composition"
	"github.com/quixsi/compose/internal/db"
	"github.com/quixsi/compose/internal/model"
)

const rfc3339Layout = "2006-01-02T15:04:05Z07:00"

// createInviteRequest is the submission schema. Field paths in error
// responses use the JSON names, see newValidator.
type createInviteRequest struct {
	Theme *struct {
		ID   string `json:"id" validate:"required"`
		Type string `json:"type" validate:"required,oneof=image video"`
		URL  string `json:"url" validate:"required,url"`
	} `json:"theme" validate:"required"`
	EventName       string  `json:"eventName" validate:"required,min=1"`
	StartDate       string  `json:"startDate" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	EndDate         *string `json:"endDate" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Location        string  `json:"location"`
	Description     string  `json:"description"`
	Capacity        string  `json:"capacity"`
	RequireApproval bool    `json:"requireApproval"`
}

type fieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func NewInviteAPI(sStore db.StateStore) *InviteAPI {
	return &InviteAPI{
		sStore:   sStore,
		validate: newValidator(),
		logger:   slog.Default().WithGroup("api"),
	}
}

type InviteAPI struct {
	sStore   db.StateStore
	validate *validator.Validate
	logger   *slog.Logger
}

// CreateInvite validates the payload and echoes back a complete invite
// record. It is a mocked boundary: nothing is persisted.
func (a *InviteAPI) CreateInvite(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "InviteAPI.CreateInvite")
	defer span.End()

	var req createInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		a.logger.ErrorContext(ctx, "could not decode invite payload", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Failed to create invite",
		})
		return
	}

	if err := a.validate.Struct(&req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			span.RecordError(err)
			a.logger.ErrorContext(ctx, "could not validate invite payload", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"status": "error",
				"error":  "Failed to create invite",
			})
			return
		}
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  fieldErrors(verrs),
		})
		return
	}

	invite, err := buildInvite(&req)
	if err != nil {
		span.RecordError(err)
		a.logger.ErrorContext(ctx, "could not build invite", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Failed to create invite",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   invite,
	})
}

// RenderFrame samples the animated composition of the current invite at
// one frame. Without a saved invite the draft is rendered, like the
// view page does.
func (a *InviteAPI) RenderFrame(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "InviteAPI.RenderFrame")
	defer span.End()

	frame, err := strconv.Atoi(c.Param("frame"))
	if err != nil || frame < 0 || frame >= composition.DurationInFrames {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "frame out of range",
		})
		return
	}

	invite, err := a.sStore.CurrentInvite(ctx)
	if err != nil {
		span.RecordError(err)
		a.logger.ErrorContext(ctx, "could not read current invite", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "could not read current invite",
		})
		return
	}
	if invite == nil {
		form, err := a.sStore.FormData(ctx)
		if err != nil {
			span.RecordError(err)
			a.logger.ErrorContext(ctx, "could not read form data", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"status": "error",
				"error":  "could not read form data",
			})
			return
		}
		invite = form.Snapshot(time.Now().UTC())
		invite.ID = "preview"
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   composition.Render(frame, invite),
	})
}

// buildInvite merges the validated input with generated defaults and a
// fresh identity, mirroring the reference response shape.
func buildInvite(req *createInviteRequest) (*model.Invite, error) {
	start, err := time.Parse(rfc3339Layout, req.StartDate)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	invite := &model.Invite{
		InviteFormData: model.InviteFormData{
			Theme: &model.Theme{
				ID:   req.Theme.ID,
				Kind: model.ThemeKind(req.Theme.Type),
				URL:  req.Theme.URL,
			},
			EventName:       req.EventName,
			StartDate:       &start,
			StartTime:       model.DefaultStartTime,
			EndTime:         model.DefaultEndTime,
			Location:        req.Location,
			Description:     req.Description,
			Timezone:        model.DefaultTimezone,
			Tickets:         model.Tickets{Price: "Free", Currency: "USD"},
			RequireApproval: req.RequireApproval,
			Capacity:        req.Capacity,
		},
		ID:        model.NewInviteID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.EndDate != nil {
		end, err := time.Parse(rfc3339Layout, *req.EndDate)
		if err != nil {
			return nil, err
		}
		invite.EndDate = &end
	}
	return invite, nil
}

// newValidator reports field paths by JSON name, so violations read
// like "theme.url" instead of "Theme.URL".
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func fieldErrors(verrs validator.ValidationErrors) []fieldError {
	out := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		// Strip the root struct segment from the namespace.
		path := fe.Namespace()
		if _, rest, ok := strings.Cut(path, "."); ok {
			path = rest
		}
		out = append(out, fieldError{Path: path, Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fe.Field() + " is too short"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "url":
		return fe.Field() + " must be a valid URL"
	case "datetime":
		return fe.Field() + " must be an ISO-8601 date-time"
	default:
		return fe.Field() + " is invalid"
	}
}
