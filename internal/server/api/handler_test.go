// Copyright (C) 2025 the quixsi maintainers
// See root-dir/LICENSE for more information

package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/quixsi/compose/internal/db/jsondb"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := jsondb.NewStateStore(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("could not create state store: %v", err)
	}

	handler := NewInviteAPI(store)
	mux := gin.New()
	mux.POST("/api/create-invite", handler.CreateInvite)
	mux.GET("/api/render/:frame", handler.RenderFrame)
	return mux
}

func postInvite(t *testing.T, mux *gin.Engine, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/create-invite", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

type inviteResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  json.RawMessage `json:"error"`
}

func TestCreateInvite(t *testing.T) {
	valid := `{
		"theme": {"id": "1", "type": "image", "url": "https://x/y.jpg"},
		"eventName": "Launch Party",
		"startDate": "2025-01-01T12:00:00Z"
	}`

	t.Run("valid payload", func(t *testing.T) {
		mux := newTestRouter(t)
		rec := postInvite(t, mux, valid)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body)
		}

		var resp inviteResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("could not decode response: %v", err)
		}
		if resp.Status != "success" {
			t.Errorf("expected status success, got %q", resp.Status)
		}

		var data struct {
			ID        string `json:"id"`
			EventName string `json:"eventName"`
			StartTime string `json:"startTime"`
			EndTime   string `json:"endTime"`
			Timezone  string `json:"timezone"`
			Tickets   struct {
				Price    string `json:"price"`
				Currency string `json:"currency"`
			} `json:"tickets"`
			CreatedAt string `json:"createdAt"`
		}
		if err := json.Unmarshal(resp.Data, &data); err != nil {
			t.Fatalf("could not decode data: %v", err)
		}
		if data.ID == "" {
			t.Error("expected a generated invite id")
		}
		if data.EventName != "Launch Party" {
			t.Errorf("expected event name to be echoed, got %q", data.EventName)
		}
		if data.StartTime != "12:00" || data.EndTime != "13:00" {
			t.Errorf("expected default times, got %q - %q", data.StartTime, data.EndTime)
		}
		if data.Timezone != "GMT-05:30" {
			t.Errorf("expected default timezone, got %q", data.Timezone)
		}
		if data.Tickets.Price != "Free" || data.Tickets.Currency != "USD" {
			t.Errorf("expected free USD tickets, got %+v", data.Tickets)
		}
		if data.CreatedAt == "" {
			t.Error("expected createdAt to be set")
		}
	})

	t.Run("ids are unique", func(t *testing.T) {
		mux := newTestRouter(t)
		ids := make(map[string]bool)
		for i := 0; i < 3; i++ {
			rec := postInvite(t, mux, valid)
			var resp inviteResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("could not decode response: %v", err)
			}
			var data struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal(resp.Data, &data); err != nil {
				t.Fatalf("could not decode data: %v", err)
			}
			if ids[data.ID] {
				t.Fatalf("duplicate invite id %q", data.ID)
			}
			ids[data.ID] = true
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		mux := newTestRouter(t)
		rec := postInvite(t, mux, `{"eventName": `)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", rec.Code)
		}
		var resp inviteResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("could not decode response: %v", err)
		}
		var msg string
		if err := json.Unmarshal(resp.Error, &msg); err != nil {
			t.Fatalf("expected a string error, got %s", resp.Error)
		}
		if msg != "Failed to create invite" {
			t.Errorf("unexpected error message %q", msg)
		}
	})
}

func TestCreateInviteValidation(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		path    string
	}{
		{
			name: "missing event name",
			payload: `{
				"theme": {"id": "1", "type": "image", "url": "https://x/y.jpg"},
				"startDate": "2025-01-01T12:00:00Z"
			}`,
			path: "eventName",
		},
		{
			name: "empty event name",
			payload: `{
				"theme": {"id": "1", "type": "image", "url": "https://x/y.jpg"},
				"eventName": "",
				"startDate": "2025-01-01T12:00:00Z"
			}`,
			path: "eventName",
		},
		{
			name: "missing theme",
			payload: `{
				"eventName": "Launch Party",
				"startDate": "2025-01-01T12:00:00Z"
			}`,
			path: "theme",
		},
		{
			name: "invalid theme url",
			payload: `{
				"theme": {"id": "1", "type": "image", "url": "not a url"},
				"eventName": "Launch Party",
				"startDate": "2025-01-01T12:00:00Z"
			}`,
			path: "theme.url",
		},
		{
			name: "unknown theme type",
			payload: `{
				"theme": {"id": "1", "type": "gif", "url": "https://x/y.gif"},
				"eventName": "Launch Party",
				"startDate": "2025-01-01T12:00:00Z"
			}`,
			path: "theme.type",
		},
		{
			name: "invalid start date",
			payload: `{
				"theme": {"id": "1", "type": "image", "url": "https://x/y.jpg"},
				"eventName": "Launch Party",
				"startDate": "tomorrow"
			}`,
			path: "startDate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newTestRouter(t)
			rec := postInvite(t, mux, tt.payload)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body)
			}

			var resp inviteResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("could not decode response: %v", err)
			}
			if resp.Status != "error" {
				t.Errorf("expected status error, got %q", resp.Status)
			}

			var violations []fieldError
			if err := json.Unmarshal(resp.Error, &violations); err != nil {
				t.Fatalf("expected a violation list, got %s", resp.Error)
			}
			if len(violations) == 0 {
				t.Fatal("expected at least one violation")
			}
			found := false
			for _, v := range violations {
				if v.Path == tt.path {
					found = true
					if v.Message == "" {
						t.Errorf("expected a message for %q", v.Path)
					}
				}
			}
			if !found {
				t.Errorf("expected a violation for %q, got %+v", tt.path, violations)
			}
		})
	}
}

func TestRenderFrame(t *testing.T) {
	mux := newTestRouter(t)

	t.Run("draft fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/render/0", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body)
		}

		var resp inviteResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("could not decode response: %v", err)
		}
		var frame struct {
			Index  int `json:"index"`
			Width  int `json:"width"`
			Height int `json:"height"`
		}
		if err := json.Unmarshal(resp.Data, &frame); err != nil {
			t.Fatalf("could not decode frame: %v", err)
		}
		if frame.Index != 0 || frame.Width != 1280 || frame.Height != 720 {
			t.Errorf("unexpected frame header %+v", frame)
		}
	})

	t.Run("frame out of range", func(t *testing.T) {
		for _, path := range []string{"/api/render/-1", "/api/render/150", "/api/render/abc"} {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("%s: expected status 400, got %d", path, rec.Code)
			}
		}
	})
}
