// Copyright (C) 2025 the quixsi maintainers
// See root-dir/LICENSE for more information

package jsondb

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/compose/internal/model"
)

// NewThemeStore creates a theme catalog. The built-in catalog can be
// replaced by a JSON file, a missing file keeps the defaults.
func NewThemeStore(filename string) (*ThemeStore, error) {
	store := &ThemeStore{
		filename: filename,
		themes:   defaultThemes(),
	}
	if err := store.loadFromFile(); err != nil {
		return nil, err
	}
	return store, nil
}

type ThemeStore struct {
	mu sync.RWMutex

	filename string
	themes   []*model.Theme
}

func (t *ThemeStore) ListThemes(ctx context.Context) ([]*model.Theme, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "ListThemes")
	defer span.End()

	span.AddEvent("RLock")
	t.mu.RLock()
	defer span.AddEvent("RUnlock")
	defer t.mu.RUnlock()

	themes := make([]*model.Theme, len(t.themes))
	copy(themes, t.themes)
	return themes, nil
}

func (t *ThemeStore) GetThemeByID(ctx context.Context, id string) (*model.Theme, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "GetThemeByID")
	defer span.End()

	span.AddEvent("RLock")
	t.mu.RLock()
	defer span.AddEvent("RUnlock")
	defer t.mu.RUnlock()

	for _, theme := range t.themes {
		if theme.ID == id {
			return theme, nil
		}
	}
	err := errors.New("missing theme")
	span.RecordError(err)
	return nil, err
}

func (t *ThemeStore) loadFromFile() error {
	if t.filename == "" {
		return nil
	}
	if _, err := os.Stat(t.filename); os.IsNotExist(err) {
		// File does not exist, keep the built-in catalog.
		return nil
	}

	fileData, err := os.ReadFile(t.filename)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	return json.Unmarshal(fileData, &t.themes)
}

func defaultThemes() []*model.Theme {
	return []*model.Theme{
		{
			ID:        "1",
			Name:      "Space Explorer",
			Thumbnail: "https://images.pexels.com/photos/41162/moon-landing-apollo-11-nasa-buzz-aldrin-41162.jpeg?auto=compress&cs=tinysrgb&w=300",
			Kind:      model.ThemeKindImage,
			URL:       "https://images.pexels.com/photos/41162/moon-landing-apollo-11-nasa-buzz-aldrin-41162.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=1",
		},
		{
			ID:        "2",
			Name:      "Tropical Paradise",
			Thumbnail: "https://images.pexels.com/photos/1450353/pexels-photo-1450353.jpeg?auto=compress&cs=tinysrgb&w=300",
			Kind:      model.ThemeKindImage,
			URL:       "https://images.pexels.com/photos/1450353/pexels-photo-1450353.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=1",
		},
		{
			ID:        "3",
			Name:      "Urban Adventure",
			Thumbnail: "https://images.pexels.com/photos/466685/pexels-photo-466685.jpeg?auto=compress&cs=tinysrgb&w=300",
			Kind:      model.ThemeKindImage,
			URL:       "https://images.pexels.com/photos/466685/pexels-photo-466685.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=1",
		},
		{
			ID:        "4",
			Name:      "Waves",
			Thumbnail: "https://images.pexels.com/photos/924824/pexels-photo-924824.jpeg?auto=compress&cs=tinysrgb&w=300",
			Kind:      model.ThemeKindVideo,
			URL:       "https://player.vimeo.com/external/332588783.hd.mp4?s=981a21e0511c1a0c12b6d6a9b73c81c4c5177c46&profile_id=175&oauth2_token_id=57447761",
		},
		{
			ID:        "5",
			Name:      "Mountain Serenity",
			Thumbnail: "https://images.pexels.com/photos/361104/pexels-photo-361104.jpeg?auto=compress&cs=tinysrgb&w=300",
			Kind:      model.ThemeKindImage,
			URL:       "https://images.pexels.com/photos/361104/pexels-photo-361104.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=1",
		},
	}
}
