// Copyright (C) 2025 the quixsi maintainers
// See root-dir/LICENSE for more information

package composition

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/quixsi/compose/internal/model"
)

func testInvite() *model.Invite {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	form := model.DefaultFormData()
	form.EventName = "Launch Party"
	form.StartDate = &start
	form.Location = "Cape Canaveral"
	form.Description = "Countdown starts at noon."
	form.RequireApproval = true
	form.Theme = &model.Theme{ID: "1", Kind: model.ThemeKindImage, URL: "https://x/y.jpg"}
	return form.Snapshot(start)
}

func TestRender_EntranceAnimation(t *testing.T) {
	inv := testInvite()

	tt := []struct {
		name    string
		frame   int
		check   func(*testing.T, *Frame)
	}{
		{
			name:  "frame 0 everything hidden",
			frame: 0,
			check: func(t *testing.T, f *Frame) {
				for _, l := range f.Layers {
					if l.Opacity != 0 {
						t.Errorf("layer %s visible at frame 0: %f", l.Kind, l.Opacity)
					}
					if l.OffsetY != slideDistance {
						t.Errorf("layer %s not at slide start: %f", l.Kind, l.OffsetY)
					}
				}
			},
		},
		{
			name:  "mid animation is staggered",
			frame: 20,
			check: func(t *testing.T, f *Frame) {
				var title, date Layer
				for _, l := range f.Layers {
					switch l.Kind {
					case LayerTitle:
						title = l
					case LayerDate:
						date = l
					}
				}
				if title.Opacity <= 0 || title.Opacity >= 1 {
					t.Errorf("title should be mid-fade: %f", title.Opacity)
				}
				if date.Opacity >= title.Opacity {
					t.Errorf("later group must trail: title %f, date %f", title.Opacity, date.Opacity)
				}
			},
		},
		{
			name:  "frame 60 fully visible",
			frame: 60,
			check: func(t *testing.T, f *Frame) {
				for _, l := range f.Layers {
					if l.Opacity != 1 {
						t.Errorf("layer %s not settled: %f", l.Kind, l.Opacity)
					}
					if l.OffsetY != 0 {
						t.Errorf("layer %s still offset: %f", l.Kind, l.OffsetY)
					}
				}
			},
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, Render(tc.frame, inv))
		})
	}
}

func TestRender_Deterministic(t *testing.T) {
	inv := testInvite()
	for _, frame := range []int{0, 7, 30, 45, 149} {
		a, err := json.Marshal(Render(frame, inv))
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		b, err := json.Marshal(Render(frame, inv))
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if !bytes.Equal(a, b) {
			t.Errorf("frame %d not deterministic", frame)
		}
	}
}

func TestRender_Monotonic(t *testing.T) {
	inv := testInvite()
	prev := -1.0
	for frame := 0; frame < DurationInFrames; frame++ {
		f := Render(frame, inv)
		opacity := f.Layers[0].Opacity
		if opacity < prev {
			t.Fatalf("title opacity decreased at frame %d: %f < %f", frame, opacity, prev)
		}
		prev = opacity
	}
}

func TestRender_Layers(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	tt := []struct {
		name     string
		mutate   func(*model.InviteFormData)
		expected []LayerKind
	}{
		{
			name:     "empty draft renders placeholder title and default details",
			mutate:   func(f *model.InviteFormData) {},
			expected: []LayerKind{LayerTitle, LayerDetails},
		},
		{
			name: "date layer appears with a start date",
			mutate: func(f *model.InviteFormData) {
				f.StartDate = &start
			},
			expected: []LayerKind{LayerTitle, LayerDate, LayerDetails},
		},
		{
			name: "all layers",
			mutate: func(f *model.InviteFormData) {
				f.StartDate = &start
				f.Location = "Berlin"
				f.Description = "A party."
			},
			expected: []LayerKind{LayerTitle, LayerDate, LayerLocation, LayerDescription, LayerDetails},
		},
		{
			name: "no details without capacity or approval",
			mutate: func(f *model.InviteFormData) {
				f.Capacity = ""
			},
			expected: []LayerKind{LayerTitle},
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			form := model.DefaultFormData()
			tc.mutate(form)
			f := Render(90, form.Snapshot(start))

			got := make([]LayerKind, len(f.Layers))
			for i, l := range f.Layers {
				got[i] = l.Kind
			}
			if len(got) != len(tc.expected) {
				t.Fatalf("expected layers %v, got %v", tc.expected, got)
			}
			for i := range got {
				if got[i] != tc.expected[i] {
					t.Fatalf("expected layers %v, got %v", tc.expected, got)
				}
			}
		})
	}
}

func TestRender_Background(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	form := model.DefaultFormData()
	f := Render(0, form.Snapshot(start))
	if f.Background.Kind != BackgroundSolid || f.Background.Color == "" {
		t.Errorf("expected solid fallback background, got %+v", f.Background)
	}

	form.Theme = &model.Theme{ID: "4", Kind: model.ThemeKindVideo, URL: "https://x/clip.mp4"}
	f = Render(0, form.Snapshot(start))
	if f.Background.Kind != BackgroundVideo || f.Background.URL != "https://x/clip.mp4" {
		t.Errorf("expected video background, got %+v", f.Background)
	}

	if f.Layers[0].Text != "Event Name" {
		t.Errorf("expected placeholder title, got %q", f.Layers[0].Text)
	}
}
