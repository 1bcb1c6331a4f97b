// Copyright (C) 2025 the quixsi maintainers
// See root-dir/LICENSE for more information

// Package composition renders the animated invite as a pure function of
// a frame index and the invite data. The output is a visual tree that a
// player or exporter can draw, it never touches the store.
package composition

import (
	"fmt"
	"strings"

	"github.com/quixsi/compose/internal/model"
)

const (
	FPS              = 30
	DurationInFrames = 150
	Width            = 1280
	Height           = 720

	// Entrance animation: each group fades in over fadeFrames, groups
	// are staggered by groupOffset.
	fadeFrames  = 30
	groupOffset = 15

	slideDistance = 20.0

	fallbackColor = "#1e1e1e"
)

type LayerKind string

const (
	LayerTitle       LayerKind = "title"
	LayerDate        LayerKind = "date"
	LayerLocation    LayerKind = "location"
	LayerDescription LayerKind = "description"
	LayerDetails     LayerKind = "details"
)

type BackgroundKind string

const (
	BackgroundImage BackgroundKind = "image"
	BackgroundVideo BackgroundKind = "video"
	BackgroundSolid BackgroundKind = "solid"
)

type Background struct {
	Kind  BackgroundKind `json:"kind"`
	URL   string         `json:"url,omitempty"`
	Color string         `json:"color,omitempty"`
}

// Layer is one positioned text element. Opacity is in [0,1], OffsetY is
// the remaining entrance slide in pixels.
type Layer struct {
	Kind    LayerKind `json:"kind"`
	Text    string    `json:"text"`
	Opacity float64   `json:"opacity"`
	OffsetY float64   `json:"offsetY"`
}

type Frame struct {
	Index      int        `json:"index"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	Background Background `json:"background"`
	Layers     []Layer    `json:"layers"`
}

// Render projects the invite onto a single frame. It is deterministic:
// the same frame and invite always produce the same output.
func Render(frame int, inv *model.Invite) *Frame {
	f := &Frame{
		Index:      frame,
		Width:      Width,
		Height:     Height,
		Background: background(inv),
	}

	title := inv.EventName
	if title == "" {
		title = "Event Name"
	}
	f.Layers = append(f.Layers, layer(LayerTitle, title, frame, 0))

	if inv.StartDate != nil {
		f.Layers = append(f.Layers, layer(LayerDate, dateLine(&inv.InviteFormData), frame, groupOffset))
	}
	if inv.Location != "" {
		f.Layers = append(f.Layers, layer(LayerLocation, inv.Location, frame, groupOffset))
	}
	if inv.Description != "" {
		f.Layers = append(f.Layers, layer(LayerDescription, inv.Description, frame, 2*groupOffset))
	}
	if details := detailsLine(&inv.InviteFormData); details != "" {
		f.Layers = append(f.Layers, layer(LayerDetails, details, frame, 2*groupOffset))
	}

	return f
}

func layer(kind LayerKind, text string, frame, start int) Layer {
	opacity := fadeIn(frame, start)
	return Layer{
		Kind:    kind,
		Text:    text,
		Opacity: opacity,
		OffsetY: (1 - opacity) * slideDistance,
	}
}

// fadeIn is the entrance easing: 0 before the start frame, 1 once the
// window of fadeFrames has passed, monotonic in between.
func fadeIn(frame, start int) float64 {
	elapsed := frame - start
	if elapsed <= 0 {
		return 0
	}
	if elapsed >= fadeFrames {
		return 1
	}
	x := float64(elapsed) / float64(fadeFrames)
	inv := 1 - x
	return 1 - inv*inv*inv
}

func background(inv *model.Invite) Background {
	if inv.Theme == nil {
		return Background{Kind: BackgroundSolid, Color: fallbackColor}
	}
	switch inv.Theme.Kind {
	case model.ThemeKindVideo:
		return Background{Kind: BackgroundVideo, URL: inv.Theme.URL}
	default:
		return Background{Kind: BackgroundImage, URL: inv.Theme.URL}
	}
}

func dateLine(f *model.InviteFormData) string {
	var b strings.Builder
	b.WriteString(f.StartDate.Format("Monday, January 02"))
	if f.StartTime != "" {
		fmt.Fprintf(&b, " · %s", f.StartTime)
	}
	if f.EndTime != "" {
		fmt.Fprintf(&b, " - %s", f.EndTime)
	}
	return b.String()
}

func detailsLine(f *model.InviteFormData) string {
	var parts []string
	if f.Capacity != "" {
		parts = append(parts, f.Capacity+" capacity")
	}
	if f.RequireApproval {
		parts = append(parts, "Approval required")
	}
	return strings.Join(parts, " • ")
}
