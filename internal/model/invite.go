// Copyright (C) 2025 the quixsi maintainers
// See root-dir/LICENSE for more information

package model

import (
	"time"

	"github.com/google/uuid"
)

type ThemeKind string

const (
	ThemeKindImage ThemeKind = "image"
	ThemeKindVideo ThemeKind = "video"
)

// Theme is a reusable background asset. Themes come from a fixed catalog
// and are only ever selected by reference, never created at runtime.
type Theme struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Thumbnail string    `json:"thumbnail"`
	Kind      ThemeKind `json:"type"`
	URL       string    `json:"url"`
}

type Tickets struct {
	Price    string `json:"price"`
	Currency string `json:"currency"`
}

// InviteFormData is the single mutable draft being edited before it
// becomes an Invite. Every field may stay empty while editing; the event
// name is only required at submission time.
type InviteFormData struct {
	Theme           *Theme     `json:"theme"`
	EventName       string     `json:"eventName"`
	StartDate       *time.Time `json:"startDate"`
	StartTime       string     `json:"startTime"`
	EndDate         *time.Time `json:"endDate"`
	EndTime         string     `json:"endTime"`
	Location        string     `json:"location"`
	Description     string     `json:"description"`
	Timezone        string     `json:"timezone"`
	Tickets         Tickets    `json:"tickets"`
	RequireApproval bool       `json:"requireApproval"`
	Capacity        string     `json:"capacity"`
}

// Invite is a finalized snapshot of the draft plus identity and
// timestamps. It is never mutated after creation.
type Invite struct {
	InviteFormData
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	DefaultStartTime = "12:00"
	DefaultEndTime   = "13:00"
	DefaultTimezone  = "GMT-05:30"
	DefaultCapacity  = "Unlimited"
)

func DefaultFormData() *InviteFormData {
	return &InviteFormData{
		StartTime: DefaultStartTime,
		EndTime:   DefaultEndTime,
		Timezone:  DefaultTimezone,
		Tickets:   Tickets{Price: "Free", Currency: "USD"},
		Capacity:  DefaultCapacity,
	}
}

// NewInviteID returns a fresh unique invite identifier. The original
// implementation derived ids from the creation instant, which collides
// under rapid successive calls.
func NewInviteID() string {
	return "invite_" + uuid.NewString()
}

// Snapshot copies the draft into a new immutable Invite stamped with a
// fresh id and the given creation instant.
func (f *InviteFormData) Snapshot(now time.Time) *Invite {
	return &Invite{
		InviteFormData: *f.Clone(),
		ID:             NewInviteID(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Clone returns a deep copy, so that later draft edits cannot leak into
// saved invites.
func (f *InviteFormData) Clone() *InviteFormData {
	c := *f
	if f.Theme != nil {
		theme := *f.Theme
		c.Theme = &theme
	}
	if f.StartDate != nil {
		d := *f.StartDate
		c.StartDate = &d
	}
	if f.EndDate != nil {
		d := *f.EndDate
		c.EndDate = &d
	}
	return &c
}

// FormPatch carries a partial draft update. Nil fields are left
// untouched by Apply.
type FormPatch struct {
	Theme           *Theme
	EventName       *string
	StartDate       *time.Time
	StartTime       *string
	EndDate         *time.Time
	EndTime         *string
	Location        *string
	Description     *string
	Timezone        *string
	Tickets         *Tickets
	RequireApproval *bool
	Capacity        *string
}

// Apply shallow-merges the set patch fields into the draft.
func (p *FormPatch) Apply(f *InviteFormData) {
	if p.Theme != nil {
		theme := *p.Theme
		f.Theme = &theme
	}
	if p.EventName != nil {
		f.EventName = *p.EventName
	}
	if p.StartDate != nil {
		d := *p.StartDate
		f.StartDate = &d
	}
	if p.StartTime != nil {
		f.StartTime = *p.StartTime
	}
	if p.EndDate != nil {
		d := *p.EndDate
		f.EndDate = &d
	}
	if p.EndTime != nil {
		f.EndTime = *p.EndTime
	}
	if p.Location != nil {
		f.Location = *p.Location
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.Timezone != nil {
		f.Timezone = *p.Timezone
	}
	if p.Tickets != nil {
		f.Tickets = *p.Tickets
	}
	if p.RequireApproval != nil {
		f.RequireApproval = *p.RequireApproval
	}
	if p.Capacity != nil {
		f.Capacity = *p.Capacity
	}
}
