// Copyright (C) 2025 the quixsi maintainers
// See root-dir/LICENSE for more information

package jsondb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/compose/internal/model"
)

// state is the persisted blob. The theme catalog is static and therefore
// excluded from it.
type state struct {
	FormData      *model.InviteFormData `json:"formData"`
	Invites       []*model.Invite       `json:"invites"`
	CurrentInvite *model.Invite         `json:"currentInvite"`
}

// StateStore is an implementation of the StateStore interface that keeps
// the whole session state in a single JSON file.
type StateStore struct {
	mu sync.RWMutex

	filename string
	state    state
}

// NewStateStore creates a new StateStore instance. A missing file is not
// an error, the store starts from the default draft.
func NewStateStore(filename string) (*StateStore, error) {
	store := &StateStore{
		filename: filename,
		state:    state{FormData: model.DefaultFormData()},
	}
	if err := store.loadFromFile(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *StateStore) FormData(ctx context.Context) (*model.InviteFormData, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "FormData")
	defer span.End()

	span.AddEvent("RLock")
	s.mu.RLock()
	defer span.AddEvent("RUnlock")
	defer s.mu.RUnlock()

	return s.state.FormData.Clone(), nil
}

// UpdateFormData shallow-merges the set patch fields into the draft. No
// validation happens here, the draft may stay incomplete while editing.
func (s *StateStore) UpdateFormData(ctx context.Context, patch *model.FormPatch) (*model.InviteFormData, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "UpdateFormData")
	defer span.End()

	if patch == nil {
		err := errors.New("patch is required for updating")
		span.RecordError(err)
		return nil, err
	}

	span.AddEvent("Lock")
	s.mu.Lock()
	defer span.AddEvent("Unlock")
	defer s.mu.Unlock()

	draft := s.state.FormData.Clone()
	patch.Apply(draft)

	next := s.state
	next.FormData = draft
	if err := s.saveToFile(ctx, next); err != nil {
		return nil, err
	}
	s.state = next
	return draft.Clone(), nil
}

// ResetForm replaces the draft with the documented defaults.
func (s *StateStore) ResetForm(ctx context.Context) (*model.InviteFormData, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "ResetForm")
	defer span.End()

	span.AddEvent("Lock")
	s.mu.Lock()
	defer span.AddEvent("Unlock")
	defer s.mu.Unlock()

	next := s.state
	next.FormData = model.DefaultFormData()
	if err := s.saveToFile(ctx, next); err != nil {
		return nil, err
	}
	s.state = next
	return s.state.FormData.Clone(), nil
}

// SaveInvite snapshots the draft into a new invite, appends it to the
// saved list and makes it the current invite. Repeated calls without
// edits produce distinct records.
func (s *StateStore) SaveInvite(ctx context.Context) (*model.Invite, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "SaveInvite")
	defer span.End()

	span.AddEvent("Lock")
	s.mu.Lock()
	defer span.AddEvent("Unlock")
	defer s.mu.Unlock()

	invite := s.state.FormData.Snapshot(time.Now().UTC())

	next := s.state
	next.Invites = append(append([]*model.Invite{}, s.state.Invites...), invite)
	next.CurrentInvite = invite
	if err := s.saveToFile(ctx, next); err != nil {
		return nil, err
	}
	s.state = next
	return invite, nil
}

func (s *StateStore) ListInvites(ctx context.Context) ([]*model.Invite, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "ListInvites")
	defer span.End()

	span.AddEvent("RLock")
	s.mu.RLock()
	defer span.AddEvent("RUnlock")
	defer s.mu.RUnlock()

	invites := make([]*model.Invite, len(s.state.Invites))
	copy(invites, s.state.Invites)
	return invites, nil
}

func (s *StateStore) GetInviteByID(ctx context.Context, id string) (*model.Invite, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "GetInviteByID")
	defer span.End()

	span.AddEvent("RLock")
	s.mu.RLock()
	defer span.AddEvent("RUnlock")
	defer s.mu.RUnlock()

	for _, invite := range s.state.Invites {
		if invite.ID == id {
			return invite, nil
		}
	}
	err := fmt.Errorf("invite not found: %s", id)
	span.RecordError(err)
	return nil, err
}

// CurrentInvite returns nil without error when no invite is selected.
func (s *StateStore) CurrentInvite(ctx context.Context) (*model.Invite, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "CurrentInvite")
	defer span.End()

	span.AddEvent("RLock")
	s.mu.RLock()
	defer span.AddEvent("RUnlock")
	defer s.mu.RUnlock()

	return s.state.CurrentInvite, nil
}

// SetCurrentInvite replaces the current-invite reference. It touches
// neither the draft nor the saved list.
func (s *StateStore) SetCurrentInvite(ctx context.Context, invite *model.Invite) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "SetCurrentInvite")
	defer span.End()

	span.AddEvent("Lock")
	s.mu.Lock()
	defer span.AddEvent("Unlock")
	defer s.mu.Unlock()

	next := s.state
	next.CurrentInvite = invite
	if err := s.saveToFile(ctx, next); err != nil {
		return err
	}
	s.state = next
	return nil
}

// saveToFile writes a state blob to the JSON file. Callers swap the
// in-memory state only after a successful write, so a failed write
// leaves memory and file consistent.
func (s *StateStore) saveToFile(ctx context.Context, st state) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "SaveToFile")
	defer span.End()

	fileData, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		span.RecordError(err)
		return err
	}

	if err := os.WriteFile(s.filename, fileData, 0644); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// loadFromFile rehydrates the state blob from the JSON file.
func (s *StateStore) loadFromFile() error {
	if _, err := os.Stat(s.filename); os.IsNotExist(err) {
		// File does not exist, first run.
		return nil
	}

	fileData, err := os.ReadFile(s.filename)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := json.Unmarshal(fileData, &s.state); err != nil {
		return err
	}
	if s.state.FormData == nil {
		s.state.FormData = model.DefaultFormData()
	}
	return nil
}
