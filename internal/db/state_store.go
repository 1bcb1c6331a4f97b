// Copyright (C) 2025 the quixsi maintainers
// See root-dir/LICENSE for more information

package db

import (
	"context"

	"github.com/quixsi/compose/internal/model"
)

// StateStore holds the in-progress draft, the append-only list of saved
// invites and the current-invite reference, and keeps them durable
// across restarts.
type StateStore interface {
	FormData(context.Context) (*model.InviteFormData, error)
	UpdateFormData(context.Context, *model.FormPatch) (*model.InviteFormData, error)
	ResetForm(context.Context) (*model.InviteFormData, error)
	SaveInvite(context.Context) (*model.Invite, error)
	ListInvites(context.Context) ([]*model.Invite, error)
	GetInviteByID(context.Context, string) (*model.Invite, error)
	CurrentInvite(context.Context) (*model.Invite, error)
	SetCurrentInvite(context.Context, *model.Invite) error
}
