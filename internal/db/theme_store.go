// Copyright (C) 2025 the quixsi maintainers
// See root-dir/LICENSE for more information

package db

import (
	"context"

	"github.com/quixsi/compose/internal/model"
)

type ThemeStore interface {
	ListThemes(context.Context) ([]*model.Theme, error)
	GetThemeByID(context.Context, string) (*model.Theme, error)
}
