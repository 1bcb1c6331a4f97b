// Copyright (C) 2025 the quixsi maintainers
// See root-dir/LICENSE for more information

// Command render samples the animated composition of a saved invite
// into JSON lines, one frame per line. It is the offline counterpart of
// the /api/render endpoint.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"github.com/quixsi/compose/internal/composition"
	"github.com/quixsi/compose/internal/db"
	"github.com/quixsi/compose/internal/db/jsondb"
	"github.com/quixsi/compose/internal/db/kvdb"
	"github.com/quixsi/compose/internal/model"
)

func main() {
	var (
		dbStr    = flag.String("db", "jsondb://testdata", "database connection string, jsondb://<dir> or kvdb://<file>")
		inviteID = flag.String("invite", "", "invite id to render, defaults to the current invite")
		out      = flag.String("out", "-", "output file, - for stdout")
		step     = flag.Int("step", 1, "sample every n-th frame")
	)
	flag.Parse()

	jsonHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{})
	logger := slog.New(jsonHandler)
	slog.SetDefault(logger)

	if *step < 1 {
		logger.Error("step must be positive", "step", *step)
		os.Exit(1)
	}

	store, closeFn := newStateStore(logger, *dbStr)
	defer closeFn()

	ctx := context.Background()
	invite := loadInvite(ctx, logger, store, *inviteID)

	w := io.Writer(os.Stdout)
	if *out != "-" {
		f, err := os.Create(*out)
		if err != nil {
			logger.Error("could not create output file", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	for frame := 0; frame < composition.DurationInFrames; frame += *step {
		if err := enc.Encode(composition.Render(frame, invite)); err != nil {
			logger.Error("could not encode frame", "frame", frame, "error", err)
			os.Exit(1)
		}
	}
	logger.Info("render finished", "invite", invite.ID, "frames", (composition.DurationInFrames+*step-1)/ *step)
}

func loadInvite(ctx context.Context, logger *slog.Logger, store db.StateStore, id string) *model.Invite {
	if id != "" {
		invite, err := store.GetInviteByID(ctx, id)
		if err != nil {
			logger.Error("invite not found", "id", id, "error", err)
			os.Exit(1)
		}
		return invite
	}

	invite, err := store.CurrentInvite(ctx)
	if err != nil {
		logger.Error("could not read current invite", "error", err)
		os.Exit(1)
	}
	if invite == nil {
		logger.Error("no current invite, pass -invite or save one first")
		os.Exit(1)
	}
	return invite
}

func newStateStore(logger *slog.Logger, dbStr string) (db.StateStore, func()) {
	u, err := url.Parse(dbStr)
	if err != nil {
		logger.Error("unable to parse db connection string", "error", err)
		os.Exit(1)
	}

	switch u.Scheme {
	case "jsondb":
		store, err := jsondb.NewStateStore(filepath.Join(u.Host+u.Path, "state.json"))
		if err != nil {
			logger.Error("could not initialize state store", "error", err)
			os.Exit(1)
		}
		return store, func() {}
	case "kvdb":
		bdb, err := bolt.Open(u.Host+u.Path, 0600, &bolt.Options{ReadOnly: true})
		if err != nil {
			logger.Error("could not open bolt database", "error", err)
			os.Exit(1)
		}
		store, err := kvdb.NewStateStore(bdb)
		if err != nil {
			logger.Error("could not initialize state buckets", "error", err)
			os.Exit(1)
		}
		return store, func() { bdb.Close() }
	default:
		logger.Error("Unknown storage backend", "type", u.Scheme)
		os.Exit(1)
	}
	return nil, nil
}
