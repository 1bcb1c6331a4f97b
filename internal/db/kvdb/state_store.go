// Copyright (C) 2025 the quixsi maintainers
// See root-dir/LICENSE for more information

package kvdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/compose/internal/model"
)

const (
	bucketState   = "state_store"
	bucketInvites = "invite_store"

	keyFormData      = "form_data"
	keyCurrentInvite = "current_invite"
)

// NewStateStore keeps the session state in two bolt buckets: one for the
// draft and current-invite reference, one for the append-only invite
// list keyed by insertion sequence.
func NewStateStore(db *bolt.DB) (*StateStore, error) {
	if db.IsReadOnly() {
		// Bucket creation is not possible and not needed, the getters
		// treat missing buckets as an empty store.
		return &StateStore{db: db}, nil
	}
	return &StateStore{db: db}, db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucketState)); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists([]byte(bucketInvites))
		return err
	})
}

type StateStore struct {
	db *bolt.DB
}

func (s *StateStore) FormData(ctx context.Context) (*model.InviteFormData, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "FormData")
	defer span.End()

	form := model.DefaultFormData()
	return form, s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketState))
		if bucket == nil {
			return nil
		}
		res := bucket.Get([]byte(keyFormData))
		if res == nil {
			// First run, keep the defaults.
			return nil
		}
		return json.Unmarshal(res, form)
	})
}

func (s *StateStore) UpdateFormData(ctx context.Context, patch *model.FormPatch) (*model.InviteFormData, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "UpdateFormData")
	defer span.End()

	if patch == nil {
		err := errors.New("patch is required for updating")
		span.RecordError(err)
		return nil, err
	}

	form, err := s.FormData(ctx)
	if err != nil {
		return nil, err
	}
	patch.Apply(form)
	return form, s.putJSON(bucketState, keyFormData, form)
}

func (s *StateStore) ResetForm(ctx context.Context) (*model.InviteFormData, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "ResetForm")
	defer span.End()

	form := model.DefaultFormData()
	return form, s.putJSON(bucketState, keyFormData, form)
}

func (s *StateStore) SaveInvite(ctx context.Context) (*model.Invite, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "SaveInvite")
	defer span.End()

	form, err := s.FormData(ctx)
	if err != nil {
		return nil, err
	}
	invite := form.Snapshot(time.Now().UTC())

	return invite, s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketInvites))
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		j, err := json.Marshal(invite)
		if err != nil {
			return err
		}
		if err := bucket.Put(sequenceKey(seq), j); err != nil {
			return err
		}
		return tx.Bucket([]byte(bucketState)).Put([]byte(keyCurrentInvite), j)
	})
}

func (s *StateStore) ListInvites(ctx context.Context) ([]*model.Invite, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "ListInvites")
	defer span.End()

	var invites []*model.Invite
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketInvites))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(_, v []byte) error {
			invite := &model.Invite{}
			if err := json.Unmarshal(v, invite); err != nil {
				return err
			}
			invites = append(invites, invite)
			return nil
		})
	})
	return invites, err
}

func (s *StateStore) GetInviteByID(ctx context.Context, id string) (*model.Invite, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "GetInviteByID")
	defer span.End()

	invites, err := s.ListInvites(ctx)
	if err != nil {
		return nil, err
	}
	for _, invite := range invites {
		if invite.ID == id {
			return invite, nil
		}
	}
	err = fmt.Errorf("invite not found: %s", id)
	span.RecordError(err)
	return nil, err
}

func (s *StateStore) CurrentInvite(ctx context.Context) (*model.Invite, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "CurrentInvite")
	defer span.End()

	var invite *model.Invite
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketState))
		if bucket == nil {
			return nil
		}
		res := bucket.Get([]byte(keyCurrentInvite))
		if res == nil {
			return nil
		}
		invite = &model.Invite{}
		return json.Unmarshal(res, invite)
	})
	return invite, err
}

func (s *StateStore) SetCurrentInvite(ctx context.Context, invite *model.Invite) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "SetCurrentInvite")
	defer span.End()

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketState))
		if invite == nil {
			return bucket.Delete([]byte(keyCurrentInvite))
		}
		j, err := json.Marshal(invite)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(keyCurrentInvite), j)
	})
}

func (s *StateStore) putJSON(bucket, key string, v any) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		j, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return tx.Bucket([]byte(bucket)).Put([]byte(key), j)
	})
}

func sequenceKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
