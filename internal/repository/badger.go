// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/tunetrail/serving/internal/models"
)

// sessionKeyPrefix namespaces session rows in the badger keyspace;
// deviceIndexPrefix maps (user_id, device_id) to the active session id
// so GetActiveSessionByDevice never needs a full scan.
const (
	sessionKeyPrefix  = "session:"
	deviceIndexPrefix = "session_by_device:"
)

// Badger is a Repository backed by an embedded badger store for
// Sessions, the one entity whose in-process survival across a restart
// actually matters operationally (a user's active listening session
// should not silently vanish on a deploy). Every other entity delegates
// to an in-process Memory, keeping lighter-weight or easily
// reconstructed state out of the on-disk store.
type Badger struct {
	*Memory
	db *badger.DB
}

// NewBadger opens (or creates) a badger store at dir and wraps it around
// a fresh Memory repository for every entity but Sessions.
func NewBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("repository: open badger at %s: %w", dir, err)
	}
	return &Badger{Memory: NewMemory(), db: db}, nil
}

// Close releases the underlying badger store.
func (b *Badger) Close() error {
	return b.db.Close()
}

var _ Repository = (*Badger)(nil)

func (b *Badger) CreateSession(_ context.Context, s *models.Session) error {
	cp := *s
	return b.db.Update(func(txn *badger.Txn) error {
		if err := putJSON(txn, sessionKeyPrefix+s.ID, &cp); err != nil {
			return err
		}
		return txn.Set([]byte(deviceIndexPrefix+s.UserID+"\x00"+s.DeviceID), []byte(s.ID))
	})
}

func (b *Badger) GetSession(_ context.Context, id string) (*models.Session, error) {
	var s models.Session
	if err := b.view(sessionKeyPrefix+id, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (b *Badger) GetActiveSessionByDevice(_ context.Context, userID, deviceID string) (*models.Session, error) {
	var sessionID string
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(deviceIndexPrefix + userID + "\x00" + deviceID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			sessionID = string(val)
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("repository: lookup session by device: %w", err)
	}

	var s models.Session
	if err := b.view(sessionKeyPrefix+sessionID, &s); err != nil {
		return nil, err
	}
	if s.State != models.SessionActive {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (b *Badger) UpdateSessionHeartbeat(ctx context.Context, id string, trackID string, positionMS int64) error {
	return b.mutateSession(ctx, id, func(s *models.Session) {
		s.LastHeartbeatAt = time.Now()
		if trackID != "" {
			s.LastKnownTrackID = trackID
		}
		s.LastPositionMS = positionMS
	})
}

func (b *Badger) FinalizeSession(ctx context.Context, id string, state models.SessionState, endedBy models.EndedBy, summary *models.SessionSummary) error {
	return b.mutateSession(ctx, id, func(s *models.Session) {
		if s.EndedAt != nil {
			return
		}
		now := time.Now()
		s.State = state
		s.EndedAt = &now
		s.EndedBy = endedBy
		s.Summary = summary
	})
}

func (b *Badger) mutateSession(_ context.Context, id string, mutate func(*models.Session)) error {
	return b.db.Update(func(txn *badger.Txn) error {
		var s models.Session
		item, err := txn.Get([]byte(sessionKeyPrefix + id))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &s) }); err != nil {
			return err
		}
		mutate(&s)
		return putJSON(txn, sessionKeyPrefix+id, &s)
	})
}

func (b *Badger) view(key string, dst interface{}) error {
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error { return json.Unmarshal(val, dst) })
	})
	if err == badger.ErrKeyNotFound {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("repository: badger get %s: %w", key, err)
	}
	return nil
}

func putJSON(txn *badger.Txn, key string, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("repository: marshal %s: %w", key, err)
	}
	return txn.Set([]byte(key), body)
}
