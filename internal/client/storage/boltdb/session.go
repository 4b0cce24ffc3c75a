package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/cvagent/internal/client/storage"
)

var sessionKey = []byte("current")

var _ storage.SessionStorage = (*Storage)(nil)

// SaveSession stores token and user under a single key in one transaction
func (s *Storage) SaveSession(ctx context.Context, session *storage.Session) error {
	if !session.Complete() {
		return storage.ErrIncompleteSession
	}

	return s.update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSession)
		if bucket == nil {
			return fmt.Errorf("session bucket not found")
		}

		data, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}

		if err := bucket.Put(sessionKey, data); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}

		return nil
	})
}

// GetSession retrieves the stored session
func (s *Storage) GetSession(ctx context.Context) (*storage.Session, error) {
	var session *storage.Session

	err := s.view(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSession)
		if bucket == nil {
			return fmt.Errorf("session bucket not found")
		}

		data := bucket.Get(sessionKey)
		if data == nil {
			return storage.ErrSessionNotFound
		}

		session = &storage.Session{}
		if err := json.Unmarshal(data, session); err != nil {
			return fmt.Errorf("failed to unmarshal session: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

// DeleteSession removes the stored session
func (s *Storage) DeleteSession(ctx context.Context) error {
	return s.update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSession)
		if bucket == nil {
			return fmt.Errorf("session bucket not found")
		}

		if err := bucket.Delete(sessionKey); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}

		return nil
	})
}

func (s *Storage) update(fn func(tx *bbolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return storage.ErrStorageClosed
	}
	return s.db.Update(fn)
}

func (s *Storage) view(fn func(tx *bbolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return storage.ErrStorageClosed
	}
	return s.db.View(fn)
}
