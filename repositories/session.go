package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/tone-row/resonance/domain"
)

type ISessionRepository interface {
	StoreSnapshot(room string, session *domain.Session) error
	GetSnapshot(room string) (*domain.Session, error)
	Rooms() ([]string, error)
}

// SessionRepository persists the latest session snapshot of each room in
// BadgerDB under "session:{room}" keys. Snapshots are write-mostly: the
// authority overwrites on every broadcast, and the read path only serves
// operational inspection. In-process state stays authoritative.
type SessionRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewSessionRepository(db *badger.DB, log *slog.Logger) SessionRepository {
	return SessionRepository{db: db, log: log}
}

func sessionKey(room string) []byte {
	return []byte(fmt.Sprintf("session:%s", room))
}

func (r SessionRepository) StoreSnapshot(room string, session *domain.Session) error {
	bytes, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(sessionKey(room), bytes)
	})
}

func (r SessionRepository) GetSnapshot(room string) (*domain.Session, error) {
	var session domain.Session
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(room))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &session)
		})
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Rooms lists every room with a stored snapshot, via a key-only scan.
func (r SessionRepository) Rooms() ([]string, error) {
	var rooms []string
	prefix := []byte("session:")
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			rooms = append(rooms, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	return rooms, err
}
