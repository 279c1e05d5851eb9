package repositories

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"noteboard/domain"
	"noteboard/errors"
)

const (
	notePrefix   = "note:"
	noteCountKey = "note:count"
)

// NoteRepository persists notes in BadgerDB.
//
// Keys are formatted as "note:{id_padded}" with 20-digit zero padding so that
// ids sort lexicographically. The id counter lives under its own key and is
// bumped inside the same Badger transaction as the note write, which keeps
// ids dense even if the process dies between appends.
type NoteRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewNoteRepository(db *badger.DB, log *slog.Logger) NoteRepository {
	return NoteRepository{db: db, log: log}
}

// diskNote is the stored representation of a note. The id is not repeated in
// the value; the key carries it.
type diskNote struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
	At      int64  `json:"at"` // unix nanoseconds, UTC
}

func noteKey(id uint64) []byte {
	return fmt.Appendf(nil, "%s%020d", notePrefix, id)
}

// Append stores a note under the next dense id and returns that id.
func (r NoteRepository) Append(sender domain.Address, content string, at time.Time) (uint64, error) {
	value, err := json.Marshal(diskNote{
		Sender:  sender.String(),
		Content: content,
		At:      at.UnixNano(),
	})
	if err != nil {
		return 0, fmt.Errorf("marshal failed: %w", err)
	}

	var id uint64
	err = r.db.Update(func(txn *badger.Txn) error {
		id, err = readCount(txn)
		if err != nil {
			return err
		}
		if err = txn.Set(noteKey(id), value); err != nil {
			return err
		}
		var next [8]byte
		binary.BigEndian.PutUint64(next[:], id+1)
		return txn.Set([]byte(noteCountKey), next[:])
	})
	if err != nil {
		return 0, err
	}
	r.log.Debug("Note persisted", "id", id, "sender", sender.String())
	return id, nil
}

// Get retrieves a note by id. Ids at or beyond Count are out of range.
func (r NoteRepository) Get(id uint64) (domain.Note, error) {
	var disk diskNote
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(noteKey(id))
		if err == badger.ErrKeyNotFound {
			return errors.ErrOutOfRange
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &disk)
		})
	})
	if err != nil {
		return domain.Note{}, err
	}
	sender, err := domain.ParseAddress(disk.Sender)
	if err != nil {
		return domain.Note{}, err
	}
	return domain.Note{
		ID:      id,
		Sender:  sender,
		Content: disk.Content,
		At:      time.Unix(0, disk.At).UTC(),
	}, nil
}

// Count returns the number of stored notes, which is also the next id.
func (r NoteRepository) Count() (uint64, error) {
	var count uint64
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		count, err = readCount(txn)
		return err
	})
	return count, err
}

// LastID returns the id of the most recent note, or ErrEmptyBoard.
func (r NoteRepository) LastID() (uint64, error) {
	count, err := r.Count()
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, errors.ErrEmptyBoard
	}
	return count - 1, nil
}

func readCount(txn *badger.Txn) (uint64, error) {
	item, err := txn.Get([]byte(noteCountKey))
	if err == badger.ErrKeyNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var count uint64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("corrupt note counter: %d bytes", len(val))
		}
		count = binary.BigEndian.Uint64(val)
		return nil
	})
	return count, err
}
