package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

const sequenceBandwidth = 64

// BadgerStorage is the production Storage implementation. Values are stored
// as JSON, keys carry the entity prefix plus whatever ordering the entity
// needs (messages use a zero-padded timestamp, see message.go).
type BadgerStorage struct {
	db  *badger.DB
	log *slog.Logger

	userSeq    *badger.Sequence
	chatSeq    *badger.Sequence
	messageSeq *badger.Sequence
	storySeq   *badger.Sequence
}

func NewBadgerStorage(db *badger.DB, log *slog.Logger) (*BadgerStorage, error) {
	s := &BadgerStorage{db: db, log: log}
	for _, seq := range []struct {
		key  string
		dest **badger.Sequence
	}{
		{"seq:user", &s.userSeq},
		{"seq:chat", &s.chatSeq},
		{"seq:message", &s.messageSeq},
		{"seq:story", &s.storySeq},
	} {
		sq, err := db.GetSequence([]byte(seq.key), sequenceBandwidth)
		if err != nil {
			return nil, fmt.Errorf("sequence %s: %w", seq.key, err)
		}
		*seq.dest = sq
	}
	return s, nil
}

// Close releases the ID sequences. The badger handle itself belongs to the
// caller that opened it.
func (s *BadgerStorage) Close() error {
	for _, seq := range []*badger.Sequence{s.userSeq, s.chatSeq, s.messageSeq, s.storySeq} {
		if err := seq.Release(); err != nil {
			return err
		}
	}
	return nil
}

func (s *BadgerStorage) nextID(seq *badger.Sequence) (int, error) {
	n, err := seq.Next()
	if err != nil {
		return 0, err
	}
	// Sequences start at 0, IDs at 1.
	return int(n) + 1, nil
}

func (s *BadgerStorage) setJSON(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

func (s *BadgerStorage) getJSON(key string, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

// scanJSON walks every value under prefix and unmarshals each into a fresh T.
func scanJSON[T any](db *badger.DB, prefix string, visit func(T) error) error {
	return db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			var value T
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &value)
			})
			if err != nil {
				return err
			}
			if err := visit(value); err != nil {
				return err
			}
		}
		return nil
	})
}
