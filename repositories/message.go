package repositories

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"chat-pulse/domain"
	"chat-pulse/errors"

	"github.com/dgraph-io/badger/v4"
)

// messageKey is formatted as "msg:{chat_id}:{timestamp_padded}:{id}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order equals append order per chat).
//  2. Keep two messages created in the same nanosecond distinct via the ID.
func messageKey(chatID domain.ChatID, at time.Time, id domain.MessageID) string {
	return fmt.Sprintf("msg:%09d:%019d:%09d", chatID, at.UnixNano(), id)
}

// messageIdxKey maps a message ID to its primary key so reactions can reach
// the row without knowing its timestamp.
func messageIdxKey(id domain.MessageID) string {
	return fmt.Sprintf("msgidx:%09d", id)
}

func (s *BadgerStorage) CreateMessage(_ context.Context, input CreateMessageInput) (domain.Message, error) {
	id, err := s.nextID(s.messageSeq)
	if err != nil {
		return domain.Message{}, err
	}

	message := domain.Message{
		ID:        domain.MessageID(id),
		ChatID:    input.ChatID,
		UserID:    input.UserID,
		Text:      input.Text,
		MediaURL:  input.MediaURL,
		MediaType: input.MediaType,
		Lang:      input.Lang,
		Reactions: map[string]int{},
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(message)
	if err != nil {
		return domain.Message{}, err
	}

	key := messageKey(message.ChatID, message.CreatedAt, message.ID)
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(key), data); err != nil {
			return err
		}
		return txn.Set([]byte(messageIdxKey(message.ID)), []byte(key))
	})
	if err != nil {
		return domain.Message{}, err
	}
	return message, nil
}

// GetMessage resolves one message through the ID index.
func (s *BadgerStorage) GetMessage(_ context.Context, id domain.MessageID) (domain.Message, error) {
	var message domain.Message
	err := s.db.View(func(txn *badger.Txn) error {
		idxItem, err := txn.Get([]byte(messageIdxKey(id)))
		if err != nil {
			return err
		}
		key, err := idxItem.ValueCopy(nil)
		if err != nil {
			return err
		}
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &message)
		})
	})
	if err != nil {
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return domain.Message{}, fmt.Errorf("message %d: %w", id, errors.ErrNotFound)
		}
		return domain.Message{}, err
	}
	return message, nil
}

// GetMessages retrieves the full history of a chat using a prefix scan.
// Thanks to the padded timestamp in the key, messages come back sorted in
// append order.
func (s *BadgerStorage) GetMessages(_ context.Context, chatID domain.ChatID) ([]domain.Message, error) {
	var messages []domain.Message
	prefix := fmt.Sprintf("msg:%09d:", chatID)
	err := scanJSON(s.db, prefix, func(m domain.Message) error {
		messages = append(messages, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// AddReaction increments the counter for the reaction string on the message
// row. Read-modify-write happens inside one badger transaction so two
// concurrent reactions both land.
func (s *BadgerStorage) AddReaction(_ context.Context, messageID domain.MessageID, _ domain.UserID, reaction string) (domain.Message, error) {
	var updated domain.Message
	err := s.db.Update(func(txn *badger.Txn) error {
		idxItem, err := txn.Get([]byte(messageIdxKey(messageID)))
		if err != nil {
			return err
		}
		key, err := idxItem.ValueCopy(nil)
		if err != nil {
			return err
		}

		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		err = item.Value(func(val []byte) error {
			return json.Unmarshal(val, &updated)
		})
		if err != nil {
			return err
		}

		if updated.Reactions == nil {
			updated.Reactions = map[string]int{}
		}
		updated.Reactions[reaction]++

		data, err := json.Marshal(updated)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return domain.Message{}, fmt.Errorf("message %d: %w", messageID, errors.ErrNotFound)
		}
		return domain.Message{}, err
	}
	return updated, nil
}
