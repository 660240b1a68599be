package search

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/blugelabs/bluge"

	"chat-pulse/domain"
)

// MessageIndex is a full-text index over message bodies, backed by Bluge.
// Indexing happens on the write path of ChatService, searching from the
// HTTP API. Writer access is serialized, readers are snapshots.
type MessageIndex struct {
	mu     sync.Mutex
	writer *bluge.Writer
	log    *slog.Logger
}

func NewMessageIndex(writer *bluge.Writer, log *slog.Logger) *MessageIndex {
	return &MessageIndex{writer: writer, log: log}
}

// Hit is one search result, newest-scored first.
type Hit struct {
	MessageID domain.MessageID
	Score     float64
}

// Index upserts one message into the index. The stored _id is the
// message primary key so hits can be resolved back through Storage.
func (idx *MessageIndex) Index(msg domain.Message) error {
	doc := bluge.NewDocument(formatID(msg.ID)).
		AddField(bluge.NewTextField("text", msg.Text).StoreValue()).
		AddField(bluge.NewKeywordField("chat", formatChat(msg.ChatID))).
		AddField(bluge.NewDateTimeField("created_at", msg.CreatedAt))

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := idx.writer.Update(doc.ID(), doc); err != nil {
		return fmt.Errorf("failed to index message %d: %w", msg.ID, err)
	}
	return nil
}

// Remove drops a message from the index.
func (idx *MessageIndex) Remove(id domain.MessageID) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := idx.writer.Delete(bluge.Identifier(formatID(id))); err != nil {
		return fmt.Errorf("failed to remove message %d from index: %w", id, err)
	}
	return nil
}

// Search runs a match query over message text. A zero chatID searches
// every chat, otherwise results are restricted to that chat.
func (idx *MessageIndex) Search(ctx context.Context, terms string, chatID domain.ChatID, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 20
	}

	match := bluge.NewMatchQuery(terms).SetField("text")
	var query bluge.Query = match
	if chatID != 0 {
		query = bluge.NewBooleanQuery().
			AddMust(match).
			AddMust(bluge.NewTermQuery(formatChat(chatID)).SetField("chat"))
	}

	reader, err := idx.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("failed to open index reader: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	dmi, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var hits []Hit
	for {
		next, err := dmi.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to iterate search results: %w", err)
		}
		if next == nil {
			break
		}

		hit := Hit{Score: next.Score}
		err = next.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				id, parseErr := strconv.Atoi(string(value))
				if parseErr != nil {
					idx.log.Warn("skipping hit with malformed id", "raw", string(value))
					return false
				}
				hit.MessageID = domain.MessageID(id)
			}
			return true
		})
		if err != nil {
			return nil, fmt.Errorf("failed to read stored fields: %w", err)
		}
		if hit.MessageID != 0 {
			hits = append(hits, hit)
		}
	}
	return hits, nil
}

func formatID(id domain.MessageID) string {
	return strconv.Itoa(int(id))
}

func formatChat(id domain.ChatID) string {
	return strconv.Itoa(int(id))
}
