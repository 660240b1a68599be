package internal

import (
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"chat-pulse/observability"
)

func newTestDebugServer(t *testing.T) (*DebugServer, *observability.Stats) {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	require.NoError(t, db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte("user:000000001"), []byte(`{"id":1}`)); err != nil {
			return err
		}
		if err := txn.Set([]byte("user:000000002"), []byte(`{"id":2}`)); err != nil {
			return err
		}
		return txn.Set([]byte("chat:000000042"), []byte(`{"id":42}`))
	}))

	stats := observability.NewStats()
	return NewDebugServer(db, stats, "127.0.0.1:0", logs.GetLoggerFromLevel(slog.LevelError)), stats
}

func TestDebugStats(t *testing.T) {
	req := require.New(t)
	server, stats := newTestDebugServer(t)

	stats.IncrSessionsOpened()
	stats.IncrMessagesPosted()
	stats.IncrMessagesPosted()

	rec := httptest.NewRecorder()
	server.handleStats(rec, httptest.NewRequest("GET", "/debug/stats", nil))

	req.Equal(200, rec.Code)
	var snapshot observability.Snapshot
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &snapshot))
	req.Equal(uint64(1), snapshot.SessionsOpened)
	req.Equal(uint64(2), snapshot.MessagesPosted)
	req.Equal(int64(1), snapshot.SessionsLive)
}

func TestDebugKeys(t *testing.T) {
	server, _ := newTestDebugServer(t)

	t.Run("scans by prefix", func(t *testing.T) {
		req := require.New(t)
		rec := httptest.NewRecorder()
		server.handleKeys(rec, httptest.NewRequest("GET", "/debug/keys?prefix=user:", nil))

		req.Equal(200, rec.Code)
		var page keysPage
		req.NoError(json.Unmarshal(rec.Body.Bytes(), &page))
		req.Equal(2, page.Count)
		req.Equal("user", page.Items[0].Namespace)
		req.Empty(page.Items[0].Value)
	})

	t.Run("includes values on demand", func(t *testing.T) {
		req := require.New(t)
		rec := httptest.NewRecorder()
		server.handleKeys(rec, httptest.NewRequest("GET", "/debug/keys?prefix=chat:&values=1", nil))

		req.Equal(200, rec.Code)
		var page keysPage
		req.NoError(json.Unmarshal(rec.Body.Bytes(), &page))
		req.Equal(1, page.Count)
		req.JSONEq(`{"id":42}`, page.Items[0].Value)
	})
}
