// Package internal exposes an operator-facing HTTP surface: live counters
// and raw storage inspection. Never expose this listener publicly.
package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"chat-pulse/observability"
)

type KeyRow struct {
	Key       string `json:"key"`
	Namespace string `json:"namespace"`
	Size      int    `json:"size"`
	Value     string `json:"value,omitempty"`
}

type keysPage struct {
	Prefix string   `json:"prefix"`
	Count  int      `json:"count"`
	Items  []KeyRow `json:"items"`
}

// DebugServer serves /debug/stats and /debug/keys. It runs under the
// supervisor like any other worker.
type DebugServer struct {
	db    *badger.DB
	stats *observability.Stats
	addr  string
	log   *slog.Logger
}

func NewDebugServer(db *badger.DB, stats *observability.Stats, addr string, log *slog.Logger) *DebugServer {
	return &DebugServer{db: db, stats: stats, addr: addr, log: log}
}

func (d *DebugServer) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /debug/stats", d.handleStats)
	mux.HandleFunc("GET /debug/keys", d.handleKeys)

	server := &http.Server{Addr: d.addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	d.log.Info("debug server listening", slog.String("addr", d.addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return fmt.Errorf("debug server: %w", err)
	}
}

func (d *DebugServer) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, d.stats.GetLatest())
}

func (d *DebugServer) handleKeys(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		prefix = "user:"
	}
	withValues := r.URL.Query().Get("values") == "1"

	page := keysPage{Prefix: prefix}
	err := d.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			item := it.Item()
			row := KeyRow{
				Key:       string(item.Key()),
				Namespace: keyNamespace(string(item.Key())),
			}
			if err := item.Value(func(val []byte) error {
				row.Size = len(val)
				if withValues && json.Valid(val) {
					row.Value = string(val)
				}
				return nil
			}); err != nil {
				return err
			}
			page.Items = append(page.Items, row)
		}
		return nil
	})
	if err != nil {
		d.log.Error("key scan failed", slog.Any("error", err))
		http.Error(w, "scan failed", http.StatusInternalServerError)
		return
	}
	page.Count = len(page.Items)
	writeJSON(w, page)
}

func keyNamespace(key string) string {
	if idx := strings.Index(key, ":"); idx > 0 {
		return key[:idx]
	}
	return "raw"
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(payload)
}
