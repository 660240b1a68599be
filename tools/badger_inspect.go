// Command badger_inspect dumps the chat store as a table. Handy to eyeball
// what the server actually persisted without waking the debug server.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"

	"chat-pulse/domain"
)

func main() {
	dbPath := flag.String("db", "./data/badger", "Path to badger DB")
	prefix := flag.String("prefix", "", "Prefix to scan (empty scans everything)")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Namespace", "Size", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())

			err := item.Value(func(v []byte) error {
				table.Append([]string{
					key,
					namespaceOf(key),
					fmt.Sprintf("%d B", len(v)),
					describe(key, v),
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("Scan failed: ", err)
	}

	table.Render()
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.ERROR)
	return badger.Open(opts)
}

func namespaceOf(key string) string {
	if idx := strings.Index(key, ":"); idx > 0 {
		return key[:idx]
	}
	return "raw"
}

// describe gives a one-line human summary of a row, namespace-aware.
func describe(key string, val []byte) string {
	switch namespaceOf(key) {
	case "user":
		var u domain.User
		if err := json.Unmarshal(val, &u); err == nil {
			return fmt.Sprintf("%s (guest=%t, last seen %s)",
				u.Username, u.Guest, u.LastSeen.Format("2006-01-02 15:04"))
		}
	case "chat":
		var c domain.Chat
		if err := json.Unmarshal(val, &c); err == nil {
			return fmt.Sprintf("%s (group=%t, by user %d)", c.Name, c.IsGroup, c.CreatedBy)
		}
	case "msg":
		var m domain.Message
		if err := json.Unmarshal(val, &m); err == nil {
			return fmt.Sprintf("user %d: %s", m.UserID, truncate(m.Text, 60))
		}
	case "story":
		var s domain.Story
		if err := json.Unmarshal(val, &s); err == nil {
			return fmt.Sprintf("user %d: %s (expires %s)",
				s.UserID, s.MediaURL, s.ExpiresAt.Format("15:04:05"))
		}
	case "msgidx":
		return "primary key " + string(val)
	}
	return "-"
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
