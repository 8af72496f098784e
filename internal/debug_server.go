package internal

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

//go:embed inspect.html
var templatesFS embed.FS

type InspectRow struct {
	Key       string
	Author    string
	Body      string
	Lang      string
	Timestamp string
}

type RowMapper func(key string, val []byte) InspectRow
type StatsProvider func() map[string]any

type PageData struct {
	Prefix string
	Items  []InspectRow
	Stats  map[string]any
}

// StartDebugServer exposes a read-only dashboard over the raw badger
// keyspace. Debug tooling only, never part of the public API surface.
func StartDebugServer(db *badger.DB, port int, mapper RowMapper, statsProvider StatsProvider) {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	if mapper == nil {
		mapper = MessageMapper
	}

	mux.HandleFunc("/inspect", func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "msg:"
		}

		data := PageData{
			Prefix: prefix,
			Stats:  make(map[string]any),
		}
		if statsProvider != nil {
			data.Stats = statsProvider()
		}

		_ = db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				_ = item.Value(func(val []byte) error {
					data.Items = append(data.Items, mapper(string(item.Key()), val))
					return nil
				})
			}
			return nil
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	go func() {
		_ = http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", port), mux)
	}()
}

// MessageMapper renders one stored message row. Values are the JSON
// documents written by the message store.
func MessageMapper(key string, val []byte) InspectRow {
	row := InspectRow{
		Key:       key,
		Author:    "--------",
		Timestamp: "--:--:--",
	}

	var doc struct {
		User    string    `json:"user"`
		Message string    `json:"message"`
		Lang    string    `json:"lang"`
		At      time.Time `json:"timestamp"`
	}
	if err := json.Unmarshal(val, &doc); err != nil {
		row.Body = fmt.Sprintf("unreadable value (%d bytes)", len(val))
		return row
	}

	row.Author = doc.User
	row.Body = doc.Message
	row.Lang = doc.Lang
	if !doc.At.IsZero() {
		row.Timestamp = doc.At.Format("15:04:05")
	}
	if strings.TrimSpace(row.Lang) == "" {
		row.Lang = "-"
	}
	return row
}
