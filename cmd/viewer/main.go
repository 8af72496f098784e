package main

import (
	"chat-relay/internal"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
)

// Viewer dumps the message log of a running (or stopped) server. It
// opens the database read-only so it can run alongside the server.
func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// 2. Open Badger in Read-Only mode
	// Note: BypassLockGuard allows opening if the server holds the lock
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	header := color.New(color.BgBlack, color.FgGreen).Render("Message log")
	fmt.Println(header)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Author", "Message", "Lang", "Time"})
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

	count := 0
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("msg:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			if err := item.Value(func(v []byte) error {
				table.Append(messageRow(string(item.Key()), v))
				count++
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to scan database: %v", err)
	}

	table.Render()
	fmt.Println(color.New(color.FgCyan).Render(fmt.Sprintf("%d messages", count)))
}

func messageRow(key string, val []byte) []string {
	var doc struct {
		User    string    `json:"user"`
		Message string    `json:"message"`
		Lang    string    `json:"lang"`
		At      time.Time `json:"timestamp"`
	}
	if err := json.Unmarshal(val, &doc); err != nil {
		return []string{key, "?", fmt.Sprintf("unreadable (%d bytes)", len(val)), "-", "-"}
	}

	lang := doc.Lang
	if lang == "" {
		lang = "-"
	}
	return []string{key, doc.User, doc.Message, lang, doc.At.Format("2006-01-02 15:04:05")}
}
