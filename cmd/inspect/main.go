// Command inspect dumps relay records from a BadgerDB store as a
// table, for debugging a running or stopped relay. It opens the store
// read-only and bypasses the lock guard so it can run next to a live
// server process.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
)

type messageRecord struct {
	ID         int64     `json:"id"`
	FromUserID int64     `json:"from_user_id"`
	ToUserID   int64     `json:"to_user_id"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

type userRecord struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

func main() {
	dbPath := flag.String("db", "./data/badger", "Path to badger DB")
	// Default scans messages; pass -prefix user:name: for accounts
	prefix := flag.String("prefix", "msg:", "Prefix to scan")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Timestamp", "From", "To", "Detail"})
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

			// Sequence bookkeeping and id pointers carry no payload worth printing
			if strings.HasPrefix(key, "seq:") || strings.HasPrefix(key, "user:id:") {
				continue
			}

			err := item.Value(func(v []byte) error {
				table.Append(rowFor(key, v))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

func rowFor(key string, value []byte) []string {
	switch {
	case strings.HasPrefix(key, "msg:"):
		var record messageRecord
		if err := json.Unmarshal(value, &record); err != nil {
			return rawRow(key, value)
		}
		return []string{
			key,
			"MSG",
			record.CreatedAt.Format("15:04:05"),
			fmt.Sprintf("%d", record.FromUserID),
			fmt.Sprintf("%d", record.ToUserID),
			truncate(record.Body, 60),
		}
	case strings.HasPrefix(key, "user:name:"):
		var record userRecord
		if err := json.Unmarshal(value, &record); err != nil {
			return rawRow(key, value)
		}
		return []string{
			key,
			"USER",
			record.CreatedAt.Format("15:04:05"),
			fmt.Sprintf("%d", record.ID),
			"-",
			fmt.Sprintf("%s (%s)", record.Username, record.DisplayName),
		}
	default:
		return rawRow(key, value)
	}
}

func rawRow(key string, value []byte) []string {
	return []string{key, "RAW", "--:--:--", "-", "-", fmt.Sprintf("Size: %d bytes", len(value))}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)

	return badger.Open(opts)
}
