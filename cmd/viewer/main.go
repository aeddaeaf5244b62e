package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

// viewer dumps stored records as a table without stopping the server:
// the database is opened read-only, bypassing the lock guard.
func main() {
	dbPath := flag.String("db", "", "Path to badger DB")
	prefix := flag.String("prefix", "msg:", "Prefix to scan (msg:, group:, user:)")
	colours := flag.Bool("colours", true, "Colorize output")
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("missing -db flag")
	}

	opts := badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	header := fmt.Sprintf("  ====== huddle store %s ======", *prefix)
	if *colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	fmt.Println(header)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Group", "Time", "Author", "Lang", "Content"})
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
			err := item.Value(func(v []byte) error {
				table.Append(toRow(string(item.Key()), v))
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

// storedMessage mirrors the persisted message record.
type storedMessage struct {
	Group   string `json:"group"`
	Author  string `json:"author"`
	Content string `json:"content"`
	At      int64  `json:"at"`
}

func toRow(key string, value []byte) []string {
	var record storedMessage
	if err := json.Unmarshal(value, &record); err != nil || record.Content == "" {
		// Not a message record; show the raw value
		return []string{key, "", "", "", "", string(value)}
	}

	info := whatlanggo.Detect(record.Content)
	content := record.Content
	if len(content) > 60 {
		content = content[:57] + "..."
	}

	return []string{
		key,
		record.Group,
		time.Unix(0, record.At).UTC().Format("15:04:05"),
		record.Author,
		info.Lang.String(),
		content,
	}
}
