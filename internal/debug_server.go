package internal

import (
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

//go:embed inspect.html
var templatesFS embed.FS

// InspectRow is one rendered store record.
type InspectRow struct {
	Key    string
	Kind   string
	Time   string
	Group  string
	Author string
	Detail string
}

type StatsProvider func() map[string]any

type PageData struct {
	Prefix string
	Items  []InspectRow
	Stats  map[string]any
}

// NewInspectHandler renders the raw store as an HTML table, filtered by a
// key prefix (?prefix=msg:, group:, user:). Rows are decoded best-effort;
// anything unreadable still shows its key and size.
func NewInspectHandler(db *badger.DB, statsProvider StatsProvider) http.Handler {
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
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
					data.Items = append(data.Items, toInspectRow(string(item.Key()), val))
					return nil
				})
			}
			return nil
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})
}

// toInspectRow decodes a record according to its key namespace.
func toInspectRow(key string, val []byte) InspectRow {
	row := InspectRow{
		Key:    key,
		Kind:   "RAW",
		Time:   "--:--:--",
		Detail: "Size: " + strconv.Itoa(len(val)) + " bytes",
	}

	var record struct {
		Name        string `json:"name"`
		Admin       string `json:"admin"`
		DisplayName string `json:"displayName"`
		Group       string `json:"group"`
		Author      string `json:"author"`
		Content     string `json:"content"`
		At          int64  `json:"at"`
	}
	if err := json.Unmarshal(val, &record); err != nil {
		return row
	}

	switch {
	case strings.HasPrefix(key, "msg:"):
		row.Kind = "MESSAGE"
		row.Group = record.Group
		row.Author = record.Author
		row.Detail = record.Content
		row.Time = time.Unix(0, record.At).UTC().Format("15:04:05")
	case strings.HasPrefix(key, "group:"):
		row.Kind = "GROUP"
		row.Group = record.Name
		row.Author = record.Admin
		row.Detail = "admin: " + record.Admin
	case strings.HasPrefix(key, "user:"):
		row.Kind = "USER"
		row.Author = record.DisplayName
		row.Detail = record.DisplayName
	}
	return row
}
