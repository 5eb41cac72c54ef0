package handler

import (
	"bytes"
	"html/template"
	"net/http"
	"sort"
	"time"

	"github.com/yndnr/kvdis-go/internal/core/domain"
)

var dumpTemplate = template.Must(template.New("dump").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>kvdis dump</title></head>
<body>
<h1>kvdis</h1>
<p>{{len .Rows}} entries at {{.Now}}</p>
<table border="1">
<tr><th>Key</th><th>Value</th><th>Expires at</th><th>Expired</th></tr>
{{range .Rows}}<tr><td>{{.Key}}</td><td>{{.Value}}</td><td>{{.ExpiresAt}}</td><td>{{if .Expired}}yes{{else}}no{{end}}</td></tr>
{{end}}</table>
</body>
</html>
`))

type dumpPage struct {
	Now  string
	Rows []DumpRow
}

// handleDump handles GET /debug/dump. Entries are copied under the store
// lock and rendered after it is released.
func (h *Handler) handleDump(w http.ResponseWriter, r *http.Request) {
	var page dumpPage

	err := h.source.View(func(entries map[string]domain.Entry) error {
		now := h.source.Now()
		page.Now = now.UTC().Format(time.RFC3339)
		page.Rows = make([]DumpRow, 0, len(entries))
		for k, e := range entries {
			row := DumpRow{Key: k, Value: e.Value, Expired: e.ExpiredAt(now)}
			if e.HasExpiration() {
				row.ExpiresAt = e.ExpiresAt.UTC().Format(time.RFC3339)
			}
			page.Rows = append(page.Rows, row)
		}
		return nil
	})
	if err != nil {
		h.logger.Error("dump failed", "error", err)
		h.writeError(w, r, http.StatusInternalServerError, "KV-HTTP-5000", "internal server error")
		return
	}

	sort.Slice(page.Rows, func(i, j int) bool { return page.Rows[i].Key < page.Rows[j].Key })

	var buf bytes.Buffer
	if err := dumpTemplate.Execute(&buf, page); err != nil {
		h.logger.Error("render dump", "error", err)
		h.writeError(w, r, http.StatusInternalServerError, "KV-HTTP-5000", "internal server error")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}
