package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// UploadPage is the landing page with the inventory file picker.
func UploadPage(maxSizeMB int64, analysisEnabled bool) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<h1>Upload an inventory file</h1>`)
		h.raw(`<p class="muted">CSV with a header line. The stock column is detected automatically. Max `)
		h.rawf("%d", maxSizeMB)
		h.raw(` MB.</p>`)
		h.raw(`<form hx-post="/api/workspaces" hx-encoding="multipart/form-data" hx-target="#upload-result">`)
		h.raw(`<input type="file" name="file" accept=".csv,text/csv" required> `)
		h.raw(`<button type="submit">Open</button></form>`)
		h.raw(`<div id="upload-result"></div>`)
		if !analysisEnabled {
			h.raw(`<p class="muted">Natural-language analysis is disabled: no API key is configured.</p>`)
		}
		return h.err
	})
	return Layout("Upload", body)
}
