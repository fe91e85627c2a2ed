package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const htmxScript = `<script src="https://unpkg.com/htmx.org@2.0.4" crossorigin="anonymous"></script>`

const styles = `<style>
body{font-family:system-ui,sans-serif;margin:0;background:#f8fafc;color:#0f172a}
header{background:#1e293b;color:#fff;padding:.75rem 1.5rem;display:flex;gap:1rem;align-items:center}
header a{color:#fff;text-decoration:none;font-weight:600}
main{padding:1.5rem;max-width:1200px;margin:0 auto}
table{border-collapse:collapse;width:100%;background:#fff}
th,td{border:1px solid #e2e8f0;padding:.35rem .6rem;text-align:left;font-size:.9rem}
th button{background:none;border:0;font-weight:600;cursor:pointer;padding:0}
td.qty{background:#f0fdf4}
td.qty input{width:6rem}
.alert{border:1px solid #fca5a5;background:#fef2f2;padding:.75rem;margin:.5rem 0;border-radius:4px}
.alert small{color:#64748b}
.toolbar{display:flex;gap:.75rem;align-items:center;margin-bottom:1rem}
.bar{background:#6366f1;height:1rem}
.muted{color:#64748b}
</style>`

// Layout wraps body in the page chrome.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(` · Stockpilot</title>`)
		h.raw(htmxScript)
		h.raw(styles)
		h.raw(`</head><body><header><a href="/">Stockpilot</a><span class="muted">`)
		h.text(title)
		h.raw(`</span></header><main>`)
		if h.err != nil {
			return h.err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		h.raw(`</main></body></html>`)
		return h.err
	})
}
