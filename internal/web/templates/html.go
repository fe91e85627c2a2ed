// Package templates renders the HTML pages and HTMX partials of the web UI.
//
// The grid partials are templ sources (grid.templ); run `mage generate` after
// editing them to refresh grid_templ.go. The remaining components write their
// markup through htmlWriter.
package templates

import (
	"fmt"
	"io"
	"net/url"

	"github.com/a-h/templ"
)

// htmlWriter writes markup and remembers the first error.
type htmlWriter struct {
	w   io.Writer
	err error
}

// raw writes trusted markup.
func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

// text writes escaped text or attribute content.
func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) rawf(format string, args ...any) {
	h.raw(fmt.Sprintf(format, args...))
}

// workspacePath builds an escaped URL path under the workspace.
func workspacePath(prefix, id string, parts ...string) string {
	p := prefix + url.PathEscape(id)
	for _, part := range parts {
		p += "/" + url.PathEscape(part)
	}
	return p
}
