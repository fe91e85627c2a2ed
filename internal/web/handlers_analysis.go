package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/stockpilot/internal/analysis"
	"github.com/JonMunkholm/stockpilot/internal/web/templates"
)

// handleAnalyze answers a question about the workspace's current table.
// The analyzer receives the serialized table and never the live rows.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	_, tbl, err := s.table(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if !s.analysisEnabled() {
		respondError(w, r, analysis.ErrNotConfigured)
		return
	}

	var req analysis.Request
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			respondError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
		req.Query = r.Form.Get("query")
		req.Language = r.Form.Get("language")
	}
	req.CSV = tbl.ExportText()

	res, err := s.analyzer.Analyze(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		templates.AnalysisResult(res).Render(r.Context(), w)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
