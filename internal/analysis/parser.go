package analysis

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// rawResult mirrors Result with visualization.data still encoded.
type rawResult struct {
	Explanation   string `json:"explanation"`
	Visualization *struct {
		Type    string          `json:"type"`
		Title   string          `json:"title"`
		Data    json.RawMessage `json:"data"`
		Columns []Column        `json:"columns"`
	} `json:"visualization"`
}

// parseResult decodes the model's JSON answer. A visualization whose data
// cannot be decoded is dropped rather than failing the whole answer.
func parseResult(text string) (*Result, error) {
	text = stripFences(text)

	var raw rawResult
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("parse analysis response: %w (response: %.200s)", err, text)
	}

	res := &Result{Explanation: raw.Explanation}
	if raw.Visualization == nil {
		return res, nil
	}

	data, err := decodeData(raw.Visualization.Data)
	if err != nil {
		slog.Warn("analysis: dropping visualization with undecodable data", "error", err)
		return res, nil
	}

	res.Visualization = &Visualization{
		Type:    raw.Visualization.Type,
		Title:   raw.Visualization.Title,
		Data:    data,
		Columns: raw.Visualization.Columns,
	}
	return res, nil
}

// decodeData accepts the documented JSON-string form and, leniently, a
// plain JSON array.
func decodeData(raw json.RawMessage) ([]map[string]any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("missing data")
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		raw = json.RawMessage(stripFences(encoded))
	}

	var data []map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
