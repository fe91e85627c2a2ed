// Package analysis answers natural-language questions about an inventory
// table by sending a sample of it to the Gemini API.
//
// The package only ever sees serialized table text; it has no access to the
// live table and cannot mutate it.
package analysis

// Request is one question about a serialized table.
type Request struct {
	// CSV is the full serialized table; only a sample of it is sent.
	CSV string `json:"-"`

	// Query is the user's question.
	Query string `json:"query"`

	// Language is the BCP 47 tag the answer must be written in (default "en").
	Language string `json:"language"`
}

// Result is the structured answer.
type Result struct {
	Explanation   string         `json:"explanation"`
	Visualization *Visualization `json:"visualization"`
}

// Visualization types the model may suggest.
const (
	VisualBar   = "bar"
	VisualPie   = "pie"
	VisualLine  = "line"
	VisualTable = "table"
)

// Visualization is chart or table data derived from the sample.
type Visualization struct {
	Type    string           `json:"type"`
	Title   string           `json:"title"`
	Data    []map[string]any `json:"data"`
	Columns []Column         `json:"columns"`
}

// Column maps a key in Data to a display label.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}
