package analysis

import (
	"fmt"
	"strings"
)

// DefaultSampleRows is the number of data lines sent with a question.
const DefaultSampleRows = 50

// Sample returns the header line plus the first n non-blank data lines of
// csv, joined with \n.
func Sample(csv string, n int) string {
	if n <= 0 {
		n = DefaultSampleRows
	}

	out := make([]string, 0, n+1)
	for _, line := range strings.Split(csv, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
		if len(out) == n+1 {
			break
		}
	}
	return strings.Join(out, "\n")
}

// BuildPrompt assembles the analyst instructions, the data sample and the
// question.
func BuildPrompt(sample, query, language string) string {
	var b strings.Builder

	b.WriteString("You are a supermarket inventory data analyst. Analyze the CSV data sample below and answer the user's question.\n\n")
	fmt.Fprintf(&b, "IMPORTANT: Write your entire response in the language with code %q. ", language)
	b.WriteString("This includes the explanation and any text in the visualization, such as its title and column labels.\n\n")

	b.WriteString("RULES:\n")
	b.WriteString("1. Column names are defined in the first line of the sample.\n")
	b.WriteString("2. Always provide an 'explanation' that directly answers the question.\n")
	b.WriteString("3. If the answer can be shown visually (for example stock by category or the top 5 products by stock), include a 'visualization' object.\n")
	b.WriteString("4. If the question is a greeting, unrelated to the data, or not suited to a chart, 'visualization' MUST be null.\n")
	b.WriteString("5. 'visualization.data' MUST be a valid JSON string encoding an array of objects whose keys match the 'key' values in 'columns'.\n")
	b.WriteString("6. Base the analysis only on the sample. Do not invent data.\n")
	b.WriteString("7. Keep the explanation concise.\n\n")

	b.WriteString("CSV sample:\n---\n")
	b.WriteString(sample)
	b.WriteString("\n---\n\n")
	fmt.Fprintf(&b, "User's question: %q\n", query)

	return b.String()
}

// responseSchema constrains the model to the Result shape. The data field is
// a JSON string because the API schema cannot express free-form objects.
var responseSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"explanation": map[string]any{
			"type":        "STRING",
			"description": "A concise answer to the user's question based on the data.",
		},
		"visualization": map[string]any{
			"type":     "OBJECT",
			"nullable": true,
			"properties": map[string]any{
				"type": map[string]any{
					"type": "STRING",
					"enum": []string{VisualBar, VisualPie, VisualLine, VisualTable},
				},
				"title": map[string]any{"type": "STRING"},
				"data": map[string]any{
					"type":        "STRING",
					"description": `A JSON array of objects, e.g. [{"category":"Dairy","stock":140}].`,
				},
				"columns": map[string]any{
					"type": "ARRAY",
					"items": map[string]any{
						"type": "OBJECT",
						"properties": map[string]any{
							"key":   map[string]any{"type": "STRING"},
							"label": map[string]any{"type": "STRING"},
						},
						"required": []string{"key", "label"},
					},
				},
			},
		},
	},
	"required": []string{"explanation"},
}
