package suggestions

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

const systemPrompt = `You are a helpful shopping assistant. Answer with a single JSON object of the form {"suggestions": ["item", ...]} and nothing else.`

var userPrompt = template.Must(template.New("suggestions").Parse(`Given the current shopping list and remaining budget, suggest up to {{.Limit}} items the user might want to add to their list.
Consider the budget and suggest items within their price range. Do not suggest items that are already in the list.

Current shopping list:
{{range .Input.Items}}- {{.Name}} (quantity: {{.Quantity}}, price: {{printf "%.2f" .Price}}, type: {{.Type}})
{{else}}(empty)
{{end}}
Budget: {{printf "%.2f" .Input.Budget}}
Remaining budget: {{printf "%.2f" .Input.RemainingBudget}}
`))

func renderPrompt(input Input, limit int) (string, error) {
	var b strings.Builder
	err := userPrompt.Execute(&b, struct {
		Input Input
		Limit int
	}{input, limit})
	return b.String(), err
}

// parseAnswer pulls the JSON object out of the model text, tolerating code
// fences or prose around it.
func parseAnswer(text string) ([]string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON object in answer")
	}
	var output Output
	if err := json.Unmarshal([]byte(text[start:end+1]), &output); err != nil {
		return nil, fmt.Errorf("malformed answer: %w", err)
	}
	if output.Suggestions == nil {
		return nil, fmt.Errorf("answer has no suggestions field")
	}
	return output.Suggestions, nil
}
