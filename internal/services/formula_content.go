package services

import (
	"encoding/json"
	"strings"
)

type Ingredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// FormulaContent is the parsed form of a stored ingredients or method field.
// Legacy rows hold free text; Structured is false for them and Raw keeps the
// original text.
type FormulaContent struct {
	Structured  bool
	Raw         string
	Ingredients []Ingredient
	Steps       []string
}

func EncodeIngredients(ingredients []Ingredient) string {
	cleaned := make([]Ingredient, 0, len(ingredients))
	for _, ingredient := range ingredients {
		name := strings.TrimSpace(ingredient.Name)
		if name == "" {
			continue
		}
		cleaned = append(cleaned, Ingredient{Name: name, Amount: strings.TrimSpace(ingredient.Amount)})
	}
	encoded, _ := json.Marshal(cleaned)
	return string(encoded)
}

func EncodeMethod(steps []string) string {
	cleaned := make([]string, 0, len(steps))
	for _, step := range steps {
		if trimmed := strings.TrimSpace(step); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	encoded, _ := json.Marshal(cleaned)
	return string(encoded)
}

func ParseIngredients(raw string) FormulaContent {
	content := FormulaContent{Raw: raw}
	if strings.TrimSpace(raw) == "" {
		return content
	}

	var parsed []Ingredient
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		content.Structured = true
		content.Ingredients = parsed
		return content
	}

	for _, line := range splitLegacyLines(raw) {
		content.Ingredients = append(content.Ingredients, Ingredient{Name: line})
	}
	return content
}

func ParseMethod(raw string) FormulaContent {
	content := FormulaContent{Raw: raw}
	if strings.TrimSpace(raw) == "" {
		return content
	}

	var parsed []string
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		content.Structured = true
		content.Steps = parsed
		return content
	}

	content.Steps = splitLegacyLines(raw)
	return content
}

func splitLegacyLines(raw string) []string {
	lines := make([]string, 0)
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
