package model

// ParsedIntent is the structured search intent derived from free text.
type ParsedIntent struct {
	Keywords    []string `json:"keywords"`
	Languages   []string `json:"languages"`
	Description string   `json:"description"`
	Filters     []string `json:"filters"`
}
