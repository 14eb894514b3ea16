package output

import (
	"encoding/json"
	"io"

	"github.com/spiffcs/repofinder/internal/model"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Pretty bool
}

// Format outputs the response with the same shape as POST /search.
func (f *JSONFormatter) Format(resp model.SearchResponse, w io.Writer) error {
	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	if resp.Results == nil {
		resp.Results = []model.RepoResult{}
	}
	if resp.IntentKeywords == nil {
		resp.IntentKeywords = []string{}
	}
	return encoder.Encode(resp)
}

// WriteJSONLine writes v as a single line of JSON, for streaming output.
func WriteJSONLine(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
