package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spiffcs/repofinder/internal/model"
)

// MarkdownFormatter formats output as Markdown
type MarkdownFormatter struct {
	// Now is used for the generated timestamp. Defaults to time.Now.
	Now func() time.Time
}

// Format outputs the ranked repositories as a Markdown report.
func (f *MarkdownFormatter) Format(resp model.SearchResponse, w io.Writer) error {
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}

	fmt.Fprintf(w, "# Repositories for %q\n", resp.Query)
	fmt.Fprintf(w, "\n*Generated: %s*\n\n", now().Format("2006-01-02 15:04"))
	if len(resp.IntentKeywords) > 0 {
		fmt.Fprintf(w, "**Keywords:** %s\n\n", formatCode(resp.IntentKeywords))
	}

	if len(resp.Results) == 0 {
		fmt.Fprintln(w, "No repositories found.")
		return nil
	}

	for i, r := range resp.Results {
		formatResult(w, i+1, r)
	}
	return nil
}

func formatResult(w io.Writer, rank int, r model.RepoResult) {
	fmt.Fprintf(w, "## %d. [%s](%s)\n\n", rank, r.FullName, r.HTMLURL)

	if r.Description != nil && *r.Description != "" {
		fmt.Fprintf(w, "%s\n\n", *r.Description)
	}

	fmt.Fprintf(w, "- **Score:** %.3f\n", r.Score)
	fmt.Fprintf(w, "- **Stars:** %d\n", r.Stars)
	if r.Language != nil && *r.Language != "" {
		fmt.Fprintf(w, "- **Language:** %s\n", *r.Language)
	}
	if r.UpdatedAt != "" {
		fmt.Fprintf(w, "- **Updated:** %s\n", r.UpdatedAt)
	}
	if len(r.Topics) > 0 {
		fmt.Fprintf(w, "- **Topics:** %s\n", formatCode(r.Topics))
	}
	if r.Reason != "" {
		fmt.Fprintf(w, "\n> %s\n", r.Reason)
	}
	fmt.Fprintln(w)
}

func formatCode(values []string) string {
	formatted := make([]string, len(values))
	for i, v := range values {
		formatted[i] = "`" + v + "`"
	}
	return strings.Join(formatted, " ")
}
