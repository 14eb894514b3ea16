package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/spiffcs/repofinder/internal/format"
	"github.com/spiffcs/repofinder/internal/model"
)

// Column widths
const (
	colRank  = 3
	colScore = 5
	colStars = 6
	colRepo  = 32
	colLang  = 10
	colAge   = 7
	colDesc  = 48
)

// TableFormatter formats output as a terminal table
type TableFormatter struct {
	// Now is used for the age column. Defaults to time.Now.
	Now func() time.Time
	// Hyperlinks forces OSC 8 links on or off. Nil detects a terminal.
	Hyperlinks *bool
}

// Format outputs the ranked repositories as a table with the explanation
// on a second, dimmed line.
func (f *TableFormatter) Format(resp model.SearchResponse, w io.Writer) error {
	if len(resp.Results) == 0 {
		fmt.Fprintln(w, "No repositories found.")
		return nil
	}

	now := time.Now()
	if f.Now != nil {
		now = f.Now()
	}
	links := f.useHyperlinks()

	if len(resp.IntentKeywords) > 0 {
		fmt.Fprintf(w, "Keywords: %s\n\n", strings.Join(resp.IntentKeywords, ", "))
	}

	// Header
	fmt.Fprintf(w, "%-*s  %-*s  %-*s  %-*s  %-*s  %-*s  %s\n",
		colRank, "#",
		colScore, "Score",
		colStars, "Stars",
		colRepo, "Repository",
		colLang, "Language",
		colAge, "Updated",
		"Description")
	fmt.Fprintln(w, strings.Repeat("-", colRank+colScore+colStars+colRepo+colLang+colAge+colDesc+12))

	reasonIndent := strings.Repeat(" ", colRank+2)
	for i, r := range resp.Results {
		repo, repoWidth := format.TruncateToWidth(r.FullName, colRepo)
		if links && r.HTMLURL != "" {
			repo = hyperlink(repo, r.HTMLURL)
		}

		lang := "-"
		if r.Language != nil && *r.Language != "" {
			lang = *r.Language
		}
		lang, langWidth := format.TruncateToWidth(lang, colLang)

		desc := ""
		if r.Description != nil {
			desc = strings.Join(strings.Fields(*r.Description), " ")
		}
		desc, _ = format.TruncateToWidth(desc, colDesc)

		scoreText := fmt.Sprintf("%.2f", r.Score)

		fmt.Fprintf(w, "%-*d  %s  %-*s  %s  %s  %-*s  %s\n",
			colRank, i+1,
			format.PadRight(colorScore(r.Score, scoreText), len(scoreText), colScore),
			colStars, format.FormatCount(r.Stars),
			format.PadRight(repo, repoWidth, colRepo),
			format.PadRight(lang, langWidth, colLang),
			colAge, format.FormatTimestampAge(r.UpdatedAt, now),
			desc,
		)

		if r.Reason != "" {
			reason, _ := format.TruncateToWidth(r.Reason, colScore+colStars+colRepo+colLang+colAge+colDesc+10)
			fmt.Fprintf(w, "%s%s\n", reasonIndent, color.New(color.Faint).Sprint(reason))
		}
	}

	fmt.Fprintf(w, "\n%d repositories\n", len(resp.Results))
	return nil
}

func (f *TableFormatter) useHyperlinks() bool {
	if f.Hyperlinks != nil {
		return *f.Hyperlinks
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// hyperlink creates a clickable terminal hyperlink using OSC 8
// Format: \033]8;;URL\033\\TEXT\033]8;;\033\\
func hyperlink(text, url string) string {
	return fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", url, text)
}

func colorScore(score float64, text string) string {
	switch format.ScoreTier(score) {
	case format.TierStrong:
		return color.GreenString(text)
	case format.TierFair:
		return color.YellowString(text)
	default:
		return color.RedString(text)
	}
}

// FormatItem renders one streamed result as a single line.
func FormatItem(r model.RepoResult) string {
	line := fmt.Sprintf("%s  %s  %s stars",
		colorScore(r.Score, fmt.Sprintf("%.2f", r.Score)),
		r.FullName,
		format.FormatCount(r.Stars))
	if r.Reason != "" {
		line += "  " + color.New(color.Faint).Sprint(r.Reason)
	}
	return line
}
