package intent

import (
	"strings"
	"unicode"

	"github.com/spiffcs/repofinder/internal/constants"
	"github.com/spiffcs/repofinder/internal/model"
)

// separators split free text into tokens in addition to whitespace.
const separators = ",，、。;；:：!！?？()（）[]【】{}「」『』\"'“”‘’<>《》|/\\"

func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune(separators, r)
}

// isHan reports whether r belongs to a script written without spaces.
func isHan(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul)
}

// extraction accumulates the pieces found while scanning text.
type extraction struct {
	core        []string
	substitutes []string
	languages   []string
	cleaned     []string
}

func (e *extraction) addLanguage(lang string) {
	for _, l := range e.languages {
		if l == lang {
			return
		}
	}
	e.languages = append(e.languages, lang)
}

// Heuristic derives an intent from text without any model. It never fails:
// when nothing useful is recognised the filler-stripped text, or failing
// that the raw text, becomes the only keyword.
func Heuristic(text string) model.ParsedIntent {
	trimmed := strings.TrimSpace(text)

	var e extraction
	for _, token := range strings.FieldsFunc(trimmed, isSeparator) {
		var cleaned strings.Builder
		for _, run := range splitRuns(token) {
			if isHan([]rune(run)[0]) {
				e.scanHan(run, &cleaned)
				continue
			}
			e.scanWord(run, &cleaned)
		}
		if cleaned.Len() > 0 {
			e.cleaned = append(e.cleaned, cleaned.String())
		}
	}

	keywords := dedupKeywords(append(e.core, e.substitutes...), constants.MaxIntentKeywords)
	if len(keywords) == 0 {
		if cleaned := strings.Join(e.cleaned, " "); cleaned != "" {
			keywords = []string{cleaned}
		} else if trimmed != "" {
			keywords = []string{trimmed}
		}
	}

	languages := e.languages
	if languages == nil {
		languages = []string{}
	}
	return model.ParsedIntent{
		Keywords:    keywords,
		Languages:   languages,
		Description: trimmed,
		Filters:     []string{},
	}
}

// splitRuns cuts a token wherever it switches between Han and non-Han text,
// so "Python爬虫" yields "Python" and "爬虫".
func splitRuns(token string) []string {
	var runs []string
	start := 0
	prevHan := false
	for i, r := range token {
		h := isHan(r)
		if i > 0 && h != prevHan {
			runs = append(runs, token[start:i])
			start = i
		}
		prevHan = h
	}
	if start < len(token) {
		runs = append(runs, token[start:])
	}
	return runs
}

func (e *extraction) scanWord(run string, cleaned *strings.Builder) {
	word := strings.Trim(run, ".-_")
	if word == "" {
		return
	}
	lower := strings.ToLower(word)

	if lang, ok := canonicalLanguage(lower); ok {
		e.addLanguage(lang)
		cleaned.WriteString(word)
		return
	}
	if subs, ok := fillerTerms[lower]; ok {
		e.substitutes = append(e.substitutes, subs...)
		return
	}
	cleaned.WriteString(word)
	if stopwords[lower] {
		return
	}
	e.core = append(e.core, word)
}

// scanHan walks a Han run taking the longest known term at each position.
// Runes that start no known term are kept in the cleaned text only.
func (e *extraction) scanHan(run string, cleaned *strings.Builder) {
	runes := []rune(run)
	for i := 0; i < len(runes); {
		matched := 0
		for n := min(maxHanTermLen, len(runes)-i); n > 0; n-- {
			term := string(runes[i : i+n])
			if subs, ok := fillerTerms[term]; ok {
				e.substitutes = append(e.substitutes, subs...)
			} else if exp, ok := domainTerms[term]; ok {
				e.core = append(e.core, exp...)
				cleaned.WriteString(term)
			} else if stopwords[term] {
				cleaned.WriteString(term)
			} else {
				continue
			}
			matched = n
			break
		}
		if matched == 0 {
			cleaned.WriteRune(runes[i])
			matched = 1
		}
		i += matched
	}
}

// dedupKeywords trims, drops empties and case-insensitive duplicates, and
// keeps at most limit entries in first-seen order.
func dedupKeywords(in []string, limit int) []string {
	out := make([]string, 0, min(len(in), limit))
	seen := make(map[string]bool, len(in))
	for _, k := range in {
		k = strings.TrimSpace(k)
		key := strings.ToLower(k)
		if k == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, k)
		if len(out) == limit {
			break
		}
	}
	return out
}
