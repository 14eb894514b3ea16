package query

import (
	"testing"
	"time"
)

var testClock = time.Date(2025, 3, 31, 22, 30, 0, 0, time.UTC)

func TestBuildAt(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   string
	}{
		{
			name: "keywords scope language recency stars",
			params: Params{
				Keywords:         []string{"foo bar", "baz"},
				Languages:        []string{"go"},
				Scope:            Scope{Name: true, Description: true},
				PushedWithinDays: 30,
				MinStars:         10,
			},
			want: `"foo bar" baz in:name,description language:go pushed:>2025-03-01 stars:>=10`,
		},
		{
			name: "no scope omits in qualifier",
			params: Params{
				Keywords: []string{"crawler"},
			},
			want: "crawler",
		},
		{
			name: "readme only",
			params: Params{
				Keywords: []string{"crawler"},
				Scope:    Scope{Readme: true},
			},
			want: "crawler in:readme",
		},
		{
			name: "topics from ascii single tokens",
			params: Params{
				Keywords: []string{"Crawler", "short video", "crawler", "爬虫", "Scraper", "python", "extra"},
				Scope:    Scope{Name: true, Topics: true},
			},
			want: `Crawler "short video" crawler 爬虫 Scraper python extra in:name topic:crawler topic:scraper topic:python`,
		},
		{
			name: "raw filters appended verbatim last",
			params: Params{
				Keywords: []string{"orm"},
				Filters:  []string{"archived:false", "license:mit"},
				MinStars: 100,
			},
			want: "orm stars:>=100 archived:false license:mit",
		},
		{
			name: "multiple languages",
			params: Params{
				Keywords:  []string{"http"},
				Languages: []string{"go", "rust"},
			},
			want: "http language:go language:rust",
		},
		{
			name:   "empty params",
			params: Params{},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildAt(tt.params, testClock); got != tt.want {
				t.Errorf("BuildAt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildAtUsesUTCDate(t *testing.T) {
	// 01:30 on April 1st in UTC+8 is still March 31st in UTC.
	local := time.Date(2025, 4, 1, 1, 30, 0, 0, time.FixedZone("CST", 8*3600))
	got := BuildAt(Params{Keywords: []string{"x"}, PushedWithinDays: 1}, local)
	want := "x pushed:>2025-03-30"
	if got != want {
		t.Errorf("BuildAt() = %q, want %q", got, want)
	}
}
