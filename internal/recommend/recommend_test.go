package recommend

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

type fakeChatter struct {
	reply string
	err   error
	user  string
}

func (f *fakeChatter) Chat(_ context.Context, _, user string) (string, error) {
	f.user = user
	return f.reply, f.err
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    []string
		wantErr bool
	}{
		{
			name:  "code fenced array",
			reply: "```json\n[\"x/y\", \"bad-format\", \"z/w\"]\n```",
			want:  []string{"x/y", "z/w"},
		},
		{
			name:  "plain array",
			reply: `["spf13/cobra", "urfave/cli"]`,
			want:  []string{"spf13/cobra", "urfave/cli"},
		},
		{
			name:  "array embedded in prose",
			reply: `Here you go: ["gocolly/colly", "a/b/c"] hope it helps`,
			want:  []string{"gocolly/colly"},
		},
		{
			name:  "segments are trimmed",
			reply: `[" owner / repo ", "/repo", "owner/", 42, null]`,
			want:  []string{"owner/repo"},
		},
		{
			name:  "empty array",
			reply: `[]`,
			want:  []string{},
		},
		{
			name:    "no array",
			reply:   "I don't know any",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReply(tt.reply)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseReply() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseReply() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecommendTruncates(t *testing.T) {
	chat := &fakeChatter{reply: `["a/1", "a/2", "a/3", "a/4"]`}
	got, err := NewEngine(chat).Recommend(context.Background(), "cli framework", 2)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if want := []string{"a/1", "a/2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Recommend() = %q, want %q", got, want)
	}
	if !strings.Contains(chat.user, "cli framework") || !strings.Contains(chat.user, "up to 2") {
		t.Errorf("user prompt = %q, want need text and count", chat.user)
	}
}

func TestRecommendNotConfigured(t *testing.T) {
	got, err := NewEngine(nil).Recommend(context.Background(), "anything", 5)
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Recommend() error = %v, want ErrNotConfigured", err)
	}
	if len(got) != 0 {
		t.Errorf("Recommend() = %q, want empty", got)
	}
}

func TestRecommendModelError(t *testing.T) {
	boom := errors.New("boom")
	got, err := NewEngine(&fakeChatter{err: boom}).Recommend(context.Background(), "anything", 5)
	if !errors.Is(err, boom) {
		t.Errorf("Recommend() error = %v, want wrapped boom", err)
	}
	if got != nil {
		t.Errorf("Recommend() = %q, want nil", got)
	}
}
