package parser

import (
	"testing"
)

func TestAnalyzeCollectsHeadings(t *testing.T) {
	body := "# Title\n\nIntro text here.\n\n## Section one\n\nMore words.\n\n### Deep\n"

	summary := Analyze(body)

	want := []Heading{
		{Level: 1, Text: "Title", Line: 1},
		{Level: 2, Text: "Section one", Line: 5},
		{Level: 3, Text: "Deep", Line: 9},
	}
	if len(summary.Headings) != len(want) {
		t.Fatalf("expected %d headings, got %+v", len(want), summary.Headings)
	}
	for i, h := range want {
		if summary.Headings[i] != h {
			t.Fatalf("heading %d: got %+v, want %+v", i, summary.Headings[i], h)
		}
	}
}

func TestAnalyzeCountsWords(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "empty", body: "", want: 0},
		{name: "paragraph", body: "one two three\nfour", want: 4},
		{name: "emphasis", body: "plain *emphasised words* end", want: 4},
		{name: "code span", body: "run `go test` now", want: 4},
		{name: "fenced code skipped", body: "before\n\n```\nnot counted here\n```\n\nafter", want: 2},
		{name: "heading", body: "# Two words", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Analyze(tt.body).Words; got != tt.want {
				t.Fatalf("Words = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAnalyzeCountsTasksAndLinks(t *testing.T) {
	body := "- [ ] first task\n- [x] done task\n- plain item\n\nSee [docs](https://example.com) and <https://example.org>.\n"

	summary := Analyze(body)

	if summary.Tasks != 2 {
		t.Fatalf("expected 2 tasks, got %d", summary.Tasks)
	}
	if summary.DoneTasks != 1 {
		t.Fatalf("expected 1 done task, got %d", summary.DoneTasks)
	}
	if summary.Links != 2 {
		t.Fatalf("expected 2 links, got %d", summary.Links)
	}
}
