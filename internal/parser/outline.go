package parser

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

type Heading struct {
	Level int
	Text  string
	Line  int
}

// Summary describes the structure of a Markdown body.
type Summary struct {
	Headings  []Heading
	Words     int
	Tasks     int
	DoneTasks int
	Links     int
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Analyze parses body and collects its outline and counts. Words inside code
// blocks are not counted.
func Analyze(body string) Summary {
	source := []byte(body)
	document := markdown.Parser().Parse(text.NewReader(source))

	var summary Summary
	ast.Walk(
		document,
		func(n ast.Node, entering bool) (ast.WalkStatus, error) {
			if !entering {
				return ast.WalkContinue, nil
			}

			switch n := n.(type) {
			case *ast.Heading:
				summary.Headings = append(summary.Headings, Heading{
					Level: n.Level,
					Text:  strings.TrimSpace(string(n.Text(source))),
					Line:  lineOf(n, source),
				})
			case *ast.Text:
				summary.Words += len(strings.Fields(string(n.Segment.Value(source))))
			case *ast.CodeSpan:
				summary.Words += len(strings.Fields(string(n.Text(source))))
				return ast.WalkSkipChildren, nil
			case *ast.Link, *ast.AutoLink:
				summary.Links++
			case *extast.TaskCheckBox:
				summary.Tasks++
				if n.IsChecked {
					summary.DoneTasks++
				}
			}
			return ast.WalkContinue, nil
		},
	)

	return summary
}

func lineOf(n ast.Node, source []byte) int {
	if lines := n.Lines(); lines != nil && lines.Len() > 0 {
		return 1 + bytes.Count(source[:lines.At(0).Start], []byte("\n"))
	}
	return 0
}
