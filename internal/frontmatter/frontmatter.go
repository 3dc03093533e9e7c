// Package frontmatter splits Markdown documents into a leading YAML metadata
// block and a body, and keeps the block's modification time current.
//
// A block is recognised only when the document starts with a "---" line,
// followed by metadata lines and a second "---" line. Everything else is body.
package frontmatter

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/nervous/internal/constants"
)

// Delimiter opens and closes a metadata block.
const Delimiter = "---"

// TimeLayout is the timestamp format written into generated blocks.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

var (
	blockRe    = regexp.MustCompile(`^---\r?\n([\s\S]*?)\r?\n---(?:\r?\n|$)`)
	modifiedRe = regexp.MustCompile(`(?m)^modified:[^\r\n]*`)
)

// Parts is a document split into its metadata block and body. Block holds the
// lines between the delimiters, without the delimiters themselves.
//
// Parts produced by Split remember the delimiter lines and the separator
// exactly as found, so String reproduces the original bytes and only edited
// parts change.
type Parts struct {
	Block   string
	Body    string
	Present bool

	head string // opening delimiter and its line ending
	tail string // line ending before the closing delimiter, the delimiter, what follows it
}

// String reassembles the parts into document content.
func (p Parts) String() string {
	if !p.Present {
		return p.Body
	}
	if p.head == "" && p.tail == "" {
		return Join(p.Block, p.Body)
	}

	tail := p.tail
	if p.Body != "" && !strings.HasSuffix(tail, "\n") {
		// The block closed at end of input; the body needs its own line.
		eol := p.EOL()
		tail += eol + eol
	}
	return p.head + p.Block + tail + p.Body
}

// EOL is the line ending used by the delimiter lines.
func (p Parts) EOL() string {
	if strings.HasSuffix(p.head, "\r\n") {
		return "\r\n"
	}
	return "\n"
}

// Split detects a metadata block anchored at the start of content. When no
// block is found the whole content is returned as the body.
func Split(content string) Parts {
	loc := blockRe.FindStringSubmatchIndex(content)
	if loc == nil {
		return Parts{Body: content}
	}

	end := loc[1]
	// One blank line separates the block from the body.
	switch {
	case strings.HasPrefix(content[end:], "\r\n"):
		end += 2
	case strings.HasPrefix(content[end:], "\n"):
		end++
	}

	return Parts{
		Block:   content[loc[2]:loc[3]],
		Body:    content[end:],
		Present: true,
		head:    content[:loc[2]],
		tail:    content[loc[3]:end],
	}
}

// Join places block between delimiters in front of body, with a blank line
// between them.
func Join(block, body string) string {
	return joinEOL(block, body, "\n")
}

func joinEOL(block, body, eol string) string {
	var b strings.Builder
	b.Grow(len(block) + len(body) + 10)
	b.WriteString(Delimiter)
	b.WriteString(eol)
	b.WriteString(block)
	b.WriteString(eol)
	b.WriteString(Delimiter)
	b.WriteString(eol)
	b.WriteString(eol)
	b.WriteString(body)
	return b.String()
}

// Engine generates and restamps metadata blocks. The zero value uses the
// wall clock.
type Engine struct {
	Now func() time.Time
}

func (e Engine) now() string {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	return now().UTC().Format(TimeLayout)
}

// Generate returns a fresh block with both timestamps set to the current time
// and an empty tag list.
func (e Engine) Generate(title string) string {
	stamp := e.now()

	var b strings.Builder
	b.WriteString("title: ")
	b.WriteString(quote(title))
	b.WriteString("\ncreated: ")
	b.WriteString(stamp)
	b.WriteString("\nmodified: ")
	b.WriteString(stamp)
	b.WriteString("\ntags: []")
	return b.String()
}

// Touch replaces the first modified line of an existing block with the current
// time. Content without a block, or a block without a modified line, is
// returned unchanged.
func (e Engine) Touch(content string) string {
	parts := Split(content)
	if !parts.Present {
		return content
	}

	loc := modifiedRe.FindStringIndex(parts.Block)
	if loc == nil {
		return content
	}

	parts.Block = parts.Block[:loc[0]] + "modified: " + e.now() + parts.Block[loc[1]:]
	return parts.String()
}

// ForPersistence returns content ready to be written: a generated block is
// prepended when none exists, otherwise the existing block is touched.
func (e Engine) ForPersistence(content, fallbackTitle string) string {
	if !Split(content).Present {
		if strings.TrimSpace(fallbackTitle) == "" {
			fallbackTitle = constants.DefaultTitle
		}
		block := e.Generate(fallbackTitle)
		if strings.Contains(content, "\r\n") {
			return joinEOL(strings.ReplaceAll(block, "\n", "\r\n"), content, "\r\n")
		}
		return Join(block, content)
	}
	return e.Touch(content)
}

func Generate(title string) string {
	return Engine{}.Generate(title)
}

func Touch(content string) string {
	return Engine{}.Touch(content)
}

func ForPersistence(content, fallbackTitle string) string {
	return Engine{}.ForPersistence(content, fallbackTitle)
}

// TitleFromPath derives a document title from its file name. An empty path
// yields the default title.
func TitleFromPath(path string) string {
	if strings.TrimSpace(path) == "" {
		return constants.DefaultTitle
	}
	base := filepath.Base(path)
	title := strings.TrimSuffix(base, filepath.Ext(base))
	if title == "" {
		return constants.DefaultTitle
	}
	return title
}

func quote(title string) string {
	node := &yaml.Node{
		Kind:  yaml.ScalarNode,
		Style: yaml.DoubleQuotedStyle,
		Value: title,
	}
	out, err := yaml.Marshal(node)
	if err != nil {
		return strconv.Quote(title)
	}
	return strings.TrimRight(string(out), "\n")
}
