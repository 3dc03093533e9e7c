package frontmatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"gopkg.in/yaml.v3"
)

// Meta is the decoded form of a metadata block. Only the modified field is
// maintained by the editor; the rest is informational.
type Meta struct {
	Title    string
	Created  time.Time
	Modified time.Time
	Tags     []string
}

type rawMeta struct {
	Title    string  `yaml:"title"`
	Created  string  `yaml:"created"`
	Modified string  `yaml:"modified"`
	Tags     tagList `yaml:"tags"`
}

// tagList accepts both a YAML sequence and a comma or space separated scalar.
type tagList []string

func (t *tagList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var tags []string
		if err := value.Decode(&tags); err != nil {
			return err
		}
		*t = compactTags(tags)
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*t = nil
			return nil
		}
		*t = compactTags(strings.FieldsFunc(value.Value, func(r rune) bool {
			return r == ',' || r == ' '
		}))
	default:
		return fmt.Errorf("tags: unsupported yaml node kind %d", value.Kind)
	}
	return nil
}

func compactTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// ParseMeta decodes a metadata block. Timestamps that cannot be parsed are left
// zero rather than failing the decode.
func ParseMeta(block string) (Meta, error) {
	var raw rawMeta
	if strings.TrimSpace(block) != "" {
		if err := yaml.Unmarshal([]byte(block), &raw); err != nil {
			return Meta{}, fmt.Errorf("failed to decode frontmatter: %w", err)
		}
	}

	return Meta{
		Title:    raw.Title,
		Created:  parseTime(raw.Created),
		Modified: parseTime(raw.Modified),
		Tags:     []string(raw.Tags),
	}, nil
}

// MetaOf splits content and decodes its block. ok is false when the content
// has no block.
func MetaOf(content string) (meta Meta, ok bool, err error) {
	parts := Split(content)
	if !parts.Present {
		return Meta{}, false, nil
	}
	meta, err = ParseMeta(parts.Block)
	return meta, true, err
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	t, err := dateparse.ParseAny(value)
	if err != nil {
		return time.Time{}
	}
	return t
}
