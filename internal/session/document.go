package session

import (
	"path/filepath"

	"github.com/Paintersrp/nervous/internal/constants"
	"github.com/Paintersrp/nervous/internal/frontmatter"
)

// Document is the single document held by a session.
type Document struct {
	Content string
	Path    string
	Dirty   bool
}

// Body is the part of the content shown to and edited by the user.
func (d Document) Body() string {
	return frontmatter.Split(d.Content).Body
}

// Name is the file name shown in title bars.
func (d Document) Name() string {
	if d.Path == "" {
		return constants.DefaultTitle
	}
	return filepath.Base(d.Path)
}

// Title is used when a metadata block has to be generated.
func (d Document) Title() string {
	return frontmatter.TitleFromPath(d.Path)
}

// Meta decodes the document's metadata block, if any.
func (d Document) Meta() (frontmatter.Meta, bool) {
	meta, ok, err := frontmatter.MetaOf(d.Content)
	if err != nil {
		return frontmatter.Meta{}, ok
	}
	return meta, ok
}
