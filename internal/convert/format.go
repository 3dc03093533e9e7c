package convert

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFormat is returned for export targets outside the supported set.
var ErrUnknownFormat = errors.New("unknown export format")

// Format identifies an export target understood by the converter.
type Format string

const (
	DOCX Format = "docx"
	PDF  Format = "pdf"
	ODT  Format = "odt"
	HTML Format = "html"
)

// Formats lists the export targets in menu order.
var Formats = []Format{DOCX, PDF, ODT, HTML}

var formatLabels = map[Format]string{
	DOCX: "Word (.docx)",
	PDF:  "PDF (.pdf)",
	ODT:  "OpenDocument (.odt)",
	HTML: "Web page (.html)",
}

// ParseFormat accepts a format name with or without a leading dot.
func ParseFormat(value string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(value), ".")))
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q (choose from %s)", ErrUnknownFormat, value, formatList())
	}
	return f, nil
}

func (f Format) Valid() bool {
	_, ok := formatLabels[f]
	return ok
}

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// MIMEType is the media type of documents in this format.
func (f Format) MIMEType() string {
	switch f {
	case DOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case PDF:
		return "application/pdf"
	case ODT:
		return "application/vnd.oasis.opendocument.text"
	case HTML:
		return "text/html; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

func (f Format) Label() string {
	if label, ok := formatLabels[f]; ok {
		return label
	}
	return string(f)
}

func (f Format) String() string {
	return string(f)
}

func formatList() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
