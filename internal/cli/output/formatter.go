package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/yndnr/kvdis-go/internal/core/command"
)

// Format represents the output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a --output value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

// Reply is one command and the server's answer.
type Reply struct {
	Command string `json:"command" yaml:"command"`
	Reply   string `json:"reply" yaml:"reply"`
	Error   bool   `json:"error" yaml:"error"`
}

// NewReply classifies a raw reply line.
func NewReply(cmd, line string) Reply {
	return Reply{
		Command: cmd,
		Reply:   line,
		Error:   strings.HasPrefix(line, command.ErrorPrefix),
	}
}

// Formatter formats replies for output.
type Formatter interface {
	Format(w io.Writer, r Reply) error
}

// NewFormatter creates a formatter for the given format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TextFormatter{}
	}
}

// TextFormatter prints the reply line, or OK for an empty success.
type TextFormatter struct{}

// Format writes the reply as a single line.
func (f *TextFormatter) Format(w io.Writer, r Reply) error {
	text := r.Reply
	if text == "" {
		text = "OK"
	}
	_, err := fmt.Fprintln(w, text)
	return err
}
