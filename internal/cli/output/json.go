package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter formats replies as JSON.
type JSONFormatter struct{}

// Format formats r as indented JSON.
func (f *JSONFormatter) Format(w io.Writer, r Reply) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}
