package output

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter formats replies as YAML documents.
type YAMLFormatter struct{}

// Format formats r as one YAML document.
func (f *YAMLFormatter) Format(w io.Writer, r Reply) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}
