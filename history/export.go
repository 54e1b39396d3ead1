package history

import (
	"io"

	"gopkg.in/yaml.v3"
)

// ExportYAML writes the records as a YAML sequence.
func ExportYAML(w io.Writer, recs []GameRecord) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(recs); err != nil {
		return err
	}
	return enc.Close()
}
