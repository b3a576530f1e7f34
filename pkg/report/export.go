package report

import (
	"encoding/json"
	"io"
	"os"

	"github.com/terrrybug/pyninja/pkg/errors"
)

// EncodeJSON writes the report to w as indented JSON.
func EncodeJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteJSON exports the report to a file, overwriting any previous export
// at the same path.
func WriteJSON(path string, r Report) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "creating export file %s", path)
	}
	defer f.Close()

	if err := EncodeJSON(f, r); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encoding report to %s", path)
	}
	return f.Close()
}
