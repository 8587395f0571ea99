package cli

import (
	"encoding/json"
	"io"
)

// OutputFormatter writes command results as text or as a JSON envelope
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Response is the JSON envelope of every command
type Response struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

func newFormatter(opts *RootOptions, w io.Writer) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: w}
}

// Emit writes data as JSON, or calls text to render it for humans
func (f *OutputFormatter) Emit(data any, text func(w io.Writer) error) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(Response{Status: "ok", Data: data})
	}
	return text(f.Writer)
}
