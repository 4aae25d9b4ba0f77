package output

import (
	"encoding/json"
	"fmt"
	"io"

	"go.nabs.build/nabs/internal/core/domain"
	"go.trai.ch/zerr"
)

// Format names one of the four output shapes spec.md §6 reserves for the
// "changed" command.
type Format string

const (
	FormatPlain Format = "plain"
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatNDJSON Format = "ndjson"
)

// Formatter renders a set of affected projects to w. Table and ndjson are
// declared but not implemented (ErrFormatNotImplemented), per spec.md §9's
// instruction that reserved surfaces fail loudly rather than silently
// falling back to a different shape.
type Formatter interface {
	Format(w io.Writer, projects []domain.ProjectRef) error
}

// NewFormatter resolves a Format to its Formatter.
func NewFormatter(f Format) (Formatter, error) {
	switch f {
	case FormatPlain:
		return plainFormatter{}, nil
	case FormatJSON:
		return jsonFormatter{}, nil
	case FormatTable, FormatNDJSON:
		return nil, zerr.With(domain.ErrFormatNotImplemented, "format", string(f))
	default:
		return nil, zerr.With(domain.ErrFormatNotImplemented, "format", string(f))
	}
}

type plainFormatter struct{}

func (plainFormatter) Format(w io.Writer, projects []domain.ProjectRef) error {
	for _, p := range projects {
		if _, err := fmt.Fprintln(w, p.String()); err != nil {
			return err
		}
	}
	return nil
}

type jsonFormatter struct{}

func (jsonFormatter) Format(w io.Writer, projects []domain.ProjectRef) error {
	names := make([]string, len(projects))
	for i, p := range projects {
		names[i] = p.String()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Projects []string `json:"projects"`
	}{Projects: names})
}
