package format

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrUnknownFormat = errors.New("unknown format")

// Envelope is the shape every CLI command prints: the payload under "data", optional
// paging/count metadata under "meta", and follow-up command suggestions under "_hints".
type Envelope struct {
	Data  any            `json:"data"`
	Meta  map[string]any `json:"meta,omitempty"`
	Hints []string       `json:"_hints,omitempty"`
}

// Wrap builds an envelope, dropping empty hints.
func Wrap(data any, hints ...string) Envelope {
	env := Envelope{Data: data}
	for _, h := range hints {
		if strings.TrimSpace(h) != "" {
			env.Hints = append(env.Hints, h)
		}
	}
	return env
}

// WithMeta returns a copy of e with k set in Meta.
func (e Envelope) WithMeta(k string, v any) Envelope {
	meta := make(map[string]any, len(e.Meta)+1)
	for mk, mv := range e.Meta {
		meta[mk] = mv
	}
	meta[k] = v
	e.Meta = meta
	return e
}

// Normalize validates a format name ("" means json).
func Normalize(format string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "", "json":
		return "json", nil
	case "edn":
		return "edn", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// Write writes output in the requested format.
//
// Supported formats:
// - json (default)
// - edn
func Write(w io.Writer, v any, format string, pretty bool) error {
	f, err := Normalize(format)
	if err != nil {
		return err
	}
	if f == "edn" {
		return WriteEDN(w, v, pretty)
	}
	return WriteJSON(w, v, pretty)
}

// WriteJSON writes strict JSON output for CLI commands.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}
