package ir

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"sigs.k8s.io/yaml"
)

// Format selects a dump encoding.
type Format uint8

const (
	FormatText Format = iota
	FormatJSON
	FormatYAML
	FormatMsgpack
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatMsgpack:
		return "msgpack"
	}
	return "text"
}

// ParseFormat accepts text, json, yaml (or yml) and msgpack.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "msgpack":
		return FormatMsgpack, nil
	}
	return FormatText, fmt.Errorf("unknown dump format %q", s)
}

// Encode writes v in a structured format. Text is handled by the caller's
// own printer (Dump for modules).
func Encode(w io.Writer, v any, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("yaml: %w", err)
		}
		_, err = w.Write(data)
		return err
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		return enc.Encode(v)
	}
	return fmt.Errorf("encode: %s is not a structured format", f)
}

// Write dumps m in format f.
func Write(w io.Writer, m *Module, f Format) error {
	if f == FormatText {
		return Dump(w, m)
	}
	return Encode(w, m, f)
}

func (t Type) MarshalText() ([]byte, error)        { return []byte(t.String()), nil }
func (m Mode) MarshalText() ([]byte, error)        { return []byte(m.String()), nil }
func (k BindingKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }
func (k ExprKind) MarshalText() ([]byte, error)    { return []byte(k.String()), nil }
func (k StmtKind) MarshalText() ([]byte, error)    { return []byte(k.String()), nil }
func (k CommandKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }
func (k TestKind) MarshalText() ([]byte, error)    { return []byte(k.String()), nil }
