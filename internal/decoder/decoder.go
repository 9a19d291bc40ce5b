// Package decoder turns raw JSON response bodies into typed payloads.
//
// A payload is either a single object or a sequence of objects. Without key
// paths the top-level value decides the shape. With key paths each path is
// tried in order and the first one that resolves is decoded. An empty body
// always yields an empty payload.
package decoder

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/eshaffer321/restcore-go/internal/types"
)

// Shape is the expected payload shape
type Shape int

const (
	// ShapeAuto accepts whatever the JSON holds
	ShapeAuto Shape = iota
	ShapeSingle
	ShapeSequence
)

func (s Shape) String() string {
	switch s {
	case ShapeSingle:
		return "single"
	case ShapeSequence:
		return "sequence"
	default:
		return "auto"
	}
}

// Payload holds a decoded single object or sequence. Both are empty when
// nothing was located.
type Payload[T any] struct {
	Object  *T
	Objects []T
}

// IsSequence reports whether the payload is a sequence
func (p *Payload[T]) IsSequence() bool {
	return p.Objects != nil
}

// IsEmpty reports whether nothing was decoded
func (p *Payload[T]) IsEmpty() bool {
	return p.Object == nil && p.Objects == nil
}

// PathSeparator separates key path segments
const PathSeparator = "/"

// Decode decodes raw into T or []T. See the package doc for key path rules.
func Decode[T any](raw []byte, keyPaths []string, shape Shape) (*Payload[T], error) {
	if len(keyPaths) == 0 {
		return decodeTopLevel[T](raw, shape)
	}

	// an empty body (e.g. 204) has nothing to locate
	if len(bytes.TrimSpace(raw)) == 0 {
		return &Payload[T]{}, nil
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, types.WrapError(types.KindInvalidJSON, err, "response is not a JSON object")
	}

	value, ok := Locate(root, keyPaths)
	if !ok {
		return &Payload[T]{}, nil
	}
	return decodeValue[T](value, shape)
}

// Locate returns the value addressed by the first resolvable key path
func Locate(root map[string]json.RawMessage, keyPaths []string) (json.RawMessage, bool) {
	for _, keyPath := range keyPaths {
		if value, ok := resolve(root, keyPath); ok {
			return value, true
		}
	}
	return nil, false
}

// resolve walks one key path. A JSON null or the string "null" at the end of
// the path counts as absent.
func resolve(root map[string]json.RawMessage, keyPath string) (json.RawMessage, bool) {
	segments := strings.Split(keyPath, PathSeparator)

	level := root
	for i, segment := range segments {
		value, ok := level[segment]
		if !ok {
			return nil, false
		}

		if i == len(segments)-1 {
			if isNullLiteral(value) {
				return nil, false
			}
			return value, true
		}

		var next map[string]json.RawMessage
		if err := json.Unmarshal(value, &next); err != nil || next == nil {
			return nil, false
		}
		level = next
	}
	return nil, false
}

func isNullLiteral(value json.RawMessage) bool {
	trimmed := bytes.TrimSpace(value)
	return bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`"null"`))
}

func decodeTopLevel[T any](raw []byte, shape Shape) (*Payload[T], error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || !json.Valid(trimmed) || isNullLiteral(trimmed) {
		// absence is not an error here; status codes classify failures
		return &Payload[T]{}, nil
	}

	if trimmed[0] == '[' {
		return decodeSequence[T](trimmed, shape)
	}
	return decodeSingle[T](trimmed, shape)
}

func decodeValue[T any](value json.RawMessage, shape Shape) (*Payload[T], error) {
	trimmed := bytes.TrimSpace(value)
	if !json.Valid(trimmed) {
		return nil, types.NewError(types.KindInvalidJSON, "located value is not valid JSON")
	}

	switch trimmed[0] {
	case '[':
		return decodeSequence[T](trimmed, shape)
	case '{':
		return decodeSingle[T](trimmed, shape)
	default:
		return nil, types.NewError(types.KindInvalidJSON, "located value is neither an object nor an array")
	}
}

func decodeSequence[T any](data []byte, shape Shape) (*Payload[T], error) {
	if shape == ShapeSingle {
		return nil, types.NewError(types.KindParseError, "expected a single object, got an array")
	}

	objects := []T{}
	if err := json.Unmarshal(data, &objects); err != nil {
		return nil, types.WrapError(types.KindParseError, err, "failed to decode array")
	}
	return &Payload[T]{Objects: objects}, nil
}

func decodeSingle[T any](data []byte, shape Shape) (*Payload[T], error) {
	if shape == ShapeSequence {
		return nil, types.NewError(types.KindParseError, "expected an array, got a single value")
	}

	var object T
	if err := json.Unmarshal(data, &object); err != nil {
		return nil, types.WrapError(types.KindParseError, err, "failed to decode object")
	}
	return &Payload[T]{Object: &object}, nil
}
