// Package codec implements the tagged-envelope encoding the ledger API uses
// to carry values plain JSON cannot represent losslessly: arbitrary-precision
// integers and timestamps.
//
// The envelope wraps a plain JSON shadow of the value together with a meta
// sidecar mapping dotted paths to the annotation needed to reconstruct the
// original value:
//
//	{"json": {"stake": "12345678901234567890"}, "meta": {"values": {"stake": ["bigint"]}}}
//
// Decode accepts the envelope form and plain JSON transparently. Plain
// numbers are preserved as json.Number so large integers survive even
// without annotations.
package codec

import (
	"bytes"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/onit-labs/onit-markets-go/pkg/types"

	json "github.com/goccy/go-json"
)

const (
	annotationBigInt = "bigint"
	annotationDate   = "Date"
)

type envelope struct {
	JSON any           `json:"json"`
	Meta *envelopeMeta `json:"meta,omitempty"`
}

type envelopeMeta struct {
	Values map[string][]string `json:"values"`
}

// Encode serializes v, replacing *big.Int and time.Time leaves with string
// shadows and recording their paths in the meta sidecar. Values with no
// special leaves serialize as plain JSON with no envelope. Pure: v is not
// mutated.
func Encode(v any) ([]byte, error) {
	values := make(map[string][]string)

	plain, err := flatten(v, "", values)
	if err != nil {
		return nil, err
	}

	if len(values) == 0 {
		return json.Marshal(plain)
	}

	return json.Marshal(envelope{JSON: plain, Meta: &envelopeMeta{Values: values}})
}

func flatten(v any, path string, values map[string][]string) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case *big.Int:
		if val == nil {
			return nil, nil
		}
		values[path] = []string{annotationBigInt}
		return val.String(), nil
	case big.Int:
		values[path] = []string{annotationBigInt}
		return val.String(), nil
	case time.Time:
		values[path] = []string{annotationDate}
		return val.UTC().Format(time.RFC3339Nano), nil
	case *time.Time:
		if val == nil {
			return nil, nil
		}
		values[path] = []string{annotationDate}
		return val.UTC().Format(time.RFC3339Nano), nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			flat, err := flatten(child, joinPath(path, k), values)
			if err != nil {
				return nil, err
			}
			out[k] = flat
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			flat, err := flatten(child, joinPath(path, strconv.Itoa(i)), values)
			if err != nil {
				return nil, err
			}
			out[i] = flat
		}
		return out, nil
	case string, bool, int, int64, float64, json.Number:
		return val, nil
	default:
		return nil, fmt.Errorf("encode: unsupported value type %T at %q", v, path)
	}
}

// Decode parses a response body. The tagged-union branch is explicit: parse
// once preserving numbers, then probe the top level for the envelope's
// "json" and "meta" keys; anything else is already the plain result. Never
// exception-driven.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var parsed any
	if err := dec.Decode(&parsed); err != nil {
		return nil, &types.DecodeError{Raw: string(data), Err: fmt.Errorf("parse body: %w", err)}
	}

	return DecodeValue(parsed)
}

// DecodeValue reconstructs an already-parsed value: a JSON string is decoded
// in place, an object carrying both envelope keys has its meta applied, and
// any other shape passes through unchanged.
func DecodeValue(v any) (any, error) {
	if s, ok := v.(string); ok {
		return Decode([]byte(s))
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return v, nil
	}

	shadow, hasJSON := obj["json"]
	rawMeta, hasMeta := obj["meta"]
	if !hasJSON || !hasMeta {
		return v, nil
	}

	metaObj, ok := rawMeta.(map[string]any)
	if !ok {
		return nil, decodeErr(v, fmt.Errorf("envelope meta is %T, not an object", rawMeta))
	}

	rawValues, ok := metaObj["values"]
	if !ok {
		return shadow, nil
	}

	valuesObj, ok := rawValues.(map[string]any)
	if !ok {
		return nil, decodeErr(v, fmt.Errorf("envelope meta.values is %T, not an object", rawValues))
	}

	result := shadow
	for path, rawAnnotation := range valuesObj {
		annotation, err := annotationName(rawAnnotation)
		if err != nil {
			return nil, decodeErr(v, fmt.Errorf("path %q: %w", path, err))
		}

		result, err = applyAnnotation(result, path, annotation)
		if err != nil {
			return nil, decodeErr(v, err)
		}
	}

	return result, nil
}

func annotationName(raw any) (string, error) {
	list, ok := raw.([]any)
	if !ok || len(list) == 0 {
		return "", fmt.Errorf("annotation is %T, not a non-empty array", raw)
	}

	name, ok := list[0].(string)
	if !ok {
		return "", fmt.Errorf("annotation tag is %T, not a string", list[0])
	}

	return name, nil
}

// applyAnnotation rebuilds the value at the dotted path. An empty path
// annotates the root.
func applyAnnotation(root any, path, annotation string) (any, error) {
	if path == "" {
		return reviveLeaf(root, path, annotation)
	}

	segments := strings.Split(path, ".")
	return applySegments(root, segments, path, annotation)
}

func applySegments(node any, segments []string, fullPath, annotation string) (any, error) {
	if len(segments) == 0 {
		return reviveLeaf(node, fullPath, annotation)
	}

	head, rest := segments[0], segments[1:]

	switch container := node.(type) {
	case map[string]any:
		child, ok := container[head]
		if !ok {
			return nil, fmt.Errorf("envelope meta path %q not found in shadow", fullPath)
		}
		revived, err := applySegments(child, rest, fullPath, annotation)
		if err != nil {
			return nil, err
		}
		container[head] = revived
		return container, nil
	case []any:
		idx, err := strconv.Atoi(head)
		if err != nil || idx < 0 || idx >= len(container) {
			return nil, fmt.Errorf("envelope meta path %q has bad index %q", fullPath, head)
		}
		revived, err := applySegments(container[idx], rest, fullPath, annotation)
		if err != nil {
			return nil, err
		}
		container[idx] = revived
		return container, nil
	default:
		return nil, fmt.Errorf("envelope meta path %q traverses a %T", fullPath, node)
	}
}

func reviveLeaf(leaf any, path, annotation string) (any, error) {
	s, ok := leaf.(string)
	if !ok {
		return nil, fmt.Errorf("annotated value at %q is %T, not a string", path, leaf)
	}

	switch annotation {
	case annotationBigInt:
		i, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("annotated bigint at %q is not a decimal integer: %q", path, s)
		}
		return i, nil
	case annotationDate:
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("annotated date at %q: %w", path, err)
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unknown envelope annotation %q at %q", annotation, path)
	}
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}

	return parent + "." + key
}

func decodeErr(payload any, err error) *types.DecodeError {
	raw, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		raw = []byte(fmt.Sprintf("%v", payload))
	}

	return &types.DecodeError{Raw: string(raw), Err: err}
}
