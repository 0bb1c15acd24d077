package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/querydoc/internal/ir"
)

// ParamsToIR converts compiled statement parameters to an IRArray for the
// query log.
func ParamsToIR(params []any) (ir.IRArray, error) {
	out := make(ir.IRArray, len(params))
	for i, p := range params {
		v, err := ir.FromGo(p)
		if err != nil {
			return nil, fmt.Errorf("param %d: %w", i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

// marshalParams converts params to canonical JSON TEXT for storage.
// Uses RFC 8785 canonical JSON for deterministic serialization.
func marshalParams(params ir.IRArray) (string, error) {
	if params == nil {
		params = ir.IRArray{}
	}
	data, err := ir.MarshalCanonical(params)
	if err != nil {
		return "", fmt.Errorf("marshal params: %w", err)
	}
	return string(data), nil
}

// unmarshalParams parses canonical JSON TEXT to IRArray.
// Uses ir.IRArray.UnmarshalJSON which keeps large integers exact.
func unmarshalParams(data string) (ir.IRArray, error) {
	if data == "" || data == "[]" {
		return ir.IRArray{}, nil
	}
	var arr ir.IRArray
	if err := json.Unmarshal([]byte(data), &arr); err != nil {
		return nil, fmt.Errorf("unmarshal params: %w", err)
	}
	return arr, nil
}

// columnValue converts a scanned driver value to an IRValue.
// Byte slices become strings; times become RFC 3339 strings.
func columnValue(v any) (ir.IRValue, error) {
	switch val := v.(type) {
	case []byte:
		return ir.IRString(string(val)), nil
	case time.Time:
		return ir.IRString(val.UTC().Format(time.RFC3339Nano)), nil
	case int32:
		return ir.IRInt(val), nil
	case float32:
		return ir.FromGo(float64(val))
	default:
		return ir.FromGo(v)
	}
}
