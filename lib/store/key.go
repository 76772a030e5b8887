package store

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// --------------------------------------------------------------------------
// Key Canonicalization
// --------------------------------------------------------------------------

// Records travel through JSON, which turns every number into a float64. A
// record stored with the integer key 1 must therefore be found again with
// the key 1.0 (and vice versa). EncodeKey maps every valid key to a
// canonical, type-tagged string so that equal keys always encode equally,
// regardless of the numeric Go type they arrive in.
//
// Valid key types are strings, booleans and numbers. Everything else
// (nil, maps, slices, structs) is rejected with RetCInvalidKey.
func EncodeKey(key any) (string, error) {
	switch v := key.(type) {
	case string:
		return "s:" + v, nil
	case bool:
		return "b:" + strconv.FormatBool(v), nil
	case int:
		return encodeInt(int64(v)), nil
	case int8:
		return encodeInt(int64(v)), nil
	case int16:
		return encodeInt(int64(v)), nil
	case int32:
		return encodeInt(int64(v)), nil
	case int64:
		return encodeInt(v), nil
	case uint:
		return encodeFloat(float64(v)), nil
	case uint8:
		return encodeInt(int64(v)), nil
	case uint16:
		return encodeInt(int64(v)), nil
	case uint32:
		return encodeInt(int64(v)), nil
	case uint64:
		return encodeFloat(float64(v)), nil
	case float32:
		return encodeFloat(float64(v)), nil
	case float64:
		return encodeFloat(v), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return encodeInt(i), nil
		}
		f, err := v.Float64()
		if err != nil {
			return "", NewError(RetCInvalidKey, fmt.Sprintf("invalid numeric key %q", v.String()))
		}
		return encodeFloat(f), nil
	default:
		return "", NewError(RetCInvalidKey, fmt.Sprintf("unsupported key type %T", key))
	}
}

// ExtractKey reads the key of a record from its key path field. A record
// without the field, or with an invalid value in it, cannot be stored.
func ExtractKey(entry Record, keyPath string) (any, error) {
	key, ok := entry[keyPath]
	if !ok {
		return nil, NewError(RetCInvalidKey, fmt.Sprintf("record is missing the key path field %q", keyPath))
	}
	if _, err := EncodeKey(key); err != nil {
		return nil, err
	}
	return key, nil
}

func encodeInt(i int64) string {
	return "n:" + strconv.FormatInt(i, 10)
}

// maxSafeInt is the largest integer a float64 represents exactly.
const maxSafeInt = 1 << 53

func encodeFloat(f float64) string {
	// integral floats encode like the matching integer so that the JSON
	// round trip (int -> float64) does not change the key
	if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) <= maxSafeInt {
		return encodeInt(int64(f))
	}
	return "n:" + strconv.FormatFloat(f, 'g', -1, 64)
}
