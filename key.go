package querycache

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/unkn0wn-root/querycache/codec"
)

// ErrInvalidKey is returned when a key has no parts or a part cannot be encoded.
var ErrInvalidKey = errors.New("querycache: invalid key")

// canonical CBOR gives structurally equal keys identical bytes (map keys sorted,
// integers in their shortest form).
var keyCodec = codec.MustCBOR[[]any](true)

// Key identifies one logical read: an order-sensitive sequence of primitive values,
// e.g. an endpoint path followed by its query parameters. Equality is structural.
// The zero Key is invalid.
type Key struct {
	parts []any
	id    string
}

// NewKey builds a Key from parts. Parts may be strings, numbers, bools, nil,
// and slices or maps of those. Integral floats compare equal to the same integer,
// so an id decoded from JSON (float64(17)) matches a literal 17.
func NewKey(parts ...any) (Key, error) {
	if len(parts) == 0 {
		return Key{}, fmt.Errorf("%w: no parts", ErrInvalidKey)
	}
	cp := make([]any, len(parts))
	copy(cp, parts)
	norm := make([]any, len(cp))
	for i, p := range cp {
		norm[i] = canonicalNumber(p)
	}
	b, err := keyCodec.Encode(norm)
	if err != nil {
		return Key{}, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return Key{parts: cp, id: string(b)}, nil
}

// MustKey is like NewKey but panics on error.
func MustKey(parts ...any) Key {
	k, err := NewKey(parts...)
	if err != nil {
		panic(err)
	}
	return k
}

// Parts returns a copy of the key's parts.
func (k Key) Parts() []any {
	return append([]any(nil), k.parts...)
}

func (k Key) Valid() bool { return k.id != "" }

func (k Key) Equal(o Key) bool { return k.id == o.id }

func (k Key) String() string {
	s := make([]string, len(k.parts))
	for i, p := range k.parts {
		if str, ok := p.(string); ok {
			s[i] = fmt.Sprintf("%q", str)
			continue
		}
		s[i] = fmt.Sprintf("%v", p)
	}
	return "[" + strings.Join(s, " ") + "]"
}

// canonicalNumber rewrites integral floats as int64, recursing into slices and maps.
func canonicalNumber(v any) any {
	switch x := v.(type) {
	case nil, string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return v
	case float32:
		return integral(float64(x), v)
	case float64:
		return integral(x, v)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return v // []byte encodes as a byte string
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = canonicalNumber(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		out := make(map[any]any, rv.Len())
		it := rv.MapRange()
		for it.Next() {
			out[canonicalNumber(it.Key().Interface())] = canonicalNumber(it.Value().Interface())
		}
		return out
	}
	return v
}

func integral(f float64, orig any) any {
	if math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return orig
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return orig
	}
	return int64(f)
}
