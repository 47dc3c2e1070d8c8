package codec

import "fmt"

// LimitCodec wraps another codec to enforce a maximum payload size at Decode time.
// Encode is forwarded to Inner unchanged. If MaxDecode <= 0, size limiting is disabled.
type LimitCodec[V any] struct {
	Inner     Codec[V]
	MaxDecode int
}

// ErrTooLarge wraps every size rejection.
var ErrTooLarge = fmt.Errorf("payload too large")

func (c LimitCodec[V]) ContentType() string { return ContentTypeOf(c.Inner) }

func (c LimitCodec[V]) Encode(v V) ([]byte, error) { return c.Inner.Encode(v) }
func (c LimitCodec[V]) Decode(b []byte) (V, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero V
		return zero, fmt.Errorf("%w: %d > %d", ErrTooLarge, len(b), c.MaxDecode)
	}
	return c.Inner.Decode(b)
}
