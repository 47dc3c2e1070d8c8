package codec

// Codec encodes/decodes values V to []byte: request bodies, response payloads and
// cache keys all go through one.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// ContentTyped is implemented by codecs that have a media type. The HTTP transport
// uses it for Content-Type and Accept headers.
type ContentTyped interface {
	ContentType() string
}

// ContentTypeOf returns c's media type, or "" when it has none.
func ContentTypeOf(c any) string {
	if ct, ok := c.(ContentTyped); ok {
		return ct.ContentType()
	}
	return ""
}
