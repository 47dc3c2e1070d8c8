package codec

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

type org struct {
	Orgcode   string    `json:"orgCode"`
	Name      string    `json:"orgTranslationShort"`
	Inactive  bool      `json:"inactive"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func sampleOrg() org {
	return org{Orgcode: "ZPR", Name: "ZETA PHI RHO", UpdatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func TestStructCodecsRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		c    Codec[org]
		ct   string
	}{
		{"json", JSON[org]{}, "application/json"},
		{"msgpack", Msgpack[org]{}, "application/msgpack"},
		{"cbor", MustCBOR[org](true), "application/cbor"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := sampleOrg()
			b, err := tc.c.Encode(in)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			out, err := tc.c.Decode(b)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if out.Orgcode != in.Orgcode || out.Name != in.Name || !out.UpdatedAt.Equal(in.UpdatedAt) {
				t.Fatalf("round trip mismatch: %+v vs %+v", out, in)
			}
			if got := ContentTypeOf(tc.c); got != tc.ct {
				t.Fatalf("content type = %q, want %q", got, tc.ct)
			}
		})
	}
}

func TestMsgpackUsesJSONTags(t *testing.T) {
	b, err := Msgpack[org]{}.Encode(sampleOrg())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Contains(b, []byte("orgCode")) {
		t.Fatalf("expected json tag name in msgpack payload")
	}
}

func TestCBORDeterministicMaps(t *testing.T) {
	c := MustCBOR[map[string]int](true)
	a, err := c.Encode(map[string]int{"b": 2, "a": 1, "c": 3})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for i := 0; i < 20; i++ {
		b, err := c.Encode(map[string]int{"c": 3, "a": 1, "b": 2})
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		if !bytes.Equal(a, b) {
			t.Fatalf("deterministic encoding produced different bytes")
		}
	}
}

func TestProtobufStruct(t *testing.T) {
	c := NewProtobuf(func() *structpb.Struct { return &structpb.Struct{} })
	in, err := structpb.NewStruct(map[string]any{"orgCode": "ZPR", "inactive": false})
	if err != nil {
		t.Fatalf("struct: %v", err)
	}
	b, err := c.Encode(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := c.Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !proto.Equal(in, out) {
		t.Fatalf("round trip mismatch: %v vs %v", out, in)
	}
	if out.Fields["orgCode"].GetStringValue() != "ZPR" {
		t.Fatalf("orgCode = %v", out.Fields["orgCode"])
	}
}

func TestRawCodecs(t *testing.T) {
	b, _ := Bytes{}.Encode([]byte("abc"))
	if string(b) != "abc" {
		t.Fatalf("bytes encode = %q", b)
	}
	s, _ := String{}.Decode([]byte("hello"))
	if s != "hello" {
		t.Fatalf("string decode = %q", s)
	}
	if ContentTypeOf(Bytes{}) != "" {
		t.Fatalf("Bytes should have no content type")
	}
}

func TestLimitCodec(t *testing.T) {
	c := LimitCodec[string]{Inner: String{}, MaxDecode: 4}

	if _, err := c.Decode([]byte("12345")); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("want ErrTooLarge, got %v", err)
	}
	v, err := c.Decode([]byte("1234"))
	if err != nil || v != "1234" {
		t.Fatalf("decode at limit = %q, %v", v, err)
	}
	if ContentTypeOf(c) != "text/plain; charset=utf-8" {
		t.Fatalf("content type not forwarded")
	}

	unlimited := LimitCodec[string]{Inner: String{}}
	if _, err := unlimited.Decode(bytes.Repeat([]byte("x"), 1<<16)); err != nil {
		t.Fatalf("unlimited decode: %v", err)
	}
}

func TestJSONDecodeError(t *testing.T) {
	if _, err := (JSON[org]{}).Decode([]byte("{not json")); err == nil {
		t.Fatalf("want decode error")
	}
}

func TestProtobufWithoutConstructor(t *testing.T) {
	var c Protobuf[*structpb.Struct]
	if _, err := c.Decode(nil); err == nil {
		t.Fatalf("want error without constructor")
	}
}
