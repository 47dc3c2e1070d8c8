package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type seen struct {
	method string
	uri    string
	header http.Header
	body   string
}

func echoServer(t *testing.T, status int, reply string) (*httptest.Server, *seen) {
	t.Helper()
	s := &seen{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		s.method = r.Method
		s.uri = r.URL.RequestURI()
		s.header = r.Header.Clone()
		s.body = string(b)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv, s
}

func TestHTTPRequiresBaseURL(t *testing.T) {
	_, err := NewHTTP(HTTPOptions{})
	require.Error(t, err)
}

func TestHTTPGetEncodesSortedParams(t *testing.T) {
	srv, s := echoServer(t, http.StatusOK, `[]`)
	h, err := NewHTTP(HTTPOptions{BaseURL: srv.URL, Header: http.Header{"Authorization": {"Bearer t"}}})
	require.NoError(t, err)

	resp, err := h.Call(context.Background(), Request{
		URL:    "/api/helprequests",
		Params: map[string]any{"z": 1, "id": 17, "skip": nil},
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, s.method)
	assert.Equal(t, "/api/helprequests?id=17&z=1", s.uri)
	assert.Equal(t, "Bearer t", s.header.Get("Authorization"))
	assert.Equal(t, "application/json", s.header.Get("Accept"))
	assert.Empty(t, s.header.Get("Content-Type"))
	assert.NotEmpty(t, s.header.Get("X-Request-ID"))
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "[]", string(resp.Data))
	assert.Equal(t, "application/json", resp.ContentType)
}

func TestHTTPBodyIsEncoded(t *testing.T) {
	srv, s := echoServer(t, http.StatusOK, `{}`)
	h, err := NewHTTP(HTTPOptions{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = h.Call(context.Background(), Request{
		Method: "put",
		URL:    "/api/ucsborganization",
		Params: map[string]any{"orgCode": "ZPR"},
		Body:   map[string]any{"orgCode": "ZPR", "inactive": true},
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, s.method)
	assert.Equal(t, "/api/ucsborganization?orgCode=ZPR", s.uri)
	assert.Equal(t, "application/json", s.header.Get("Content-Type"))
	assert.JSONEq(t, `{"orgCode":"ZPR","inactive":true}`, s.body)
}

func TestHTTPStatusError(t *testing.T) {
	srv, _ := echoServer(t, http.StatusInternalServerError, `{"message":"nope"}`)
	h, err := NewHTTP(HTTPOptions{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = h.Call(context.Background(), Request{Method: http.MethodDelete, URL: "/api/ucsborganization"})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Status)
	assert.Equal(t, http.MethodDelete, se.Method)
	assert.Contains(t, se.Error(), "status 500")
	assert.Contains(t, se.Error(), "nope")
}

func TestHTTPMaxBodyTruncates(t *testing.T) {
	srv, _ := echoServer(t, http.StatusOK, strings.Repeat("x", 100))
	h, err := NewHTTP(HTTPOptions{BaseURL: srv.URL, MaxBody: 10})
	require.NoError(t, err)

	resp, err := h.Call(context.Background(), Request{URL: "/big"})
	require.NoError(t, err)
	assert.Len(t, resp.Data, 10)
}

func TestHTTPLimiterHonorsContext(t *testing.T) {
	srv, _ := echoServer(t, http.StatusOK, `{}`)
	lim := rate.NewLimiter(rate.Limit(0.001), 1)
	h, err := NewHTTP(HTTPOptions{BaseURL: srv.URL, Limiter: lim})
	require.NoError(t, err)

	_, err = h.Call(context.Background(), Request{URL: "/a"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = h.Call(ctx, Request{URL: "/a"})
	require.Error(t, err)
}

func TestFuncAdapter(t *testing.T) {
	var got Request
	f := Func(func(_ context.Context, req Request) (Response, error) {
		got = req
		return Response{Status: 204}, nil
	})
	resp, err := f.Call(context.Background(), Request{Method: "DELETE", URL: "/x"})
	require.NoError(t, err)
	assert.Equal(t, 204, resp.Status)
	assert.Equal(t, "/x", got.URL)
}
