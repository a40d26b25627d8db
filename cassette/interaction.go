// Package cassette implements named collections of recorded HTTP
// interactions, the matcher strategies used to look them up, and the record
// modes that decide when new interactions may be added.
package cassette

import (
	"bytes"
	"io"
	"net/http"
	"time"
)

// A Request is the recorded form of an outgoing request.
//
// The headers are flattened to a simple key-value map. The underlying request
// may contain multiple values for each key but in practice this is not very
// common and working with a simple key-value map is much more convenient.
//
// A nil Body means the request had no body. Bodies are stored as raw bytes
// and serialize as base64.
type Request struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    []byte            `json:"body,omitempty"`
}

// A Response is the recorded form of a received response.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       []byte            `json:"body,omitempty"`
}

// An Interaction is a single recorded request-response pair. It is immutable
// once created; a cassette only ever appends brand-new interactions.
type Interaction struct {
	Request    Request   `json:"request"`
	Response   Response  `json:"response"`
	RecordedAt time.Time `json:"recordedAt"`
}

// NewInteraction pairs a recorded request and response and stamps the
// creation time.
func NewInteraction(req Request, resp Response) Interaction {
	return Interaction{
		Request:    req,
		Response:   resp,
		RecordedAt: time.Now().UTC(),
	}
}

// RequestFromHTTP captures an outgoing request as a Request value.
//
// The request body, if any, is read in full and replaced with an equivalent
// reader so the request can still be sent afterwards. An empty body is
// normalized to absent.
func RequestFromHTTP(req *http.Request) (Request, error) {
	var body []byte
	if req.Body != nil && req.Body != http.NoBody {
		b, err := io.ReadAll(req.Body)
		if err != nil {
			return Request{}, err
		}
		if err := req.Body.Close(); err != nil {
			return Request{}, err
		}
		req.Body = io.NopCloser(bytes.NewReader(b))
		if len(b) > 0 {
			body = b
		}
	}
	return Request{
		Method:  req.Method,
		URL:     req.URL.String(),
		Headers: flattenHeader(req.Header),
		Body:    body,
	}, nil
}

// ResponseFromHTTP captures a received response as a Response value.
//
// The response body is drained in full and replaced so the caller can still
// read it. If draining fails, for example because the request was cancelled
// mid-transfer, the error is returned and nothing is captured.
func ResponseFromHTTP(resp *http.Response) (Response, error) {
	var body []byte
	if resp.Body != nil {
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return Response{}, err
		}
		if err := resp.Body.Close(); err != nil {
			return Response{}, err
		}
		resp.Body = io.NopCloser(bytes.NewReader(b))
		if len(b) > 0 {
			body = b
		}
	}
	return Response{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeader(resp.Header),
		Body:       body,
	}, nil
}

// HTTPResponse synthesizes an *http.Response from the recorded response,
// without any network I/O.
func (i Interaction) HTTPResponse() *http.Response {
	return &http.Response{
		StatusCode:    i.Response.StatusCode,
		Header:        expandHeader(i.Response.Headers),
		Body:          io.NopCloser(bytes.NewReader(i.Response.Body)),
		ContentLength: int64(len(i.Response.Body)),
	}
}

// clone returns a copy that shares no headers or body bytes with the
// receiver. Nil maps and bodies stay nil.
func (i Interaction) clone() Interaction {
	i.Request.Headers = cloneHeaders(i.Request.Headers)
	i.Request.Body = append([]byte(nil), i.Request.Body...)
	i.Response.Headers = cloneHeaders(i.Response.Headers)
	i.Response.Body = append([]byte(nil), i.Response.Body...)
	return i
}

func cloneHeaders(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// normalize unifies the two on-disk spellings of an absent body: a decoded
// empty string and an omitted key both become nil.
func (i *Interaction) normalize() {
	if len(i.Request.Body) == 0 {
		i.Request.Body = nil
	}
	if len(i.Response.Body) == 0 {
		i.Response.Body = nil
	}
}

func flattenHeader(in http.Header) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, vv := range in {
		out[k] = vv[0]
	}
	return out
}

func expandHeader(in map[string]string) http.Header {
	out := make(http.Header, len(in))
	for k, v := range in {
		out.Set(k, v)
	}
	return out
}

// A Filter modifies an interaction before it is appended to a cassette.
//
// Filters run after the real request completed, with the primary purpose of
// trimming headers that should not end up in the saved file.
type Filter func(*Interaction)

// RemoveRequestHeader removes a header with the given name from the request.
// The name of the header is case-sensitive.
func RemoveRequestHeader(name string) Filter {
	return func(i *Interaction) {
		delete(i.Request.Headers, name)
	}
}

// RemoveResponseHeader removes a header with the given name from the response.
// The name of the header is case-sensitive.
func RemoveResponseHeader(name string) Filter {
	return func(i *Interaction) {
		delete(i.Response.Headers, name)
	}
}
