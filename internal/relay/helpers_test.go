package relay

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
)

// chunkReader hands out one predefined chunk per Read, the way a network
// body delivers whatever bytes have arrived.
type chunkReader struct {
	chunks  [][]byte
	tailErr error
	closes  atomic.Int32
	reads   atomic.Int32
}

func newChunkReader(chunks ...string) *chunkReader {
	r := &chunkReader{}
	for _, c := range chunks {
		r.chunks = append(r.chunks, []byte(c))
	}
	return r
}

func (r *chunkReader) Read(p []byte) (int, error) {
	r.reads.Add(1)
	if r.closes.Load() > 0 {
		return 0, errors.New("read on closed body")
	}
	if len(r.chunks) == 0 {
		if r.tailErr != nil {
			return 0, r.tailErr
		}
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	if n < len(r.chunks[0]) {
		r.chunks[0] = r.chunks[0][n:]
	} else {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

func (r *chunkReader) Close() error {
	r.closes.Add(1)
	return nil
}

func collect(s *TokenStream) []string {
	var out []string
	for {
		tok, ok := s.Next()
		if !ok {
			return out
		}
		out = append(out, tok)
	}
}

func event(content string) string {
	return `data: {"choices":[{"delta":{"content":"` + content + `"}}]}` + "\n\n"
}

func newResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}
