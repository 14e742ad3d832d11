package relay

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// LineMode controls how event lines that straddle a chunk boundary are
// handled.
type LineMode int

const (
	// LineModeBuffered keeps the unterminated tail of each chunk and joins
	// it with the next one, so an event split across reads is recovered.
	LineModeBuffered LineMode = iota
	// LineModeChunk splits every decoded chunk on its own. Fragments of a
	// line split across reads fail to parse and are dropped.
	LineModeChunk
)

func (m LineMode) String() string {
	if m == LineModeChunk {
		return "chunk"
	}
	return "buffered"
}

// ParseLineMode accepts "buffered" (or empty) and "chunk".
func ParseLineMode(s string) (LineMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "buffered":
		return LineModeBuffered, nil
	case "chunk":
		return LineModeChunk, nil
	default:
		return LineModeBuffered, fmt.Errorf("unknown relay line mode %q", s)
	}
}

// State is the lifecycle of a TokenStream: Reading until the upstream body
// ends, fails or the caller closes it, then Closed for good.
type State int

const (
	StateReading State = iota
	StateClosed
)

const defaultChunkSize = 4096

// TokenStream is a single-pass, pull-based iterator over the text deltas of
// an upstream event stream. Next and Err must be called from one goroutine;
// Close may be called from any goroutine, any number of times.
type TokenStream struct {
	id      string
	body    io.ReadCloser
	mode    LineMode
	decoder *utf8Decoder
	buf     []byte

	partial string
	queue   []string
	eof     bool
	err     error

	emitted int
	skipped int

	stopped   atomic.Bool
	released  atomic.Bool
	closeOnce sync.Once
}

// NewTokenStream wraps an upstream body. The stream owns body and closes it
// on every exit path.
func NewTokenStream(body io.ReadCloser, mode LineMode, chunkSize int) *TokenStream {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &TokenStream{
		id:      uuid.NewString(),
		body:    body,
		mode:    mode,
		decoder: newUTF8Decoder(),
		buf:     make([]byte, chunkSize),
	}
}

// ID identifies the stream in logs.
func (s *TokenStream) ID() string { return s.id }

// Next returns the next token. It blocks while waiting for upstream bytes and
// reports false once the stream is exhausted or closed.
func (s *TokenStream) Next() (string, bool) {
	for {
		if s.stopped.Load() {
			return "", false
		}
		if len(s.queue) > 0 {
			tok := s.queue[0]
			s.queue = s.queue[1:]
			s.emitted++
			return tok, true
		}
		if s.eof {
			return "", false
		}
		s.readChunk()
	}
}

// Err returns the read error that ended the stream early, if any. A clean
// end of stream or a caller initiated Close is not an error.
func (s *TokenStream) Err() error {
	return s.err
}

// State reports whether the stream is still reading.
func (s *TokenStream) State() State {
	if s.released.Load() {
		return StateClosed
	}
	return StateReading
}

// Emitted and Skipped count relayed tokens and dropped malformed events.
func (s *TokenStream) Emitted() int { return s.emitted }
func (s *TokenStream) Skipped() int { return s.skipped }

// Close stops the stream and releases the upstream body. Calling it again is
// a no-op.
func (s *TokenStream) Close() error {
	s.stopped.Store(true)
	return s.release()
}

func (s *TokenStream) release() error {
	var err error
	s.closeOnce.Do(func() {
		s.released.Store(true)
		err = s.body.Close()
	})
	return err
}

func (s *TokenStream) readChunk() {
	n, err := s.body.Read(s.buf)
	if n > 0 {
		s.consume(s.decoder.decode(s.buf[:n], false))
	}
	if err == nil {
		return
	}

	s.eof = true
	switch {
	case errors.Is(err, io.EOF):
		s.consume(s.decoder.decode(nil, true))
		s.flushPartial()
	case s.stopped.Load():
		// Closed by the caller while a read was in flight.
	default:
		s.err = fmt.Errorf("could not read upstream stream: %w", err)
		slog.Warn("Upstream stream ended with a read error", "stream_id", s.id, "error", err)
	}

	if cErr := s.release(); cErr != nil {
		slog.Warn("Failed to close upstream body", "stream_id", s.id, "error", cErr)
	}
	slog.Debug("Upstream stream finished", "stream_id", s.id, "queued", len(s.queue), "skipped", s.skipped)
}

func (s *TokenStream) consume(text string) {
	if text == "" {
		return
	}
	if s.mode == LineModeChunk {
		for _, line := range strings.Split(text, "\n") {
			s.handleLine(line)
		}
		return
	}

	s.partial += text
	for {
		line, rest, found := strings.Cut(s.partial, "\n")
		if !found {
			return
		}
		s.handleLine(line)
		s.partial = rest
	}
}

func (s *TokenStream) flushPartial() {
	if s.partial == "" {
		return
	}
	s.handleLine(s.partial)
	s.partial = ""
}

func (s *TokenStream) handleLine(line string) {
	kind, payload := classifyLine(strings.TrimSuffix(line, "\r"))
	if kind != lineData {
		return
	}
	tok, err := ParseDelta(payload)
	if err != nil {
		s.skipped++
		slog.Debug("Skipping malformed stream event", "stream_id", s.id, "error", err)
		return
	}
	if tok != "" {
		s.queue = append(s.queue, tok)
	}
}
