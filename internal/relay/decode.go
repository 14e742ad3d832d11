package relay

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// utf8Decoder decodes a byte stream chunk by chunk. A multi-byte sequence
// split across two chunks is held back until the rest arrives; invalid
// bytes become U+FFFD.
type utf8Decoder struct {
	t       transform.Transformer
	pending []byte
	dst     []byte
}

func newUTF8Decoder() *utf8Decoder {
	return &utf8Decoder{t: unicode.UTF8.NewDecoder()}
}

func (d *utf8Decoder) decode(p []byte, atEOF bool) string {
	src := make([]byte, 0, len(d.pending)+len(p))
	src = append(append(src, d.pending...), p...)
	d.pending = d.pending[:0]

	var out strings.Builder
	for {
		if need := len(src)*3 + utf8.UTFMax; len(d.dst) < need {
			d.dst = make([]byte, need)
		}
		nDst, nSrc, err := d.t.Transform(d.dst, src, atEOF)
		out.Write(d.dst[:nDst])
		src = src[nSrc:]

		switch {
		case err == nil:
			return out.String()
		case errors.Is(err, transform.ErrShortSrc):
			d.pending = append(d.pending, src...)
			return out.String()
		case errors.Is(err, transform.ErrShortDst):
			if nDst == 0 && nSrc == 0 {
				d.dst = make([]byte, 2*len(d.dst))
			}
		default:
			return out.String()
		}
	}
}
