package snapshot

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

// gzip is the always-available default codec, built from klauspost's
// drop-in replacement for compress/gzip rather than the standard
// library package, matching the teacher's own preference for that
// module over stdlib compress/* (see comp_zstd.go).
func init() {
	RegisterCodec("gzip", &Codec{
		NewWriter: func(w io.Writer) (io.WriteCloser, error) {
			return gzip.NewWriter(w), nil
		},
		NewReader: func(r io.Reader) (io.ReadCloser, error) {
			return gzip.NewReader(r)
		},
	})
}
