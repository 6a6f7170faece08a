package snapshot

import "io"

// Codec wraps a compressed stream's writer/reader pair. Snapshot export
// and import go through whichever Codec is registered for the name
// requested, the same registry shape as the teacher package's
// RegisterDecompressor/comp_xz.go/comp_zstd.go build-tag-gated codecs.
type Codec struct {
	NewWriter func(w io.Writer) (io.WriteCloser, error)
	NewReader func(r io.Reader) (io.ReadCloser, error)
}

var codecs = map[string]*Codec{}

// RegisterCodec adds a named codec to the registry. Build-tag-gated
// files (codec_xz.go, codec_zstd.go) call this from their own init().
func RegisterCodec(name string, c *Codec) {
	codecs[name] = c
}

// Lookup returns the codec registered under name, or nil if none is
// available (e.g. the binary was built without the xz/zstd build tag).
func Lookup(name string) *Codec {
	return codecs[name]
}

// Names returns every codec name currently registered, in no
// particular order.
func Names() []string {
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	return names
}
