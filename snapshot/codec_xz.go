//go:build xz

package snapshot

import (
	"io"

	"github.com/ulikunitz/xz"
)

func init() {
	RegisterCodec("xz", &Codec{
		NewWriter: func(w io.Writer) (io.WriteCloser, error) {
			return xz.NewWriter(w)
		},
		NewReader: func(r io.Reader) (io.ReadCloser, error) {
			rc, err := xz.NewReader(r)
			if err != nil {
				return nil, err
			}
			return io.NopCloser(rc), nil
		},
	})
}
