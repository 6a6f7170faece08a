// Package snapshot exports and imports the tree held in an SFS image
// as a compressed tar stream, supplementing the base specification
// with the archival workflow original_source/sfs.c has no equivalent
// of -- spec.md's Non-goals exclude journaling and crash consistency,
// not this kind of offline backup/restore path.
package snapshot

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"path"

	sfspkg "github.com/sfsfs/sfs"
)

// Pack walks the engine's tree from root and writes it as a tar stream
// to w, compressed with the named codec ("gzip" is always registered).
// A name with no registered codec is an error.
func Pack(w io.Writer, engine *sfspkg.FS, codecName string) error {
	codec := Lookup(codecName)
	if codec == nil {
		return fmt.Errorf("snapshot: unknown codec %q", codecName)
	}
	cw, err := codec.NewWriter(w)
	if err != nil {
		return err
	}
	defer cw.Close()

	tw := tar.NewWriter(cw)
	defer tw.Flush()

	err = fs.WalkDir(engine, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == "." {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = p
		if d.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		f, err := engine.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return err
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return cw.Close()
}

// Unpack reads a tar stream produced by Pack from r, compressed with
// the named codec, and recreates its entries under root inside engine.
// Directories are created as needed; files are created and written in
// full before moving on to the next entry.
func Unpack(r io.Reader, engine *sfspkg.FS, codecName string) error {
	codec := Lookup(codecName)
	if codec == nil {
		return fmt.Errorf("snapshot: unknown codec %q", codecName)
	}
	cr, err := codec.NewReader(r)
	if err != nil {
		return err
	}
	defer cr.Close()

	tr := tar.NewReader(cr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		name := "/" + path.Clean(hdr.Name)
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := mkdirAll(engine, name); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := mkdirAll(engine, path.Dir(name)); err != nil {
				return err
			}
			if err := engine.Create(name); err != nil && err != sfspkg.ErrExist {
				return err
			}
			buf := make([]byte, 64*1024)
			var off int64
			for {
				n, rerr := tr.Read(buf)
				if n > 0 {
					if _, werr := engine.Write(name, off, buf[:n]); werr != nil {
						return werr
					}
					off += int64(n)
				}
				if rerr == io.EOF {
					break
				}
				if rerr != nil {
					return rerr
				}
			}
		}
	}
}

// mkdirAll creates every missing directory component of p inside engine.
func mkdirAll(engine *sfspkg.FS, p string) error {
	if p == "" || p == "/" || p == "." {
		return nil
	}
	parent := path.Dir(p)
	if err := mkdirAll(engine, parent); err != nil {
		return err
	}
	if _, err := engine.Getattr(p); err == nil {
		return nil
	}
	err := engine.Mkdir(p)
	if err == sfspkg.ErrExist {
		return nil
	}
	return err
}
