package webserver

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gooslab/oslab/internal/bufpool"
	"github.com/gooslab/oslab/internal/errcode"
)

// FileData is the in-memory content of a served file, shared between the
// cache and whichever request is currently streaming it.
type FileData struct {
	Name string
	Buf  []byte
	Size int64

	// pooled marks Buf as having come from bufpool, so whoever retires
	// this FileData (Cache eviction, or a cache-refused insert) knows to
	// return it via bufpool.Put instead of letting the GC collect it.
	pooled bool
}

// FileReader is the file-reader collaborator: it turns a request's file
// name into file content. Non-goal: it implements no directory listing,
// range requests, or conditional-GET semantics of its own.
type FileReader interface {
	ReadFile(name string) (*FileData, error)
}

// Code values for errors this package returns.
const (
	CodeNotFound   errcode.Code = "not_found"
	CodeForbidden  errcode.Code = "forbidden"
	CodeBadRequest errcode.Code = "bad_request"
)

// dirFileReader reads files from a configured root directory, rejecting any
// name that would escape it.
type dirFileReader struct {
	root string
}

func (d dirFileReader) ReadFile(name string) (*FileData, error) {
	clean := filepath.Clean("/" + name)
	if strings.Contains(clean, "..") {
		return nil, errcode.New("read_file", CodeForbidden, "path escapes root: "+name)
	}
	full := filepath.Join(d.root, clean)

	f, err := os.Open(full)
	if err != nil {
		return nil, errcode.Wrap("read_file", CodeNotFound, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errcode.Wrap("read_file", CodeNotFound, err)
	}

	buf := bufpool.Get(int(info.Size()))
	if _, err := io.ReadFull(f, buf); err != nil {
		bufpool.Put(buf)
		return nil, errcode.Wrap("read_file", CodeNotFound, err)
	}
	return &FileData{Name: name, Buf: buf, Size: info.Size(), pooled: true}, nil
}
