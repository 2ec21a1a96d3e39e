// Package epub reads and writes EPUB containers.
package epub

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZaguanLabs/epubtl"
)

const (
	mimetypeName  = "mimetype"
	containerName = "META-INF/container.xml"
	epubMimetype  = "application/epub+zip"
)

type containerXML struct {
	XMLName   xml.Name `xml:"container"`
	Rootfiles []struct {
		FullPath  string `xml:"full-path,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"rootfiles>rootfile"`
}

type packageXML struct {
	XMLName  xml.Name `xml:"package"`
	Metadata struct {
		Title    []string `xml:"title"`
		Language []string `xml:"language"`
	} `xml:"metadata"`
	Manifest struct {
		Items []struct {
			ID         string `xml:"id,attr"`
			Href       string `xml:"href,attr"`
			MediaType  string `xml:"media-type,attr"`
			Properties string `xml:"properties,attr"`
		} `xml:"item"`
	} `xml:"manifest"`
}

// entry is one file of the archive.
type entry struct {
	name     string
	method   uint16
	modified time.Time
	content  []byte
}

// Book is an EPUB archive held in memory. Items are the files listed in the
// package manifest; every other archive member is carried through unchanged.
type Book struct {
	Title    string
	Language string

	entries  []*entry
	byName   map[string]*entry
	items    []epubtl.Item
	rootfile string
}

// Open reads the EPUB at path.
func Open(path string) (*Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return OpenReader(bytes.NewReader(data), int64(len(data)))
}

// OpenReader reads an EPUB archive of the given size.
func OpenReader(r io.ReaderAt, size int64) (*Book, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, &epubtl.ProcessorError{Message: "not a zip archive", Cause: err, Container: "epub"}
	}

	b := &Book{byName: make(map[string]*entry)}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		content, err := readFile(f)
		if err != nil {
			return nil, &epubtl.ProcessorError{Message: "failed to read archive member", Cause: err, Container: f.Name}
		}
		e := &entry{name: f.Name, method: f.Method, modified: f.Modified, content: content}
		b.entries = append(b.entries, e)
		b.byName[f.Name] = e
	}

	if err := b.readPackage(); err != nil {
		return nil, err
	}
	return b, nil
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (b *Book) readPackage() error {
	c, ok := b.byName[containerName]
	if !ok {
		return &epubtl.ProcessorError{Message: "missing container document", Container: containerName}
	}

	var cx containerXML
	if err := xml.Unmarshal(c.content, &cx); err != nil {
		return &epubtl.ProcessorError{Message: "invalid container document", Cause: err, Container: containerName}
	}
	if len(cx.Rootfiles) == 0 || cx.Rootfiles[0].FullPath == "" {
		return &epubtl.ProcessorError{Message: "no rootfile in container document", Container: containerName}
	}
	b.rootfile = cx.Rootfiles[0].FullPath

	opf, ok := b.byName[b.rootfile]
	if !ok {
		return &epubtl.ProcessorError{Message: "missing package document", Container: b.rootfile}
	}

	var pkg packageXML
	if err := xml.Unmarshal(opf.content, &pkg); err != nil {
		return &epubtl.ProcessorError{Message: "invalid package document", Cause: err, Container: b.rootfile}
	}

	if len(pkg.Metadata.Title) > 0 {
		b.Title = strings.TrimSpace(pkg.Metadata.Title[0])
	}
	if len(pkg.Metadata.Language) > 0 {
		b.Language = strings.TrimSpace(pkg.Metadata.Language[0])
	}

	base := path.Dir(b.rootfile)
	for _, it := range pkg.Manifest.Items {
		href, err := url.PathUnescape(it.Href)
		if err != nil {
			href = it.Href
		}
		name := path.Join(base, href)
		e, ok := b.byName[name]
		if !ok {
			// Remote resources and dangling references have nothing to translate.
			continue
		}
		b.items = append(b.items, epubtl.Item{
			Name:       name,
			MediaType:  it.MediaType,
			Properties: strings.Fields(it.Properties),
			Content:    e.content,
		})
	}
	return nil
}

// Items returns the manifest items in manifest order.
func (b *Book) Items() []epubtl.Item {
	items := make([]epubtl.Item, len(b.items))
	for i, it := range b.items {
		it.Content = b.byName[it.Name].content
		items[i] = it
	}
	return items
}

// SetContent replaces the content of a manifest item.
func (b *Book) SetContent(name string, content []byte) error {
	for _, it := range b.items {
		if it.Name == name {
			b.byName[name].content = content
			return nil
		}
	}
	return &epubtl.ProcessorError{Message: "no such manifest item", Container: name}
}

// Rootfile returns the archive path of the package document.
func (b *Book) Rootfile() string {
	return b.rootfile
}

// WriteTo serializes the archive with the mimetype member stored first and
// uncompressed.
func (b *Book) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)

	mw, err := zw.CreateHeader(&zip.FileHeader{Name: mimetypeName, Method: zip.Store})
	if err != nil {
		return cw.n, err
	}
	mimetype := []byte(epubMimetype)
	if e, ok := b.byName[mimetypeName]; ok {
		mimetype = e.content
	}
	if _, err := mw.Write(mimetype); err != nil {
		return cw.n, err
	}

	for _, e := range b.entries {
		if e.name == mimetypeName {
			continue
		}
		method := e.method
		if method != zip.Store {
			method = zip.Deflate
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: method, Modified: e.modified})
		if err != nil {
			return cw.n, err
		}
		if _, err := fw.Write(e.content); err != nil {
			return cw.n, err
		}
	}

	if err := zw.Close(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// Write saves the archive to path. The file is written to a temporary name
// in the same directory and renamed, so a failed write never leaves a
// partial book behind.
func (b *Book) Write(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".epubtl-*.epub")
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := b.WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Verify Book implements Container
var _ epubtl.Container = (*Book)(nil)
