// Package archive builds the downloadable export of the inbox.
// Package archive 构建收件箱导出归档，每条笔记对应一个 Markdown 文档
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"

	"github.com/haierkeys/idea-inbox-service/internal/domain"

	"github.com/pkg/errors"
)

// ErrExportFailure archive could not be produced
var ErrExportFailure = errors.New("export failure")

// Document 归档中的单个文档
type Document struct {
	NoteID   int64
	Filename string
	Body     []byte
	note     *domain.Note
}

// Archive 一次导出生成的归档，仅存在于内存中
type Archive struct {
	Documents []Document
}

// Build assembles one document per note in input order.
// Filenames are unique within the archive and depend only on the input.
// Build 按输入顺序为每条笔记生成文档
func Build(notes []*domain.Note) (*Archive, error) {
	alloc := newNameAllocator()
	docs := make([]Document, 0, len(notes))

	for i, n := range notes {
		if n == nil {
			return nil, errors.Wrapf(ErrExportFailure, "note at position %d is nil", i)
		}
		body, err := RenderDocument(n)
		if err != nil {
			return nil, fmt.Errorf("%w: note %d: %w", ErrExportFailure, n.ID, err)
		}
		docs = append(docs, Document{
			NoteID:   n.ID,
			Filename: alloc.allocate(n.ID, baseName(n.ID, n.Title)),
			Body:     body,
			note:     n,
		})
	}

	return &Archive{Documents: docs}, nil
}

// Len 返回文档数量
func (a *Archive) Len() int {
	return len(a.Documents)
}

// Lookup 按文件名查找文档，用于把归档条目映射回笔记 ID
func (a *Archive) Lookup(filename string) (Document, bool) {
	for _, d := range a.Documents {
		if d.Filename == filename {
			return d, true
		}
	}
	return Document{}, false
}

// WriteZip 将归档写为 zip 格式
func (a *Archive) WriteZip(w io.Writer) error {
	zw := zip.NewWriter(w)

	for _, d := range a.Documents {
		header := &zip.FileHeader{
			Name:   d.Filename,
			Method: zip.Deflate,
		}
		if d.note != nil && !d.note.CreatedAt.IsZero() {
			header.Modified = d.note.CreatedAt.UTC()
		}
		fw, err := zw.CreateHeader(header)
		if err != nil {
			_ = zw.Close()
			return fmt.Errorf("%w: create entry %s: %w", ErrExportFailure, d.Filename, err)
		}
		if _, err := fw.Write(d.Body); err != nil {
			_ = zw.Close()
			return fmt.Errorf("%w: write entry %s: %w", ErrExportFailure, d.Filename, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("%w: close zip: %w", ErrExportFailure, err)
	}
	return nil
}

// Bytes 返回 zip 格式的归档字节
func (a *Archive) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := a.WriteZip(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
