package template

import (
	"context"
	"fmt"
	"os"

	"github.com/CustomGPTer/RAMS-Generator/internal/pkg/apperror"
	"github.com/CustomGPTer/RAMS-Generator/pkg/docx"
)

// Store hands out independent working copies of the RAMS template.
type Store interface {
	Load(ctx context.Context) (*docx.Document, error)
}

// FileStore re-reads the template file on every Load, so edits on disk are
// picked up without a restart.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (s *FileStore) Load(ctx context.Context) (*docx.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrTemplateLoadFailed, err)
	}
	return open(data)
}

// BytesStore serves copies of an in-memory template.
type BytesStore struct {
	data []byte
}

func NewBytesStore(data []byte) *BytesStore {
	return &BytesStore{data: data}
}

func (s *BytesStore) Load(ctx context.Context) (*docx.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return open(s.data)
}

func open(data []byte) (*docx.Document, error) {
	doc, err := docx.Open(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrTemplateLoadFailed, err)
	}
	return doc, nil
}
