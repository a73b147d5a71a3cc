// Package persistence contains the memory and file implementations of
// [domain.Persistence], plus [Directory], which maps collection names to
// files inside a directory.
package persistence

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dolmen-go/contextio"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/deserializer"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/serializer"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/storage"
	"github.com/vinicius-lino-figueiredo/jsongo/domain"
	"go.uber.org/zap"
)

const (
	DefaultDirMode  os.FileMode = 0o755
	DefaultFileMode os.FileMode = 0o644

	// Ext is the extension of collection data files.
	Ext = ".json"
)

// Memory implements domain.Persistence without any backing resource.
type Memory struct{}

// NewMemory returns an in-memory implementation of domain.Persistence.
func NewMemory() domain.Persistence {
	return &Memory{}
}

// Load implements domain.Persistence. It always reports an existing, empty
// resource.
func (m *Memory) Load(ctx context.Context) ([]domain.Document, bool, error) {
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	default:
	}
	return make([]domain.Document, 0), true, nil
}

// Save implements domain.Persistence. It does nothing.
func (m *Memory) Save(ctx context.Context, _ []domain.Document) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	return nil
}

// File implements domain.Persistence on one JSON file.
type File struct {
	name         string
	filename     string
	fileMode     os.FileMode
	dirMode      os.FileMode
	serializer   domain.Serializer
	deserializer domain.Deserializer
	storage      domain.Storage
	logger       *zap.Logger
}

// NewFile returns a file implementation of domain.Persistence. A filename is
// required.
func NewFile(options ...Option) (domain.Persistence, error) {
	p := newFile(options...)
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func newFile(options ...Option) *File {
	p := File{
		fileMode:     DefaultFileMode,
		dirMode:      DefaultDirMode,
		serializer:   serializer.NewSerializer(),
		deserializer: deserializer.NewDeserializer(),
		storage:      storage.NewStorage(),
		logger:       zap.NewNop(),
	}
	for _, option := range options {
		option(&p)
	}
	if p.name == "" {
		p.name = strings.TrimSuffix(filepath.Base(p.filename), Ext)
	}
	return &p
}

func (p *File) validate() error {
	if p.filename == "" {
		return domain.ErrDatafileName{Name: p.filename, Reason: "cannot be empty"}
	}
	if strings.HasSuffix(p.filename, storage.TempSuffix) {
		return domain.ErrDatafileName{Name: p.filename, Reason: "cannot end with '~', reserved for temporary files"}
	}
	return nil
}

// Load implements domain.Persistence.
func (p *File) Load(ctx context.Context) ([]domain.Document, bool, error) {
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	default:
	}

	recovered, err := p.storage.RecoverDatafile(p.filename)
	if err != nil {
		return nil, false, err
	}
	if recovered {
		p.logger.Warn("recovered data file from interrupted save",
			zap.String("collection", p.name),
			zap.String("file", p.filename),
		)
	}

	exists, err := p.storage.Exists(p.filename)
	if err != nil {
		return nil, false, err
	}
	if !exists {
		p.logger.Debug("data file not found",
			zap.String("collection", p.name),
			zap.String("file", p.filename),
		)
		return make([]domain.Document, 0), false, nil
	}

	fileStream, err := p.storage.ReadFileStream(p.filename)
	if err != nil {
		return nil, false, err
	}
	defer fileStream.Close()

	b, err := io.ReadAll(contextio.NewReader(ctx, fileStream))
	if err != nil {
		return nil, false, err
	}

	docs, err := p.deserializer.Deserialize(ctx, b)
	if err != nil {
		var corrupt domain.ErrCorruptCollection
		if errors.As(err, &corrupt) {
			corrupt.Collection = p.name
			return nil, false, corrupt
		}
		return nil, false, err
	}
	return docs, true, nil
}

// Save implements domain.Persistence.
func (p *File) Save(ctx context.Context, docs []domain.Document) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	b, err := p.serializer.Serialize(ctx, docs)
	if err != nil {
		return err
	}

	toPersist := new(bytes.Buffer)
	wr := contextio.NewWriter(ctx, toPersist)
	if _, err := wr.Write(b); err != nil {
		return err
	}

	if err := p.storage.EnsureParentDirectoryExists(p.filename, p.dirMode); err != nil {
		return err
	}

	if err := p.storage.CrashSafeWriteFile(p.filename, toPersist.Bytes(), p.dirMode, p.fileMode); err != nil {
		return err
	}

	p.logger.Debug("saved data file",
		zap.String("collection", p.name),
		zap.String("file", p.filename),
		zap.Int("documents", len(docs)),
	)
	return nil
}

// Directory stores every collection as "<name>.json" inside one directory.
// It implements [domain.Catalog].
type Directory struct {
	dir  string
	tmpl *File
}

// NewDirectory returns a Directory for dir. The options are applied to every
// file it creates; filename and name options are overridden.
func NewDirectory(dir string, options ...Option) *Directory {
	return &Directory{dir: dir, tmpl: newFile(options...)}
}

// Persistence returns the file backend of the named collection.
func (d *Directory) Persistence(name string) (domain.Persistence, error) {
	p := *d.tmpl
	p.name = name
	p.filename = filepath.Join(d.dir, name+Ext)
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Names implements domain.Catalog.
func (d *Directory) Names(ctx context.Context) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return d.tmpl.storage.List(d.dir, Ext)
}
