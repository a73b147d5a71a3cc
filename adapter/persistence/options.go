package persistence

import (
	"os"

	"github.com/vinicius-lino-figueiredo/jsongo/domain"
	"go.uber.org/zap"
)

// WithFilename sets the path of the data file.
func WithFilename(f string) Option {
	return func(p *File) {
		p.filename = f
	}
}

// WithName sets the collection name reported in load errors and logs.
func WithName(n string) Option {
	return func(p *File) {
		p.name = n
	}
}

// WithFileMode sets the file permissions for data files.
func WithFileMode(f os.FileMode) Option {
	return func(p *File) {
		p.fileMode = f
	}
}

// WithDirMode sets the directory permissions for data directories.
func WithDirMode(d os.FileMode) Option {
	return func(p *File) {
		p.dirMode = d
	}
}

// WithSerializer sets the serializer for converting documents to
// bytes.
func WithSerializer(s domain.Serializer) Option {
	return func(p *File) {
		p.serializer = s
	}
}

// WithDeserializer sets the deserializer for converting bytes to
// documents.
func WithDeserializer(d domain.Deserializer) Option {
	return func(p *File) {
		p.deserializer = d
	}
}

// WithStorage sets the storage implementation for file operations.
func WithStorage(s domain.Storage) Option {
	return func(p *File) {
		p.storage = s
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *File) {
		p.logger = l
	}
}

// Option configures file persistence through the functional options pattern.
type Option func(*File)
