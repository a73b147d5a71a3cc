package sqlite

import (
	"os"

	"github.com/vinicius-lino-figueiredo/jsongo/domain"
	"go.uber.org/zap"
)

// WithSerializer sets the serializer used to encode collections.
func WithSerializer(s domain.Serializer) Option {
	return func(st *Store) {
		st.serializer = s
	}
}

// WithDeserializer sets the deserializer used to decode collections.
func WithDeserializer(d domain.Deserializer) Option {
	return func(st *Store) {
		st.deserializer = d
	}
}

// WithStorage sets the storage used to create the parent directory of the
// database file.
func WithStorage(s domain.Storage) Option {
	return func(st *Store) {
		st.storage = s
	}
}

// WithDirMode sets the permissions of created directories.
func WithDirMode(m os.FileMode) Option {
	return func(st *Store) {
		st.dirMode = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(st *Store) {
		st.logger = l
	}
}

// Option configures a [Store].
type Option func(*Store)
