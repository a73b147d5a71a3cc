// Package idgenerator contains the [domain.IDGenerator] implementations: a
// MongoDB ObjectID generator, used by default, and a UUID generator.
package idgenerator

import (
	"crypto/rand"
	"io"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vinicius-lino-figueiredo/jsongo/domain"
)

// IDGenerator implements [domain.IDGenerator] by minting 12-byte ObjectIDs,
// rendered as 24 lowercase hex characters.
type IDGenerator struct{}

// NewIDGenerator returns the default implementation of [domain.IDGenerator].
func NewIDGenerator() domain.IDGenerator {
	return &IDGenerator{}
}

// NewID implements [domain.IDGenerator].
func (i *IDGenerator) NewID() (string, error) {
	return primitive.NewObjectID().Hex(), nil
}

// UUIDGenerator implements [domain.IDGenerator] by minting version 4 UUIDs.
type UUIDGenerator struct {
	reader io.Reader
}

// NewUUIDGenerator returns a [domain.IDGenerator] that mints UUIDs.
func NewUUIDGenerator(opts ...Option) domain.IDGenerator {
	u := UUIDGenerator{
		reader: rand.Reader,
	}
	for _, opt := range opts {
		opt(&u)
	}
	return &u
}

// NewID implements [domain.IDGenerator].
func (u *UUIDGenerator) NewID() (string, error) {
	id, err := uuid.NewRandomFromReader(u.reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
