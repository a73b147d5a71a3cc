package idgenerator

import (
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type IDGeneratorTestSuite struct {
	suite.Suite
	ig *IDGenerator
}

func (s *IDGeneratorTestSuite) SetupTest() {
	s.ig = NewIDGenerator().(*IDGenerator)
}

func (s *IDGeneratorTestSuite) TestObjectIDFormat() {
	id, err := s.ig.NewID()
	s.NoError(err)
	s.Regexp(regexp.MustCompile(`^[0-9a-f]{24}$`), id)
}

func (s *IDGeneratorTestSuite) TestObjectIDCollision() {
	seen := make(map[string]struct{}, 1000)
	for range 1000 {
		id, err := s.ig.NewID()
		s.NoError(err)
		s.NotContains(seen, id)
		seen[id] = struct{}{}
	}
}

func (s *IDGeneratorTestSuite) TestUUID() {
	ug := NewUUIDGenerator()
	id, err := ug.NewID()
	s.NoError(err)
	s.Regexp(regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`), id)
}

// If the value in the random reader does not repeat, IDs multiple times will
// not result in collision.
func (s *IDGeneratorTestSuite) TestUUIDReader() {
	t := `abcdefghijklmnopqrstuvwxy0123456789ABCDEF`
	ug := NewUUIDGenerator(WithReader(strings.NewReader(t)))

	id1, err := ug.NewID()
	s.NoError(err)

	id2, err := ug.NewID()
	s.NoError(err)

	s.NotEqual(id1, id2)
}

func (s *IDGeneratorTestSuite) TestReadError() {
	ug := NewUUIDGenerator(WithReader(strings.NewReader("")))

	id, err := ug.NewID()
	s.ErrorIs(err, io.EOF)
	s.Zero(id)
}

func TestIDGeneratorTestSuite(t *testing.T) {
	suite.Run(t, new(IDGeneratorTestSuite))
}
