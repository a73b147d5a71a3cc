package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/data"
	"github.com/vinicius-lino-figueiredo/jsongo/domain"
)

type SQLiteTestSuite struct {
	suite.Suite
	ctx   context.Context
	path  string
	store *Store
}

func (s *SQLiteTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.path = filepath.Join(s.T().TempDir(), "data", "jsongo.db")
	store, err := Open(s.ctx, s.path)
	s.Require().NoError(err)
	s.store = store
}

func (s *SQLiteTestSuite) TearDownTest() {
	s.NoError(s.store.Close())
}

func (s *SQLiteTestSuite) collection(name string) domain.Persistence {
	p, err := s.store.Persistence(name)
	s.Require().NoError(err)
	return p
}

func (s *SQLiteTestSuite) TestEmptyName() {
	_, err := s.store.Persistence("")
	s.ErrorAs(err, new(domain.ErrCollectionName))
}

func (s *SQLiteTestSuite) TestLoadMissing() {
	docs, found, err := s.collection("users").Load(s.ctx)
	s.NoError(err)
	s.False(found)
	s.NotNil(docs)
	s.Empty(docs)
}

func (s *SQLiteTestSuite) TestSaveAndLoad() {
	p := s.collection("users")

	s.NoError(p.Save(s.ctx, []domain.Document{
		data.M{"_id": "b", "n": 2.0},
		data.M{"_id": "a", "n": 1.0},
	}))

	docs, found, err := p.Load(s.ctx)
	s.NoError(err)
	s.True(found)
	s.Equal([]domain.Document{
		data.M{"_id": "a", "n": 1.0},
		data.M{"_id": "b", "n": 2.0},
	}, docs)

	// second save replaces the row
	s.NoError(p.Save(s.ctx, []domain.Document{data.M{"_id": "c"}}))
	docs, _, err = p.Load(s.ctx)
	s.NoError(err)
	s.Equal([]domain.Document{data.M{"_id": "c"}}, docs)
}

func (s *SQLiteTestSuite) TestSaveEmpty() {
	p := s.collection("empty")
	s.NoError(p.Save(s.ctx, nil))

	docs, found, err := p.Load(s.ctx)
	s.NoError(err)
	s.True(found)
	s.Empty(docs)
}

func (s *SQLiteTestSuite) TestNames() {
	names, err := s.store.Names(s.ctx)
	s.NoError(err)
	s.NotNil(names)
	s.Empty(names)

	for _, name := range []string{"users", "orders", "customers"} {
		s.NoError(s.collection(name).Save(s.ctx, nil))
	}

	names, err = s.store.Names(s.ctx)
	s.NoError(err)
	s.Equal([]string{"customers", "orders", "users"}, names)
}

func (s *SQLiteTestSuite) TestCorruptRow() {
	_, err := s.store.db.ExecContext(s.ctx,
		"INSERT INTO collections (name, data) VALUES (?, ?)", "bad", `[{"a":1}]`,
	)
	s.Require().NoError(err)

	_, _, err = s.collection("bad").Load(s.ctx)
	var corrupt domain.ErrCorruptCollection
	s.Require().ErrorAs(err, &corrupt)
	s.Equal("bad", corrupt.Collection)
	s.Equal(0, corrupt.Index)
}

func (s *SQLiteTestSuite) TestReopen() {
	s.NoError(s.collection("users").Save(s.ctx, []domain.Document{data.M{"_id": 1.0}}))
	s.NoError(s.store.Close())

	store, err := Open(s.ctx, s.path)
	s.Require().NoError(err)
	s.store = store

	docs, found, err := s.collection("users").Load(s.ctx)
	s.NoError(err)
	s.True(found)
	s.Equal([]domain.Document{data.M{"_id": 1.0}}, docs)
}

func (s *SQLiteTestSuite) TestClosedStore() {
	s.NoError(s.store.Close())

	_, err := s.store.Names(s.ctx)
	s.Error(err)
	_, _, err = s.collection("users").Load(s.ctx)
	s.Error(err)
	s.Error(s.collection("users").Save(s.ctx, nil))

	store, err := Open(s.ctx, s.path)
	s.Require().NoError(err)
	s.store = store
}

func TestSQLiteTestSuite(t *testing.T) {
	suite.Run(t, new(SQLiteTestSuite))
}
