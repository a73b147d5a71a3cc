package integrity

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/data"
	"github.com/vinicius-lino-figueiredo/jsongo/domain"
	"gopkg.in/yaml.v3"
)

var errMocked = errors.New("mocked error")

type resolverMock struct{ mock.Mock }

// Collection implements domain.Resolver.
func (r *resolverMock) Collection(name string) (domain.Collection, error) {
	call := r.Called(name)
	c, _ := call.Get(0).(domain.Collection)
	return c, call.Error(1)
}

// collectionMock only implements CountID. Calling any other method panics.
type collectionMock struct {
	domain.Collection
	mock.Mock
}

// CountID implements domain.Collection.
func (c *collectionMock) CountID(ctx context.Context, id any) (int, error) {
	call := c.Called(ctx, id)
	return call.Int(0), call.Error(1)
}

type relationCase struct {
	Field  string `yaml:"field"`
	Target string `yaml:"target"`
}

type IntegrityTestSuite struct {
	suite.Suite
	ctx       context.Context
	resolver  *resolverMock
	customers *collectionMock
}

func (s *IntegrityTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.resolver = new(resolverMock)
	s.customers = new(collectionMock)
	s.resolver.On("Collection", "customer").Return(s.customers, nil).Maybe()
}

func (s *IntegrityTestSuite) TestRelationTarget() {
	b, err := os.ReadFile("testdata/relations.yaml")
	s.Require().NoError(err)

	var cases []relationCase
	s.Require().NoError(yaml.Unmarshal(b, &cases))
	s.Require().NotEmpty(cases)

	for _, tc := range cases {
		target, ok := RelationTarget(tc.Field)
		s.Equal(tc.Target, target, tc.Field)
		s.Equal(tc.Target != "", ok, tc.Field)
	}
}

func (s *IntegrityTestSuite) TestClean() {
	s.customers.On("CountID", s.ctx, 99.0).Return(1, nil).Once()

	violations, err := Check(s.ctx, s.resolver, "orders", []domain.Document{
		data.M{"_id": 1.0, "customer_id": 99.0, "total": 3.0},
		data.M{"_id": 2.0},
	})
	s.NoError(err)
	s.NotNil(violations)
	s.Empty(violations)
	s.customers.AssertExpectations(s.T())
}

func (s *IntegrityTestSuite) TestNoMatch() {
	doc := data.M{"_id": 1.0, "customer_id": 99.0}
	s.customers.On("CountID", s.ctx, 99.0).Return(0, nil).Once()

	violations, err := Check(s.ctx, s.resolver, "orders", []domain.Document{doc})
	s.NoError(err)
	s.Equal([]domain.IntegrityViolation{{
		Message:    domain.ViolationNoMatch,
		Collection: "orders",
		Doc:        data.M{"_id": 1.0, "customer_id": 99.0},
		Field:      "customer_id",
	}}, violations)

	// the violation holds a copy
	violations[0].Doc.Set("customer_id", 1.0)
	s.Equal(99.0, doc.Get("customer_id"))
}

func (s *IntegrityTestSuite) TestManyMatches() {
	s.customers.On("CountID", s.ctx, 99.0).Return(2, nil).Once()

	violations, err := Check(s.ctx, s.resolver, "orders", []domain.Document{
		data.M{"_id": 1.0, "Customer (customer_id)": 99.0},
	})
	s.NoError(err)
	s.Require().Len(violations, 1)
	s.Equal(domain.ViolationManyMatches, violations[0].Message)
	s.Equal("Customer (customer_id)", violations[0].Field)
}

// List values are reported without resolving the target.
func (s *IntegrityTestSuite) TestRelationList() {
	violations, err := Check(s.ctx, s.resolver, "orders", []domain.Document{
		data.M{"_id": 1.0, "product_id": []any{1.0, 2.0}},
	})
	s.NoError(err)
	s.Require().Len(violations, 1)
	s.Equal(domain.ViolationRelationList, violations[0].Message)
	s.Equal("product_id", violations[0].Field)
	s.resolver.AssertNotCalled(s.T(), "Collection", "product")
}

func (s *IntegrityTestSuite) TestOrder() {
	products := new(collectionMock)
	s.resolver.On("Collection", "product").Return(products, nil)
	s.customers.On("CountID", s.ctx, mock.Anything).Return(0, nil)
	products.On("CountID", s.ctx, mock.Anything).Return(0, nil)

	violations, err := Check(s.ctx, s.resolver, "orders", []domain.Document{
		data.M{"_id": 2.0, "product_id": "p", "customer_id": "c"},
		data.M{"_id": 1.0, "customer_id": "d"},
	})
	s.NoError(err)
	s.Require().Len(violations, 3)

	var got [][2]any
	for _, v := range violations {
		got = append(got, [2]any{v.Doc.ID(), v.Field})
	}
	s.Equal([][2]any{
		{2.0, "customer_id"},
		{2.0, "product_id"},
		{1.0, "customer_id"},
	}, got)
}

// Composite ids are passed through unchanged.
func (s *IntegrityTestSuite) TestCompositeID() {
	id := data.M{"$a": 1.0}
	s.customers.On("CountID", s.ctx, id).Return(1, nil).Once()

	violations, err := Check(s.ctx, s.resolver, "orders", []domain.Document{
		data.M{"_id": 1.0, "customer_id": data.M{"$a": 1.0}},
	})
	s.NoError(err)
	s.Empty(violations)
	s.customers.AssertExpectations(s.T())
}

func (s *IntegrityTestSuite) TestErrors() {
	resolver := new(resolverMock)
	resolver.On("Collection", "customer").Return(nil, errMocked).Once()

	_, err := Check(s.ctx, resolver, "orders", []domain.Document{
		data.M{"_id": 1.0, "customer_id": 1.0},
	})
	s.ErrorIs(err, errMocked)

	s.customers.On("CountID", s.ctx, 1.0).Return(0, errMocked).Once()
	_, err = Check(s.ctx, s.resolver, "orders", []domain.Document{
		data.M{"_id": 1.0, "customer_id": 1.0},
	})
	s.ErrorIs(err, errMocked)
}

// A field naming a collection that cannot exist is reported and the check
// goes on.
func (s *IntegrityTestSuite) TestInvalidTarget() {
	s.customers.On("CountID", s.ctx, 99.0).Return(0, nil).Once()
	s.resolver.On("Collection", "a/b").
		Return(nil, domain.ErrCollectionName{Name: "a/b", Reason: "cannot contain a path separator"}).Once()

	violations, err := Check(s.ctx, s.resolver, "orders", []domain.Document{
		data.M{"_id": 1.0, "customer_id": 99.0},
		data.M{"_id": 2.0, "a/b_id": 5.0},
	})
	s.NoError(err)
	s.Equal([]domain.IntegrityViolation{
		{
			Message:    domain.ViolationNoMatch,
			Collection: "orders",
			Doc:        data.M{"_id": 1.0, "customer_id": 99.0},
			Field:      "customer_id",
		},
		{
			Message:    domain.ViolationInvalidTarget,
			Collection: "orders",
			Doc:        data.M{"_id": 2.0, "a/b_id": 5.0},
			Field:      "a/b_id",
		},
	}, violations)
	s.resolver.AssertExpectations(s.T())
}

func (s *IntegrityTestSuite) TestCanceledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := Check(ctx, s.resolver, "orders", []domain.Document{data.M{"_id": 1.0}})
	s.ErrorIs(err, context.Canceled)
}

func TestIntegrityTestSuite(t *testing.T) {
	suite.Run(t, new(IntegrityTestSuite))
}
