// Package querier contains the default [domain.Querier] implementation.
package querier

import (
	"context"
	"fmt"
	"slices"

	"github.com/vinicius-lino-figueiredo/jsongo/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/cursor"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/decoder"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/fieldnavigator"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/matcher"
	"github.com/vinicius-lino-figueiredo/jsongo/domain"
)

// Querier implements [domain.Querier].
type Querier struct {
	mtchr domain.Matcher
	cmpr  domain.Comparer
	fn    domain.FieldNavigator
	dec   domain.Decoder
}

// NewQuerier returns a new implementation of [domain.Querier].
func NewQuerier(opts ...Option) domain.Querier {
	q := Querier{
		cmpr: comparer.NewComparer(),
		fn:   fieldnavigator.NewFieldNavigator(),
		dec:  decoder.NewDecoder(),
	}
	for _, opt := range opts {
		opt(&q)
	}
	if q.mtchr == nil {
		q.mtchr = matcher.NewMatcher(
			matcher.WithComparer(q.cmpr),
			matcher.WithFieldNavigator(q.fn),
		)
	}
	return &q
}

// Query implements [domain.Querier]. Without a sort option the returned
// cursor evaluates criteria lazily. Sorting requires every match, so the
// matches are collected before the cursor is created.
func (q *Querier) Query(ctx context.Context, docs []domain.Document, criteria any, opts ...domain.FindOption) (domain.Cursor, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	options := domain.FindOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	pred, err := q.mtchr.Compile(criteria)
	if err != nil {
		return nil, err
	}

	if len(options.Sort) == 0 {
		return cursor.NewCursor(ctx, docs,
			cursor.WithPredicate(pred),
			cursor.WithSkip(options.Skip),
			cursor.WithLimit(options.Limit),
			cursor.WithDecoder(q.dec),
		)
	}

	res, err := q.filter(docs, pred)
	if err != nil {
		return nil, err
	}
	sorted, err := q.sort(res, options.Sort)
	if err != nil {
		return nil, fmt.Errorf("sorting: %w", err)
	}
	return cursor.NewCursor(ctx, sorted,
		cursor.WithSkip(options.Skip),
		cursor.WithLimit(options.Limit),
		cursor.WithDecoder(q.dec),
	)
}

func (q *Querier) filter(docs []domain.Document, pred domain.Predicate) ([]domain.Document, error) {
	res := make([]domain.Document, 0, len(docs))
	for _, doc := range docs {
		matches, err := pred(doc)
		if err != nil {
			return nil, fmt.Errorf("matching document: %w", err)
		}
		if matches {
			res = append(res, doc)
		}
	}
	return res, nil
}

func (q *Querier) sort(data []domain.Document, sort domain.Sort) ([]domain.Document, error) {
	var err error
	slices.SortStableFunc(data, func(a, b domain.Document) int {
		if err != nil {
			return 0
		}
		for _, crit := range sort {
			comp, cErr := q.compareByCriterion(a, b, crit)
			if cErr != nil {
				err = cErr
				return 0
			}
			if comp != 0 {
				return comp
			}
		}
		return 0
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (q *Querier) compareByCriterion(a, b domain.Document, crit domain.SortName) (int, error) {
	addr, err := q.fn.GetAddress(crit.Key)
	if err != nil {
		return 0, fmt.Errorf("getting address: %w", err)
	}

	criterionA, _, err := q.fn.GetField(a, addr...)
	if err != nil {
		return 0, fmt.Errorf("getting field: %w", err)
	}
	criterionB, _, err := q.fn.GetField(b, addr...)
	if err != nil {
		return 0, fmt.Errorf("getting field: %w", err)
	}

	comp, err := q.cmpr.Compare(q.sortKey(criterionA), q.sortKey(criterionB))
	if err != nil {
		return 0, fmt.Errorf("comparing: %w", err)
	}
	if crit.Order < 0 {
		return -comp, nil
	}
	return comp, nil
}

// sortKey returns the single value of a field, or the list of values of an
// expanded one.
func (q *Querier) sortKey(g []domain.Getter) any {
	if len(g) == 1 {
		return g[0]
	}
	res := make([]any, len(g))
	for n, v := range g {
		res[n] = v
	}
	return res
}
