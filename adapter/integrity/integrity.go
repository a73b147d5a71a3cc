// Package integrity checks relation fields between collections.
//
// A top-level field is a relation when its name follows one of two
// conventions:
//
//	customer_id            targets "customer"
//	Customer (customer_id) targets "customer"
//
// The value of a relation field must equal the _id of exactly one document in
// the target collection.
package integrity

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/vinicius-lino-figueiredo/jsongo/adapter/data"
	"github.com/vinicius-lino-figueiredo/jsongo/domain"
)

const (
	idSuffix      = "_id"
	idParenSuffix = "_id)"
)

// RelationTarget returns the name of the collection targeted by field and
// whether field is a relation at all.
func RelationTarget(field string) (string, bool) {
	var target string
	switch {
	case len(field) > len(idSuffix) && strings.HasSuffix(field, idSuffix):
		target = field[:len(field)-len(idSuffix)]
	case len(field) > len(idParenSuffix)+1 && strings.HasSuffix(field, idParenSuffix):
		target = field[strings.LastIndex(field, "(")+1 : len(field)-len(idParenSuffix)]
	}
	return target, target != ""
}

// Check returns the relation problems of docs, which belong to the named
// collection. Target collections are resolved through resolver. Violations
// are ordered by document position, then by field name. Check never modifies
// docs.
func Check(ctx context.Context, resolver domain.Resolver, collection string, docs []domain.Document) ([]domain.IntegrityViolation, error) {
	violations := make([]domain.IntegrityViolation, 0)
	for _, doc := range docs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		for _, field := range slices.Sorted(doc.Keys()) {
			target, ok := RelationTarget(field)
			if !ok {
				continue
			}

			msg, err := checkField(ctx, resolver, target, doc.Get(field))
			if err != nil {
				return nil, err
			}
			if msg == "" {
				continue
			}
			violations = append(violations, domain.IntegrityViolation{
				Message:    msg,
				Collection: collection,
				Doc:        data.Clone(doc),
				Field:      field,
			})
		}
	}
	return violations, nil
}

// checkField returns the violation message for one relation value, or an
// empty string if the value is fine.
func checkField(ctx context.Context, resolver domain.Resolver, target string, value any) (string, error) {
	if _, ok := value.([]any); ok {
		return domain.ViolationRelationList, nil
	}

	coll, err := resolver.Collection(target)
	if errors.As(err, new(domain.ErrCollectionName)) {
		return domain.ViolationInvalidTarget, nil
	}
	if err != nil {
		return "", err
	}

	count, err := coll.CountID(ctx, value)
	if err != nil {
		return "", err
	}

	switch {
	case count < 1:
		return domain.ViolationNoMatch, nil
	case count > 1:
		return domain.ViolationManyMatches, nil
	}
	return "", nil
}
