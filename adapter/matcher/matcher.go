// Package matcher contains the default implementation of [domain.Matcher]
// using a mongo-like criteria language.
//
// A query is compiled once into a tree of [LogicOp] values and then evaluated
// against any number of documents. The matcher keeps no per-query state, so a
// single instance can compile and evaluate many queries.
package matcher

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"regexp"
	"slices"
	"strings"

	"github.com/vinicius-lino-figueiredo/jsongo/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/data"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/fieldnavigator"
	"github.com/vinicius-lino-figueiredo/jsongo/domain"
)

var (
	// ErrMixedOperators is returned when user provides a query with mixed
	// use of normal fields and operators.
	ErrMixedOperators = errors.New("cannot mix operators and normal fields")
	// ErrOptionsWithoutRegex is returned when $options is used without
	// $regex.
	ErrOptionsWithoutRegex = errors.New("$options requires $regex")
)

// ErrUnknownOperator is returned when user provides an unknown dollar field.
type ErrUnknownOperator struct {
	Operator string
}

// Error implements [error].
func (e ErrUnknownOperator) Error() string {
	return fmt.Sprintf("unknown operator %q", e.Operator)
}

// ErrCompArgType is returned when an operator is called with an argument of
// invalid type.
type ErrCompArgType struct {
	Comp   string
	Want   string
	Actual any
}

// Error implements [error].
func (e ErrCompArgType) Error() string {
	return fmt.Sprintf(
		"%s value should be of type %s, got %T",
		e.Comp, e.Want, e.Actual,
	)
}

// Matcher implements [domain.Matcher].
type Matcher struct {
	comparer       domain.Comparer
	fieldNavigator domain.FieldNavigator
}

// NewMatcher returns a new implementation of domain.Matcher.
func NewMatcher(options ...Option) domain.Matcher {
	m := &Matcher{
		comparer:       comparer.NewComparer(),
		fieldNavigator: fieldnavigator.NewFieldNavigator(),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// Match implements [domain.Matcher].
func (m *Matcher) Match(value any, query any) (bool, error) {
	lo, err := m.makeQuery(query)
	if err != nil {
		return false, err
	}
	return m.matchLogicOp(value, lo)
}

// Compile implements [domain.Matcher].
func (m *Matcher) Compile(query any) (domain.Predicate, error) {
	lo, err := m.makeQuery(query)
	if err != nil {
		return nil, err
	}
	return func(doc domain.Document) (bool, error) {
		return m.matchLogicOp(doc, lo)
	}, nil
}

func (m *Matcher) makeQuery(query any) (LogicOp, error) {
	normalized, err := data.NormalizeValue(query)
	if err != nil {
		return LogicOp{}, err
	}
	return m.makeLogicOp(normalized)
}

// makeLogicOp compiles an already normalized query.
func (m *Matcher) makeLogicOp(query any) (LogicOp, error) {
	lo := LogicOp{Type: And}
	switch t := query.(type) {
	case nil:
		return lo, nil
	case domain.Document:
		return m.makeDocQuery(t)
	case *regexp.Regexp:
		lo.Rules = []FieldRule{{Conds: []Cond{{Op: Regex, Rgx: t}}}}
		return lo, nil
	default:
		lo.Rules = []FieldRule{{Conds: []Cond{{Op: Eq, Val: t}}}}
		return lo, nil
	}
}

func (m *Matcher) makeDocQuery(doc domain.Document) (LogicOp, error) {
	lo := LogicOp{Type: And}
	valueOps := make(data.M)
	var plain int

	for _, key := range slices.Sorted(doc.Keys()) {
		value := doc.Get(key)
		switch key {
		case "$and", "$or", "$nor":
			sub, err := m.makeLogicList(key, value)
			if err != nil {
				return lo, err
			}
			lo.Sub = append(lo.Sub, sub)
		case "$not":
			sub, err := m.makeLogicOp(value)
			if err != nil {
				return lo, err
			}
			lo.Sub = append(lo.Sub, LogicOp{Type: Not, Sub: []LogicOp{sub}})
		case "$where":
			where, ok := value.(func(domain.Document) (bool, error))
			if !ok {
				return lo, ErrCompArgType{Comp: "$where", Want: "func(domain.Document) (bool, error)", Actual: value}
			}
			lo.Sub = append(lo.Sub, LogicOp{Type: Where, Where: where})
		default:
			if strings.HasPrefix(key, "$") {
				valueOps[key] = value
				continue
			}
			plain++
			rule, err := m.makeFieldRule(key, value)
			if err != nil {
				return lo, err
			}
			lo.Rules = append(lo.Rules, rule)
		}
	}

	if len(valueOps) == 0 {
		return lo, nil
	}
	if plain > 0 {
		return lo, ErrMixedOperators
	}

	// operators applied to the matched value itself, as used by $elemMatch
	// on lists of primitives
	conds, err := m.makeConds(valueOps)
	if err != nil {
		return lo, err
	}
	lo.Rules = append(lo.Rules, FieldRule{Conds: conds})
	return lo, nil
}

func (m *Matcher) makeLogicList(name string, v any) (LogicOp, error) {
	lo := LogicOp{}
	switch name {
	case "$and":
		lo.Type = And
	case "$or":
		lo.Type = Or
	case "$nor":
		lo.Type = Nor
	}

	items, ok := v.([]any)
	if !ok {
		return lo, ErrCompArgType{Comp: name, Want: "list", Actual: v}
	}
	lo.Sub = make([]LogicOp, 0, len(items))
	for _, item := range items {
		if _, ok := item.(domain.Document); !ok {
			return lo, ErrCompArgType{Comp: name, Want: "list of documents", Actual: item}
		}
		sub, err := m.makeLogicOp(item)
		if err != nil {
			return lo, err
		}
		lo.Sub = append(lo.Sub, sub)
	}
	return lo, nil
}

func (m *Matcher) makeFieldRule(field string, obj any) (FieldRule, error) {
	addr, err := m.fieldNavigator.GetAddress(field)
	if err != nil {
		return FieldRule{}, err
	}

	switch t := obj.(type) {
	case *regexp.Regexp:
		return FieldRule{Addr: addr, Conds: []Cond{{Op: Regex, Rgx: t}}}, nil
	case domain.Document:
		ops, err := m.isOperatorDoc(t)
		if err != nil {
			return FieldRule{}, err
		}
		if ops {
			conds, err := m.makeConds(t)
			if err != nil {
				return FieldRule{}, err
			}
			return FieldRule{Addr: addr, Conds: conds}, nil
		}
	}

	return FieldRule{Addr: addr, Conds: []Cond{{Op: Eq, Val: obj}}}, nil
}

// isOperatorDoc reports whether every key of doc is an operator. Documents
// with both kinds of keys are invalid.
func (m *Matcher) isOperatorDoc(doc domain.Document) (bool, error) {
	var dollar int
	for key := range doc.Keys() {
		if strings.HasPrefix(key, "$") {
			dollar++
		}
	}
	if dollar > 0 && dollar != doc.Len() {
		return false, ErrMixedOperators
	}
	return dollar > 0, nil
}

func (m *Matcher) makeConds(ops domain.Document) ([]Cond, error) {
	conds := make([]Cond, 0, ops.Len())
	if ops.Has("$options") && !ops.Has("$regex") {
		return nil, ErrOptionsWithoutRegex
	}
	for _, key := range slices.Sorted(ops.Keys()) {
		if key == "$options" {
			continue
		}
		cond, err := m.makeCond(key, ops.Get(key), ops)
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
	}
	return conds, nil
}

func (m *Matcher) makeCond(k string, v any, ops domain.Document) (Cond, error) {
	switch k {
	case "$eq":
		return Cond{Op: Eq, Val: v}, nil
	case "$ne":
		return Cond{Op: Ne, Val: v}, nil
	case "$lt":
		return Cond{Op: Lt, Val: v}, nil
	case "$lte":
		return Cond{Op: Lte, Val: v}, nil
	case "$gt":
		return Cond{Op: Gt, Val: v}, nil
	case "$gte":
		return Cond{Op: Gte, Val: v}, nil
	case "$in", "$nin":
		list, ok := v.([]any)
		if !ok {
			return Cond{}, ErrCompArgType{Comp: k, Want: "list", Actual: v}
		}
		op := In
		if k == "$nin" {
			op = Nin
		}
		return Cond{Op: op, List: list}, nil
	case "$exists":
		return Cond{Op: Exists, Val: m.truthy(v)}, nil
	case "$size":
		size, ok := asInteger(v)
		if !ok {
			return Cond{}, ErrCompArgType{Comp: "$size", Want: "integer", Actual: v}
		}
		return Cond{Op: Size, Size: size}, nil
	case "$regex":
		rgx, err := m.makeRegex(v, ops.Get("$options"))
		if err != nil {
			return Cond{}, err
		}
		return Cond{Op: Regex, Rgx: rgx}, nil
	case "$elemMatch":
		if _, ok := v.(domain.Document); !ok {
			return Cond{}, ErrCompArgType{Comp: "$elemMatch", Want: "document", Actual: v}
		}
		lo, err := m.makeLogicOp(v)
		if err != nil {
			return Cond{}, err
		}
		return Cond{Op: ElemMatch, Elem: &lo}, nil
	case "$not":
		return m.makeNot(v)
	default:
		return Cond{}, ErrUnknownOperator{Operator: k}
	}
}

func (m *Matcher) makeNot(v any) (Cond, error) {
	switch t := v.(type) {
	case *regexp.Regexp:
		return Cond{Op: NotCond, Not: []Cond{{Op: Regex, Rgx: t}}}, nil
	case domain.Document:
		ops, err := m.isOperatorDoc(t)
		if err != nil {
			return Cond{}, err
		}
		if !ops {
			break
		}
		conds, err := m.makeConds(t)
		if err != nil {
			return Cond{}, err
		}
		return Cond{Op: NotCond, Not: conds}, nil
	}
	return Cond{}, ErrCompArgType{Comp: "$not", Want: "regex or operator document", Actual: v}
}

func (m *Matcher) makeRegex(v any, options any) (*regexp.Regexp, error) {
	var flags string
	switch t := options.(type) {
	case nil:
	case string:
		for _, r := range t {
			if !strings.ContainsRune("ims", r) {
				return nil, ErrCompArgType{Comp: "$options", Want: "combination of i, m and s", Actual: t}
			}
		}
		flags = t
	default:
		return nil, ErrCompArgType{Comp: "$options", Want: "string", Actual: options}
	}

	var expr string
	switch t := v.(type) {
	case *regexp.Regexp:
		if flags == "" {
			return t, nil
		}
		expr = t.String()
	case string:
		expr = t
	default:
		return nil, ErrCompArgType{Comp: "$regex", Want: "regex or string", Actual: v}
	}
	if flags != "" {
		expr = "(?" + flags + ")" + expr
	}
	rgx, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompArgType{Comp: "$regex", Want: "valid expression", Actual: v}, err)
	}
	return rgx, nil
}

func (m *Matcher) truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return true
	}
	if c, err := m.comparer.Compare(v, 0); err == nil && c == 0 {
		return false
	}
	return true
}

func asInteger(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int8:
		return int(t), true
	case int16:
		return int(t), true
	case int32:
		return int(t), true
	case int64:
		return int(t), true
	case uint:
		return int(t), true
	case uint8:
		return int(t), true
	case uint16:
		return int(t), true
	case uint32:
		return int(t), true
	case uint64:
		return int(t), true
	case float32:
		return asInteger(float64(t))
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return int(t), true
	}
	return 0, false
}

func (m *Matcher) matchLogicOp(value any, lo LogicOp) (bool, error) {
	switch lo.Type {
	case And:
		for _, sub := range lo.Sub {
			matches, err := m.matchLogicOp(value, sub)
			if err != nil || !matches {
				return false, err
			}
		}
		for _, rule := range lo.Rules {
			matches, err := m.matchRule(value, rule)
			if err != nil || !matches {
				return false, err
			}
		}
		return true, nil
	case Or, Nor:
		for _, sub := range lo.Sub {
			matches, err := m.matchLogicOp(value, sub)
			if err != nil {
				return false, err
			}
			if matches {
				return lo.Type == Or, nil
			}
		}
		return lo.Type == Nor, nil
	case Not:
		matches, err := m.matchLogicOp(value, lo.Sub[0])
		if err != nil {
			return false, err
		}
		return !matches, nil
	case Where:
		doc, ok := value.(domain.Document)
		if !ok {
			return false, nil
		}
		return lo.Where(doc)
	default:
		return false, nil
	}
}

func (m *Matcher) matchRule(value any, rule FieldRule) (bool, error) {
	values, _, err := m.fieldNavigator.GetField(value, rule.Addr...)
	if err != nil {
		return false, err
	}
	return m.matchConds(values, rule.Conds)
}

func (m *Matcher) matchConds(values []domain.Getter, conds []Cond) (bool, error) {
	for _, cond := range conds {
		matches, err := m.matchCond(values, &cond)
		if err != nil || !matches {
			return false, err
		}
	}
	return true, nil
}

func (m *Matcher) matchCond(values []domain.Getter, cond *Cond) (bool, error) {
	switch cond.Op {
	case Eq:
		return m.eq(values, cond.Val)
	case Ne:
		matches, err := m.eq(values, cond.Val)
		return !matches && err == nil, err
	case Lt:
		return m.order(values, cond.Val, func(c int) bool { return c < 0 })
	case Lte:
		return m.order(values, cond.Val, func(c int) bool { return c <= 0 })
	case Gt:
		return m.order(values, cond.Val, func(c int) bool { return c > 0 })
	case Gte:
		return m.order(values, cond.Val, func(c int) bool { return c >= 0 })
	case In:
		return m.in(values, cond.List)
	case Nin:
		matches, err := m.in(values, cond.List)
		return !matches && err == nil, err
	case Exists:
		return m.exists(values) == cond.Val.(bool), nil
	case Size:
		return m.size(values, cond.Size), nil
	case Regex:
		return m.regex(values, cond.Rgx), nil
	case ElemMatch:
		return m.elemMatch(values, cond.Elem)
	case NotCond:
		matches, err := m.matchConds(values, cond.Not)
		return !matches && err == nil, err
	default:
		return false, nil
	}
}

// candidates yields every defined value and, for lists, each of their items.
func (m *Matcher) candidates(values []domain.Getter) iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, value := range values {
			actual, ok := value.Get()
			if !ok {
				continue
			}
			if !yield(actual) {
				return
			}
			arr, ok := actual.([]any)
			if !ok {
				continue
			}
			for _, item := range arr {
				if !yield(item) {
					return
				}
			}
		}
	}
}

func (m *Matcher) eq(values []domain.Getter, expected any) (bool, error) {
	// nil also matches unset fields
	if expected == nil {
		for _, value := range values {
			if _, ok := value.Get(); !ok {
				return true, nil
			}
		}
	}
	for c := range m.candidates(values) {
		comp, err := m.comparer.Compare(c, expected)
		if err != nil {
			return false, err
		}
		if comp == 0 {
			return true, nil
		}
	}
	return false, nil
}

func (m *Matcher) order(values []domain.Getter, limit any, accept func(int) bool) (bool, error) {
	for c := range m.candidates(values) {
		if !m.comparer.Comparable(c, limit) {
			continue
		}
		comp, err := m.comparer.Compare(c, limit)
		if err != nil {
			return false, err
		}
		if accept(comp) {
			return true, nil
		}
	}
	return false, nil
}

func (m *Matcher) in(values []domain.Getter, list []any) (bool, error) {
	for _, item := range list {
		var (
			matches bool
			err     error
		)
		if rgx, ok := item.(*regexp.Regexp); ok {
			matches = m.regex(values, rgx)
		} else if matches, err = m.eq(values, item); err != nil {
			return false, err
		}
		if matches {
			return true, nil
		}
	}
	return false, nil
}

func (m *Matcher) exists(values []domain.Getter) bool {
	for _, value := range values {
		if _, ok := value.Get(); ok {
			return true
		}
	}
	return false
}

func (m *Matcher) size(values []domain.Getter, size int) bool {
	for _, value := range values {
		actual, _ := value.Get()
		if arr, ok := actual.([]any); ok && len(arr) == size {
			return true
		}
	}
	return false
}

func (m *Matcher) regex(values []domain.Getter, rgx *regexp.Regexp) bool {
	for c := range m.candidates(values) {
		if str, ok := c.(string); ok && rgx.MatchString(str) {
			return true
		}
	}
	return false
}

func (m *Matcher) elemMatch(values []domain.Getter, query *LogicOp) (bool, error) {
	for _, value := range values {
		actual, _ := value.Get()
		arr, ok := actual.([]any)
		if !ok {
			continue
		}
		for _, elem := range arr {
			matches, err := m.matchLogicOp(elem, *query)
			if err != nil || matches {
				return matches, err
			}
		}
	}
	return false, nil
}
