package matcher

import (
	"regexp"

	"github.com/vinicius-lino-figueiredo/jsongo/domain"
)

// Numeric representations of supported logic operators.
const (
	And uint8 = iota
	Or
	Nor
	Not
	Where
)

// Numeric representations of supported field operators.
const (
	Eq uint8 = iota
	Ne
	Exists
	Lt
	Lte
	Gt
	Gte
	Size
	In
	Nin
	ElemMatch
	Regex
	NotCond
)

// LogicOp stores a logic operator (and, or, nor, not, where) and its children,
// which can be either a set of rules or a nested set of LogicOps. A query is
// a single And LogicOp.
type LogicOp struct {
	Type  uint8
	Rules []FieldRule
	Sub   []LogicOp
	Where domain.Predicate
}

// FieldRule stores a set of conditions used to match a given object field. An
// empty address refers to the matched value itself.
type FieldRule struct {
	Addr  []string
	Conds []Cond
}

// Cond stores a single operation on a document field (such as $gt, $size).
type Cond struct {
	Op   uint8
	Val  any
	List []any
	Size int
	Rgx  *regexp.Regexp
	Elem *LogicOp
	Not  []Cond
}
