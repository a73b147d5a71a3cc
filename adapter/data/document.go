// Package data contains the default [domain.Document] implementation and the
// conversion of Go values into the JSON value model used by collections:
// documents ([M]), lists ([]any), strings, numbers, booleans and nil.
package data

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"maps"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"time"

	goreflect "github.com/goccy/go-reflect"

	"github.com/vinicius-lino-figueiredo/jsongo/domain"
)

// TagName is the struct tag read when converting structs into documents.
const TagName = "jsongo"

// ErrMapKeyType is returned when a map with non-string keys is converted.
var ErrMapKeyType = errors.New("map keys should be strings")

var (
	timeTyp  = goreflect.TypeOf(time.Time{})
	regexTyp = goreflect.TypeOf((*regexp.Regexp)(nil))
)

// M implements domain.Document by using a hashed map. Duplicates replace old
// values.
type M map[string]any

// NewDocument returns a deep copy of in converted to [M]. in must be nil, a
// map with string keys or a struct (or a pointer to one of them). Values that
// have no JSON representation, such as functions and channels, are rejected.
func NewDocument(in any) (domain.Document, error) {
	if in == nil {
		return M{}, nil
	}
	v, err := normalize(in, true)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return M{}, nil
	}
	doc, ok := v.(M)
	if !ok {
		return nil, domain.ErrDocumentType{
			Reason: fmt.Sprintf("expected map or struct, got %T", in),
		}
	}
	return doc, nil
}

// NormalizeValue converts any value to the JSON value model, like
// [NewDocument], but keeps values meaningful only inside queries, such as
// regular expressions and functions, untouched.
func NormalizeValue(in any) (any, error) {
	return normalize(in, false)
}

// Clone returns a deep copy of doc.
func Clone(doc domain.Document) domain.Document {
	if doc == nil {
		return nil
	}
	res := make(M, doc.Len())
	for k, v := range doc.Iter() {
		res[k] = cloneValue(v)
	}
	return res
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case domain.Document:
		return Clone(t)
	case []any:
		res := make([]any, len(t))
		for n, item := range t {
			res[n] = cloneValue(item)
		}
		return res
	default:
		return v
	}
}

func normalize(v any, strict bool) (any, error) {
	switch t := v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return t, nil
	case time.Time:
		return t.Format(time.RFC3339Nano), nil
	case domain.Document:
		res := make(M, t.Len())
		for k, item := range t.Iter() {
			n, err := normalize(item, strict)
			if err != nil {
				return nil, err
			}
			res[k] = n
		}
		return res, nil
	case map[string]any:
		return normalizeMap(t, strict)
	case []any:
		res := make([]any, len(t))
		for n, item := range t {
			var err error
			if res[n], err = normalize(item, strict); err != nil {
				return nil, err
			}
		}
		return res, nil
	case *regexp.Regexp:
		if strict {
			return nil, domain.ErrDocumentType{Reason: "regular expressions cannot be stored"}
		}
		return t, nil
	}
	return normalizeReflect(goreflect.ValueNoEscapeOf(v), strict)
}

func normalizeMap(m map[string]any, strict bool) (M, error) {
	res := make(M, len(m))
	for k, item := range m {
		n, err := normalize(item, strict)
		if err != nil {
			return nil, err
		}
		res[k] = n
	}
	return res, nil
}

func normalizeReflect(r goreflect.Value, strict bool) (any, error) {
	for r.Kind() == reflect.Pointer || r.Kind() == reflect.Interface {
		if r.IsNil() {
			return nil, nil
		}
		if r.Type() == regexTyp {
			return normalize(r.Interface(), strict)
		}
		r = r.Elem()
	}
	switch r.Kind() {
	case reflect.Invalid:
		return nil, nil
	case reflect.Bool:
		return r.Bool(), nil
	case reflect.String:
		return r.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return r.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return r.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return r.Float(), nil
	case reflect.Slice:
		if r.IsNil() {
			return nil, nil
		}
		fallthrough
	case reflect.Array:
		return normalizeList(r, strict)
	case reflect.Map:
		if r.IsNil() {
			return nil, nil
		}
		return normalizeMapReflect(r, strict)
	case reflect.Struct:
		if r.Type() == timeTyp {
			return normalize(r.Interface(), strict)
		}
		return normalizeStruct(r, strict)
	case reflect.Func, reflect.Chan:
		if r.IsNil() {
			return nil, nil
		}
		if strict {
			return nil, domain.ErrDocumentType{
				Reason: fmt.Sprintf("%s values cannot be stored", r.Kind()),
			}
		}
		return r.Interface(), nil
	default:
		return nil, domain.ErrDocumentType{
			Reason: fmt.Sprintf("unsupported type %s", r.Type()),
		}
	}
}

func normalizeList(r goreflect.Value, strict bool) ([]any, error) {
	res := make([]any, r.Len())
	for i := range res {
		var err error
		if res[i], err = normalizeReflect(r.Index(i), strict); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func normalizeMapReflect(r goreflect.Value, strict bool) (M, error) {
	if r.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("%w, got %s", ErrMapKeyType, r.Type().Key())
	}
	res := make(M, r.Len())
	for _, k := range r.MapKeys() {
		n, err := normalizeReflect(r.MapIndex(k), strict)
		if err != nil {
			return nil, err
		}
		res[k.String()] = n
	}
	return res, nil
}

func normalizeStruct(r goreflect.Value, strict bool) (M, error) {
	typ := r.Type()
	res := make(M, r.NumField())
	for n := range r.NumField() {
		field := typ.Field(n)
		if field.PkgPath != "" {
			continue
		}
		name, skip := fieldName(r.Field(n), field)
		if skip {
			continue
		}
		value, err := normalizeReflect(r.Field(n), strict)
		if err != nil {
			return nil, err
		}
		res[name] = value
	}
	return res, nil
}

func fieldName(r goreflect.Value, field goreflect.StructField) (string, bool) {
	tag, ok := field.Tag.Lookup(TagName)
	if !ok {
		return field.Name, false
	}
	if tag == "-" {
		return "", true
	}
	segments := strings.Split(tag, ",")
	name := field.Name
	if segments[0] != "" {
		name = segments[0]
	}
	if slices.Contains(segments[1:], "omitempty") && isNullable(field.Type) && r.IsNil() {
		return "", true
	}
	if slices.Contains(segments[1:], "omitzero") && r.IsZero() {
		return "", true
	}
	return name, false
}

func isNullable(t goreflect.Type) bool {
	k := t.Kind()
	return k == reflect.Pointer ||
		k == reflect.Slice ||
		k == reflect.Map ||
		k == reflect.Interface ||
		k == reflect.Func ||
		k == reflect.Chan
}

// ID implements domain.Document
func (d M) ID() any {
	return d["_id"]
}

// Get implements domain.Document
func (d M) Get(key string) any {
	return d[key]
}

// Set implements domain.Document
func (d M) Set(key string, value any) {
	d[key] = value
}

// Unset implements domain.Document
func (d M) Unset(key string) {
	delete(d, key)
}

// D implements domain.Document
func (d M) D(key string) domain.Document {
	if doc, ok := d[key].(domain.Document); ok {
		return doc
	}
	return nil
}

// Iter implements domain.Document.
func (d M) Iter() iter.Seq2[string, any] {
	return maps.All(d)
}

// Keys implements domain.Document.
func (d M) Keys() iter.Seq[string] {
	return maps.Keys(d)
}

// Len implements domain.Document.
func (d M) Len() int {
	return len(d)
}

// Has implements domain.Document.
func (d M) Has(key string) bool {
	_, has := d[key]
	return has
}

// UnmarshalJSON implements json.Unmarshaler. Nested objects become [M] too.
func (d *M) UnmarshalJSON(input []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(input, &raw); err != nil {
		return err
	}
	if raw == nil {
		return domain.ErrDocumentType{Reason: "expected object, got null"}
	}
	doc, err := normalizeMap(raw, true)
	if err != nil {
		return err
	}
	*d = doc
	return nil
}
