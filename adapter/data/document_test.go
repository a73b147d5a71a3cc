package data

import (
	"encoding/json"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/jsongo/domain"
)

type MTestSuite struct {
	suite.Suite
}

func (s *MTestSuite) TestSimpleMap() {
	obj := map[string]any{
		"yeah": "sure",
		"of":   "course",
	}

	doc, err := NewDocument(obj)
	s.NoError(err)
	s.Equal(M{"yeah": "sure", "of": "course"}, doc)
}

func (s *MTestSuite) TestSimpleStruct() {
	obj := struct{ No, Yes string }{
		No:  "way",
		Yes: "indeed",
	}

	doc, err := NewDocument(obj)
	s.NoError(err)
	s.Equal(M{"No": "way", "Yes": "indeed"}, doc)
}

func (s *MTestSuite) TestUnexportedField() {
	obj := struct{ No, yes string }{
		No:  "way",
		yes: "indeed",
	}

	doc, err := NewDocument(obj)
	s.NoError(err)
	s.Equal(M{"No": "way"}, doc)
}

func (s *MTestSuite) TestIgnoreField() {
	obj := struct {
		No  string
		Yes string `jsongo:"-"`
	}{
		No:  "way",
		Yes: "indeed",
	}

	doc, err := NewDocument(obj)
	s.NoError(err)
	s.Equal(M{"No": "way"}, doc)
}

func (s *MTestSuite) TestPointerValue() {
	obj := &struct{ No, Yes string }{
		No:  "way",
		Yes: "indeed",
	}

	doc, err := NewDocument(obj)
	s.NoError(err)
	s.Equal(M{"No": "way", "Yes": "indeed"}, doc)
}

func (s *MTestSuite) TestPointerToNilPointer() {
	obj := (*struct{})(nil)

	doc, err := NewDocument(&obj)
	s.NoError(err)
	s.Equal(M{}, doc)
}

func (s *MTestSuite) TestNamedStruct() {
	obj := struct {
		Compliment1 bool `jsongo:"Hello"`
		Compliment2 bool `jsongo:"Hi"`
	}{
		Compliment1: true,
	}

	doc, err := NewDocument(obj)
	s.NoError(err)
	s.Equal(M{"Hello": true, "Hi": false}, doc)
}

func (s *MTestSuite) TestEmptyTag() {
	obj := struct {
		Compliment1 bool `jsongo:"Hello"`
		Compliment2 bool `jsongo:""`
	}{
		Compliment1: true,
	}

	doc, err := NewDocument(obj)
	s.NoError(err)
	s.Equal(M{"Hello": true, "Compliment2": false}, doc)
}

func (s *MTestSuite) TestOmitEmpty() {
	obj := struct {
		Compliment1 bool  `jsongo:"Hello,omitempty"`
		Compliment2 any   `jsongo:"Hi,omitempty"`
		Compliment3 []int `jsongo:"Sup,omitempty"`
	}{
		Compliment1: true,
	}

	doc, err := NewDocument(obj)
	s.NoError(err)
	s.Equal(M{"Hello": true}, doc)
}

func (s *MTestSuite) TestOmitZero() {
	obj := struct {
		ID   string `jsongo:"_id,omitzero"`
		Name string `jsongo:"name,omitzero"`
	}{
		Name: "guest",
	}

	doc, err := NewDocument(obj)
	s.NoError(err)
	s.Equal(M{"name": "guest"}, doc)
	s.False(doc.Has("_id"))
}

func (s *MTestSuite) TestNestedMap() {
	obj := map[string]any{
		"nested": map[string]any{
			"a": "b",
		},
		"x": "y",
	}

	doc, err := NewDocument(obj)
	s.NoError(err)
	s.Equal(M{"nested": M{"a": "b"}, "x": "y"}, doc)
}

func (s *MTestSuite) TestNestedStruct() {
	obj := struct {
		Nested struct {
			A int `jsongo:"a"`
		}
		X float64 `jsongo:"x"`
	}{}
	doc, err := NewDocument(obj)
	s.NoError(err)
	s.Equal(M{"Nested": M{"a": int64(0)}, "x": 0.0}, doc)
}

func (s *MTestSuite) TestNullable() {
	obj := struct {
		Map       map[string]any
		Function  func()
		Channel   chan struct{}
		Slice     []any
		Interface interface{ do() }
	}{}

	expected := M{
		"Map":       nil,
		"Function":  nil,
		"Channel":   nil,
		"Slice":     nil,
		"Interface": nil,
	}

	doc, err := NewDocument(obj)
	s.NoError(err)
	s.Equal(expected, doc, "should use any nil value as any(nil)")
}

// Typed maps and slices become documents and lists, named numeric types are
// reduced to their underlying kind and times become RFC 3339 strings.
func (s *MTestSuite) TestTypedValues() {
	now := time.Date(2024, 5, 6, 7, 8, 9, 10, time.UTC)
	obj := map[string]any{
		"planets":   map[string]int{"count": 8},
		"values":    map[string]float64{"pi": 3.14},
		"furniture": map[string]string{"couch": "livingroom"},
		"nested": map[string]map[string]any{
			"subObj": {"value": "a", "time": now},
			"null":   nil,
		},
		"duration": time.Hour,
		"names":    []string{"Huguinho", "Zezinho", "Luisinho"},
	}

	expected := M{
		"planets":   M{"count": int64(8)},
		"values":    M{"pi": 3.14},
		"furniture": M{"couch": "livingroom"},
		"nested": M{
			"subObj": M{"value": "a", "time": "2024-05-06T07:08:09.00000001Z"},
			"null":   nil,
		},
		"duration": int64(time.Hour),
		"names":    []any{"Huguinho", "Zezinho", "Luisinho"},
	}

	doc, err := NewDocument(obj)
	s.NoError(err)
	s.Equal(expected, doc)
}

func (s *MTestSuite) TestDeepCopy() {
	inner := map[string]any{"a": 1}
	list := []any{inner}
	obj := map[string]any{"list": list, "inner": inner}

	doc, err := NewDocument(obj)
	s.NoError(err)

	inner["a"] = 2
	list[0] = "changed"
	s.Equal(M{"list": []any{M{"a": 1}}, "inner": M{"a": 1}}, doc)
}

func (s *MTestSuite) TestNonStringKeyMap() {
	obj := map[string]any{
		"value": map[int]any{
			1: 123,
		},
	}
	_, err := NewDocument(obj)
	s.ErrorIs(err, ErrMapKeyType)
}

func (s *MTestSuite) TestNilArg() {
	doc, err := NewDocument(nil)
	s.NoError(err)
	s.Equal(M{}, doc)
}

func (s *MTestSuite) TestNonStructArg() {
	_, err := NewDocument(1)
	s.ErrorIs(err, domain.ErrDocumentType{
		Reason: "expected map or struct, got int",
	})
}

func (s *MTestSuite) TestRejectFunction() {
	_, err := NewDocument(map[string]any{"f": func() {}})
	s.ErrorAs(err, new(domain.ErrDocumentType))

	_, err = NewDocument(map[string]any{"c": make(chan int)})
	s.ErrorAs(err, new(domain.ErrDocumentType))

	_, err = NewDocument(map[string]any{"r": regexp.MustCompile("a")})
	s.ErrorAs(err, new(domain.ErrDocumentType))
}

func (s *MTestSuite) TestNormalizeValueKeepsQueryValues() {
	rgx := regexp.MustCompile(`^a`)
	fn := func(domain.Document) (bool, error) { return true, nil }

	v, err := NormalizeValue(map[string]any{"$regex": rgx, "list": []int{1, 2}})
	s.NoError(err)
	s.Equal(M{"$regex": rgx, "list": []any{int64(1), int64(2)}}, v)

	v, err = NormalizeValue(fn)
	s.NoError(err)
	s.NotNil(v)

	v, err = NormalizeValue("plain")
	s.NoError(err)
	s.Equal("plain", v)
}

func (s *MTestSuite) TestClone() {
	doc := M{"a": M{"b": []any{M{"c": 1}}}}
	clone := Clone(doc)
	s.Equal(doc, clone)

	clone.D("a").Get("b").([]any)[0].(domain.Document).Set("c", 2)
	s.Equal(M{"a": M{"b": []any{M{"c": 1}}}}, doc)

	s.Nil(Clone(nil))
}

func (s *MTestSuite) TestID() {
	id := uuid.NewString()
	obj := map[string]string{"_id": id}
	doc, err := NewDocument(obj)
	s.NoError(err)
	s.True(doc.Has("_id"))
	s.Equal(id, doc.ID())
	s.Equal(id, doc.Get("_id"))
}

func (s *MTestSuite) TestIterationFunctions() {
	doc := M{
		"name": "option",
		"age":  99,
		"key":  "value",
		"pi":   3.14,
	}

	hashMap := maps.Collect(doc.Iter())
	keys := slices.Collect(doc.Keys())

	s.Len(hashMap, len(doc))
	s.Len(keys, len(doc))
	for key, value := range doc {
		s.Contains(hashMap, key)
		s.Equal(value, hashMap[key])
		s.Contains(keys, key)
	}
}

func (s *MTestSuite) TestSetUnset() {
	doc := M{"a": nil}
	doc.Set("a", "b")
	doc.Set("c", "d")
	s.Equal(M{"a": "b", "c": "d"}, doc)
	doc.Unset("a")
	doc.Unset("z")
	s.Equal(M{"c": "d"}, doc)
}

func (s *MTestSuite) TestD() {
	doc := M{"a": M{"h": "i"}, "b": 1}
	s.Equal(M{"h": "i"}, doc.D("a"))
	s.Nil(doc.D("b"))
	s.Nil(doc.D("c"))
}

func (s *MTestSuite) TestLen() {
	m := make(M)
	s.Equal(0, m.Len())
	for i := range 100 {
		m[strconv.Itoa(i)] = i
		s.Equal(i+1, m.Len())
	}
}

func (s *MTestSuite) TestUnmarshalValidJSON() {
	j := `{
		"1": 2,
		"value": [1, 2.5, null, "a", "\n", ["b"], {}],
		"key": {"hey": "ya"}
	}`

	expected := M{
		"1":     2.0,
		"value": []any{1.0, 2.5, nil, "a", "\n", []any{"b"}, M{}},
		"key":   M{"hey": "ya"},
	}

	var doc M
	s.NoError(json.Unmarshal([]byte(j), &doc))
	s.Equal(expected, doc)
}

func (s *MTestSuite) TestUnmarshalInvalidJSON() {
	var doc M
	s.Error(json.Unmarshal([]byte(`{"a":`), &doc))
	s.Error(json.Unmarshal([]byte(`[1]`), &doc))

	var docs []M
	err := json.Unmarshal([]byte(`[{"a":1}, null]`), &docs)
	s.ErrorAs(err, new(domain.ErrDocumentType))
}

func TestMTestSuite(t *testing.T) {
	suite.Run(t, new(MTestSuite))
}
