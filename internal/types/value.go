package types

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"
)

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindObject
	KindArray
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Value is the parameter tree used for every parameter object: a tagged
// union of scalar, object and array nodes. The zero Value is null.
//
// Values are treated as immutable. Accessors that expose children return
// copies, so a Value taken from a declaration can be shared between
// goroutines without synchronization.
type Value struct {
	kind ValueKind
	b    bool
	i    int64
	f    float64
	s    string
	obj  map[string]Value
	arr  []Value
}

func NewNull() Value { return Value{} }

func NewBool(v bool) Value { return Value{kind: KindBool, b: v} }

func NewInt(v int64) Value { return Value{kind: KindInt, i: v} }

func NewFloat(v float64) Value { return Value{kind: KindFloat, f: v} }

func NewString(v string) Value { return Value{kind: KindString, s: v} }

// NewObject copies fields into a new object node. A nil map yields an
// empty object.
func NewObject(fields map[string]Value) Value {
	obj := make(map[string]Value, len(fields))
	for key, value := range fields {
		obj[key] = value
	}
	return Value{kind: KindObject, obj: obj}
}

func EmptyObject() Value {
	return Value{kind: KindObject, obj: map[string]Value{}}
}

func NewArray(items ...Value) Value {
	arr := make([]Value, len(items))
	copy(arr, items)
	return Value{kind: KindArray, arr: arr}
}

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// IsZero lets yaml omitempty drop unset values.
func (v Value) IsZero() bool { return v.kind == KindNull }

func (v Value) IsObject() bool { return v.kind == KindObject }

func (v Value) IsArray() bool { return v.kind == KindArray }

// IsNumber reports whether the value is an integer or a float.
func (v Value) IsNumber() bool { return v.kind == KindInt || v.kind == KindFloat }

func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsInt returns the integer held by v. Floats with an integral value are
// accepted because JSON documents carry no integer/float distinction.
func (v Value) AsInt() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindFloat:
		if math.Trunc(v.f) == v.f && !math.IsInf(v.f, 0) && math.Abs(v.f) < 1<<63 {
			return int64(v.f), true
		}
	}
	return 0, false
}

func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	}
	return 0, false
}

func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// Len returns the number of object keys or array items.
func (v Value) Len() int {
	switch v.kind {
	case KindObject:
		return len(v.obj)
	case KindArray:
		return len(v.arr)
	}
	return 0
}

// Keys returns the object's keys in sorted order.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	keys := make([]string, 0, len(v.obj))
	for key := range v.obj {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	child, ok := v.obj[key]
	return child, ok
}

// Fields returns a shallow copy of the object's children.
func (v Value) Fields() map[string]Value {
	if v.kind != KindObject {
		return nil
	}
	out := make(map[string]Value, len(v.obj))
	for key, value := range v.obj {
		out[key] = value
	}
	return out
}

// Items returns a copy of the array's elements.
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	out := make([]Value, len(v.arr))
	copy(out, v.arr)
	return out
}

// With returns a copy of the object with key set to child. Calling With on
// a non-object starts from an empty object.
func (v Value) With(key string, child Value) Value {
	fields := v.Fields()
	if fields == nil {
		fields = map[string]Value{}
	}
	fields[key] = child
	return Value{kind: KindObject, obj: fields}
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	switch v.kind {
	case KindObject:
		obj := make(map[string]Value, len(v.obj))
		for key, value := range v.obj {
			obj[key] = value.Clone()
		}
		return Value{kind: KindObject, obj: obj}
	case KindArray:
		arr := make([]Value, len(v.arr))
		for i, item := range v.arr {
			arr[i] = item.Clone()
		}
		return Value{kind: KindArray, arr: arr}
	default:
		return v
	}
}

// Equal compares two values structurally. An integer and a float holding
// the same number are equal.
func (v Value) Equal(other Value) bool {
	if v.IsNumber() && other.IsNumber() {
		if v.kind == KindInt && other.kind == KindInt {
			return v.i == other.i
		}
		a, _ := v.AsFloat()
		b, _ := other.AsFloat()
		return a == b
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindString:
		return v.s == other.s
	case KindObject:
		if len(v.obj) != len(other.obj) {
			return false
		}
		for key, value := range v.obj {
			peer, ok := other.obj[key]
			if !ok || !value.Equal(peer) {
				return false
			}
		}
		return true
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Interface converts v into plain Go values (map[string]any, []any,
// int64, float64, string, bool, nil).
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindObject:
		out := make(map[string]any, len(v.obj))
		for key, value := range v.obj {
			out[key] = value.Interface()
		}
		return out
	case KindArray:
		out := make([]any, len(v.arr))
		for i, item := range v.arr {
			out[i] = item.Interface()
		}
		return out
	default:
		return nil
	}
}

// String renders v compactly for diagnostics.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindString:
		return strconv.Quote(v.s)
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, item := range v.arr {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindObject:
		keys := v.Keys()
		parts := make([]string, len(keys))
		for i, key := range keys {
			parts[i] = key + ": " + v.obj[key].String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return "?"
}

// FromAny converts decoded Go data (as produced by yaml or json decoders)
// into a Value.
func FromAny(raw any) (Value, error) {
	switch typed := raw.(type) {
	case nil:
		return Value{}, nil
	case Value:
		return typed, nil
	case bool:
		return NewBool(typed), nil
	case int:
		return NewInt(int64(typed)), nil
	case int32:
		return NewInt(int64(typed)), nil
	case int64:
		return NewInt(typed), nil
	case uint64:
		if typed > math.MaxInt64 {
			return NewFloat(float64(typed)), nil
		}
		return NewInt(int64(typed)), nil
	case float32:
		return NewFloat(float64(typed)), nil
	case float64:
		return NewFloat(typed), nil
	case string:
		return NewString(typed), nil
	case map[string]any:
		obj := make(map[string]Value, len(typed))
		for key, child := range typed {
			converted, err := FromAny(child)
			if err != nil {
				return Value{}, err
			}
			obj[key] = converted
		}
		return Value{kind: KindObject, obj: obj}, nil
	case map[any]any:
		obj := make(map[string]Value, len(typed))
		for key, child := range typed {
			converted, err := FromAny(child)
			if err != nil {
				return Value{}, err
			}
			obj[fmt.Sprint(key)] = converted
		}
		return Value{kind: KindObject, obj: obj}, nil
	case []any:
		arr := make([]Value, len(typed))
		for i, child := range typed {
			converted, err := FromAny(child)
			if err != nil {
				return Value{}, err
			}
			arr[i] = converted
		}
		return Value{kind: KindArray, arr: arr}, nil
	default:
		return Value{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsupported parameter value type %T", raw))
	}
}

// UnmarshalYAML decodes any yaml node into the value tree. Scalars keep
// the tag yaml resolved for them, so `1` is an integer and `1.0` a float.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	decoded, err := decodeNode(node)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

func decodeNode(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Value{}, nil
		}
		return decodeNode(node.Content[0])
	case yaml.AliasNode:
		return decodeNode(node.Alias)
	case yaml.MappingNode:
		obj := make(map[string]Value, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode := node.Content[i]
			if keyNode.Kind != yaml.ScalarNode {
				return Value{}, errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg(fmt.Sprintf("line %d: parameter keys must be scalars", keyNode.Line))
			}
			child, err := decodeNode(node.Content[i+1])
			if err != nil {
				return Value{}, err
			}
			obj[keyNode.Value] = child
		}
		return Value{kind: KindObject, obj: obj}, nil
	case yaml.SequenceNode:
		arr := make([]Value, len(node.Content))
		for i, child := range node.Content {
			decoded, err := decodeNode(child)
			if err != nil {
				return Value{}, err
			}
			arr[i] = decoded
		}
		return Value{kind: KindArray, arr: arr}, nil
	case yaml.ScalarNode:
		return decodeScalar(node)
	}
	return Value{}, nil
}

func decodeScalar(node *yaml.Node) (Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return Value{}, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return Value{}, err
		}
		return NewBool(b), nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err == nil {
			return NewInt(i), nil
		}
		var f float64
		if err := node.Decode(&f); err != nil {
			return Value{}, err
		}
		return NewFloat(f), nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return Value{}, err
		}
		return NewFloat(f), nil
	default:
		return NewString(node.Value), nil
	}
}

// MarshalYAML encodes the tree with object keys in sorted order so the
// same Value always serializes to the same bytes.
func (v Value) MarshalYAML() (any, error) {
	return v.node(), nil
}

func (v Value) node() *yaml.Node {
	switch v.kind {
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.b)}
	case KindInt:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v.i, 10)}
	case KindFloat:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: yamlFloat(v.f)}
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.s}
	case KindObject:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, key := range v.Keys() {
			out.Content = append(out.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
				v.obj[key].node(),
			)
		}
		return out
	case KindArray:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.arr {
			out.Content = append(out.Content, item.node())
		}
		return out
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func formatFloat(f float64) string {
	formatted := strconv.FormatFloat(f, 'g', -1, 64)
	if strings.ContainsAny(formatted, ".eEnN") {
		return formatted
	}
	return formatted + ".0"
}

func yamlFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	return formatFloat(f)
}
