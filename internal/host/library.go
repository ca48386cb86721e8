package host

import (
	_ "embed"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/simon-curtis/jitzu/internal/object"
	"github.com/simon-curtis/jitzu/internal/typesystem"
)

//go:embed system.yaml
var systemManifest []byte

const listTypeName = "System.Collections.List"

// NewStandardRegistry returns a registry holding the System library.
func NewStandardRegistry() *Registry {
	r := NewRegistry()
	m, err := ParseManifest(systemManifest, "system.yaml")
	if err != nil {
		panic(fmt.Sprintf("host: embedded system manifest: %v", err))
	}
	if err := r.AddManifest(m); err != nil {
		panic(fmt.Sprintf("host: embedded system manifest: %v", err))
	}
	r.registerSystem()
	return r
}

// SetOutput redirects System.Console.
func (r *Registry) SetOutput(w io.Writer) { r.out = w }

func (r *Registry) registerSystem() {
	// System.Math
	r.Register("System.Math.Abs(Int)", func(args ...object.Object) (object.Object, error) {
		n := args[0].(*object.Integer).Value
		if n < 0 {
			n = -n
		}
		return &object.Integer{Value: n}, nil
	})
	r.Register("System.Math.Abs(Double)", floatFn(math.Abs))
	r.Register("System.Math.Sqrt(Double)", floatFn(math.Sqrt))
	r.Register("System.Math.Floor(Double)", floatFn(math.Floor))
	r.Register("System.Math.Pow(Double,Double)", func(args ...object.Object) (object.Object, error) {
		x, _ := toFloat(args[0])
		y, _ := toFloat(args[1])
		return &object.Float{Value: math.Pow(x, y)}, nil
	})
	r.Register("System.Math.Max(T,T)", pick(func(c int) bool { return c >= 0 }))
	r.Register("System.Math.Max(Int,Int)", pick(func(c int) bool { return c >= 0 }))
	r.Register("System.Math.Min(T,T)", pick(func(c int) bool { return c <= 0 }))
	r.Register("System.Math.Min(Int,Int)", pick(func(c int) bool { return c <= 0 }))

	// System.Console
	r.Register("System.Console.WriteLine(Any)", func(args ...object.Object) (object.Object, error) {
		fmt.Fprintln(r.out, object.ToText(args[0]))
		return object.UNIT, nil
	})
	r.Register("System.Console.Write(Any)", func(args ...object.Object) (object.Object, error) {
		fmt.Fprint(r.out, object.ToText(args[0]))
		return object.UNIT, nil
	})

	// String
	r.Register("String.ToUpper()", stringFn(strings.ToUpper))
	r.Register("String.ToLower()", stringFn(strings.ToLower))
	r.Register("String.Trim()", stringFn(strings.TrimSpace))
	r.Register("String.Length()", func(args ...object.Object) (object.Object, error) {
		return &object.Integer{Value: int64(len([]rune(str(args[0]))))}, nil
	})
	r.Register("String.Contains(String)", stringPred(strings.Contains))
	r.Register("String.StartsWith(String)", stringPred(strings.HasPrefix))
	r.Register("String.EndsWith(String)", stringPred(strings.HasSuffix))
	r.Register("String.Split(String)", func(args ...object.Object) (object.Object, error) {
		parts := strings.Split(str(args[0]), str(args[1]))
		elems := make([]object.Object, len(parts))
		for i, p := range parts {
			elems[i] = &object.String{Value: p}
		}
		return &object.Array{Elements: elems, ElemType: typesystem.String}, nil
	})

	// Array
	r.Register("Array.Push(T)", func(args ...object.Object) (object.Object, error) {
		arr := args[0].(*object.Array)
		arr.Elements = append(arr.Elements, args[1])
		return object.UNIT, nil
	})
	r.Register("Array.Count()", func(args ...object.Object) (object.Object, error) {
		return &object.Integer{Value: int64(len(args[0].(*object.Array).Elements))}, nil
	})
	r.Register("Array.Contains(T)", func(args ...object.Object) (object.Object, error) {
		return object.NativeBool(indexOf(args[0].(*object.Array).Elements, args[1]) >= 0), nil
	})
	r.Register("Array.IndexOf(T)", func(args ...object.Object) (object.Object, error) {
		return &object.Integer{Value: int64(indexOf(args[0].(*object.Array).Elements, args[1]))}, nil
	})

	// System.Text
	r.Register("System.Text.StringBuilder.New()", func(args ...object.Object) (object.Object, error) {
		return &object.HostValue{TypeName: "System.Text.StringBuilder", Value: &strings.Builder{}}, nil
	})
	r.Register("System.Text.StringBuilder.Append(Any)", func(args ...object.Object) (object.Object, error) {
		sb, err := builder(args[0])
		if err != nil {
			return nil, err
		}
		sb.WriteString(object.ToText(args[1]))
		return args[0], nil
	})
	r.Register("System.Text.StringBuilder.Length()", func(args ...object.Object) (object.Object, error) {
		sb, err := builder(args[0])
		if err != nil {
			return nil, err
		}
		return &object.Integer{Value: int64(sb.Len())}, nil
	})
	r.Register("System.Text.StringBuilder.Build()", func(args ...object.Object) (object.Object, error) {
		sb, err := builder(args[0])
		if err != nil {
			return nil, err
		}
		return &object.String{Value: sb.String()}, nil
	})

	// System.Collections
	r.Register("System.Collections.List.Of(E[])", func(args ...object.Object) (object.Object, error) {
		arr := args[0].(*object.Array)
		items := append([]object.Object(nil), arr.Elements...)
		return newList(items, arr.ElemType), nil
	})
	r.Register("System.Collections.List.Empty()", func(args ...object.Object) (object.Object, error) {
		return newList(nil, nil), nil
	})
	r.Register("System.Collections.List.Add(T)", func(args ...object.Object) (object.Object, error) {
		l, err := list(args[0])
		if err != nil {
			return nil, err
		}
		l.items = append(l.items, args[1])
		return object.UNIT, nil
	})
	r.Register("System.Collections.List.Get(Int)", func(args ...object.Object) (object.Object, error) {
		l, err := list(args[0])
		if err != nil {
			return nil, err
		}
		i := args[1].(*object.Integer).Value
		if i < 0 || i >= int64(len(l.items)) {
			return nil, fmt.Errorf("index %d out of range for list of length %d", i, len(l.items))
		}
		return l.items[i], nil
	})

	// System.Linq
	r.Register("System.Linq.Enumerable.Count", func(args ...object.Object) (object.Object, error) {
		items, err := enumerate(args[0])
		if err != nil {
			return nil, err
		}
		return &object.Integer{Value: int64(len(items))}, nil
	})
	r.Register("System.Linq.Enumerable.First", func(args ...object.Object) (object.Object, error) {
		items, err := enumerate(args[0])
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, fmt.Errorf("sequence contains no elements")
		}
		return items[0], nil
	})
}

// listValue backs System.Collections.List.
type listValue struct {
	items []object.Object
}

func (l *listValue) String() string {
	return (&object.Array{Elements: l.items}).Inspect()
}

func newList(items []object.Object, elem typesystem.Type) *object.HostValue {
	if elem == nil {
		elem = typesystem.Any
	}
	return &object.HostValue{
		TypeName: listTypeName,
		Args:     []typesystem.Type{elem},
		Value:    &listValue{items: items},
	}
}

func list(o object.Object) (*listValue, error) {
	if h, ok := o.(*object.HostValue); ok {
		if l, ok := h.Value.(*listValue); ok {
			return l, nil
		}
	}
	return nil, fmt.Errorf("expected %s, got %s", listTypeName, o.Inspect())
}

func builder(o object.Object) (*strings.Builder, error) {
	if h, ok := o.(*object.HostValue); ok {
		if sb, ok := h.Value.(*strings.Builder); ok {
			return sb, nil
		}
	}
	return nil, fmt.Errorf("expected System.Text.StringBuilder, got %s", o.Inspect())
}

func enumerate(o object.Object) ([]object.Object, error) {
	switch v := o.(type) {
	case *object.Array:
		return v.Elements, nil
	case *object.HostValue:
		if l, ok := v.Value.(*listValue); ok {
			return l.items, nil
		}
	}
	return nil, fmt.Errorf("%s is not enumerable", o.Inspect())
}

func str(o object.Object) string {
	if s, ok := o.(*object.String); ok {
		return s.Value
	}
	return object.ToText(o)
}

func toFloat(o object.Object) (float64, bool) {
	switch v := o.(type) {
	case *object.Float:
		return v.Value, true
	case *object.Integer:
		return float64(v.Value), true
	}
	return 0, false
}

func floatFn(f func(float64) float64) object.BuiltinFunction {
	return func(args ...object.Object) (object.Object, error) {
		x, ok := toFloat(args[0])
		if !ok {
			return nil, fmt.Errorf("expected a number, got %s", args[0].Inspect())
		}
		return &object.Float{Value: f(x)}, nil
	}
}

func stringFn(f func(string) string) object.BuiltinFunction {
	return func(args ...object.Object) (object.Object, error) {
		return &object.String{Value: f(str(args[0]))}, nil
	}
}

func stringPred(f func(s, sub string) bool) object.BuiltinFunction {
	return func(args ...object.Object) (object.Object, error) {
		return object.NativeBool(f(str(args[0]), str(args[1]))), nil
	}
}

func indexOf(elems []object.Object, v object.Object) int {
	for i, e := range elems {
		if object.Equals(e, v) {
			return i
		}
	}
	return -1
}

// pick returns the first argument when keep(compare(a, b)) holds, else
// the second.
func pick(keep func(int) bool) object.BuiltinFunction {
	return func(args ...object.Object) (object.Object, error) {
		c, err := compare(args[0], args[1])
		if err != nil {
			return nil, err
		}
		if keep(c) {
			return args[0], nil
		}
		return args[1], nil
	}
}

func compare(a, b object.Object) (int, error) {
	if x, ok := a.(*object.String); ok {
		if y, ok := b.(*object.String); ok {
			return strings.Compare(x.Value, y.Value), nil
		}
	}
	if x, ok := a.(*object.Integer); ok {
		if y, ok := b.(*object.Integer); ok {
			switch {
			case x.Value < y.Value:
				return -1, nil
			case x.Value > y.Value:
				return 1, nil
			}
			return 0, nil
		}
	}
	x, okA := toFloat(a)
	y, okB := toFloat(b)
	if !okA || !okB {
		return 0, fmt.Errorf("cannot compare %s and %s", a.Inspect(), b.Inspect())
	}
	switch {
	case x < y:
		return -1, nil
	case x > y:
		return 1, nil
	}
	return 0, nil
}
