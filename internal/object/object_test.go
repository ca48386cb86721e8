package object

import (
	"strings"
	"testing"
)

func TestInspect(t *testing.T) {
	point := &Instance{TypeName: "Point", FieldNames: []string{"x", "name"}, Fields: []Object{&Integer{Value: 1}, &String{Value: "a"}}}
	tests := []struct {
		obj  Object
		want string
	}{
		{&Integer{Value: -3}, "-3"},
		{&Float{Value: 3}, "3.0"},
		{&Float{Value: 2.5}, "2.5"},
		{&Float{Value: 1e21}, "1e+21"},
		{&String{Value: "hi"}, "hi"},
		{&Char{Value: 'x'}, "x"},
		{TRUE, "true"},
		{UNIT, "()"},
		{&Array{Elements: []Object{&String{Value: "a"}, &Char{Value: 'b'}, &Integer{Value: 1}}}, `["a", 'b', 1]`},
		{point, `Point { x = 1, name = "a" }`},
		{Some(&Integer{Value: 20}), "Some(20)"},
		{NONE, "None"},
		{Err(&String{Value: "bad"}), `Err("bad")`},
	}
	for _, tt := range tests {
		if got := tt.obj.Inspect(); got != tt.want {
			t.Errorf("Inspect() = %q, want %q", got, tt.want)
		}
	}
	if got := ToText(nil); got != "<nil>" {
		t.Errorf("ToText(nil) = %q", got)
	}
}

func TestEquals(t *testing.T) {
	tests := []struct {
		name string
		a, b Object
		want bool
	}{
		{"ints", &Integer{Value: 2}, &Integer{Value: 2}, true},
		{"int and double", &Integer{Value: 2}, &Float{Value: 2}, true},
		{"double and int", &Float{Value: 2.5}, &Integer{Value: 2}, false},
		{"strings", &String{Value: "a"}, &String{Value: "a"}, true},
		{"string and char", &String{Value: "a"}, &Char{Value: 'a'}, false},
		{"units", UNIT, &Unit{}, true},
		{"arrays", &Array{Elements: []Object{&Integer{Value: 1}}}, &Array{Elements: []Object{&Integer{Value: 1}}}, true},
		{"array lengths", &Array{Elements: []Object{&Integer{Value: 1}}}, &Array{}, false},
		{"variants", Some(&Integer{Value: 1}), Some(&Integer{Value: 1}), true},
		{"variant payloads", Some(&Integer{Value: 1}), Some(&Integer{Value: 2}), false},
		{"none", NONE, &Instance{TypeName: "Option", Tag: "None"}, true},
		{"some and none", Some(UNIT), NONE, false},
	}
	for _, tt := range tests {
		if got := Equals(tt.a, tt.b); got != tt.want {
			t.Errorf("%s: Equals = %v, want %v", tt.name, got, tt.want)
		}
	}

	b := &Builtin{Name: "f"}
	if !Equals(b, b) || Equals(b, &Builtin{Name: "f"}) {
		t.Errorf("builtins compare by identity")
	}
}

func TestMatchesTag(t *testing.T) {
	circle := &Instance{TypeName: "Shape", Tag: "Circle", FieldNames: []string{"radius"}, Fields: []Object{&Float{Value: 1}}}
	tests := []struct {
		obj  Object
		tag  string
		want bool
	}{
		{circle, "Shape.Circle", true},
		{circle, "Shape", true},
		{circle, "Shape.Rect", false},
		{circle, "Any", true},
		{&Integer{Value: 1}, "Int", true},
		{&Integer{Value: 1}, "Double", false},
		{&Array{}, "Array", true},
		{&HostValue{TypeName: "System.Text.StringBuilder"}, "System.Text.StringBuilder", true},
	}
	for _, tt := range tests {
		if got := MatchesTag(tt.obj, tt.tag); got != tt.want {
			t.Errorf("MatchesTag(%s, %q) = %v, want %v", tt.obj.Inspect(), tt.tag, got, tt.want)
		}
	}
}

func TestUnwrap(t *testing.T) {
	if v, ok := Unwrap(Some(&Integer{Value: 4})); !ok || v.(*Integer).Value != 4 {
		t.Errorf("Unwrap(Some(4)) = %v, %v", v, ok)
	}
	if v, ok := Unwrap(Ok(&String{Value: "x"})); !ok || v.Inspect() != "x" {
		t.Errorf("Unwrap(Ok(x)) = %v, %v", v, ok)
	}
	if v, ok := Unwrap(NONE); ok || v != NONE {
		t.Errorf("Unwrap(None) = %v, %v", v, ok)
	}
	e := Err(&String{Value: "bad"})
	if v, ok := Unwrap(e); ok || v != e {
		t.Errorf("Unwrap(Err) = %v, %v", v, ok)
	}
}

func TestTruthy(t *testing.T) {
	if !Truthy(TRUE) || Truthy(FALSE) || Truthy(UNIT) || Truthy(nil) {
		t.Errorf("boolean truthiness is wrong")
	}
	if !Truthy(&Integer{Value: 0}) {
		t.Errorf("non-boolean values are truthy")
	}
}

func TestConstruct(t *testing.T) {
	ctor := &Constructor{TypeName: "Shape", Tag: "Rect", FieldNames: []string{"w", "h"}}
	args := []Object{&Integer{Value: 2}, &Integer{Value: 3}}
	inst, err := ctor.Construct(args)
	if err != nil {
		t.Fatal(err)
	}
	args[0] = UNIT
	if inst.Inspect() != "Rect(2, 3)" {
		t.Errorf("instance = %s", inst.Inspect())
	}
	if inst.FieldIndex("h") != 1 || inst.FieldIndex("z") != -1 {
		t.Errorf("FieldIndex is wrong")
	}

	_, err = ctor.Construct(args[:1])
	if err == nil || !strings.Contains(err.Error(), "Rect expects 2 arguments, got 1") {
		t.Errorf("err = %v", err)
	}
}
