package host

import (
	"bytes"
	"strings"
	"testing"

	"github.com/simon-curtis/jitzu/internal/object"
	"github.com/simon-curtis/jitzu/internal/symbols"
	"github.com/simon-curtis/jitzu/internal/typesystem"
)

func call(t *testing.T, r *Registry, key string, args ...object.Object) object.Object {
	t.Helper()
	b, ok := r.Lookup(key)
	if !ok {
		t.Fatalf("no implementation key %s", key)
	}
	res, err := b.Fn(args...)
	if err != nil {
		t.Fatalf("%s: %v", key, err)
	}
	return res
}

func TestStandardModules(t *testing.T) {
	r := NewStandardRegistry()
	want := []string{"System", "System.Collections", "System.Linq", "System.Text"}
	if got := r.Modules(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Modules() = %v, want %v", got, want)
	}
}

func TestLoadModuleIntoProgram(t *testing.T) {
	p := symbols.NewProgram(NewStandardRegistry())
	for _, name := range []string{"System", "System.Collections", "System.Linq"} {
		if err := p.UseModule(name); err != nil {
			t.Fatalf("UseModule(%s): %v", name, err)
		}
	}

	math, ok := p.LookupType("System.Math")
	if !ok {
		t.Fatal("System.Math not registered")
	}
	if !math.Static {
		t.Error("System.Math should be static")
	}
	if n := len(math.FindHostMethods("ABS")); n != 2 {
		t.Errorf("Abs overloads = %d, want 2", n)
	}

	str, _ := p.LookupType("String")
	if n := len(str.FindHostMethods("toupper")); n != 1 {
		t.Errorf("String.ToUpper methods = %d, want 1", n)
	}

	arr, _ := p.LookupType("Array")
	push := arr.FindHostMethods("Push")
	if len(push) != 1 {
		t.Fatalf("Array.Push methods = %d, want 1", len(push))
	}
	wantRecv := typesystem.ArrayOf(typesystem.TVar{Name: "T"})
	if !typesystem.Equal(push[0].Receiver, wantRecv) {
		t.Errorf("Push receiver = %s, want %s", push[0].Receiver, wantRecv)
	}

	list, ok := p.LookupType("System.Collections.List")
	if !ok {
		t.Fatal("List not registered")
	}
	if list.Module != "System.Collections" {
		t.Errorf("module = %q, want System.Collections", list.Module)
	}
	bases := p.Bases(typesystem.TApp{Constructor: list.Con(), Args: []typesystem.Type{typesystem.Int}})
	if len(bases) != 1 || bases[0].String() != "System.Collections.IEnumerable<Int>" {
		t.Errorf("bases = %v, want [System.Collections.IEnumerable<Int>]", bases)
	}
	if n := len(list.FindHostMethods("count")); n != 0 {
		t.Errorf("List should not declare Count, found %d", n)
	}
	if n := len(p.Extensions("count")); n != 1 {
		t.Errorf("Count extensions = %d, want 1", n)
	}
}

func TestLoadModuleUnknown(t *testing.T) {
	if _, err := NewStandardRegistry().LoadModule("System.Nope"); err == nil {
		t.Fatal("expected error for unknown module")
	}
}

func TestLoadModuleFreshDefinitions(t *testing.T) {
	r := NewStandardRegistry()
	a, err := r.LoadModule("System")
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.LoadModule("System")
	if err != nil {
		t.Fatal(err)
	}
	if a.Types[0] == b.Types[0] {
		t.Error("each load should produce new type definitions")
	}
}

func TestGenericSignatures(t *testing.T) {
	mod, err := NewStandardRegistry().LoadModule("System.Collections")
	if err != nil {
		t.Fatal(err)
	}
	var list *symbols.TypeDef
	for _, def := range mod.Types {
		if def.FullName == "System.Collections.List" {
			list = def
		}
	}
	if list == nil {
		t.Fatal("List not in module")
	}
	of := list.FindHostMethods("of")[0]
	if of.Receiver != nil {
		t.Error("static Of should have no receiver")
	}
	if got := of.Signature().String(); !strings.Contains(got, "E[]") || !strings.Contains(got, "System.Collections.List<E>") {
		t.Errorf("Of signature = %s", got)
	}
	get := list.FindHostMethods("get")[0]
	if len(get.TypeParams) != 1 || get.TypeParams[0] != "T" {
		t.Errorf("Get type params = %v, want [T]", get.TypeParams)
	}
}

func TestLookupStub(t *testing.T) {
	r := NewRegistry()
	m, err := ParseManifest([]byte(`
modules:
  - name: Ext
    types:
      - name: Ext.Clock
        static: true
        methods:
          - { name: Now, static: true, returns: Int, impl: ext.now }
`), "ext.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if err := r.AddManifest(m); err != nil {
		t.Fatal(err)
	}
	if err := r.AddManifest(m); err == nil {
		t.Error("expected duplicate module error")
	}
	b, ok := r.Lookup("ext.now")
	if !ok {
		t.Fatal("declared key should resolve to a stub")
	}
	if _, err := b.Fn(); err == nil || !strings.Contains(err.Error(), "no implementation") {
		t.Errorf("stub error = %v", err)
	}
	if _, ok := r.Lookup("ext.later"); ok {
		t.Error("undeclared key should not resolve")
	}
}

func TestLibraryMath(t *testing.T) {
	r := NewStandardRegistry()
	tests := []struct {
		key  string
		args []object.Object
		want string
	}{
		{"System.Math.Abs(Int)", []object.Object{&object.Integer{Value: -3}}, "3"},
		{"System.Math.Abs(Double)", []object.Object{&object.Float{Value: -1.5}}, "1.5"},
		{"System.Math.Max(Int,Int)", []object.Object{&object.Integer{Value: 2}, &object.Integer{Value: 7}}, "7"},
		{"System.Math.Max(T,T)", []object.Object{&object.String{Value: "a"}, &object.String{Value: "b"}}, "b"},
		{"System.Math.Min(T,T)", []object.Object{&object.Float{Value: 2.5}, &object.Float{Value: 1.25}}, "1.25"},
		{"System.Math.Sqrt(Double)", []object.Object{&object.Float{Value: 16}}, "4"},
		{"System.Math.Pow(Double,Double)", []object.Object{&object.Float{Value: 2}, &object.Float{Value: 10}}, "1024"},
		{"System.Math.Floor(Double)", []object.Object{&object.Float{Value: 2.7}}, "2"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := call(t, r, tt.key, tt.args...)
			if s := object.ToText(got); !strings.HasPrefix(s, tt.want) {
				t.Errorf("%s = %s, want %s", tt.key, s, tt.want)
			}
		})
	}
}

func TestLibraryStrings(t *testing.T) {
	r := NewStandardRegistry()
	s := &object.String{Value: "  Hello World  "}
	if got := call(t, r, "String.Trim()", s).(*object.String).Value; got != "Hello World" {
		t.Errorf("Trim = %q", got)
	}
	if got := call(t, r, "String.ToUpper()", &object.String{Value: "abc"}).(*object.String).Value; got != "ABC" {
		t.Errorf("ToUpper = %q", got)
	}
	if got := call(t, r, "String.Contains(String)", s, &object.String{Value: "World"}); got != object.TRUE {
		t.Errorf("Contains = %v", got.Inspect())
	}
	parts := call(t, r, "String.Split(String)", &object.String{Value: "a,b,c"}, &object.String{Value: ","}).(*object.Array)
	if len(parts.Elements) != 3 || !typesystem.Equal(parts.ElemType, typesystem.String) {
		t.Errorf("Split = %s", parts.Inspect())
	}
	if got := call(t, r, "String.Length()", &object.String{Value: "héllo"}).(*object.Integer).Value; got != 5 {
		t.Errorf("Length = %d, want 5", got)
	}
}

func TestLibraryArrays(t *testing.T) {
	r := NewStandardRegistry()
	arr := &object.Array{Elements: []object.Object{&object.Integer{Value: 1}}, ElemType: typesystem.Int}
	call(t, r, "Array.Push(T)", arr, &object.Integer{Value: 5})
	if n := call(t, r, "Array.Count()", arr).(*object.Integer).Value; n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
	if i := call(t, r, "Array.IndexOf(T)", arr, &object.Integer{Value: 5}).(*object.Integer).Value; i != 1 {
		t.Errorf("IndexOf = %d, want 1", i)
	}
	if got := call(t, r, "Array.Contains(T)", arr, &object.Integer{Value: 9}); got != object.FALSE {
		t.Errorf("Contains(9) = %s, want false", got.Inspect())
	}
}

func TestLibraryCollections(t *testing.T) {
	r := NewStandardRegistry()
	arr := &object.Array{Elements: []object.Object{&object.Integer{Value: 4}, &object.Integer{Value: 8}}, ElemType: typesystem.Int}
	list := call(t, r, "System.Collections.List.Of(E[])", arr)
	if got := list.RuntimeType().String(); got != "System.Collections.List<Int>" {
		t.Errorf("runtime type = %s", got)
	}
	call(t, r, "System.Collections.List.Add(T)", list, &object.Integer{Value: 15})
	if n := call(t, r, "System.Linq.Enumerable.Count", list).(*object.Integer).Value; n != 3 {
		t.Errorf("Count = %d, want 3", n)
	}
	if got := call(t, r, "System.Linq.Enumerable.First", list).Inspect(); got != "4" {
		t.Errorf("First = %s, want 4", got)
	}
	if got := call(t, r, "System.Collections.List.Get(Int)", list, &object.Integer{Value: 2}).Inspect(); got != "15" {
		t.Errorf("Get(2) = %s, want 15", got)
	}
	b, _ := r.Lookup("System.Collections.List.Get(Int)")
	if _, err := b.Fn(list, &object.Integer{Value: 3}); err == nil {
		t.Error("expected out of range error")
	}
	if len(arr.Elements) != 2 {
		t.Error("List.Of must copy the array")
	}
}

func TestLibraryConsoleAndText(t *testing.T) {
	r := NewStandardRegistry()
	var buf bytes.Buffer
	r.SetOutput(&buf)
	sb := call(t, r, "System.Text.StringBuilder.New()")
	call(t, r, "System.Text.StringBuilder.Append(Any)", sb, &object.String{Value: "n="})
	call(t, r, "System.Text.StringBuilder.Append(Any)", sb, &object.Integer{Value: 3})
	text := call(t, r, "System.Text.StringBuilder.Build()", sb)
	call(t, r, "System.Console.WriteLine(Any)", text)
	if got := buf.String(); got != "n=3\n" {
		t.Errorf("output = %q, want %q", got, "n=3\n")
	}
}
