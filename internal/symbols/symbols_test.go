package symbols

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/config"
	"github.com/simon-curtis/jitzu/internal/object"
	"github.com/simon-curtis/jitzu/internal/token"
	"github.com/simon-curtis/jitzu/internal/typesystem"
)

type fakeLoader map[string]func() *HostModule

func (f fakeLoader) LoadModule(name string) (*HostModule, error) {
	build, ok := f[name]
	if !ok {
		return nil, fmt.Errorf("unknown module %s", name)
	}
	return build(), nil
}

func geoModule() *HostModule {
	point := NewTypeDef("Geo.Point", HostType)
	list := NewTypeDef("Geo.List", HostType)
	list.TypeParams = []string{"T"}
	list.Bases = []typesystem.Type{typesystem.TApp{
		Constructor: typesystem.TCon{Name: "Geo.Seq"},
		Args:        []typesystem.Type{typesystem.TVar{Name: "T"}},
	}}
	seq := NewTypeDef("Geo.Seq", HostType)
	seq.TypeParams = []string{"T"}
	return &HostModule{Name: "Geo", Types: []*TypeDef{point, list, seq}}
}

func TestBuiltinsOccupyLowestSlots(t *testing.T) {
	p := NewProgram(nil)
	want := append(append([]string(nil), config.BuiltinFuncNames...),
		config.SomeCtorName, config.NoneCtorName, config.OkCtorName, config.ErrCtorName)
	names := p.GlobalNames()
	if len(names) != len(want) {
		t.Fatalf("expected %d builtin globals, got %d: %v", len(want), len(names), names)
	}
	for i, name := range want {
		b, ok := p.Global().Lookup(name)
		if !ok {
			t.Fatalf("builtin %s not bound", name)
		}
		if b.Index != i || b.Scope != ast.ScopeGlobal {
			t.Errorf("%s: expected global slot %d, got %s %d", name, i, b.Scope, b.Index)
		}
	}
	if len(p.PendingInits()) != len(want) {
		t.Errorf("expected every builtin queued for initialization, got %d", len(p.PendingInits()))
	}
}

func TestDeclareGlobalShadows(t *testing.T) {
	p := NewProgram(nil)
	first := p.DeclareGlobal("x", token.Token{})
	second := p.DeclareGlobal("x", token.Token{})
	if second.Index != first.Index+1 {
		t.Errorf("expected consecutive slots, got %d then %d", first.Index, second.Index)
	}
	if b, _ := p.Global().Lookup("x"); b != second {
		t.Errorf("expected the newest binding to win")
	}
}

func TestRollbackKeepsSlotsConsumed(t *testing.T) {
	p := NewProgram(nil)
	p.Begin()
	x := p.DeclareGlobal("x", token.Token{})
	p.Commit()

	p.Begin()
	p.DeclareGlobal("x", token.Token{})
	p.DeclareGlobal("y", token.Token{})
	if err := p.AddType(NewTypeDef("Point", RecordType)); err != nil {
		t.Fatal(err)
	}
	count := p.GlobalCount()
	p.Rollback()

	if b, _ := p.Global().Lookup("x"); b != x {
		t.Errorf("expected x to resolve to the committed binding after rollback")
	}
	if _, ok := p.Global().Lookup("y"); ok {
		t.Errorf("expected y to be unbound after rollback")
	}
	if _, ok := p.LookupType("Point"); ok {
		t.Errorf("expected Point to be removed after rollback")
	}
	if p.GlobalCount() != count {
		t.Errorf("rollback must not release slots: had %d, now %d", count, p.GlobalCount())
	}
	z := p.DeclareGlobal("z", token.Token{})
	if z.Index != count {
		t.Errorf("expected the next slot to be %d, got %d", count, z.Index)
	}
}

func TestRollbackKeepsEarlierInits(t *testing.T) {
	p := NewProgram(nil)
	builtins := len(p.PendingInits())
	p.Begin()
	def := NewTypeDef("Point", RecordType)
	if err := p.AddType(def); err != nil {
		t.Fatal(err)
	}
	p.TypeBinding(def, token.Token{})
	p.Rollback()
	if len(p.PendingInits()) != builtins {
		t.Errorf("expected %d pending inits after rollback, got %d", builtins, len(p.PendingInits()))
	}
	if def.Binding != nil {
		t.Errorf("expected the type binding to be cleared")
	}
}

func TestTypeBindingDeduplicated(t *testing.T) {
	p := NewProgram(nil)
	def, _ := p.LookupType(config.IntTypeName)
	a := p.TypeBinding(def, token.Token{})
	b := p.TypeBinding(def, token.Token{})
	if a != b {
		t.Fatalf("expected one synthetic binding per type")
	}
	if !a.Hidden || a.TypeValue == nil {
		t.Errorf("expected a hidden type-value binding")
	}
	v, err := InitValue(a)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := v.(*object.TypeObject); !ok {
		t.Errorf("expected a type object, got %T", v)
	}
}

func TestAmbiguousSimpleName(t *testing.T) {
	p := NewProgram(fakeLoader{"Geo": geoModule})
	if err := p.UseModule("Geo"); err != nil {
		t.Fatal(err)
	}
	if err := p.AddType(NewTypeDef("Point", RecordType)); err != nil {
		t.Fatal(err)
	}
	_, found, err := p.ResolveTypeName("Point")
	var amb *AmbiguousTypeError
	if !found || !errors.As(err, &amb) {
		t.Fatalf("expected an ambiguity error, got %v", err)
	}
	if len(amb.Candidates) != 2 || amb.Candidates[0] != "Geo.Point" || amb.Candidates[1] != "Point" {
		t.Errorf("unexpected candidates %v", amb.Candidates)
	}
	def, found, err := p.ResolveTypeName("Geo.Point")
	if err != nil || !found || def.Module != "Geo" {
		t.Errorf("expected the qualified name to resolve, got %v %v", def, err)
	}
}

func TestBasesSubstituteArguments(t *testing.T) {
	p := NewProgram(fakeLoader{"Geo": geoModule})
	if err := p.UseModule("Geo"); err != nil {
		t.Fatal(err)
	}
	list, _ := p.LookupType("Geo.List")
	listOfInt := typesystem.TApp{Constructor: list.Con(), Args: []typesystem.Type{typesystem.Int}}
	bases := p.Bases(listOfInt)
	if len(bases) != 1 || bases[0].String() != "Geo.Seq<Int>" {
		t.Fatalf("expected [Geo.Seq<Int>], got %v", bases)
	}
	seqOfInt := typesystem.TApp{Constructor: typesystem.TCon{Name: "Geo.Seq"}, Args: []typesystem.Type{typesystem.Int}}
	if !typesystem.Assignable(seqOfInt, listOfInt, p.Bases) {
		t.Errorf("expected Geo.List<Int> to be assignable to Geo.Seq<Int>")
	}
}

func TestUseUnknownModule(t *testing.T) {
	p := NewProgram(fakeLoader{})
	if err := p.UseModule("Nope"); err == nil {
		t.Fatal("expected an error")
	}
}

func TestPrintBuiltin(t *testing.T) {
	p := NewProgram(nil)
	var out bytes.Buffer
	p.SetOutput(&out)
	b, ok := p.LinkBuiltin(config.PrintFuncName)
	if !ok {
		t.Fatal("print not linkable")
	}
	if _, err := b.Fn(&object.Integer{Value: 2}, &object.String{Value: "x"}); err != nil {
		t.Fatal(err)
	}
	if out.String() != "2 x\n" {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestScopeLookupNearestWins(t *testing.T) {
	outer := NewScope(nil, ScopeGlobal)
	fn := NewScope(outer, ScopeFunction)
	block := NewScope(fn, ScopeBlock)
	a := &ast.Binding{Name: "x"}
	b := &ast.Binding{Name: "x"}
	outer.Define("x", a)
	block.Define("x", b)
	if got, _ := block.Lookup("x"); got != b {
		t.Errorf("expected the block binding")
	}
	if got, _ := fn.Lookup("x"); got != a {
		t.Errorf("expected the outer binding from the function scope")
	}
	if block.Depth != 1 || outer.Depth != 0 {
		t.Errorf("unexpected depths %d %d", outer.Depth, block.Depth)
	}
}
