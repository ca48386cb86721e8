package bytecode

import (
	"testing"

	"github.com/simon-curtis/jitzu/internal/object"
)

func TestBundleRoundTrip(t *testing.T) {
	printer := &object.Builtin{Name: "print"}

	inner := &Function{Name: "inner", Arity: 1, LocalCount: 1, Chunk: NewChunk()}
	inner.Chunk.WriteOp(OP_GET_LOCAL, 1)
	inner.Chunk.WriteU16(0, 1)
	inner.Chunk.WriteOp(OP_RETURN, 1)

	script := &Function{Name: "<script>", Chunk: NewChunk()}
	c := script.Chunk
	c.AddConstant(&object.Integer{Value: 3})
	c.AddConstant(&object.Float{Value: 1.5})
	c.AddConstant(&object.String{Value: "hi"})
	c.AddConstant(object.TRUE)
	c.AddConstant(&object.Char{Value: 'z'})
	c.AddConstant(inner)
	c.AddConstant(printer)
	c.AddConstant(&object.Constructor{TypeName: "Shape", Tag: "Circle", FieldNames: []string{"radius"}})
	c.AddConstant(object.NONE)
	c.WriteOp(OP_UNIT, 1)
	c.WriteOp(OP_RETURN, 1)

	b, err := NewBundle(script, []string{"print"}, "main.jz")
	if err != nil {
		t.Fatalf("NewBundle: %v", err)
	}
	if b.ID == "" {
		t.Error("bundle has no build ID")
	}
	data, err := b.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	decoded, err := UnmarshalBundle(data)
	if err != nil {
		t.Fatalf("UnmarshalBundle: %v", err)
	}
	if decoded.ID != b.ID || decoded.SourceFile != "main.jz" {
		t.Errorf("header mismatch: %+v", decoded)
	}

	linked, err := decoded.Link(func(name string) (*object.Builtin, bool) {
		if name == "print" {
			return printer, true
		}
		return nil, false
	})
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if len(linked.Chunk.Constants) != len(c.Constants) {
		t.Fatalf("constants = %d, want %d", len(linked.Chunk.Constants), len(c.Constants))
	}
	for i, want := range c.Constants {
		got := linked.Chunk.Constants[i]
		if got.Type() != want.Type() || got.Inspect() != want.Inspect() {
			t.Errorf("constant %d = %s, want %s", i, got.Inspect(), want.Inspect())
		}
	}
	fn := linked.Chunk.Constants[5].(*Function)
	if fn.Arity != 1 || fn.LocalCount != 1 || string(fn.Chunk.Code) != string(inner.Chunk.Code) {
		t.Errorf("nested function not restored: %+v", fn)
	}
	if linked.Chunk.Constants[6] != printer {
		t.Error("builtin was not re-linked")
	}
}

func TestBundleRejectsGarbage(t *testing.T) {
	if _, err := UnmarshalBundle([]byte("nope")); err == nil {
		t.Error("expected error for data without magic")
	}
}

func TestBundleUnknownBuiltin(t *testing.T) {
	script := &Function{Name: "<script>", Chunk: NewChunk()}
	script.Chunk.AddConstant(&object.Builtin{Name: "missing"})
	script.Chunk.WriteOp(OP_UNIT, 1)
	script.Chunk.WriteOp(OP_RETURN, 1)
	b, err := NewBundle(script, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Link(nil); err == nil {
		t.Error("expected link failure for unknown builtin")
	}
}
