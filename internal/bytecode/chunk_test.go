package bytecode

import (
	"strings"
	"testing"

	"github.com/simon-curtis/jitzu/internal/object"
)

func TestAddConstantDeduplicates(t *testing.T) {
	c := NewChunk()
	a := c.AddConstant(&object.Integer{Value: 42})
	b := c.AddConstant(&object.Integer{Value: 42})
	s := c.AddConstant(&object.String{Value: "42"})
	f := c.AddConstant(&object.Float{Value: 42})
	if a != b {
		t.Errorf("equal integers got indices %d and %d", a, b)
	}
	if s == a || f == a || f == s {
		t.Errorf("distinct kinds share a slot: int=%d string=%d float=%d", a, s, f)
	}
	if len(c.Constants) != 3 {
		t.Errorf("pool size = %d, want 3", len(c.Constants))
	}
}

func TestAddConstantIdentityForReferences(t *testing.T) {
	c := NewChunk()
	fn1 := &Function{Name: "f"}
	fn2 := &Function{Name: "f"}
	i1 := c.AddConstant(fn1)
	i2 := c.AddConstant(fn2)
	i3 := c.AddConstant(fn1)
	if i1 == i2 {
		t.Error("distinct functions must not share a constant")
	}
	if i1 != i3 {
		t.Error("the same function must reuse its constant")
	}
}

func TestAddConstantAfterDecode(t *testing.T) {
	// A chunk built without NewChunk (as after deserialization) rebuilds
	// its index on first use.
	c := &Chunk{Constants: []object.Object{&object.String{Value: "x"}}}
	if idx := c.AddConstant(&object.String{Value: "x"}); idx != 0 {
		t.Errorf("index = %d, want 0", idx)
	}
}

func TestPatchU32(t *testing.T) {
	c := NewChunk()
	c.WriteOp(OP_JUMP, 1)
	c.WriteU32(0xFFFFFFFF, 1)
	c.PatchU32(1, 0x01020304)
	want := []byte{byte(OP_JUMP), 0x04, 0x03, 0x02, 0x01}
	for i, b := range want {
		if c.Code[i] != b {
			t.Fatalf("byte %d = %#x, want %#x", i, c.Code[i], b)
		}
	}
	if got := c.ReadU32(1); got != 0x01020304 {
		t.Errorf("ReadU32 = %#x", got)
	}
}

func TestDecodeClosure(t *testing.T) {
	c := NewChunk()
	idx := c.AddConstant(&Function{Name: "inner"})
	c.WriteOp(OP_CLOSURE, 1)
	c.WriteU16(idx, 1)
	c.Write(2, 1)
	c.Write(1, 1)
	c.WriteU16(3, 1)
	c.Write(0, 1)
	c.WriteU16(0, 1)
	c.WriteOp(OP_RETURN, 1)

	ins := Decode(c)
	if len(ins) != 2 {
		t.Fatalf("decoded %d instructions, want 2", len(ins))
	}
	caps := ins[0].Captures
	if len(caps) != 2 || !caps[0].IsLocal || caps[0].Index != 3 || caps[1].IsLocal {
		t.Errorf("captures = %+v", caps)
	}
	if ins[1].Offset != 1+2+1+6 {
		t.Errorf("RETURN offset = %d", ins[1].Offset)
	}
}

func TestDisassemble(t *testing.T) {
	c := NewChunk()
	c.WriteOp(OP_CONST, 1)
	c.WriteU16(c.AddConstant(&object.Integer{Value: 7}), 1)
	c.WriteOp(OP_SET_GLOBAL, 1)
	c.WriteU16(5, 1)
	c.WriteOp(OP_UNIT, 2)
	c.WriteOp(OP_RETURN, 2)

	out := Disassemble(c, "<script>")
	for _, want := range []string{"== <script> ==", "CONST", "'7'", "SET_GLOBAL", "RETURN"} {
		if !strings.Contains(out, want) {
			t.Errorf("disassembly missing %q:\n%s", want, out)
		}
	}
}
