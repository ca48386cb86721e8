package bytecode

import (
	"fmt"
	"strings"

	"github.com/simon-curtis/jitzu/internal/object"
)

// Instruction is one decoded instruction.
type Instruction struct {
	Offset   int
	Op       Opcode
	Operands []int
	Captures []Capture // OP_CLOSURE only
}

// Capture describes one free variable of a closure: either a cell held in
// the enclosing frame's local slot, or one of the enclosing closure's own
// free variables.
type Capture struct {
	IsLocal bool
	Index   int
}

// Decode splits a chunk's code into instructions.
func Decode(chunk *Chunk) []Instruction {
	var out []Instruction
	offset := 0
	for offset < len(chunk.Code) {
		ins := decodeAt(chunk, offset)
		out = append(out, ins)
		offset += InstructionLen(chunk.Code, offset)
	}
	return out
}

func decodeAt(chunk *Chunk, offset int) Instruction {
	op := Opcode(chunk.Code[offset])
	ins := Instruction{Offset: offset, Op: op}
	pos := offset + 1
	for _, w := range OperandWidths[op] {
		switch w {
		case 1:
			ins.Operands = append(ins.Operands, int(chunk.Code[pos]))
		case 2:
			ins.Operands = append(ins.Operands, chunk.ReadU16(pos))
		case 4:
			ins.Operands = append(ins.Operands, chunk.ReadU32(pos))
		}
		pos += w
	}
	if op == OP_CLOSURE {
		for i := 0; i < ins.Operands[1]; i++ {
			ins.Captures = append(ins.Captures, Capture{
				IsLocal: chunk.Code[pos] == 1,
				Index:   chunk.ReadU16(pos + 1),
			})
			pos += closureCaptureWidth
		}
	}
	return ins
}

// Disassemble returns a human-readable representation of the bytecode
func Disassemble(chunk *Chunk, name string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("== %s ==\n", name))

	prevLine := -1
	for _, ins := range Decode(chunk) {
		sb.WriteString(fmt.Sprintf("%04d ", ins.Offset))
		if line := chunk.Lines[ins.Offset]; line == prevLine {
			sb.WriteString("   | ")
		} else {
			sb.WriteString(fmt.Sprintf("%4d ", line))
			prevLine = line
		}
		sb.WriteString(fmt.Sprintf("%-16s", ins.Op))
		for _, o := range ins.Operands {
			sb.WriteString(fmt.Sprintf(" %d", o))
		}
		switch ins.Op {
		case OP_CONST, OP_GET_FIELD, OP_SET_FIELD, OP_NEW, OP_CHECK_TYPE, OP_CLOSURE:
			sb.WriteString(" '" + constantText(chunk, ins.Operands[0]) + "'")
		}
		for _, c := range ins.Captures {
			kind := "free"
			if c.IsLocal {
				kind = "local"
			}
			sb.WriteString(fmt.Sprintf(" %s:%d", kind, c.Index))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// DisassembleAll renders a chunk followed by every function reachable
// through its constant pool, each once.
func DisassembleAll(chunk *Chunk, name string) string {
	var sb strings.Builder
	seen := make(map[*Function]bool)
	var walk func(c *Chunk, n string)
	walk = func(c *Chunk, n string) {
		sb.WriteString(Disassemble(c, n))
		for _, k := range c.Constants {
			fn, ok := k.(*Function)
			if !ok || seen[fn] || fn.Chunk == nil {
				continue
			}
			seen[fn] = true
			walk(fn.Chunk, fn.Name)
		}
	}
	walk(chunk, name)
	return sb.String()
}

func constantText(chunk *Chunk, idx int) string {
	if idx >= len(chunk.Constants) {
		return "?"
	}
	c := chunk.Constants[idx]
	if s, ok := c.(*object.String); ok {
		return s.Value
	}
	return c.Inspect()
}
