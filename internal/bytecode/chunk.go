package bytecode

import (
	"encoding/binary"
	"math"

	"github.com/simon-curtis/jitzu/internal/object"
)

// Chunk is one function's compiled output.
type Chunk struct {
	// Code is the bytecode instructions
	Code []byte

	// Constants pool, deduplicated by value for scalars and by identity
	// for everything else
	Constants []object.Object

	// Lines maps bytecode offset to source line number (for errors)
	Lines []int

	// File is the source file name
	File string

	index map[constKey]int
}

type constKey struct {
	kind  object.ObjectType
	bits  uint64
	text  string
	ident object.Object
}

// NewChunk creates a new empty chunk
func NewChunk() *Chunk {
	return &Chunk{
		Code:      make([]byte, 0, 64),
		Constants: make([]object.Object, 0, 16),
		Lines:     make([]int, 0, 64),
	}
}

// Write adds a byte to the chunk with line info
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// WriteOp writes an opcode to the chunk
func (c *Chunk) WriteOp(op Opcode, line int) {
	c.Write(byte(op), line)
}

// WriteU16 writes a little-endian 16-bit operand.
func (c *Chunk) WriteU16(v int, line int) {
	c.Write(byte(v), line)
	c.Write(byte(v>>8), line)
}

// WriteU32 writes a little-endian 32-bit operand.
func (c *Chunk) WriteU32(v int, line int) {
	for i := 0; i < 4; i++ {
		c.Write(byte(v>>(8*i)), line)
	}
}

// PatchU32 overwrites the 4 bytes at offset with v. Jump patching is the
// only operation that rewrites bytes already emitted.
func (c *Chunk) PatchU32(offset int, v int) {
	binary.LittleEndian.PutUint32(c.Code[offset:offset+4], uint32(v))
}

// ReadU16 reads a little-endian 16-bit operand at offset.
func (c *Chunk) ReadU16(offset int) int {
	return int(binary.LittleEndian.Uint16(c.Code[offset : offset+2]))
}

// ReadU32 reads a little-endian 32-bit operand at offset.
func (c *Chunk) ReadU32(offset int) int {
	return int(binary.LittleEndian.Uint32(c.Code[offset : offset+4]))
}

// AddConstant adds a constant to the pool and returns its index. A value
// already in the pool returns the existing index.
func (c *Chunk) AddConstant(value object.Object) int {
	if c.index == nil {
		c.index = make(map[constKey]int, len(c.Constants))
		for i, k := range c.Constants {
			if _, ok := c.index[keyOf(k)]; !ok {
				c.index[keyOf(k)] = i
			}
		}
	}
	key := keyOf(value)
	if idx, ok := c.index[key]; ok {
		return idx
	}
	c.Constants = append(c.Constants, value)
	idx := len(c.Constants) - 1
	c.index[key] = idx
	return idx
}

func keyOf(value object.Object) constKey {
	switch v := value.(type) {
	case *object.Integer:
		return constKey{kind: v.Type(), bits: uint64(v.Value)}
	case *object.Float:
		return constKey{kind: v.Type(), bits: math.Float64bits(v.Value)}
	case *object.String:
		return constKey{kind: v.Type(), text: v.Value}
	case *object.Boolean:
		if v.Value {
			return constKey{kind: v.Type(), bits: 1}
		}
		return constKey{kind: v.Type()}
	case *object.Char:
		return constKey{kind: v.Type(), bits: uint64(v.Value)}
	case *object.Unit:
		return constKey{kind: v.Type()}
	}
	return constKey{ident: value}
}

// Len returns the number of bytes in the chunk
func (c *Chunk) Len() int {
	return len(c.Code)
}
