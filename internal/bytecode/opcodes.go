// Package bytecode defines the instruction set, chunks and function objects
// produced by the emitter and consumed by the executor.
package bytecode

// Opcode represents a single VM instruction
type Opcode byte

const (
	// Stack manipulation
	OP_CONST     Opcode = iota // Push constant from pool
	OP_POP                     // Discard top of stack
	OP_POP_BELOW               // Discard the item below the top: [..., a, b] -> [..., b]
	OP_DUP                     // Duplicate top of stack
	OP_UNIT                    // Push the unit value

	// Arithmetic
	OP_ADD // +
	OP_SUB // -
	OP_MUL // *
	OP_DIV // /
	OP_MOD // %
	OP_NEG // Unary minus

	// Comparison
	OP_EQ // ==
	OP_NE // !=
	OP_LT // <
	OP_LE // <=
	OP_GT // >
	OP_GE // >=

	OP_BOR // |
	OP_NOT // !

	// Variables
	OP_GET_LOCAL  // Get local slot
	OP_SET_LOCAL  // Pop into local slot
	OP_GET_GLOBAL // Get global slot
	OP_SET_GLOBAL // Pop into global slot

	// Captured locals
	OP_MAKE_CELL   // Pop value, store a fresh cell holding it in a local slot
	OP_GET_CELL    // Push the value of the cell in a local slot
	OP_SET_CELL    // Pop into the cell in a local slot
	OP_GET_UPVALUE // Push the value of a captured cell
	OP_SET_UPVALUE // Pop into a captured cell
	OP_CLOSURE     // Build a closure over a function constant

	// Control flow
	OP_JUMP          // Unconditional jump to absolute offset
	OP_JUMP_IF_FALSE // Pop condition, jump to absolute offset if false
	OP_LOOP          // Jump backward to absolute offset

	// Functions
	OP_CALL   // Call callable below the arguments
	OP_RETURN // Return top of stack to the caller

	// Data
	OP_GET_FIELD        // Replace object with named field
	OP_SET_FIELD        // [obj, v] -> [v], storing v in the named field
	OP_NEW              // Build a record from the top N values in field order
	OP_MAKE_ARRAY       // Build an array from the top N values
	OP_GET_INDEX        // [arr, i] -> Option of the element
	OP_GET_ELEM         // [arr, i] -> element, unchecked
	OP_LEN              // [arr] -> length
	OP_CHECK_TYPE       // Pop value, push whether it matches a runtime tag
	OP_TO_STRING        // Replace top of stack with its text form
	OP_UNWRAP_OR_RETURN // Unwrap Some/Ok, or return None/Err from the frame
)

// OpcodeNames maps opcodes to their mnemonic names for debugging
var OpcodeNames = map[Opcode]string{
	OP_CONST:     "CONST",
	OP_POP:       "POP",
	OP_POP_BELOW: "POP_BELOW",
	OP_DUP:       "DUP",
	OP_UNIT:      "UNIT",

	OP_ADD: "ADD",
	OP_SUB: "SUB",
	OP_MUL: "MUL",
	OP_DIV: "DIV",
	OP_MOD: "MOD",
	OP_NEG: "NEG",

	OP_EQ: "EQ",
	OP_NE: "NE",
	OP_LT: "LT",
	OP_LE: "LE",
	OP_GT: "GT",
	OP_GE: "GE",

	OP_BOR: "BOR",
	OP_NOT: "NOT",

	OP_GET_LOCAL:  "GET_LOCAL",
	OP_SET_LOCAL:  "SET_LOCAL",
	OP_GET_GLOBAL: "GET_GLOBAL",
	OP_SET_GLOBAL: "SET_GLOBAL",

	OP_MAKE_CELL:   "MAKE_CELL",
	OP_GET_CELL:    "GET_CELL",
	OP_SET_CELL:    "SET_CELL",
	OP_GET_UPVALUE: "GET_UPVALUE",
	OP_SET_UPVALUE: "SET_UPVALUE",
	OP_CLOSURE:     "CLOSURE",

	OP_JUMP:          "JUMP",
	OP_JUMP_IF_FALSE: "JUMP_IF_FALSE",
	OP_LOOP:          "LOOP",

	OP_CALL:   "CALL",
	OP_RETURN: "RETURN",

	OP_GET_FIELD:        "GET_FIELD",
	OP_SET_FIELD:        "SET_FIELD",
	OP_NEW:              "NEW",
	OP_MAKE_ARRAY:       "MAKE_ARRAY",
	OP_GET_INDEX:        "GET_INDEX",
	OP_GET_ELEM:         "GET_ELEM",
	OP_LEN:              "LEN",
	OP_CHECK_TYPE:       "CHECK_TYPE",
	OP_TO_STRING:        "TO_STRING",
	OP_UNWRAP_OR_RETURN: "UNWRAP_OR_RETURN",
}

func (op Opcode) String() string {
	if name, ok := OpcodeNames[op]; ok {
		return name
	}
	return "UNKNOWN"
}

// OperandWidths lists the byte width of each fixed operand. OP_CLOSURE has
// a variable tail (one 3-byte descriptor per capture) after its fixed
// operands; InstructionLen accounts for it.
var OperandWidths = map[Opcode][]int{
	OP_CONST:         {2},
	OP_GET_LOCAL:     {2},
	OP_SET_LOCAL:     {2},
	OP_GET_GLOBAL:    {2},
	OP_SET_GLOBAL:    {2},
	OP_MAKE_CELL:     {2},
	OP_GET_CELL:      {2},
	OP_SET_CELL:      {2},
	OP_GET_UPVALUE:   {2},
	OP_SET_UPVALUE:   {2},
	OP_CLOSURE:       {2, 1},
	OP_JUMP:          {4},
	OP_JUMP_IF_FALSE: {4},
	OP_LOOP:          {4},
	OP_CALL:          {1},
	OP_GET_FIELD:     {2},
	OP_SET_FIELD:     {2},
	OP_NEW:           {2, 1},
	OP_MAKE_ARRAY:    {2},
	OP_CHECK_TYPE:    {2},
}

// closureCaptureWidth is the size of one capture descriptor: isLocal u8 + index u16.
const closureCaptureWidth = 3

// InstructionLen returns the total length in bytes of the instruction at offset.
func InstructionLen(code []byte, offset int) int {
	op := Opcode(code[offset])
	n := 1
	for _, w := range OperandWidths[op] {
		n += w
	}
	if op == OP_CLOSURE {
		n += int(code[offset+3]) * closureCaptureWidth
	}
	return n
}
