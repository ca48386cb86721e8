package vm

import (
	"context"
	"errors"
	"fmt"

	"github.com/simon-curtis/jitzu/internal/bytecode"
	"github.com/simon-curtis/jitzu/internal/diagnostics"
	"github.com/simon-curtis/jitzu/internal/object"
	"github.com/simon-curtis/jitzu/internal/token"
)

const (
	InitialStackSize  = 256
	InitialFrameCount = 64
	MaxFrameCount     = 10000
)

var (
	errStackUnderflow    = errors.New("stack underflow")
	errTruncatedBytecode = errors.New("truncated bytecode")
)

// CallFrame represents a single function call
type CallFrame struct {
	fn     *bytecode.Function
	chunk  *bytecode.Chunk
	free   []*object.Cell // captured cells of the running closure
	locals []object.Object
	ip     int
	base   int // stack height when the frame was entered
}

// VM executes compiled scripts. Its globals persist across Run calls, so
// scripts compiled one after another against the same program see each
// other's globals.
type VM struct {
	stack  []object.Object
	frames []CallFrame
	frame  *CallFrame

	globals []object.Object

	// Context for cancellation, checked on backward jumps
	Context context.Context
}

// New creates a new VM instance
func New() *VM {
	return &VM{
		stack:   make([]object.Object, 0, InitialStackSize),
		frames:  make([]CallFrame, 0, InitialFrameCount),
		Context: context.Background(),
	}
}

// Global returns the value held in a global slot.
func (vm *VM) Global(index int) (object.Object, bool) {
	if index < 0 || index >= len(vm.globals) || vm.globals[index] == nil {
		return nil, false
	}
	return vm.globals[index], true
}

// Run executes a script function and returns the value it returns.
func (vm *VM) Run(script *bytecode.Function) (result object.Object, err error) {
	vm.stack = vm.stack[:0]
	vm.frames = vm.frames[:0]
	vm.frame = nil
	if err := vm.pushFrame(script, nil, nil); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(error)
			if !ok {
				e = fmt.Errorf("%v", r)
			}
			err = vm.runtimeError("%v", e)
			result = nil
		}
	}()
	return vm.run()
}

func (vm *VM) run() (object.Object, error) {
	for {
		op := bytecode.Opcode(vm.readByte())
		done, err := vm.executeOneOp(op)
		if err != nil {
			return nil, err
		}
		if done {
			return vm.pop(), nil
		}
	}
}

// Stack operations
func (vm *VM) push(obj object.Object) {
	vm.stack = append(vm.stack, obj)
}

func (vm *VM) pop() object.Object {
	n := len(vm.stack)
	if n == 0 {
		panic(errStackUnderflow)
	}
	obj := vm.stack[n-1]
	vm.stack[n-1] = nil
	vm.stack = vm.stack[:n-1]
	return obj
}

func (vm *VM) peek(distance int) object.Object {
	idx := len(vm.stack) - 1 - distance
	if idx < 0 {
		panic(errStackUnderflow)
	}
	return vm.stack[idx]
}

// Read helpers
func (vm *VM) readByte() byte {
	if vm.frame.ip >= len(vm.frame.chunk.Code) {
		panic(errTruncatedBytecode)
	}
	b := vm.frame.chunk.Code[vm.frame.ip]
	vm.frame.ip++
	return b
}

func (vm *VM) readU16() int {
	if vm.frame.ip+2 > len(vm.frame.chunk.Code) {
		panic(errTruncatedBytecode)
	}
	v := vm.frame.chunk.ReadU16(vm.frame.ip)
	vm.frame.ip += 2
	return v
}

func (vm *VM) readU32() int {
	if vm.frame.ip+4 > len(vm.frame.chunk.Code) {
		panic(errTruncatedBytecode)
	}
	v := vm.frame.chunk.ReadU32(vm.frame.ip)
	vm.frame.ip += 4
	return v
}

func (vm *VM) readConstant() object.Object {
	return vm.frame.chunk.Constants[vm.readU16()]
}

func (vm *VM) readName() string {
	if s, ok := vm.readConstant().(*object.String); ok {
		return s.Value
	}
	panic(errors.New("name operand is not a string constant"))
}

// runtimeError reports a failure at the instruction being executed.
func (vm *VM) runtimeError(format string, args ...interface{}) *diagnostics.DiagnosticError {
	tok := token.Token{}
	name := ""
	if f := vm.frame; f != nil {
		tok.File = f.chunk.File
		if ip := f.ip - 1; ip >= 0 && ip < len(f.chunk.Lines) {
			tok.Line = f.chunk.Lines[ip]
		}
		name = f.fn.Name
	}
	msg := fmt.Sprintf(format, args...)
	if name != "" && name != ScriptName {
		msg = fmt.Sprintf("in %s: %s", name, msg)
	}
	return diagnostics.NewError(diagnostics.ErrR001, tok, msg)
}
