package vm

import (
	"github.com/simon-curtis/jitzu/internal/bytecode"
	"github.com/simon-curtis/jitzu/internal/object"
)

// callValue calls the callee on top of the stack with the argCount values
// below it.
func (vm *VM) callValue(argCount int) error {
	callee := vm.pop()
	if argCount > len(vm.stack) {
		panic(errStackUnderflow)
	}

	switch fn := callee.(type) {
	case *bytecode.Function:
		return vm.callFunction(fn, nil, argCount)

	case *bytecode.Closure:
		return vm.callFunction(fn.Fn, fn.Free, argCount)

	case *object.Builtin:
		if fn.Fn == nil {
			return vm.runtimeError("%s has no implementation", fn.Name)
		}
		result, err := fn.Fn(vm.popN(argCount)...)
		if err != nil {
			return vm.runtimeError("%s: %v", fn.Name, err)
		}
		if result == nil {
			result = object.UNIT
		}
		vm.push(result)
		return nil

	case *object.Constructor:
		inst, err := fn.Construct(vm.popN(argCount))
		if err != nil {
			return vm.runtimeError("%v", err)
		}
		vm.push(inst)
		return nil
	}
	return vm.runtimeError("%s is not callable", callee.Inspect())
}

func (vm *VM) callFunction(fn *bytecode.Function, free []*object.Cell, argCount int) error {
	if argCount != fn.Arity {
		return vm.runtimeError("%s expects %d arguments but got %d", fn.Name, fn.Arity, argCount)
	}
	if fn.Chunk == nil {
		return vm.runtimeError("function %s has no compiled body", fn.Name)
	}
	if len(free) != fn.FreeCount {
		return vm.runtimeError("function %s needs %d captured variables, got %d", fn.Name, fn.FreeCount, len(free))
	}
	return vm.pushFrame(fn, free, vm.popN(argCount))
}

// pushFrame enters fn with args in its first local slots.
func (vm *VM) pushFrame(fn *bytecode.Function, free []*object.Cell, args []object.Object) error {
	if len(vm.frames) >= MaxFrameCount {
		return vm.runtimeError("stack overflow: more than %d nested calls", MaxFrameCount)
	}
	n := fn.LocalCount
	if n < len(args) {
		n = len(args)
	}
	locals := make([]object.Object, n)
	copy(locals, args)

	vm.frames = append(vm.frames, CallFrame{
		fn:     fn,
		chunk:  fn.Chunk,
		free:   free,
		locals: locals,
		base:   len(vm.stack),
	})
	vm.frame = &vm.frames[len(vm.frames)-1]
	return nil
}

// returnWithValue leaves the current frame, dropping whatever it left on
// the stack, and hands result to the caller. It reports whether the
// returning frame was the outermost one.
func (vm *VM) returnWithValue(result object.Object) bool {
	base := vm.frame.base
	for i := base; i < len(vm.stack); i++ {
		vm.stack[i] = nil
	}
	vm.stack = vm.stack[:base]

	vm.frames = vm.frames[:len(vm.frames)-1]
	vm.push(result)
	if len(vm.frames) == 0 {
		return true
	}
	vm.frame = &vm.frames[len(vm.frames)-1]
	return false
}
