package vm

import (
	"unicode/utf8"

	"github.com/simon-curtis/jitzu/internal/bytecode"
	"github.com/simon-curtis/jitzu/internal/object"
)

// executeOneOp runs one instruction. done is set when the script frame
// returned; its result is on top of the stack.
func (vm *VM) executeOneOp(op bytecode.Opcode) (done bool, err error) {
	switch op {
	case bytecode.OP_CONST:
		vm.push(vm.readConstant())

	case bytecode.OP_POP:
		vm.pop()

	case bytecode.OP_POP_BELOW:
		top := vm.pop()
		vm.pop()
		vm.push(top)

	case bytecode.OP_DUP:
		vm.push(vm.peek(0))

	case bytecode.OP_UNIT:
		vm.push(object.UNIT)

	case bytecode.OP_ADD, bytecode.OP_SUB, bytecode.OP_MUL, bytecode.OP_DIV, bytecode.OP_MOD:
		return false, vm.binaryOp(op)

	case bytecode.OP_EQ, bytecode.OP_NE, bytecode.OP_LT, bytecode.OP_LE, bytecode.OP_GT, bytecode.OP_GE:
		return false, vm.comparisonOp(op)

	case bytecode.OP_BOR:
		return false, vm.bitwiseOrOp()

	case bytecode.OP_NEG:
		return false, vm.negateOp()

	case bytecode.OP_NOT:
		vm.push(object.NativeBool(!object.Truthy(vm.pop())))

	case bytecode.OP_GET_LOCAL:
		vm.push(vm.frame.locals[vm.readU16()])

	case bytecode.OP_SET_LOCAL:
		slot := vm.readU16()
		vm.frame.locals[slot] = vm.pop()

	case bytecode.OP_GET_GLOBAL:
		slot := vm.readU16()
		v, ok := vm.Global(slot)
		if !ok {
			return false, vm.runtimeError("global slot %d read before it was set", slot)
		}
		vm.push(v)

	case bytecode.OP_SET_GLOBAL:
		vm.setGlobal(vm.readU16(), vm.pop())

	case bytecode.OP_MAKE_CELL:
		slot := vm.readU16()
		vm.frame.locals[slot] = &object.Cell{Value: vm.pop()}

	case bytecode.OP_GET_CELL:
		cell, err := vm.localCell(vm.readU16())
		if err != nil {
			return false, err
		}
		vm.push(cell.Value)

	case bytecode.OP_SET_CELL:
		cell, err := vm.localCell(vm.readU16())
		if err != nil {
			return false, err
		}
		cell.Value = vm.pop()

	case bytecode.OP_GET_UPVALUE:
		vm.push(vm.frame.free[vm.readU16()].Value)

	case bytecode.OP_SET_UPVALUE:
		vm.frame.free[vm.readU16()].Value = vm.pop()

	case bytecode.OP_CLOSURE:
		return false, vm.makeClosure()

	case bytecode.OP_JUMP:
		vm.frame.ip = vm.readU32()

	case bytecode.OP_JUMP_IF_FALSE:
		target := vm.readU32()
		if !object.Truthy(vm.pop()) {
			vm.frame.ip = target
		}

	case bytecode.OP_LOOP:
		vm.frame.ip = vm.readU32()
		if err := vm.Context.Err(); err != nil {
			return false, vm.runtimeError("%v", err)
		}

	case bytecode.OP_CALL:
		return false, vm.callValue(int(vm.readByte()))

	case bytecode.OP_RETURN:
		return vm.returnWithValue(vm.pop()), nil

	case bytecode.OP_GET_FIELD:
		return false, vm.getField(vm.readName())

	case bytecode.OP_SET_FIELD:
		return false, vm.setField(vm.readName())

	case bytecode.OP_NEW:
		template, ok := vm.readConstant().(*object.Constructor)
		count := int(vm.readByte())
		if !ok {
			return false, vm.runtimeError("NEW operand is not a record type")
		}
		inst, err := template.Construct(vm.popN(count))
		if err != nil {
			return false, vm.runtimeError("%v", err)
		}
		vm.push(inst)

	case bytecode.OP_MAKE_ARRAY:
		elems := vm.popN(vm.readU16())
		vm.push(&object.Array{Elements: elems})

	case bytecode.OP_GET_INDEX:
		return false, vm.indexOp(true)

	case bytecode.OP_GET_ELEM:
		return false, vm.indexOp(false)

	case bytecode.OP_LEN:
		switch v := vm.pop().(type) {
		case *object.Array:
			vm.push(&object.Integer{Value: int64(len(v.Elements))})
		case *object.String:
			vm.push(&object.Integer{Value: int64(utf8.RuneCountInString(v.Value))})
		default:
			return false, vm.runtimeError("cannot take the length of %s", v.RuntimeType())
		}

	case bytecode.OP_CHECK_TYPE:
		tag := vm.readName()
		vm.push(object.NativeBool(object.MatchesTag(vm.pop(), tag)))

	case bytecode.OP_TO_STRING:
		vm.push(&object.String{Value: object.ToText(vm.pop())})

	case bytecode.OP_UNWRAP_OR_RETURN:
		v := vm.pop()
		payload, ok := object.Unwrap(v)
		if ok {
			vm.push(payload)
			return false, nil
		}
		return vm.returnWithValue(v), nil

	default:
		return false, vm.runtimeError("unknown opcode %d", op)
	}
	return false, nil
}

func (vm *VM) setGlobal(slot int, v object.Object) {
	if slot >= len(vm.globals) {
		grown := make([]object.Object, slot+1, 2*(slot+1))
		copy(grown, vm.globals)
		vm.globals = grown
	}
	vm.globals[slot] = v
}

func (vm *VM) localCell(slot int) (*object.Cell, error) {
	cell, ok := vm.frame.locals[slot].(*object.Cell)
	if !ok {
		return nil, vm.runtimeError("local slot %d holds no cell", slot)
	}
	return cell, nil
}

// popN removes the top n values and returns them in push order.
func (vm *VM) popN(n int) []object.Object {
	if n > len(vm.stack) {
		panic(errStackUnderflow)
	}
	start := len(vm.stack) - n
	out := make([]object.Object, n)
	copy(out, vm.stack[start:])
	for i := start; i < len(vm.stack); i++ {
		vm.stack[i] = nil
	}
	vm.stack = vm.stack[:start]
	return out
}

func (vm *VM) makeClosure() error {
	fn, ok := vm.readConstant().(*bytecode.Function)
	count := int(vm.readByte())
	if !ok {
		return vm.runtimeError("CLOSURE operand is not a function")
	}
	free := make([]*object.Cell, count)
	for i := range free {
		isLocal := vm.readByte() == 1
		index := vm.readU16()
		if isLocal {
			cell, err := vm.localCell(index)
			if err != nil {
				return err
			}
			free[i] = cell
		} else {
			free[i] = vm.frame.free[index]
		}
	}
	vm.push(&bytecode.Closure{Fn: fn, Free: free})
	return nil
}
