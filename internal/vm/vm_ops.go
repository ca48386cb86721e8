package vm

import (
	"math"
	"strings"

	"github.com/simon-curtis/jitzu/internal/bytecode"
	"github.com/simon-curtis/jitzu/internal/object"
)

// binaryOp applies an arithmetic opcode. Int with Int stays Int; mixing in
// a Double promotes; + with a String on either side concatenates text.
func (vm *VM) binaryOp(op bytecode.Opcode) error {
	right := vm.pop()
	left := vm.pop()

	if op == bytecode.OP_ADD {
		_, ls := left.(*object.String)
		_, rs := right.(*object.String)
		if ls || rs {
			vm.push(&object.String{Value: object.ToText(left) + object.ToText(right)})
			return nil
		}
	}

	if l, ok := left.(*object.Integer); ok {
		if r, ok := right.(*object.Integer); ok {
			return vm.integerOp(op, l.Value, r.Value)
		}
	}

	l, lok := toFloat(left)
	r, rok := toFloat(right)
	if !lok || !rok {
		return vm.runtimeError("operator %s not defined for %s and %s", op, left.RuntimeType(), right.RuntimeType())
	}
	var result float64
	switch op {
	case bytecode.OP_ADD:
		result = l + r
	case bytecode.OP_SUB:
		result = l - r
	case bytecode.OP_MUL:
		result = l * r
	case bytecode.OP_DIV:
		result = l / r
	case bytecode.OP_MOD:
		result = math.Mod(l, r)
	}
	vm.push(&object.Float{Value: result})
	return nil
}

func (vm *VM) integerOp(op bytecode.Opcode, l, r int64) error {
	var result int64
	switch op {
	case bytecode.OP_ADD:
		result = l + r
	case bytecode.OP_SUB:
		result = l - r
	case bytecode.OP_MUL:
		result = l * r
	case bytecode.OP_DIV:
		if r == 0 {
			return vm.runtimeError("division by zero")
		}
		result = l / r
	case bytecode.OP_MOD:
		if r == 0 {
			return vm.runtimeError("division by zero")
		}
		result = l % r
	}
	vm.push(&object.Integer{Value: result})
	return nil
}

func toFloat(o object.Object) (float64, bool) {
	switch v := o.(type) {
	case *object.Integer:
		return float64(v.Value), true
	case *object.Float:
		return v.Value, true
	}
	return 0, false
}

// comparisonOp pushes the Bool result of an equality or ordering opcode.
func (vm *VM) comparisonOp(op bytecode.Opcode) error {
	right := vm.pop()
	left := vm.pop()

	switch op {
	case bytecode.OP_EQ:
		vm.push(object.NativeBool(object.Equals(left, right)))
		return nil
	case bytecode.OP_NE:
		vm.push(object.NativeBool(!object.Equals(left, right)))
		return nil
	}

	cmp, ok := compare(left, right)
	if !ok {
		return vm.runtimeError("cannot compare %s with %s", left.RuntimeType(), right.RuntimeType())
	}
	var result bool
	switch op {
	case bytecode.OP_LT:
		result = cmp < 0
	case bytecode.OP_LE:
		result = cmp <= 0
	case bytecode.OP_GT:
		result = cmp > 0
	case bytecode.OP_GE:
		result = cmp >= 0
	}
	vm.push(object.NativeBool(result))
	return nil
}

// compare orders numbers, strings and chars.
func compare(left, right object.Object) (int, bool) {
	if l, ok := left.(*object.Integer); ok {
		if r, ok := right.(*object.Integer); ok {
			switch {
			case l.Value < r.Value:
				return -1, true
			case l.Value > r.Value:
				return 1, true
			}
			return 0, true
		}
	}
	if l, ok := toFloat(left); ok {
		if r, ok := toFloat(right); ok {
			switch {
			case l < r:
				return -1, true
			case l > r:
				return 1, true
			}
			return 0, true
		}
		return 0, false
	}
	switch l := left.(type) {
	case *object.String:
		if r, ok := right.(*object.String); ok {
			return strings.Compare(l.Value, r.Value), true
		}
	case *object.Char:
		if r, ok := right.(*object.Char); ok {
			return int(l.Value) - int(r.Value), true
		}
	}
	return 0, false
}

// bitwiseOrOp is | on Ints, or logical or (both sides evaluated) on Bools.
func (vm *VM) bitwiseOrOp() error {
	right := vm.pop()
	left := vm.pop()
	switch l := left.(type) {
	case *object.Integer:
		if r, ok := right.(*object.Integer); ok {
			vm.push(&object.Integer{Value: l.Value | r.Value})
			return nil
		}
	case *object.Boolean:
		if r, ok := right.(*object.Boolean); ok {
			vm.push(object.NativeBool(l.Value || r.Value))
			return nil
		}
	}
	return vm.runtimeError("operator | not defined for %s and %s", left.RuntimeType(), right.RuntimeType())
}

func (vm *VM) negateOp() error {
	switch v := vm.pop().(type) {
	case *object.Integer:
		vm.push(&object.Integer{Value: -v.Value})
	case *object.Float:
		vm.push(&object.Float{Value: -v.Value})
	default:
		return vm.runtimeError("cannot negate %s", v.RuntimeType())
	}
	return nil
}

func (vm *VM) getField(name string) error {
	obj := vm.pop()
	inst, ok := obj.(*object.Instance)
	if !ok {
		return vm.runtimeError("%s has no field %s", obj.RuntimeType(), name)
	}
	idx := inst.FieldIndex(name)
	if idx < 0 {
		return vm.runtimeError("%s has no field %s", inst.Inspect(), name)
	}
	vm.push(inst.Fields[idx])
	return nil
}

// setField stores the top value into a field of the object below it and
// leaves the value.
func (vm *VM) setField(name string) error {
	value := vm.pop()
	obj := vm.pop()
	inst, ok := obj.(*object.Instance)
	if !ok {
		return vm.runtimeError("%s has no field %s", obj.RuntimeType(), name)
	}
	idx := inst.FieldIndex(name)
	if idx < 0 {
		return vm.runtimeError("%s has no field %s", inst.Inspect(), name)
	}
	inst.Fields[idx] = value
	vm.push(value)
	return nil
}

// indexOp reads an array element. The checked form yields an Option;
// the unchecked one is used by for loops, which stay in bounds.
func (vm *VM) indexOp(checked bool) error {
	index := vm.pop()
	target := vm.pop()
	arr, ok := target.(*object.Array)
	if !ok {
		return vm.runtimeError("cannot index %s", target.RuntimeType())
	}
	i, ok := index.(*object.Integer)
	if !ok {
		return vm.runtimeError("array index must be Int, got %s", index.RuntimeType())
	}
	inRange := i.Value >= 0 && i.Value < int64(len(arr.Elements))
	switch {
	case checked && inRange:
		vm.push(object.Some(arr.Elements[i.Value]))
	case checked:
		vm.push(object.NONE)
	case inRange:
		vm.push(arr.Elements[i.Value])
	default:
		return vm.runtimeError("index %d out of range [0, %d)", i.Value, len(arr.Elements))
	}
	return nil
}
