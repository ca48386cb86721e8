package bytecode

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/simon-curtis/jitzu/internal/object"
	"github.com/simon-curtis/jitzu/internal/typesystem"
)

// bundleMagic prefixes every serialized bundle.
var bundleMagic = []byte{'J', 'Z', 'B', 0x01}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Bundle is the serialized form of one compiled script: its top-level
// function plus every function reachable from its constant pools.
// Builtin and host callables are stored by name and re-bound at load time.
type Bundle struct {
	ID         string         `cbor:"1,keyasint"`
	SourceFile string         `cbor:"2,keyasint,omitempty"`
	Globals    []string       `cbor:"3,keyasint"` // builtin names in global slot order
	Functions  []wireFunction `cbor:"4,keyasint"`
	Script     int            `cbor:"5,keyasint"`
	Modules    []string       `cbor:"6,keyasint,omitempty"` // host modules to load before linking
}

type wireFunction struct {
	Name       string      `cbor:"1,keyasint"`
	Arity      int         `cbor:"2,keyasint"`
	LocalCount int         `cbor:"3,keyasint"`
	FreeCount  int         `cbor:"4,keyasint"`
	Code       []byte      `cbor:"5,keyasint"`
	Lines      []int       `cbor:"6,keyasint"`
	Constants  []wireConst `cbor:"7,keyasint"`
	File       string      `cbor:"8,keyasint,omitempty"`
}

type constKind uint8

const (
	constInt constKind = iota + 1
	constFloat
	constString
	constBool
	constChar
	constUnit
	constFunction
	constBuiltin
	constConstructor
	constInstance
	constType
)

type wireConst struct {
	Kind   constKind   `cbor:"1,keyasint"`
	Int    int64       `cbor:"2,keyasint,omitempty"`
	Float  float64     `cbor:"3,keyasint,omitempty"`
	Text   string      `cbor:"4,keyasint,omitempty"`
	Tag    string      `cbor:"5,keyasint,omitempty"`
	Names  []string    `cbor:"6,keyasint,omitempty"`
	Fields []wireConst `cbor:"7,keyasint,omitempty"`
}

// NewBundle collects script and every function it references.
func NewBundle(script *Function, globals []string, sourceFile string) (*Bundle, error) {
	b := &Bundle{
		ID:         uuid.NewString(),
		SourceFile: sourceFile,
		Globals:    append([]string(nil), globals...),
	}
	index := make(map[*Function]int)
	var add func(fn *Function) (int, error)
	add = func(fn *Function) (int, error) {
		if idx, ok := index[fn]; ok {
			return idx, nil
		}
		if fn.Chunk == nil {
			return 0, fmt.Errorf("function %s has no compiled body", fn.Name)
		}
		idx := len(b.Functions)
		index[fn] = idx
		b.Functions = append(b.Functions, wireFunction{})
		wf := wireFunction{
			Name:       fn.Name,
			Arity:      fn.Arity,
			LocalCount: fn.LocalCount,
			FreeCount:  fn.FreeCount,
			Code:       fn.Chunk.Code,
			Lines:      fn.Chunk.Lines,
			File:       fn.Chunk.File,
		}
		for _, c := range fn.Chunk.Constants {
			wc, err := encodeConst(c, add)
			if err != nil {
				return 0, fmt.Errorf("%s: %w", fn.Name, err)
			}
			wf.Constants = append(wf.Constants, wc)
		}
		b.Functions[idx] = wf
		return idx, nil
	}
	idx, err := add(script)
	if err != nil {
		return nil, err
	}
	b.Script = idx
	return b, nil
}

func encodeConst(c object.Object, addFn func(*Function) (int, error)) (wireConst, error) {
	switch v := c.(type) {
	case *object.Integer:
		return wireConst{Kind: constInt, Int: v.Value}, nil
	case *object.Float:
		return wireConst{Kind: constFloat, Float: v.Value}, nil
	case *object.String:
		return wireConst{Kind: constString, Text: v.Value}, nil
	case *object.Boolean:
		wc := wireConst{Kind: constBool}
		if v.Value {
			wc.Int = 1
		}
		return wc, nil
	case *object.Char:
		return wireConst{Kind: constChar, Int: int64(v.Value)}, nil
	case *object.Unit:
		return wireConst{Kind: constUnit}, nil
	case *Function:
		idx, err := addFn(v)
		if err != nil {
			return wireConst{}, err
		}
		return wireConst{Kind: constFunction, Int: int64(idx)}, nil
	case *object.Builtin:
		return wireConst{Kind: constBuiltin, Text: v.Name}, nil
	case *object.Constructor:
		return wireConst{Kind: constConstructor, Text: v.TypeName, Tag: v.Tag, Names: v.FieldNames}, nil
	case *object.Instance:
		wc := wireConst{Kind: constInstance, Text: v.TypeName, Tag: v.Tag, Names: v.FieldNames}
		for _, f := range v.Fields {
			fc, err := encodeConst(f, addFn)
			if err != nil {
				return wireConst{}, err
			}
			wc.Fields = append(wc.Fields, fc)
		}
		return wc, nil
	case *object.TypeObject:
		return wireConst{Kind: constType, Text: v.Value.String()}, nil
	}
	return wireConst{}, fmt.Errorf("constant %s of kind %s cannot be serialized", c.Inspect(), c.Type())
}

// Marshal encodes the bundle in canonical CBOR behind a magic header.
func (b *Bundle) Marshal() ([]byte, error) {
	data, err := cborEncMode.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("bundle cbor encoding failed: %w", err)
	}
	return append(append([]byte(nil), bundleMagic...), data...), nil
}

// UnmarshalBundle decodes data produced by Marshal.
func UnmarshalBundle(data []byte) (*Bundle, error) {
	if !bytes.HasPrefix(data, bundleMagic) {
		return nil, fmt.Errorf("not a jitzu bundle")
	}
	var b Bundle
	if err := cbor.Unmarshal(data[len(bundleMagic):], &b); err != nil {
		return nil, fmt.Errorf("bundle: unmarshal: %w", err)
	}
	if b.Script < 0 || b.Script >= len(b.Functions) {
		return nil, fmt.Errorf("bundle: script index %d out of range", b.Script)
	}
	return &b, nil
}

// Linker resolves builtin and host callables by name when a bundle is loaded.
type Linker func(name string) (*object.Builtin, bool)

// Link rebuilds the function graph and returns the script function.
func (b *Bundle) Link(resolve Linker) (*Function, error) {
	fns := make([]*Function, len(b.Functions))
	for i, wf := range b.Functions {
		fns[i] = &Function{Name: wf.Name, Arity: wf.Arity, LocalCount: wf.LocalCount, FreeCount: wf.FreeCount}
	}
	for i, wf := range b.Functions {
		chunk := &Chunk{Code: wf.Code, Lines: wf.Lines, File: wf.File}
		for _, wc := range wf.Constants {
			c, err := decodeConst(wc, fns, resolve)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", wf.Name, err)
			}
			chunk.Constants = append(chunk.Constants, c)
		}
		fns[i].Chunk = chunk
	}
	return fns[b.Script], nil
}

func decodeConst(wc wireConst, fns []*Function, resolve Linker) (object.Object, error) {
	switch wc.Kind {
	case constInt:
		return &object.Integer{Value: wc.Int}, nil
	case constFloat:
		return &object.Float{Value: wc.Float}, nil
	case constString:
		return &object.String{Value: wc.Text}, nil
	case constBool:
		return object.NativeBool(wc.Int == 1), nil
	case constChar:
		return &object.Char{Value: rune(wc.Int)}, nil
	case constUnit:
		return object.UNIT, nil
	case constFunction:
		if wc.Int < 0 || int(wc.Int) >= len(fns) {
			return nil, fmt.Errorf("function index %d out of range", wc.Int)
		}
		return fns[wc.Int], nil
	case constBuiltin:
		if resolve != nil {
			if bi, ok := resolve(wc.Text); ok {
				return bi, nil
			}
		}
		return nil, fmt.Errorf("unknown builtin %q", wc.Text)
	case constConstructor:
		return &object.Constructor{TypeName: wc.Text, Tag: wc.Tag, FieldNames: wc.Names}, nil
	case constInstance:
		inst := &object.Instance{TypeName: wc.Text, Tag: wc.Tag, FieldNames: wc.Names}
		for _, f := range wc.Fields {
			v, err := decodeConst(f, fns, resolve)
			if err != nil {
				return nil, err
			}
			inst.Fields = append(inst.Fields, v)
		}
		return inst, nil
	case constType:
		return &object.TypeObject{Value: typesystem.TCon{Name: wc.Text}}, nil
	}
	return nil, fmt.Errorf("unknown constant kind %d", wc.Kind)
}
