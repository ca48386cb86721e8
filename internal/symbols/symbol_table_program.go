package symbols

import (
	"fmt"
	"io"
	"os"

	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/config"
	"github.com/simon-curtis/jitzu/internal/object"
	"github.com/simon-curtis/jitzu/internal/token"
	"github.com/simon-curtis/jitzu/internal/typesystem"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("jitzu.symbols")

// Program is the state shared by every batch compiled against it: the type
// table, global functions, global slots and loaded host modules. It only
// grows. A batch that fails is rolled back by unbinding the names it
// introduced; the global slots it consumed are never handed out again.
type Program struct {
	types       map[string]*TypeDef
	typesByName map[string][]*TypeDef
	typesByID   map[int]*TypeDef
	nextTypeID  int

	Functions map[string]*UserFunction

	global      *Scope
	globalNames []string
	builtins    []*BuiltinFunction
	builtinByID map[string]*BuiltinFunction
	adapters    map[string]*BuiltinFunction

	loader     ModuleLoader
	modules    map[string]bool
	extensions []*HostFunction
	hostByKey  map[string]*HostFunction

	// inits are bindings whose value is known at compile time (functions,
	// constructors, types as values). The next compiled script stores them.
	inits     []*ast.Binding
	initsMark int

	undo    []func()
	inBatch bool

	output io.Writer
}

// NewProgram creates a program holding the built-in types and functions.
// loader supplies host modules for `use`; it may be nil.
func NewProgram(loader ModuleLoader) *Program {
	p := &Program{
		types:       make(map[string]*TypeDef),
		typesByName: make(map[string][]*TypeDef),
		typesByID:   make(map[int]*TypeDef),
		nextTypeID:  typesystem.BuiltinTypeCount + 1,
		Functions:   make(map[string]*UserFunction),
		global:      NewScope(nil, ScopeGlobal),
		builtinByID: make(map[string]*BuiltinFunction),
		adapters:    make(map[string]*BuiltinFunction),
		loader:      loader,
		modules:     make(map[string]bool),
		hostByKey:   make(map[string]*HostFunction),
		output:      os.Stdout,
	}
	p.initBuiltins()
	return p
}

// SetOutput redirects the print builtin.
func (p *Program) SetOutput(w io.Writer) { p.output = w }

func (p *Program) Output() io.Writer { return p.output }

// Global is the top-level scope.
func (p *Program) Global() *Scope { return p.global }

// NewGlobalSlot allocates the next global slot without binding a name in
// the global scope. Top-level block bindings and hidden bindings use it.
func (p *Program) NewGlobalSlot(name string, tok token.Token) *ast.Binding {
	b := &ast.Binding{Name: name, Index: len(p.globalNames), Scope: ast.ScopeGlobal, Token: tok}
	p.globalNames = append(p.globalNames, name)
	return b
}

// DeclareGlobal allocates a slot and binds name in the global scope. An
// existing global of the same name is shadowed, not overwritten.
func (p *Program) DeclareGlobal(name string, tok token.Token) *ast.Binding {
	b := p.NewGlobalSlot(name, tok)
	prev, hadPrev := p.global.LookupLocal(name)
	p.global.Define(name, b)
	p.onRollback(func() {
		if hadPrev {
			p.global.Define(name, prev)
		} else {
			p.global.Undefine(name, b)
		}
	})
	return b
}

// GlobalCount is the number of global slots handed out so far.
func (p *Program) GlobalCount() int { return len(p.globalNames) }

// GlobalNames returns the name of every global slot in slot order.
func (p *Program) GlobalNames() []string {
	return append([]string(nil), p.globalNames...)
}

// AddInit queues a binding whose compile-time value the next script must
// store into its global slot.
func (p *Program) AddInit(b *ast.Binding) {
	p.inits = append(p.inits, b)
}

// PendingInits returns the queued bindings in slot order of queuing.
func (p *Program) PendingInits() []*ast.Binding { return p.inits }

// InitValue returns the compile-time value of a queued binding.
func InitValue(b *ast.Binding) (object.Object, error) {
	if b.TypeValue != nil {
		return &object.TypeObject{Value: b.TypeValue}, nil
	}
	if c, ok := b.Callable.(Callable); ok {
		return c.Object(), nil
	}
	return nil, fmt.Errorf("global %s has no compile-time value", b.Name)
}

// AddType registers def and assigns its ID. Built-in types keep the ID they
// were created with.
func (p *Program) AddType(def *TypeDef) error {
	if _, exists := p.types[def.FullName]; exists {
		return fmt.Errorf("type %s is already defined", def.FullName)
	}
	if def.ID == 0 {
		def.ID = p.nextTypeID
		p.nextTypeID++
	}
	p.types[def.FullName] = def
	p.typesByName[def.Name] = append(p.typesByName[def.Name], def)
	p.typesByID[def.ID] = def
	p.onRollback(func() { p.removeType(def) })
	return nil
}

func (p *Program) removeType(def *TypeDef) {
	delete(p.types, def.FullName)
	delete(p.typesByID, def.ID)
	list := p.typesByName[def.Name]
	for i, d := range list {
		if d == def {
			p.typesByName[def.Name] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(p.typesByName[def.Name]) == 0 {
		delete(p.typesByName, def.Name)
	}
}

// AddFunction registers a top-level function by name.
func (p *Program) AddFunction(fn *UserFunction) {
	prev, hadPrev := p.Functions[fn.Name]
	p.Functions[fn.Name] = fn
	p.onRollback(func() {
		if hadPrev {
			p.Functions[fn.Name] = prev
		} else {
			delete(p.Functions, fn.Name)
		}
	})
}

// AddMethod attaches an impl method to def's method table.
func (p *Program) AddMethod(def *TypeDef, fn *UserFunction) {
	fn.Owner = def
	def.AddMethod(fn)
	p.onRollback(func() { def.removeMethod(fn) })
}

// TypeBinding returns the synthetic global holding def as a value, creating
// it on first use. Every reference to the same type shares one slot.
func (p *Program) TypeBinding(def *TypeDef, tok token.Token) *ast.Binding {
	if def.Binding != nil {
		return def.Binding
	}
	b := p.NewGlobalSlot(config.TypeBindingName+def.FullName, tok)
	b.Hidden = true
	b.TypeValue = def.Type()
	b.Type = typesystem.TType{Type: def.Type()}
	def.Binding = b
	p.AddInit(b)
	p.onRollback(func() { def.Binding = nil })
	return b
}

// Begin starts a batch. Changes made until Commit or Rollback are undone
// by Rollback.
func (p *Program) Begin() {
	p.undo = nil
	p.inBatch = true
	p.initsMark = len(p.inits)
}

// Commit keeps the batch. The queued inits are considered stored.
func (p *Program) Commit() {
	p.undo = nil
	p.inBatch = false
	p.inits = nil
	p.initsMark = 0
}

// Rollback undoes the name bindings of the current batch. Slots allocated
// by the batch stay consumed.
func (p *Program) Rollback() {
	for i := len(p.undo) - 1; i >= 0; i-- {
		p.undo[i]()
	}
	log.Debugf("rolled back %d changes", len(p.undo))
	p.undo = nil
	p.inBatch = false
	p.inits = p.inits[:p.initsMark]
}

func (p *Program) onRollback(fn func()) {
	if p.inBatch {
		p.undo = append(p.undo, fn)
	}
}
