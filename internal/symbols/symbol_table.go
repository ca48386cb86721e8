// symbols/symbol_table.go - Program state shared by the compiler passes
//
// The package is split into focused files:
// - symbol_table_core.go: Scope, the nested name -> binding map
// - symbol_table_types.go: TypeDef, fields, variants, method tables
// - symbol_table_callables.go: user, host and builtin functions, constructors
// - symbol_table_program.go: Program, global slots, batches and rollback
// - symbol_table_init.go: built-in types and functions
// - symbol_table_resolution.go: type lookup, bases, host modules

package symbols
