package jitzu

import (
	"errors"
	"fmt"

	"github.com/simon-curtis/jitzu/internal/bytecode"
	"github.com/simon-curtis/jitzu/internal/cache"
	"github.com/simon-curtis/jitzu/internal/object"
	"github.com/simon-curtis/jitzu/internal/token"
)

// Bundle serializes a script compiled by this engine. A bundle is
// self-contained only when the script was the engine's first batch:
// later scripts rely on globals stored by the ones before them.
func (e *Engine) Bundle(script *bytecode.Function, file string) ([]byte, error) {
	b, err := bytecode.NewBundle(script, e.program.GlobalNames(), file)
	if err != nil {
		return nil, err
	}
	b.Modules = e.program.Modules()
	return b.Marshal()
}

// LoadBundle decodes a bundle and links it against this engine. The
// engine must not have run anything yet; the bundle's global slots are
// reserved so that later batches do not reuse them.
func (e *Engine) LoadBundle(data []byte) (*bytecode.Function, error) {
	b, err := bytecode.UnmarshalBundle(data)
	if err != nil {
		return nil, err
	}
	e.program.Begin()
	script, err := e.linkBundle(b)
	if err != nil {
		e.program.Rollback()
		return nil, err
	}
	// The bundle's script stores every global the program has queued.
	e.program.Commit()
	return script, nil
}

func (e *Engine) linkBundle(b *bytecode.Bundle) (*bytecode.Function, error) {
	for _, name := range b.Modules {
		if err := e.program.UseModule(name); err != nil {
			return nil, fmt.Errorf("bundle needs module %s: %w", name, err)
		}
	}

	current := e.program.GlobalNames()
	if len(current) > len(b.Globals) {
		return nil, fmt.Errorf("bundle has %d globals, engine already has %d", len(b.Globals), len(current))
	}
	for i, name := range current {
		if b.Globals[i] != name {
			return nil, fmt.Errorf("bundle global slot %d is %s, engine has %s", i, b.Globals[i], name)
		}
	}
	for _, name := range b.Globals[len(current):] {
		e.program.NewGlobalSlot(name, token.Token{File: b.SourceFile})
	}

	script, err := b.Link(e.link)
	if err != nil {
		return nil, fmt.Errorf("linking bundle %s: %w", b.ID, err)
	}
	log.Debugf("loaded bundle %s: %d functions", b.ID, len(b.Functions))
	return script, nil
}

func (e *Engine) link(name string) (*object.Builtin, bool) {
	if fn, ok := e.program.LinkBuiltin(name); ok {
		return fn, true
	}
	return e.registry.Lookup(name)
}

// CompileCached compiles source through the bundle cache: a stored bundle
// for the same source and modules is loaded instead of compiling. hit
// reports which path was taken. Like LoadBundle it needs a fresh engine.
func (e *Engine) CompileCached(c *cache.BundleCache, source, file string) (script *bytecode.Function, hit bool, err error) {
	key := cache.Key(source, e.program.Modules())
	data, err := c.Get(key)
	switch {
	case err == nil:
		script, err := e.LoadBundle(data)
		if err == nil {
			return script, true, nil
		}
		log.Warningf("ignoring cached bundle for %s: %v", file, err)
	case !errors.Is(err, cache.ErrNotFound):
		return nil, false, err
	}

	script, err = e.Compile(source, file)
	if err != nil {
		return nil, false, err
	}
	data, err = e.Bundle(script, file)
	if err != nil {
		return nil, false, err
	}
	if err := c.Put(key, file, data); err != nil {
		return nil, false, err
	}
	if _, err := c.Prune(file, key); err != nil {
		log.Warningf("pruning cache: %v", err)
	}
	return script, false, nil
}
