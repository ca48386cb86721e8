package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/simon-curtis/jitzu/internal/bytecode"
	"github.com/simon-curtis/jitzu/internal/cache"
	"github.com/simon-curtis/jitzu/internal/config"
	"github.com/simon-curtis/jitzu/internal/diagnostics"
	"github.com/simon-curtis/jitzu/internal/host"
	"github.com/simon-curtis/jitzu/internal/object"
	"github.com/simon-curtis/jitzu/internal/prettyprinter"
	"github.com/simon-curtis/jitzu/pkg/jitzu"
	"github.com/tliron/commonlog"
)

// defaultCacheFile is used by --cache when the config names no cache.
const defaultCacheFile = "bundles.db"

func (c *cli) readSource(path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(c.stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return string(data), nil
}

// displayName is the file name diagnostics carry.
func displayName(path string) string {
	if path == "-" {
		return "<stdin>"
	}
	return path
}

// newEngine configures an engine from the config nearest to path.
func (c *cli) newEngine(path string) (*jitzu.Engine, error) {
	dir := "."
	if path != "-" && path != "" {
		dir = filepath.Dir(path)
	}
	cfg, err := config.FindAndLoad(dir)
	if err != nil {
		return nil, err
	}
	if cfg.Verbosity > c.verbosity {
		c.verbosity = cfg.Verbosity
	}
	commonlog.Configure(c.verbosity, nil)
	e, err := jitzu.New(cfg)
	if err != nil {
		return nil, err
	}
	e.SetOutput(c.stdout)
	return e, nil
}

// compile loads the source at path and compiles it, through the bundle
// cache when one is configured or requested.
func (c *cli) compile(path string, opts options) (*jitzu.Engine, *bytecode.Function, string, error) {
	source, err := c.readSource(path)
	if err != nil {
		return nil, nil, "", err
	}
	e, err := c.newEngine(path)
	if err != nil {
		return nil, nil, source, err
	}
	file := displayName(path)

	cachePath := e.Config().CachePath()
	if cachePath == "" && opts.cache {
		cachePath = defaultCachePath()
	}
	if cachePath == "" {
		script, err := e.Compile(source, file)
		return e, script, source, err
	}

	bc, err := cache.Open(cachePath)
	if err != nil {
		return nil, nil, source, err
	}
	defer bc.Close()
	script, _, err := e.CompileCached(bc, source, file)
	return e, script, source, err
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".jitzu", defaultCacheFile)
	}
	return filepath.Join(dir, "jitzu", defaultCacheFile)
}

func (c *cli) runSource(path string, opts options) int {
	e, script, source, err := c.compile(path, opts)
	if err != nil {
		c.report(err, source)
		return 1
	}
	return c.execute(e, script, source)
}

func (c *cli) execute(e *jitzu.Engine, script *bytecode.Function, source string) int {
	result, err := e.Run(script)
	if err != nil {
		c.report(err, source)
		return 1
	}
	if result != nil && result != object.UNIT {
		fmt.Fprintln(c.stdout, result.Inspect())
	}
	return 0
}

func (c *cli) build(path string, opts options) int {
	e, script, source, err := c.compile(path, options{})
	if err != nil {
		c.report(err, source)
		return 1
	}
	data, err := e.Bundle(script, displayName(path))
	if err != nil {
		c.report(err, source)
		return 1
	}

	outputPath := opts.output
	if outputPath == "" {
		if path == "-" {
			outputPath = "stdin" + config.BundleFileExt
		} else {
			outputPath = strings.TrimSuffix(path, filepath.Ext(path)) + config.BundleFileExt
		}
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		fmt.Fprintf(c.stderr, "Error writing bundle: %s\n", err)
		return 1
	}

	fmt.Fprintf(c.stdout, "Compiled %s -> %s\n", displayName(path), outputPath)
	fmt.Fprintf(c.stdout, "Bytecode size: %d bytes\n", len(data))
	return 0
}

func (c *cli) exec(path string, _ options) int {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(c.stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		fmt.Fprintf(c.stderr, "Error reading bundle: %s\n", err)
		return 1
	}
	e, err := c.newEngine(path)
	if err != nil {
		c.report(err, "")
		return 1
	}
	script, err := e.LoadBundle(data)
	if err != nil {
		c.report(err, "")
		return 1
	}
	return c.execute(e, script, "")
}

func (c *cli) check(path string, _ options) int {
	source, err := c.readSource(path)
	if err != nil {
		c.report(err, "")
		return 1
	}
	e, err := c.newEngine(path)
	if err != nil {
		c.report(err, source)
		return 1
	}
	if _, err := e.Check(source, displayName(path)); err != nil {
		c.report(err, source)
		return 1
	}
	fmt.Fprintf(c.stdout, "%s: ok\n", displayName(path))
	return 0
}

func (c *cli) disasm(path string, _ options) int {
	_, script, source, err := c.compile(path, options{})
	if err != nil {
		c.report(err, source)
		return 1
	}
	fmt.Fprint(c.stdout, bytecode.DisassembleAll(script.Chunk, displayName(path)))
	return 0
}

func (c *cli) printAST(path string, _ options) int {
	source, err := c.readSource(path)
	if err != nil {
		c.report(err, "")
		return 1
	}
	e, err := c.newEngine(path)
	if err != nil {
		c.report(err, source)
		return 1
	}
	prog, err := e.Check(source, displayName(path))
	if err != nil {
		c.report(err, source)
		return 1
	}
	fmt.Fprint(c.stdout, prettyprinter.PrintResolved(prog))
	return 0
}

func (c *cli) hostgen(pattern string, opts options) int {
	ins := &host.Inspector{}
	m, err := ins.Inspect(pattern)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %s\n", err)
		return 1
	}
	data, err := m.Marshal()
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %s\n", err)
		return 1
	}
	if opts.output == "" {
		c.stdout.Write(data)
		return 0
	}
	if err := os.WriteFile(opts.output, data, 0644); err != nil {
		fmt.Fprintf(c.stderr, "Error writing manifest: %s\n", err)
		return 1
	}
	fmt.Fprintf(c.stdout, "Wrote %s (%s)\n", opts.output, strings.Join(m.ModuleNames(), ", "))
	return 0
}

// report prints an error; diagnostics get the offending source line and
// a caret under the column.
func (c *cli) report(err error, source string) {
	var compileErr *jitzu.CompileError
	if errors.As(err, &compileErr) {
		for _, d := range compileErr.Errors {
			c.reportDiagnostic(d, source)
		}
		return
	}
	var diag *diagnostics.DiagnosticError
	if errors.As(err, &diag) {
		c.reportDiagnostic(diag, source)
		return
	}
	fmt.Fprintf(c.stderr, "%s %s\n", c.paint("Error:", red), err)
}

func (c *cli) reportDiagnostic(d *diagnostics.DiagnosticError, source string) {
	msg := d.Error()
	tag := "error [" + string(d.Code) + "]"
	msg = strings.Replace(msg, tag, c.paint(tag, red), 1)
	fmt.Fprintln(c.stderr, msg)

	line := sourceLine(source, d.Token.Line)
	if line == "" {
		return
	}
	fmt.Fprintf(c.stderr, "  %s\n", line)
	if d.Token.Column > 0 && d.Token.Column <= len(line)+1 {
		fmt.Fprintf(c.stderr, "  %s%s\n", strings.Repeat(" ", d.Token.Column-1), c.paint("^", red))
	}
}

func sourceLine(source string, n int) string {
	if n <= 0 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if n > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[n-1], "\r")
}

const red = "\x1b[31m"

func (c *cli) paint(s, color string) string {
	if !c.color {
		return s
	}
	return color + s + "\x1b[0m"
}
