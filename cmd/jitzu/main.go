package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

const usage = `Usage: jitzu [flags] <command> [arguments]

Commands:
  run <file> [--cache]      compile and run a script (the default command)
  build <file> [-o out]     compile a script into a bytecode bundle
  exec <bundle>             run a bytecode bundle
  check <file>              resolve and type check without running
  disasm <file>             print the bytecode of a script
  ast <file>                print the resolved syntax tree
  repl                      read and run batches interactively
  hostgen <pkg> [-o out]    write a host manifest for a Go package
  help                      show this message

Flags:
  -v, -vv                   log more (info, debug)

With no command, a file argument is run; with no arguments, source is
read from stdin, or a REPL starts when stdin is a terminal.
`

func main() {
	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("JITZU_DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	c := &cli{
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		color:       isTerminal(os.Stderr),
		interactive: isTerminal(os.Stdin),
	}
	os.Exit(c.run(os.Args[1:]))
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// cli runs one command line against its streams.
type cli struct {
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
	color       bool
	interactive bool

	verbosity int
}

// options are the flags shared by the commands.
type options struct {
	output string
	cache  bool
	args   []string
}

func (c *cli) run(args []string) int {
	args = c.stripVerbosity(args)
	commonlog.Configure(c.verbosity, nil)

	if len(args) == 0 {
		if c.interactive {
			return c.repl()
		}
		return c.runSource("-", options{})
	}

	cmd := args[0]
	opts, err := parseOptions(args[1:])
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %s\n", err)
		return 2
	}

	switch cmd {
	case "help", "-h", "--help":
		fmt.Fprint(c.stdout, usage)
		return 0
	case "run":
		return c.withFile(opts, c.runSource)
	case "build":
		return c.withFile(opts, c.build)
	case "exec":
		return c.withFile(opts, c.exec)
	case "check":
		return c.withFile(opts, c.check)
	case "disasm":
		return c.withFile(opts, c.disasm)
	case "ast":
		return c.withFile(opts, c.printAST)
	case "repl":
		return c.repl()
	case "hostgen":
		return c.withFile(opts, c.hostgen)
	}

	if strings.HasPrefix(cmd, "-") {
		fmt.Fprintf(c.stderr, "Error: unknown flag %s\n\n%s", cmd, usage)
		return 2
	}
	// A bare file argument runs it.
	opts, err = parseOptions(args)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %s\n", err)
		return 2
	}
	return c.withFile(opts, c.runSource)
}

// stripVerbosity removes -v/-vv flags wherever they appear.
func (c *cli) stripVerbosity(args []string) []string {
	rest := make([]string, 0, len(args))
	for _, arg := range args {
		switch arg {
		case "-v", "--verbose":
			c.verbosity = max(c.verbosity, 1)
		case "-vv":
			c.verbosity = 2
		default:
			rest = append(rest, arg)
		}
	}
	return rest
}

func parseOptions(args []string) (options, error) {
	var opts options
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "-o", "--output":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("%s needs a path", arg)
			}
			i++
			opts.output = args[i]
		case "--cache":
			opts.cache = true
		default:
			if strings.HasPrefix(arg, "-") && arg != "-" {
				return opts, fmt.Errorf("unknown flag %s", arg)
			}
			opts.args = append(opts.args, arg)
		}
	}
	return opts, nil
}

func (c *cli) withFile(opts options, fn func(path string, opts options) int) int {
	if len(opts.args) != 1 {
		fmt.Fprintf(c.stderr, "Error: expected exactly one file argument\n\n%s", usage)
		return 2
	}
	return fn(opts.args[0], opts)
}
