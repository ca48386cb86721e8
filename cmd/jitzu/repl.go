package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/simon-curtis/jitzu/internal/object"
	"github.com/simon-curtis/jitzu/pkg/jitzu"
)

const (
	prompt         = "jz> "
	continuePrompt = "... "
)

// repl reads batches from stdin and extends one engine with each. A batch
// ends at a line where every opened brace, bracket and paren is closed.
func (c *cli) repl() int {
	e, err := c.newEngine("")
	if err != nil {
		c.report(err, "")
		return 1
	}

	reader := bufio.NewReader(c.stdin)
	var batch strings.Builder
	depth := 0
	for {
		if c.interactive {
			if batch.Len() == 0 {
				fmt.Fprint(c.stdout, prompt)
			} else {
				fmt.Fprint(c.stdout, continuePrompt)
			}
		}
		line, err := reader.ReadString('\n')
		if line != "" {
			batch.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				batch.WriteByte('\n')
			}
			depth += nesting(line)
		}
		if err != nil && err != io.EOF {
			c.report(err, "")
			return 1
		}
		atEOF := err == io.EOF

		if depth <= 0 || atEOF {
			source := batch.String()
			batch.Reset()
			depth = 0
			if strings.TrimSpace(source) != "" {
				c.evalBatch(e, source)
			}
		}
		if atEOF {
			return 0
		}
	}
}

func (c *cli) evalBatch(e *jitzu.Engine, source string) {
	result, err := e.ExtendFile(source, "<repl>")
	if err != nil {
		c.report(err, source)
		return
	}
	if result != nil && result != object.UNIT {
		fmt.Fprintln(c.stdout, result.Inspect())
	}
}

// nesting returns how many more brackets line opens than it closes,
// ignoring string and char literals and line comments.
func nesting(line string) int {
	depth := 0
	var quote rune
	escaped := false
	prev := rune(0)
	for _, r := range line {
		switch {
		case quote != 0:
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == quote:
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '/' && prev == '/':
			return depth
		case r == '{' || r == '(' || r == '[':
			depth++
		case r == '}' || r == ')' || r == ']':
			depth--
		}
		prev = r
	}
	return depth
}
