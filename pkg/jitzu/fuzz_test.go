package jitzu_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/simon-curtis/jitzu/pkg/jitzu"
)

var fuzzSeeds = [][]byte{
	{},
	{0, 0, 5},
	{3, 5, 1, 2, 7, 1, 0, 4, 2, 9},
	{5, 5, 2, 1, 4, 3, 1, 0, 3, 8, 1, 1, 0, 2, 6},
	[]byte("let total = 40\nfun bump(n: Int): Int { n + 1 }\n"),
}

// execute compiles and runs src on a fresh engine.
func execute(t *testing.T, src string) (out string, err error) {
	t.Helper()
	e, err := jitzu.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	e.SetOutput(&buf)
	_, err = e.Extend(src)
	return buf.String(), err
}

// FuzzCompile feeds arbitrary text to the compiler. It may reject the
// input but must not panic, and rejections must carry diagnostics.
func FuzzCompile(f *testing.F) {
	f.Add("let x = 1\nprint(x)\n")
	f.Add("fun f(a: Int): Int { if a < 1 { 0 } else { f(a - 1) } }\nf(3)\n")
	f.Add("match Some(1) { Some(v) => v, None => 0 }\n")
	f.Add("type P { x: Int }\nimpl P { fun get(self): Int { self.x } }\n")
	f.Add("let = {")
	f.Add("break\n")

	f.Fuzz(func(t *testing.T, src string) {
		if len(src) > 2000 {
			return
		}
		e, err := jitzu.New(nil)
		if err != nil {
			t.Fatal(err)
		}
		_, err = e.Compile(src, "fuzz.jz")
		if err == nil {
			return
		}
		var compileErr *jitzu.CompileError
		if !errors.As(err, &compileErr) {
			t.Fatalf("compile returned %T: %v", err, err)
		}
		if len(compileErr.Errors) == 0 {
			t.Fatal("compile error without diagnostics")
		}
	})
}

// FuzzBundleRoundTrip checks that a serialized script behaves like the
// script it was built from.
func FuzzBundleRoundTrip(f *testing.F) {
	for _, seed := range fuzzSeeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		if len(data) > 500 {
			return
		}
		src := newProgramGen(data).program()

		builder, err := jitzu.New(nil)
		if err != nil {
			t.Fatal(err)
		}
		var direct bytes.Buffer
		builder.SetOutput(&direct)
		script, err := builder.Compile(src, "gen.jz")
		if err != nil {
			t.Skipf("generated program does not compile: %v\n%s", err, src)
		}
		bundle, err := builder.Bundle(script, "gen.jz")
		if err != nil {
			t.Fatalf("bundle: %v\n%s", err, src)
		}
		_, directErr := builder.Run(script)

		runner, err := jitzu.New(nil)
		if err != nil {
			t.Fatal(err)
		}
		var loaded bytes.Buffer
		runner.SetOutput(&loaded)
		restored, err := runner.LoadBundle(bundle)
		if err != nil {
			t.Fatalf("load bundle: %v\n%s", err, src)
		}
		_, loadedErr := runner.Run(restored)

		if direct.String() != loaded.String() {
			t.Fatalf("output differs\ndirect: %q\nbundle: %q\n%s", direct.String(), loaded.String(), src)
		}
		if (directErr == nil) != (loadedErr == nil) {
			t.Fatalf("errors differ: %v vs %v\n%s", directErr, loadedErr, src)
		}
	})
}

// FuzzFormat checks that formatting is stable and does not change what a
// program prints.
func FuzzFormat(f *testing.F) {
	for _, seed := range fuzzSeeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		if len(data) > 500 {
			return
		}
		src := newProgramGen(data).program()

		formatted, err := jitzu.Format(src, "gen.jz")
		if err != nil {
			t.Fatalf("format: %v\n%s", err, src)
		}
		again, err := jitzu.Format(formatted, "gen.jz")
		if err != nil {
			t.Fatalf("reformat: %v\n%s", err, formatted)
		}
		if again != formatted {
			t.Fatalf("format is not stable\nfirst:\n%s\nsecond:\n%s", formatted, again)
		}

		want, wantErr := execute(t, src)
		if wantErr != nil {
			t.Skipf("generated program fails: %v", wantErr)
		}
		got, err := execute(t, formatted)
		if err != nil {
			t.Fatalf("formatted program fails: %v\n%s", err, formatted)
		}
		if got != want {
			t.Fatalf("output differs\nbefore: %q\nafter:  %q\n%s", want, got, formatted)
		}
	})
}
