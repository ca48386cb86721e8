package host

import (
	"strings"
	"testing"
)

func TestParseManifest_Defaults(t *testing.T) {
	src := `
modules:
  - name: Geo
    types:
      - name: Geo.Point
        methods:
          - name: Dist
            params: [Geo.Point]
            returns: Double
          - name: Reset
    extensions:
      - name: Describe
        params: [Geo.Point]
        returns: String
`
	m, err := ParseManifest([]byte(src), "geo.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mod := m.Modules[0]
	dist := mod.Types[0].Methods[0]
	if dist.Impl != "Geo.Point.Dist(Geo.Point)" {
		t.Errorf("impl = %q, want Geo.Point.Dist(Geo.Point)", dist.Impl)
	}
	reset := mod.Types[0].Methods[1]
	if reset.Returns != "Unit" {
		t.Errorf("returns = %q, want Unit", reset.Returns)
	}
	if got := mod.Extensions[0].Impl; got != "Geo.Describe(Geo.Point)" {
		t.Errorf("extension impl = %q, want Geo.Describe(Geo.Point)", got)
	}
	if names := m.ModuleNames(); len(names) != 1 || names[0] != "Geo" {
		t.Errorf("ModuleNames() = %v, want [Geo]", names)
	}
}

func TestParseManifest_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"empty", `modules: []`, "no modules defined"},
		{"missing module name", `
modules:
  - types: [{name: A}]
`, "name is required"},
		{"duplicate module", `
modules:
  - name: A
  - name: A
`, "duplicate module A"},
		{"duplicate type", `
modules:
  - name: A
    types: [{name: A.T}]
  - name: B
    types: [{name: A.T}]
`, "type already declared by module A"},
		{"instance method on static type", `
modules:
  - name: A
    types:
      - name: A.M
        static: true
        methods: [{name: F}]
`, "static type A.M cannot have instance methods"},
		{"extension without receiver", `
modules:
  - name: A
    extensions: [{name: F}]
`, "need a receiver parameter"},
		{"variadic without params", `
modules:
  - name: A
    types:
      - name: A.T
        methods: [{name: F, variadic: true}]
`, "variadic functions need at least one parameter"},
		{"duplicate type parameter", `
modules:
  - name: A
    types:
      - name: A.T
        methods: [{name: F, type_params: [T, T], params: [T]}]
`, "duplicate type parameter T"},
		{"bad yaml", `modules: [`, "parsing m.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tt.src), "m.yaml")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestManifestMarshalRoundTrip(t *testing.T) {
	m, err := ParseManifest(systemManifest, "system.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := m.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	again, err := ParseManifest(data, "again.yaml")
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if got, want := strings.Join(again.ModuleNames(), ","), strings.Join(m.ModuleNames(), ","); got != want {
		t.Errorf("modules = %s, want %s", got, want)
	}
}
