package cli

import (
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func TestResolve(t *testing.T) {
	input := `
log_level: debug
log-format: json
log_pretty: false
precision: 12
ratio: 0.5
map:
  - a.yaml
  - b.json
`

	res, err := resolve(t.Context())(strings.NewReader(input))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	tests := []struct {
		flag string
		want any
	}{
		{"log-level", "debug"},
		{"log-format", "json"},
		{"log-pretty", false},
		{"precision", "12"},
		{"ratio", "0.5"},
		{"map", "a.yaml,b.json"},
		{"missing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			got, err := res.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: tt.flag}})
			if err != nil {
				t.Fatalf("Resolve(%q): %v", tt.flag, err)
			}

			if got != tt.want {
				t.Errorf("Resolve(%q) = %#v, want %#v", tt.flag, got, tt.want)
			}
		})
	}
}

func TestResolve_EmptyAndMalformed(t *testing.T) {
	for name, input := range map[string]string{
		"empty":     "",
		"malformed": "log_level: [unterminated",
		"scalar":    "just a string",
	} {
		t.Run(name, func(t *testing.T) {
			res, err := resolve(t.Context())(strings.NewReader(input))
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}

			got, _ := res.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: "log-level"}})
			if got != nil {
				t.Errorf("Resolve = %#v, want nil", got)
			}
		})
	}
}
