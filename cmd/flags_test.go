package cmd

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func flagCommand(t *testing.T) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "render"}
	c.Flags().Int("concurrency", 4, "")
	c.Flags().Bool("json", false, "")
	c.Flags().String("out-dir", ".", "")
	c.Flags().Float64("strip-width", 0, "")
	if err := c.Flags().Parse([]string{"--concurrency=8", "--json", "--out-dir=proofs", "--strip-width=53"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return c
}

func TestMustGet(t *testing.T) {
	c := flagCommand(t)
	if got := mustGetInt(c, "concurrency"); got != 8 {
		t.Errorf("concurrency = %d, want 8", got)
	}
	if !mustGetBool(c, "json") {
		t.Error("json flag not set")
	}
	if got := mustGetString(c, "out-dir"); got != "proofs" {
		t.Errorf("out-dir = %q, want proofs", got)
	}
	if got := mustGetFloat64(c, "strip-width"); got != 53 {
		t.Errorf("strip-width = %v, want 53", got)
	}
}

func TestMustGet_Panics(t *testing.T) {
	tests := []struct {
		name string
		get  func(*cobra.Command)
	}{
		{"unknown flag", func(c *cobra.Command) { mustGetInt(c, "missing") }},
		{"type mismatch", func(c *cobra.Command) { mustGetBool(c, "out-dir") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := flagCommand(t)
			defer func() {
				r := recover()
				if r == nil {
					t.Fatal("expected panic")
				}
				if msg, _ := r.(string); !strings.Contains(msg, "flag error") {
					t.Errorf("unexpected panic %v", r)
				}
			}()
			tt.get(c)
		})
	}
}
