package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/shlex"
)

func TestHelpExamplesParse(t *testing.T) {
	for _, ex := range examples {
		t.Run(ex, func(t *testing.T) {
			words, err := shlex.Split(ex)
			if err != nil {
				t.Fatalf("split: %v", err)
			}
			root := newRootCmd()
			cmd, rest, err := root.Find(words[1:])
			if err != nil {
				t.Fatalf("find: %v", err)
			}
			if cmd == root {
				t.Fatalf("no subcommand matched")
			}
			if err := cmd.ParseFlags(rest); err != nil {
				t.Fatalf("flags: %v", err)
			}
			if err := cmd.ValidateArgs(cmd.Flags().Args()); err != nil {
				t.Fatalf("args: %v", err)
			}
		})
	}
}

func TestRootHelpListsExamples(t *testing.T) {
	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"--help"})
	if err := root.Execute(); err != nil {
		t.Fatalf("help: %v", err)
	}
	out := buf.String()
	for _, ex := range examples {
		if !strings.Contains(out, ex) {
			t.Fatalf("help missing example %q", ex)
		}
	}
}
