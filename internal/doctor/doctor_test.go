package doctor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"voicescroll/internal/config"
)

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "notify.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write: %v", err)
	}
	plain := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(plain, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cases := []struct {
		run  string
		pass bool
	}{
		{script + " --flag", true},
		{plain, false},
		{dir, false},
		{"sh -c 'echo hi'", true},
		{"definitely-not-a-real-binary-xyz", false},
		{"", false},
	}
	for _, c := range cases {
		r := checkCommand(config.CommandConfig{Phrase: "p", Run: c.run})
		if r.Pass != c.pass {
			t.Fatalf("checkCommand(%q) pass=%v want %v (%s)", c.run, r.Pass, c.pass, r.Detail)
		}
	}
}

func TestCheckASR(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cfg, _ := config.Default()
	cfg.ASR.ServerURL = srv.URL
	if r := checkASR(context.Background(), cfg); !r.Pass {
		t.Fatalf("reachable server should pass: %s", r.Detail)
	}

	cfg.ASR.ServerURL = "not a url"
	if r := checkASR(context.Background(), cfg); r.Pass {
		t.Fatalf("invalid url should fail")
	}

	cfg.ASR.Backend = "openai"
	cfg.ASR.APIKey = ""
	if r := checkASR(context.Background(), cfg); r.Pass {
		t.Fatalf("openai without key should fail")
	}
	cfg.ASR.APIKey = "sk-test"
	if r := checkASR(context.Background(), cfg); !r.Pass {
		t.Fatalf("openai with key should pass")
	}

	cfg.ASR.Backend = "whisper"
	cfg.ASR.ModelPath = filepath.Join(t.TempDir(), "missing.bin")
	if r := checkASR(context.Background(), cfg); r.Pass {
		t.Fatalf("missing model should fail")
	}

	cfg.ASR.Backend = "vosk"
	if r := checkASR(context.Background(), cfg); r.Pass {
		t.Fatalf("unknown backend should fail")
	}
}

func TestCheckFile(t *testing.T) {
	if r := checkFile("x", ""); r.Pass || r.Detail != "not set" {
		t.Fatalf("empty path: %+v", r)
	}
	p := filepath.Join(t.TempDir(), "f")
	if err := os.WriteFile(p, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if r := checkFile("x", p); !r.Pass {
		t.Fatalf("existing file: %+v", r)
	}
}
