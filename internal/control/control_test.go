package control

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"voicescroll/internal/asr"
	"voicescroll/internal/config"
	"voicescroll/internal/logging"
	"voicescroll/internal/vision"
)

// testConfig writes a config under a temporary HOME and returns its path.
func testConfig(t *testing.T, mutate func(*config.Config)) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	cfg.Logging.Stdout = false
	cfg.Input.PauseSec = 0
	if mutate != nil {
		mutate(cfg)
	}
	path := filepath.Join(home, "config.toml")
	if err := config.Save(cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	return path
}

func TestTailFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "log")
	if err := os.WriteFile(p, []byte("one\ntwo\n\nthree\nfour\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var buf bytes.Buffer
	if err := tailFile(&buf, p, 2); err != nil {
		t.Fatalf("tail: %v", err)
	}
	if buf.String() != "three\nfour\n" {
		t.Fatalf("tail = %q", buf.String())
	}
}

func TestMatchAndReport(t *testing.T) {
	path := testConfig(t, nil)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var buf bytes.Buffer
	if err := matchAndReport(context.Background(), &buf, cfg, logging.NewTestLogger(), "Please scroll down now", true); err != nil {
		t.Fatalf("match: %v", err)
	}
	want := "matched \"scroll\" -> scroll_down\n  scroll -500\n"
	if buf.String() != want {
		t.Fatalf("output = %q want %q", buf.String(), want)
	}

	buf.Reset()
	if err := matchAndReport(context.Background(), &buf, cfg, logging.NewTestLogger(), "banana", false); err != nil {
		t.Fatalf("match: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "unknown command: \"banana\"") {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestTestCommandCmd(t *testing.T) {
	path := testConfig(t, nil)
	cmd := NewTestCommandCmd(&path)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"exit"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if buf.String() != "matched \"exit\" -> stop\n" {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestTranscribeCmdDispatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"text":" Like "}`)
	}))
	defer srv.Close()

	path := testConfig(t, func(c *config.Config) { c.ASR.ServerURL = srv.URL })
	wavData, err := asr.EncodeWAV(make([]int16, 1600), 16000)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	wavPath := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(wavPath, wavData, 0o644); err != nil {
		t.Fatalf("write wav: %v", err)
	}

	cmd := NewTranscribeCmd(&path)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{wavPath, "--dispatch"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	want := "Like\nmatched \"like\" -> like\n  click (960,540)\n  click (960,540)\n"
	if buf.String() != want {
		t.Fatalf("output = %q want %q", buf.String(), want)
	}
}

func TestCommandsCmdListsConfigured(t *testing.T) {
	path := testConfig(t, func(c *config.Config) {
		c.Commands = []config.CommandConfig{{Phrase: "next video", Run: "/bin/true"}}
	})
	cmd := NewCommandsCmd(&path)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 10 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "scroll") || !strings.Contains(lines[9], "next video") {
		t.Fatalf("unexpected order:\n%s", buf.String())
	}
}

func TestMicSetSavesConfig(t *testing.T) {
	path := testConfig(t, nil)
	cmd := newMicSetCmd(&path)
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{"USB Audio"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Audio.DeviceName != "USB Audio" {
		t.Fatalf("device = %q", cfg.Audio.DeviceName)
	}
}

func TestMicSetLeavesEnvSecretsOutOfConfig(t *testing.T) {
	path := testConfig(t, nil)
	t.Setenv("OPENAI_API_KEY", "sk-from-env")
	t.Setenv("VOICESCROLL_METRICS_ADDR", "127.0.0.1:9999")
	cmd := newMicSetCmd(&path)
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{"USB Audio"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.Contains(string(data), "sk-from-env") || strings.Contains(string(data), "127.0.0.1:9999") {
		t.Fatalf("env-only values saved:\n%s", data)
	}
}

func TestModelsSetResolvesBareName(t *testing.T) {
	path := testConfig(t, nil)
	cmd := newModelsSetCmd(&path)
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{"ggml-tiny.en.bin"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if want := filepath.Join(cfg.Paths.StateDir, "models", "ggml-tiny.en.bin"); cfg.ASR.ModelPath != want {
		t.Fatalf("model_path = %q want %q", cfg.ASR.ModelPath, want)
	}
}

func TestWriteDetection(t *testing.T) {
	res := detection{
		Time:    time.Unix(1700000000, 0).UTC(),
		Regions: []vision.Rect{{X: 760, Y: 390, W: 400, H: 300}},
	}
	var buf bytes.Buffer
	if err := writeDetection(&buf, res, false); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "Video Players Detected: 1\n  [0] x=760 y=390 w=400 h=300 centre=(960,540)\n"
	if buf.String() != want {
		t.Fatalf("text = %q", buf.String())
	}

	buf.Reset()
	if err := writeDetection(&buf, res, true); err != nil {
		t.Fatalf("write json: %v", err)
	}
	var got detection
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got.Regions) != 1 || got.Regions[0] != res.Regions[0] {
		t.Fatalf("json regions = %v", got.Regions)
	}
}
