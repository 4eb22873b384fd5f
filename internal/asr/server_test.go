package asr

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestServerTranscribe(t *testing.T) {
	var gotLang, gotFormat string
	var gotSize int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/inference" {
			t.Errorf("path %q", r.URL.Path)
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		data, _ := io.ReadAll(f)
		gotSize = len(data)
		gotLang = r.FormValue("language")
		gotFormat = r.FormValue("response_format")
		_, _ = io.WriteString(w, `{"text":"  Scroll Down [BLANK_AUDIO] "}`)
	}))
	defer srv.Close()

	s, err := NewServer(srv.URL+"/", WithServerLanguage("en"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	text, err := s.Transcribe(context.Background(), make([]int16, 160), 16000)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if text != "Scroll Down" {
		t.Fatalf("text = %q", text)
	}
	if gotLang != "en" || gotFormat != "json" {
		t.Fatalf("fields language=%q response_format=%q", gotLang, gotFormat)
	}
	if gotSize != 44+320 {
		t.Fatalf("wav size = %d, want %d", gotSize, 44+320)
	}
}

func TestServerEmptyTextIsUnintelligible(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"text":" [BLANK_AUDIO] "}`)
	}))
	defer srv.Close()

	s, _ := NewServer(srv.URL)
	_, err := s.Transcribe(context.Background(), make([]int16, 16), 16000)
	if !errors.Is(err, ErrUnintelligible) {
		t.Fatalf("err = %v, want ErrUnintelligible", err)
	}
}

func TestServerFailureIsServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s, _ := NewServer(srv.URL)
	_, err := s.Transcribe(context.Background(), make([]int16, 16), 16000)
	if !errors.Is(err, ErrService) {
		t.Fatalf("err = %v, want ErrService", err)
	}
	if !strings.Contains(err.Error(), "model not loaded") {
		t.Fatalf("error should carry body: %v", err)
	}
}

func TestServerUnreachableIsServiceError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	s, _ := NewServer(url)
	_, err := s.Transcribe(context.Background(), make([]int16, 16), 16000)
	if !errors.Is(err, ErrService) {
		t.Fatalf("err = %v, want ErrService", err)
	}
}

func TestNewServerRequiresURL(t *testing.T) {
	if _, err := NewServer("  "); err == nil {
		t.Fatalf("expected error for empty url")
	}
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	if _, err := NewOpenAI("", ""); err == nil {
		t.Fatalf("expected error without api key")
	}
	o, err := NewOpenAI("sk-test", "")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if o.model != "whisper-1" {
		t.Fatalf("default model = %q", o.model)
	}
}

func TestCleanTranscript(t *testing.T) {
	cases := []struct {
		in   string
		want string
		err  bool
	}{
		{"  like ", "like", false},
		{"(music) scroll   up", "scroll up", false},
		{"[BLANK_AUDIO]", "", true},
		{"", "", true},
	}
	for _, c := range cases {
		got, err := cleanTranscript(c.in)
		if c.err {
			if !errors.Is(err, ErrUnintelligible) {
				t.Fatalf("cleanTranscript(%q) err = %v", c.in, err)
			}
			continue
		}
		if err != nil || got != c.want {
			t.Fatalf("cleanTranscript(%q) = %q, %v want %q", c.in, got, err, c.want)
		}
	}
}
