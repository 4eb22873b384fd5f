// Package asr turns captured utterances into text.
//
// Three backends implement Transcriber: a whisper.cpp server reached over
// HTTP (the default), the OpenAI audio transcription API, and an in-process
// whisper.cpp model that is only compiled with -tags whisper.
package asr

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"voicescroll/internal/config"

	"github.com/sirupsen/logrus"
)

var (
	// ErrUnintelligible means audio was captured but produced no text.
	ErrUnintelligible = errors.New("could not understand audio")
	// ErrService wraps transport and backend failures.
	ErrService = errors.New("transcription service error")
)

// Transcriber converts 16-bit mono PCM into text.
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, pcm []int16, sampleRate int) (string, error)
}

// New returns the backend selected by cfg.ASR.Backend.
func New(cfg *config.Config, logger *logrus.Logger) (Transcriber, error) {
	timeout := time.Duration(cfg.ASR.TimeoutSec * float64(time.Second))
	switch strings.ToLower(strings.TrimSpace(cfg.ASR.Backend)) {
	case "", "whisper-server":
		return NewServer(cfg.ASR.ServerURL,
			WithServerLanguage(cfg.ASR.Language),
			WithServerTimeout(timeout),
		)
	case "openai":
		return NewOpenAI(cfg.ASR.APIKey, cfg.ASR.Model,
			WithOpenAILanguage(cfg.ASR.Language),
			WithOpenAITimeout(timeout),
		)
	case "whisper":
		return newLocalWhisper(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown asr.backend %q (want whisper-server, openai or whisper)", cfg.ASR.Backend)
	}
}

// annotationRE matches whisper's non-speech markers such as [BLANK_AUDIO] or (wind blowing).
var annotationRE = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)`)

// cleanTranscript strips non-speech markers and reports empty results as
// ErrUnintelligible.
func cleanTranscript(text string) (string, error) {
	text = annotationRE.ReplaceAllString(text, " ")
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return "", ErrUnintelligible
	}
	return text, nil
}

func serviceErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrService, fmt.Sprintf(format, args...))
}
