//go:build whisper

package asr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"voicescroll/internal/config"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/sirupsen/logrus"
)

const whisperRate = 16000

// localWhisper runs a whisper.cpp model in-process.
type localWhisper struct {
	logger   *logrus.Logger
	language string
	model    whisper.Model
	mu       sync.Mutex
}

func newLocalWhisper(cfg *config.Config, logger *logrus.Logger) (Transcriber, error) {
	model, err := whisper.New(cfg.ASR.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", cfg.ASR.ModelPath, err)
	}
	return &localWhisper{
		logger:   logger,
		language: strings.TrimSpace(cfg.ASR.Language),
		model:    model,
	}, nil
}

func (w *localWhisper) Name() string { return "whisper" }

func (w *localWhisper) Close() error { return w.model.Close() }

func (w *localWhisper) Transcribe(ctx context.Context, pcm []int16, sampleRate int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	samples := ResampleLinear(ToFloat32(pcm), sampleRate, whisperRate)

	w.mu.Lock()
	defer w.mu.Unlock()

	wctx, err := w.model.NewContext()
	if err != nil {
		return "", serviceErr("whisper context: %v", err)
	}
	if w.language != "" {
		if err := wctx.SetLanguage(w.language); err != nil {
			w.logger.Warnf("set language: %v", err)
		}
	}
	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return "", serviceErr("whisper process: %v", err)
	}
	var b strings.Builder
	for {
		seg, err := wctx.NextSegment()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", serviceErr("whisper segment: %v", err)
		}
		b.WriteString(seg.Text)
		b.WriteByte(' ')
	}
	return cleanTranscript(b.String())
}
