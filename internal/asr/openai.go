package asr

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI transcribes with the OpenAI audio transcription endpoint.
type OpenAI struct {
	client   oai.Client
	model    string
	language string
}

type openAIConfig struct {
	baseURL  string
	language string
	timeout  time.Duration
}

// OpenAIOption configures an OpenAI transcriber.
type OpenAIOption func(*openAIConfig)

// WithOpenAIBaseURL points the client at a compatible endpoint.
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(c *openAIConfig) { c.baseURL = url }
}

// WithOpenAILanguage sets the ISO-639-1 language hint.
func WithOpenAILanguage(lang string) OpenAIOption {
	return func(c *openAIConfig) { c.language = lang }
}

// WithOpenAITimeout sets a per-request HTTP timeout.
func WithOpenAITimeout(d time.Duration) OpenAIOption {
	return func(c *openAIConfig) { c.timeout = d }
}

var _ Transcriber = (*OpenAI)(nil)

// NewOpenAI builds the transcriber. An empty model selects whisper-1.
func NewOpenAI(apiKey, model string, opts ...OpenAIOption) (*OpenAI, error) {
	if apiKey == "" {
		return nil, errors.New("asr: openai backend needs asr.api_key or OPENAI_API_KEY")
	}
	if model == "" {
		model = string(oai.AudioModelWhisper1)
	}
	cfg := &openAIConfig{}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}))
	}
	return &OpenAI{
		client:   oai.NewClient(reqOpts...),
		model:    model,
		language: cfg.language,
	}, nil
}

// Name implements Transcriber.
func (o *OpenAI) Name() string { return "openai" }

// Transcribe implements Transcriber.
func (o *OpenAI) Transcribe(ctx context.Context, pcm []int16, sampleRate int) (string, error) {
	wavData, err := EncodeWAV(pcm, sampleRate)
	if err != nil {
		return "", err
	}
	params := oai.AudioTranscriptionNewParams{
		File:  oai.File(bytes.NewReader(wavData), "utterance.wav", "audio/wav"),
		Model: oai.AudioModel(o.model),
	}
	if o.language != "" {
		params.Language = oai.String(o.language)
	}
	resp, err := o.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", serviceErr("openai transcription: %v", err)
	}
	return cleanTranscript(resp.Text)
}
