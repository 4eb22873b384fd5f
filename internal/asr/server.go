package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Server transcribes through a running whisper.cpp server (POST /inference).
type Server struct {
	url        string
	language   string
	httpClient *http.Client
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLanguage sets the language hint; empty lets the server decide.
func WithServerLanguage(lang string) ServerOption {
	return func(s *Server) { s.language = lang }
}

// WithServerTimeout bounds each inference request.
func WithServerTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		if d > 0 {
			s.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) ServerOption {
	return func(s *Server) { s.httpClient = c }
}

var _ Transcriber = (*Server)(nil)

// NewServer returns a Server for serverURL, e.g. http://127.0.0.1:8080.
func NewServer(serverURL string, opts ...ServerOption) (*Server, error) {
	if strings.TrimSpace(serverURL) == "" {
		return nil, errors.New("asr: whisper-server url must not be empty")
	}
	s := &Server{
		url:        strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Name implements Transcriber.
func (s *Server) Name() string { return "whisper-server" }

// Transcribe implements Transcriber.
func (s *Server) Transcribe(ctx context.Context, pcm []int16, sampleRate int) (string, error) {
	wavData, err := EncodeWAV(pcm, sampleRate)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "utterance.wav")
	if err != nil {
		return "", fmt.Errorf("asr: create form file: %w", err)
	}
	if _, err := fw.Write(wavData); err != nil {
		return "", fmt.Errorf("asr: write wav data: %w", err)
	}
	if err := mw.WriteField("response_format", "json"); err != nil {
		return "", err
	}
	if s.language != "" {
		if err := mw.WriteField("language", s.language); err != nil {
			return "", err
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("asr: close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url+"/inference", &body)
	if err != nil {
		return "", fmt.Errorf("asr: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", serviceErr("whisper-server request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", serviceErr("whisper-server returned %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	var result struct {
		Text  string `json:"text"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", serviceErr("decode whisper-server response: %v", err)
	}
	if result.Error != "" {
		return "", serviceErr("whisper-server: %s", result.Error)
	}
	return cleanTranscript(result.Text)
}
