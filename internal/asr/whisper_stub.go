//go:build !whisper

package asr

import (
	"errors"

	"voicescroll/internal/config"

	"github.com/sirupsen/logrus"
)

func newLocalWhisper(_ *config.Config, _ *logrus.Logger) (Transcriber, error) {
	return nil, errors.New("asr.backend \"whisper\" needs a build with '-tags whisper'")
}
