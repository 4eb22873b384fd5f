package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	defaultStateDirLinux = ".local/state/voicescroll"
	defaultConfigDir     = ".config/voicescroll"
	defaultScrollAmount  = 500
	defaultMinEnergy     = 300
)

// Config holds user configuration loaded from TOML (or YAML).
type Config struct {
	Listen struct {
		TimeoutSec     float64 `toml:"timeout_sec" yaml:"timeout_sec"`
		PhraseLimitSec float64 `toml:"phrase_limit_sec" yaml:"phrase_limit_sec"`
		PauseSec       float64 `toml:"pause_sec" yaml:"pause_sec"`
		CalibrationSec float64 `toml:"calibration_sec" yaml:"calibration_sec"`
		DynamicRatio   float64 `toml:"dynamic_ratio" yaml:"dynamic_ratio"`
		MinEnergy      float64 `toml:"min_energy" yaml:"min_energy"`
		VAD            bool    `toml:"vad" yaml:"vad"`
		VADMode        int     `toml:"vad_mode" yaml:"vad_mode"`
		PrerollMS      int     `toml:"preroll_ms" yaml:"preroll_ms"`
	} `toml:"listen" yaml:"listen"`

	Audio struct {
		DeviceName string `toml:"device_name" yaml:"device_name"`
		SampleRate int    `toml:"sample_rate" yaml:"sample_rate"`
		FrameMS    int    `toml:"frame_ms" yaml:"frame_ms"`
	} `toml:"audio" yaml:"audio"`

	ASR struct {
		Backend    string  `toml:"backend" yaml:"backend"` // whisper-server, openai, whisper
		ServerURL  string  `toml:"server_url" yaml:"server_url"`
		Model      string  `toml:"model" yaml:"model"`
		Language   string  `toml:"language" yaml:"language"`
		APIKey     string  `toml:"api_key" yaml:"api_key"`
		ModelPath  string  `toml:"model_path" yaml:"model_path"`
		TimeoutSec float64 `toml:"timeout_sec" yaml:"timeout_sec"`
	} `toml:"asr" yaml:"asr"`

	Input struct {
		Backend      string  `toml:"backend" yaml:"backend"` // robotgo, dryrun
		ScrollAmount int     `toml:"scroll_amount" yaml:"scroll_amount"`
		PauseSec     float64 `toml:"pause_sec" yaml:"pause_sec"`
		LikeX        int     `toml:"like_x" yaml:"like_x"`
		LikeY        int     `toml:"like_y" yaml:"like_y"`
		FailSafe     bool    `toml:"failsafe" yaml:"failsafe"`
	} `toml:"input" yaml:"input"`

	Match struct {
		Phonetic          bool    `toml:"phonetic" yaml:"phonetic"`
		PhoneticThreshold float64 `toml:"phonetic_threshold" yaml:"phonetic_threshold"`
	} `toml:"match" yaml:"match"`

	Commands []CommandConfig `toml:"commands" yaml:"commands"`

	Detector DetectorConfig `toml:"detector" yaml:"detector"`

	Logging struct {
		Level  string `toml:"level" yaml:"level"`   // debug, info, warn, error
		Format string `toml:"format" yaml:"format"` // text, json
		Stdout bool   `toml:"stdout" yaml:"stdout"`
	} `toml:"logging" yaml:"logging"`

	Paths struct {
		StateDir    string `toml:"state_dir" yaml:"state_dir"`
		LogPath     string `toml:"log_path" yaml:"log_path"`
		PidPath     string `toml:"pid_path" yaml:"pid_path"`
		SnapshotDir string `toml:"snapshot_dir" yaml:"snapshot_dir"`
		ConfigPath  string `toml:"-" yaml:"-"`
	} `toml:"paths" yaml:"paths"`

	Metrics struct {
		Enabled bool   `toml:"enabled" yaml:"enabled"`
		Addr    string `toml:"addr" yaml:"addr"`
	} `toml:"metrics" yaml:"metrics"`
}

// Default returns Config populated with defaults.
func Default() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	stateDir := filepath.Join(home, defaultStateDirLinux)
	if isMac() {
		stateDir = filepath.Join(home, "Library", "Application Support", "voicescroll")
	}

	cfg := &Config{}

	cfg.Listen.TimeoutSec = 1
	cfg.Listen.PhraseLimitSec = 3
	cfg.Listen.PauseSec = 0.8
	cfg.Listen.CalibrationSec = 2
	cfg.Listen.DynamicRatio = 1.5
	cfg.Listen.MinEnergy = defaultMinEnergy
	cfg.Listen.VAD = false
	cfg.Listen.VADMode = 2
	cfg.Listen.PrerollMS = 500

	cfg.Audio.SampleRate = 16000
	cfg.Audio.FrameMS = 20

	cfg.ASR.Backend = "whisper-server"
	cfg.ASR.ServerURL = "http://127.0.0.1:8080"
	cfg.ASR.Model = "whisper-1"
	cfg.ASR.Language = "en"
	cfg.ASR.ModelPath = filepath.Join(stateDir, "models", "ggml-base.en.bin")
	cfg.ASR.TimeoutSec = 30

	cfg.Input.Backend = "robotgo"
	cfg.Input.ScrollAmount = defaultScrollAmount
	cfg.Input.PauseSec = 0.1
	cfg.Input.FailSafe = true

	cfg.Match.Phonetic = false
	cfg.Match.PhoneticThreshold = 0.85

	cfg.Commands = []CommandConfig{}
	cfg.Detector = DefaultDetector()

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"
	cfg.Logging.Stdout = true

	cfg.Paths.StateDir = stateDir
	cfg.Paths.LogPath = filepath.Join(stateDir, "voicescroll.log")
	cfg.Paths.PidPath = filepath.Join(stateDir, "voicescroll.pid")
	cfg.Paths.SnapshotDir = "."

	cfg.Metrics.Enabled = false
	cfg.Metrics.Addr = "127.0.0.1:9318"

	return cfg, nil
}

// Load loads config from file, applying defaults and VOICESCROLL_* env
// overrides. A missing file is created from the defaults.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFile is Load without env overrides. Use it when the result is written
// back with Save so environment-only values never reach the file.
func LoadFile(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path == "" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, defaultConfigDir, "config.toml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := Save(cfg, path); err != nil {
				return nil, err
			}
			cfg.Paths.ConfigPath = path
			return cfg, nil
		}
		return nil, err
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Paths.ConfigPath = path
	return cfg, nil
}

// Save writes cfg to path, encoding by file extension.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var (
		out []byte
		err error
	)
	if isYAML(path) {
		out, err = yaml.Marshal(cfg)
	} else {
		out, err = toml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o600)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func isMac() bool {
	return runtime.GOOS == "darwin"
}

// MustStatePaths ensures state dirs exist.
func MustStatePaths(cfg *Config) error {
	for _, p := range []string{cfg.Paths.StateDir, filepath.Dir(cfg.Paths.LogPath), filepath.Dir(cfg.Paths.PidPath)} {
		if p == "" {
			continue
		}
		if err := os.MkdirAll(p, 0o755); err != nil {
			return err
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VOICESCROLL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("VOICESCROLL_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("VOICESCROLL_LOG_STDOUT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Logging.Stdout = b
		}
	}
	if v := os.Getenv("VOICESCROLL_ASR_BACKEND"); v != "" {
		cfg.ASR.Backend = v
	}
	if v := os.Getenv("VOICESCROLL_ASR_URL"); v != "" {
		cfg.ASR.ServerURL = v
	}
	if v := os.Getenv("VOICESCROLL_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
		cfg.Metrics.Enabled = true
	}
	if v := os.Getenv("VOICESCROLL_SCROLL_AMOUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Input.ScrollAmount = n
		}
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.ASR.APIKey == "" {
		cfg.ASR.APIKey = v
	}
}
