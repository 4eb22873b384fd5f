// Package doctor checks that the environment can run a voice control session.
package doctor

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"time"

	"voicescroll/internal/audio"
	"voicescroll/internal/config"
	"voicescroll/internal/hook"
	"voicescroll/internal/vision"

	"github.com/shirou/gopsutil/v3/host"
)

// Result represents a diagnostic check.
type Result struct {
	Name   string `json:"name"`
	Pass   bool   `json:"pass"`
	Detail string `json:"detail"`
}

// Run executes doctor checks.
func Run(ctx context.Context, cfg *config.Config) []Result {
	results := []Result{
		checkHost(ctx),
		checkFile("config path", cfg.Paths.ConfigPath),
		checkPortAudioPkgConfig(),
		checkInputDevices(),
		checkDisplay(),
		checkASR(ctx, cfg),
	}
	for _, c := range cfg.Commands {
		results = append(results, checkCommand(c))
	}
	return results
}

func checkHost(ctx context.Context) Result {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return Result{Name: "host", Pass: false, Detail: err.Error()}
	}
	return Result{Name: "host", Pass: true, Detail: fmt.Sprintf("%s %s (%s, kernel %s)", info.Platform, info.PlatformVersion, info.KernelArch, info.KernelVersion)}
}

func checkFile(label, path string) Result {
	if path == "" {
		return Result{Name: label, Pass: false, Detail: "not set"}
	}
	if _, err := os.Stat(os.ExpandEnv(path)); err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	return Result{Name: label, Pass: true, Detail: path}
}

func checkPortAudioPkgConfig() Result {
	pkg, err := exec.LookPath("pkg-config")
	if err != nil {
		return Result{Name: "pkg-config", Pass: false, Detail: "pkg-config not found"}
	}
	if err := exec.Command(pkg, "--exists", "portaudio-2.0").Run(); err != nil {
		return Result{Name: "portaudio", Pass: false, Detail: "portaudio-2.0 not found (brew install portaudio / apt install portaudio19-dev)"}
	}
	if out, err := exec.Command(pkg, "--modversion", "portaudio-2.0").Output(); err == nil {
		return Result{Name: "portaudio", Pass: true, Detail: strings.TrimSpace(string(out))}
	}
	return Result{Name: "portaudio", Pass: true, Detail: "found via pkg-config"}
}

func checkInputDevices() Result {
	devs, err := audio.Devices()
	if err != nil {
		return Result{Name: "microphone", Pass: false, Detail: err.Error()}
	}
	if len(devs) == 0 {
		return Result{Name: "microphone", Pass: false, Detail: audio.ErrNoInputDevice.Error()}
	}
	for _, d := range devs {
		if d.Default {
			return Result{Name: "microphone", Pass: true, Detail: fmt.Sprintf("%d input device(s), default %q", len(devs), d.Name)}
		}
	}
	return Result{Name: "microphone", Pass: true, Detail: fmt.Sprintf("%d input device(s)", len(devs))}
}

func checkDisplay() Result {
	b, err := vision.DisplayBounds()
	if err != nil {
		return Result{Name: "display", Pass: false, Detail: err.Error()}
	}
	return Result{Name: "display", Pass: true, Detail: fmt.Sprintf("%dx%d", b.Dx(), b.Dy())}
}

func checkASR(ctx context.Context, cfg *config.Config) Result {
	const label = "asr"
	switch strings.ToLower(strings.TrimSpace(cfg.ASR.Backend)) {
	case "", "whisper-server":
		return checkServer(ctx, cfg.ASR.ServerURL)
	case "openai":
		if cfg.ASR.APIKey == "" {
			return Result{Name: label, Pass: false, Detail: "openai backend needs asr.api_key or OPENAI_API_KEY"}
		}
		return Result{Name: label, Pass: true, Detail: "openai " + cfg.ASR.Model}
	case "whisper":
		r := checkFile(label, cfg.ASR.ModelPath)
		if r.Pass {
			r.Detail = "whisper model " + r.Detail
		}
		return r
	default:
		return Result{Name: label, Pass: false, Detail: fmt.Sprintf("unknown backend %q", cfg.ASR.Backend)}
	}
}

// checkServer only verifies that something answers HTTP at serverURL.
func checkServer(ctx context.Context, serverURL string) Result {
	const label = "asr"
	u, err := url.Parse(serverURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Result{Name: label, Pass: false, Detail: fmt.Sprintf("invalid server_url %q", serverURL)}
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, serverURL, nil)
	if err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return Result{Name: label, Pass: false, Detail: fmt.Sprintf("whisper-server unreachable: %v", err)}
	}
	_ = resp.Body.Close()
	return Result{Name: label, Pass: true, Detail: "whisper-server " + serverURL}
}

func checkCommand(c config.CommandConfig) Result {
	label := fmt.Sprintf("command %q", c.Phrase)
	argv, err := hook.ParseArgs(c.Run)
	if err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	if len(argv) == 0 {
		return Result{Name: label, Pass: false, Detail: "run not set"}
	}
	path := os.ExpandEnv(argv[0])
	if strings.ContainsAny(path, `/\`) {
		info, err := os.Stat(path)
		if err != nil {
			return Result{Name: label, Pass: false, Detail: err.Error()}
		}
		if info.IsDir() {
			return Result{Name: label, Pass: false, Detail: "is a directory"}
		}
		if info.Mode().Perm()&0o111 == 0 {
			return Result{Name: label, Pass: false, Detail: "not executable"}
		}
		return Result{Name: label, Pass: true, Detail: path}
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	return Result{Name: label, Pass: true, Detail: resolved}
}
