package main

import (
	"fmt"
	"os"

	"voicescroll/internal/config"
)

func main() {
	path := ""
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	cfg, err := config.Load(path)
	if err != nil {
		panic(err)
	}
	fmt.Printf("config=%s asr.backend=%s input.backend=%s scroll_amount=%d\n",
		cfg.Paths.ConfigPath, cfg.ASR.Backend, cfg.Input.Backend, cfg.Input.ScrollAmount)
	fmt.Printf("listen timeout=%.1fs phrase_limit=%.1fs calibration=%.1fs vad=%v\n",
		cfg.Listen.TimeoutSec, cfg.Listen.PhraseLimitSec, cfg.Listen.CalibrationSec, cfg.Listen.VAD)
	d := cfg.Detector
	fmt.Printf("detector min_value=%d min=%dx%d aspect=[%.2f,%.2f] margin=%d max_area=%.2f\n",
		d.MinValue, d.MinWidth, d.MinHeight, d.MinAspect, d.MaxAspect, d.BorderMargin, d.MaxAreaRatio)
	for i, c := range cfg.Commands {
		fmt.Printf("command %d phrase=%q run=%s timeout=%.0fs\n", i, c.Phrase, c.Run, c.TimeoutSec)
	}
}
