package config

// CommandConfig defines a user trigger phrase bound to a shell command.
type CommandConfig struct {
	Phrase     string            `toml:"phrase" yaml:"phrase"` // matched case-insensitively
	Run        string            `toml:"run" yaml:"run"`       // shell words, split with shlex
	TimeoutSec float64           `toml:"timeout_sec" yaml:"timeout_sec"`
	Env        map[string]string `toml:"env" yaml:"env"`
}

// DetectorConfig holds the video-region heuristic thresholds.
type DetectorConfig struct {
	MinValue       int     `toml:"min_value" yaml:"min_value"`
	KernelSize     int     `toml:"kernel_size" yaml:"kernel_size"`
	MinWidth       int     `toml:"min_width" yaml:"min_width"`
	MinHeight      int     `toml:"min_height" yaml:"min_height"`
	MinAspect      float64 `toml:"min_aspect" yaml:"min_aspect"`
	MaxAspect      float64 `toml:"max_aspect" yaml:"max_aspect"`
	BorderMargin   int     `toml:"border_margin" yaml:"border_margin"`
	MaxAreaRatio   float64 `toml:"max_area_ratio" yaml:"max_area_ratio"`
	MinBorderEdges int     `toml:"min_border_edges" yaml:"min_border_edges"`
}

// DefaultDetector returns the empirically chosen detector thresholds.
func DefaultDetector() DetectorConfig {
	return DetectorConfig{
		MinValue:       30,
		KernelSize:     5,
		MinWidth:       200,
		MinHeight:      150,
		MinAspect:      0.5,
		MaxAspect:      2.0,
		BorderMargin:   50,
		MaxAreaRatio:   0.8,
		MinBorderEdges: 2,
	}
}
