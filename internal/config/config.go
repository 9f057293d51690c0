package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/AngelCh415/campaign-ab/internal/models"
)

const (
	EnvPrefix   = "ABTEST_"
	DefaultPath = "configs/analysis.yaml"
)

type Config struct {
	Input        InputConfig        `koanf:"input"`
	OrderValue   float64            `koanf:"order_value"`
	Significance SignificanceConfig `koanf:"significance"`
	Output       OutputConfig       `koanf:"output"`
	Log          LogConfig          `koanf:"log"`
}

type InputConfig struct {
	ControlPath string `koanf:"control_path"`
	TestPath    string `koanf:"test_path"`
	Delimiter   string `koanf:"delimiter"`
	DateLayout  string `koanf:"date_layout"`
	WindowDays  int    `koanf:"window_days"`
}

type SignificanceConfig struct {
	Alpha         float64  `koanf:"alpha"`
	EqualVariance bool     `koanf:"equal_variance"`
	Metrics       []string `koanf:"metrics"`
}

type OutputConfig struct {
	ResultsDir  string `koanf:"results_dir"`
	ImagesDir   string `koanf:"images_dir"`
	MetricsFile string `koanf:"metrics_file"`
	Charts      bool   `koanf:"charts"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

const defaults = `
input:
  control_path: data/control_group.csv
  test_path: data/test_group.csv
  delimiter: ";"
  date_layout: "2.01.2006"
  window_days: 30
order_value: 50
significance:
  alpha: 0.05
  equal_variance: false
  metrics: [purchases, website_clicks]
output:
  results_dir: results
  images_dir: images
  metrics_file: pipeline.prom
  charts: true
log:
  level: info
  format: json
`

// sections are the nested keys; anything else maps to a top-level key.
var sections = map[string]bool{"input": true, "significance": true, "output": true, "log": true}

// Load layers built-in defaults, the YAML file at path and ABTEST_* environment variables.
// An empty path loads DefaultPath when it exists.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider([]byte(defaults)), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := k.Load(rawbytes.Provider(raw), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps ABTEST_SIGNIFICANCE_ALPHA -> significance.alpha and ABTEST_ORDER_VALUE -> order_value.
func envKey(k, v string) (string, interface{}) {
	lower := strings.ToLower(strings.TrimPrefix(k, EnvPrefix))
	parts := strings.SplitN(lower, "_", 2)
	key := lower
	if len(parts) == 2 && sections[parts[0]] {
		key = parts[0] + "." + parts[1]
	}
	if key == "significance.metrics" {
		return key, splitList(v)
	}
	return key, v
}

func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) normalize() {
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	for i, m := range c.Significance.Metrics {
		c.Significance.Metrics[i] = strings.ToLower(strings.TrimSpace(m))
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Input.ControlPath == "" || c.Input.TestPath == "" {
		return errors.New("input.control_path and input.test_path are required")
	}
	if c.Input.DateLayout == "" {
		return errors.New("input.date_layout is required")
	}
	if c.Input.WindowDays < 0 {
		return fmt.Errorf("input.window_days must be >= 0, got %d", c.Input.WindowDays)
	}
	if _, err := c.Input.Comma(); err != nil {
		return err
	}
	if c.OrderValue <= 0 {
		return fmt.Errorf("order_value must be > 0, got %v", c.OrderValue)
	}
	if c.Significance.Alpha <= 0 || c.Significance.Alpha >= 1 {
		return fmt.Errorf("significance.alpha must be in (0,1), got %v", c.Significance.Alpha)
	}
	if len(c.Significance.Metrics) == 0 {
		return errors.New("significance.metrics must not be empty")
	}
	for _, m := range c.Significance.Metrics {
		if _, ok := models.ParseCounter(m); !ok {
			return fmt.Errorf("significance.metrics: unknown metric %q", m)
		}
	}
	if c.Output.ResultsDir == "" {
		return errors.New("output.results_dir is required")
	}
	if c.Output.Charts && c.Output.ImagesDir == "" {
		return errors.New("output.images_dir is required when charts are enabled")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	return nil
}

// Comma returns the CSV delimiter; 0 means sniff it from the header line.
func (ic InputConfig) Comma() (rune, error) {
	switch ic.Delimiter {
	case "auto":
		return 0, nil
	case `\t`, "tab":
		return '\t', nil
	}
	r := []rune(ic.Delimiter)
	if len(r) != 1 {
		return 0, fmt.Errorf("input.delimiter must be a single character or \"auto\", got %q", ic.Delimiter)
	}
	return r[0], nil
}
