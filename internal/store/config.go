package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultConfigPath = "config.yaml"

type Config struct {
	DataFolder   string   `yaml:"data_folder"`
	MetadataFile string   `yaml:"metadata_file"`
	TimeLayouts  []string `yaml:"time_layouts"`
	Server       struct {
		Addr                string `yaml:"addr"`
		ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
		WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
	} `yaml:"server"`
	Export struct {
		Dir string `yaml:"dir"`
	} `yaml:"export"`
	Calendar struct {
		ResourceID   string `yaml:"resource_id"`
		ResourceName string `yaml:"resource_name"`
		InitialView  string `yaml:"initial_view"`
	} `yaml:"calendar"`
	Retention struct {
		// Partitions sorting before this name get their metadata gzipped.
		CompressBefore string `yaml:"compress_before"`
	} `yaml:"retention"`
}

var validViews = map[string]bool{
	"dayGridMonth":   true,
	"timeGridWeek":   true,
	"timelineMonth":  true,
	"listMonth":      true,
	"multiMonthYear": true,
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataFolder) == "" {
		return errors.New("data_folder cannot be empty (set it in config or DATA_FOLDER)")
	}
	if strings.ContainsAny(c.MetadataFile, `/\`) {
		return fmt.Errorf("metadata_file must be a file name, got '%s'", c.MetadataFile)
	}
	for _, l := range c.TimeLayouts {
		if !strings.Contains(l, "2006") || !strings.Contains(l, "15") {
			return fmt.Errorf("time layout '%s' must carry both a date and a time", l)
		}
	}
	if c.Server.ReadTimeoutSeconds < 0 || c.Server.WriteTimeoutSeconds < 0 {
		return errors.New("server timeouts cannot be negative")
	}
	if !validViews[c.Calendar.InitialView] {
		return fmt.Errorf("calendar.initial_view '%s' is not a known view", c.Calendar.InitialView)
	}
	return nil
}

func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.Server.ReadTimeoutSeconds) * time.Second
}

func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.Server.WriteTimeoutSeconds) * time.Second
}

// Default returns a configuration with every default applied. DataFolder
// comes from DATA_FOLDER only.
func Default() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

// LoadConfig reads path, applies defaults and the DATA_FOLDER override, and
// validates the result.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

// LoadOrDefault behaves like LoadConfig but falls back to Default when the
// file does not exist. The second result reports whether a file was read.
func LoadOrDefault(path string) (*Config, bool, error) {
	c, err := LoadConfig(path)
	if err == nil {
		return c, true, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, false, err
	}
	c = Default()
	if err := c.Validate(); err != nil {
		return nil, false, fmt.Errorf("config validation failed: %w", err)
	}
	return c, false, nil
}

func (c *Config) applyDefaults() {
	if v := os.Getenv("DATA_FOLDER"); v != "" {
		c.DataFolder = v
	}
	if c.MetadataFile == "" {
		c.MetadataFile = "metadata.csv"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8501"
	}
	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = 15
	}
	if c.Server.WriteTimeoutSeconds == 0 {
		c.Server.WriteTimeoutSeconds = 60
	}
	if c.Export.Dir == "" {
		c.Export.Dir = "exports"
	}
	if c.Calendar.ResourceID == "" {
		c.Calendar.ResourceID = "nvda"
	}
	if c.Calendar.ResourceName == "" {
		c.Calendar.ResourceName = "NVIDIA"
	}
	if c.Calendar.InitialView == "" {
		c.Calendar.InitialView = "dayGridMonth"
	}
}
