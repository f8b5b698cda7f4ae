package server

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/longevity-genie/biolink-mcp-go/internal/monarch"
)

// Defaults for the serving surface.
const (
	DefaultHost       = "0.0.0.0"
	DefaultPort       = 3001
	DefaultTransport  = "sse"
	DefaultEndpoint   = "/sse"
	DefaultOutputDir  = "biolink_output"
	DefaultToolPrefix = "biolink_"
)

// Config holds the serving surface: transport selection, listen address,
// tool naming, and the scratch directory advertised to tools.
type Config struct {
	Host       string
	Port       int
	Transport  string // "sse" or "stdio"
	Endpoint   string // SSE mount point
	OutputDir  string
	ToolPrefix string
}

// NewConfig creates a configuration from environment variables, falling back
// to the defaults above.
func NewConfig() *Config {
	cfg := &Config{
		Host:       DefaultHost,
		Port:       DefaultPort,
		Transport:  DefaultTransport,
		Endpoint:   DefaultEndpoint,
		OutputDir:  DefaultOutputDir,
		ToolPrefix: DefaultToolPrefix,
	}
	if v := os.Getenv("MCP_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("MCP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			cfg.Port = p
		}
	}
	if v := os.Getenv("MCP_TRANSPORT"); v != "" {
		cfg.Transport = v
	}
	if v := os.Getenv("MCP_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("MCP_TOOL_PREFIX"); v != "" {
		cfg.ToolPrefix = v
	}
	return cfg
}

// Addr renders the listen address for the HTTP transports.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// FileConfig is the YAML overlay applied on top of env configuration.
type FileConfig struct {
	Server struct {
		Host       string `yaml:"host"`
		Port       int    `yaml:"port"`
		Transport  string `yaml:"transport"`
		Endpoint   string `yaml:"endpoint"`
		OutputDir  string `yaml:"output_dir"`
		ToolPrefix string `yaml:"tool_prefix"`
	} `yaml:"server"`
	API struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
		Retries int    `yaml:"retries"`
		Backoff string `yaml:"backoff"`
	} `yaml:"api"`
}

// LoadFileConfig reads a YAML config file. ${VAR} references are expanded
// before parsing and unknown keys are rejected.
func LoadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	expanded := os.ExpandEnv(string(data))
	var fc FileConfig
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return &fc, nil
}

// Apply overlays the file values onto the given configurations. Empty and
// zero file values leave the existing values alone.
func (fc *FileConfig) Apply(cfg *Config, api *monarch.Config) error {
	if fc.Server.Host != "" {
		cfg.Host = fc.Server.Host
	}
	if fc.Server.Port > 0 {
		cfg.Port = fc.Server.Port
	}
	if fc.Server.Transport != "" {
		cfg.Transport = fc.Server.Transport
	}
	if fc.Server.Endpoint != "" {
		cfg.Endpoint = fc.Server.Endpoint
	}
	if fc.Server.OutputDir != "" {
		cfg.OutputDir = fc.Server.OutputDir
	}
	if fc.Server.ToolPrefix != "" {
		cfg.ToolPrefix = fc.Server.ToolPrefix
	}
	if fc.API.BaseURL != "" {
		api.BaseURL = fc.API.BaseURL
	}
	if fc.API.Timeout != "" {
		d, err := time.ParseDuration(fc.API.Timeout)
		if err != nil {
			return fmt.Errorf("config api.timeout: %w", err)
		}
		api.Timeout = d
	}
	if fc.API.Retries > 0 {
		api.Retries = fc.API.Retries
	}
	if fc.API.Backoff != "" {
		d, err := time.ParseDuration(fc.API.Backoff)
		if err != nil {
			return fmt.Errorf("config api.backoff: %w", err)
		}
		api.Backoff = d
	}
	return nil
}
