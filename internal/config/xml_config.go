// Package config provides file-based configuration for the header client.
// XML is the native format; YAML is accepted for files ending in .yaml/.yml.
package config

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/modex/frontend/internal/picker"
	"gopkg.in/yaml.v3"
)

// AppConfig represents the root configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"ModexHeader" yaml:"-"`

	// Backend the header talks to
	Backend BackendConfig `xml:"Backend" yaml:"backend"`

	// File picking and upload behaviour
	Picker PickerConfig `xml:"Picker" yaml:"picker"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced" yaml:"advanced"`
}

// BackendConfig locates the list and upload endpoints
type BackendConfig struct {
	EndpointBase          string `xml:"EndpointBase" yaml:"endpoint_base"`
	FilesPath             string `xml:"FilesPath" yaml:"files_path"`
	UploadPath            string `xml:"UploadPath" yaml:"upload_path"`
	RequestTimeoutSeconds int    `xml:"RequestTimeoutSeconds" yaml:"request_timeout_seconds"` // 0 = no timeout
}

// PickerConfig contains selection and upload settings
type PickerConfig struct {
	Subject             string `xml:"Subject" yaml:"subject"`
	AcceptedExtensions  string `xml:"AcceptedExtensions" yaml:"accepted_extensions"`
	StartDirectory      string `xml:"StartDirectory" yaml:"start_directory"`
	Ordering            string `xml:"Ordering" yaml:"ordering"` // "last-initiated" or "last-resolved"
	JobRetentionMinutes int    `xml:"JobRetentionMinutes" yaml:"job_retention_minutes"`
}

// AdvancedConfig contains logging options
type AdvancedConfig struct {
	LogLevel             string `xml:"LogLevel" yaml:"log_level"`
	LogFile              string `xml:"LogFile" yaml:"log_file"`
	EnableRequestLogging bool   `xml:"EnableRequestLogging" yaml:"enable_request_logging"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Backend: BackendConfig{
			EndpointBase:          "http://localhost:8080",
			FilesPath:             "/files",
			UploadPath:            "/upload",
			RequestTimeoutSeconds: 0,
		},
		Picker: PickerConfig{
			Subject:             "Análisis y Diseño de Algoritmos II",
			AcceptedExtensions:  ".txt",
			StartDirectory:      "",
			Ordering:            string(picker.LastInitiatedWins),
			JobRetentionMinutes: 30,
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			LogFile:              "",
			EnableRequestLogging: false,
		},
	}
}

// LoadConfig loads configuration from an XML or YAML file
func LoadConfig(configPath string) (*AppConfig, error) {
	// If file doesn't exist, create default
	config := DefaultConfig()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if isYAML(configPath) {
			err = yaml.Unmarshal(data, config)
		} else {
			err = xml.Unmarshal(data, config)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves the configuration, choosing the format from the file extension
func (c *AppConfig) Save(configPath string) error {
	var content []byte

	if isYAML(configPath) {
		output, err := yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		content = append([]byte("# Modex header configuration\n# This file is auto-generated on first run\n\n"), output...)
	} else {
		output, err := xml.MarshalIndent(c, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		header := []byte(xml.Header + "\n<!-- Modex header configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
		content = append(header, output...)
	}

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks values that would otherwise fail later at request time
func (c *AppConfig) Validate() error {
	u, err := url.Parse(c.Backend.EndpointBase)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid EndpointBase %q: must be an absolute URL", c.Backend.EndpointBase)
	}
	if _, ok := picker.ParseOrdering(c.Picker.Ordering); !ok {
		return fmt.Errorf("invalid Ordering %q: want %q or %q", c.Picker.Ordering, picker.LastInitiatedWins, picker.LastResolvedWins)
	}
	if c.Backend.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("invalid RequestTimeoutSeconds %d", c.Backend.RequestTimeoutSeconds)
	}
	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if base := os.Getenv("MODEX_ENDPOINT_BASE"); base != "" {
		c.Backend.EndpointBase = base
	}

	if level := os.Getenv("MODEX_LOG_LEVEL"); level != "" {
		c.Advanced.LogLevel = level
	}

	if logFile := os.Getenv("MODEX_LOG_FILE"); logFile != "" {
		c.Advanced.LogFile = logFile
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if c.Advanced.LogFile != "" && !filepath.IsAbs(c.Advanced.LogFile) {
		c.Advanced.LogFile = filepath.Join(configDir, c.Advanced.LogFile)
	}
	if c.Picker.StartDirectory != "" && !filepath.IsAbs(c.Picker.StartDirectory) {
		c.Picker.StartDirectory = filepath.Join(configDir, c.Picker.StartDirectory)
	}
}

// GetAcceptedExtensions returns the accepted extensions, normalised to ".ext"
func (c *AppConfig) GetAcceptedExtensions() []string {
	var exts []string
	for _, e := range strings.Split(c.Picker.AcceptedExtensions, ",") {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	return exts
}

// GetOrdering returns the list response ordering
func (c *AppConfig) GetOrdering() picker.Ordering {
	o, _ := picker.ParseOrdering(c.Picker.Ordering)
	return o
}

// GetRequestTimeout returns the per-request timeout, zero for none
func (c *AppConfig) GetRequestTimeout() time.Duration {
	return time.Duration(c.Backend.RequestTimeoutSeconds) * time.Second
}

// GetJobRetention returns how long finished upload jobs are kept
func (c *AppConfig) GetJobRetention() time.Duration {
	return time.Duration(c.Picker.JobRetentionMinutes) * time.Minute
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
