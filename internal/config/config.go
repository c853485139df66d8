package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix is stripped from environment variables before they are mapped
// onto config keys. A double underscore separates nesting levels, so
// SLACKWISE_OPENAI__API_BASE becomes openai.api_base.
const envPrefix = "SLACKWISE_"

type Config struct {
	Server       ServerConfig       `koanf:"server"`
	Log          LogConfig          `koanf:"log"`
	OpenAI       OpenAIConfig       `koanf:"openai"`
	Storage      StorageConfig      `koanf:"storage"`
	InstallStore InstallStoreConfig `koanf:"install_store"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

// OpenAIConfig holds the process-wide connection settings and the defaults
// substituted for any optional field a workspace record leaves unset.
// None of these are tenant-specific; the per-workspace API key and model
// overrides live in the blob store.
type OpenAIConfig struct {
	APIType                string  `koanf:"api_type"`
	APIBase                string  `koanf:"api_base"`
	APIVersion             string  `koanf:"api_version"`
	DeploymentID           string  `koanf:"deployment_id"`
	OrgID                  string  `koanf:"org_id"`
	FunctionCallModuleName string  `koanf:"function_call_module_name"`
	Model                  string  `koanf:"model"`
	ImageGenerationModel   string  `koanf:"image_generation_model"`
	Temperature            float64 `koanf:"temperature"`
	// BaselineModel is the model probed to decide whether a submitted API
	// key is usable at all, independent of the model the user picked.
	BaselineModel string `koanf:"baseline_model"`
}

type StorageConfig struct {
	// Bucket is the object store bucket holding per-workspace credential
	// records. When empty, the process runs with the in-memory store.
	Bucket string `koanf:"bucket"`
}

type InstallStoreConfig struct {
	Path string `koanf:"path"`
}

// Load reads configuration from an optional YAML file and the environment,
// with environment variables taking precedence over the file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	defaults := map[string]any{
		"server.port":                   8080,
		"log.level":                     "info",
		"openai.api_base":               "https://api.openai.com/v1",
		"openai.model":                  "gpt-3.5-turbo",
		"openai.image_generation_model": "dall-e-3",
		"openai.temperature":            1.0,
		"openai.baseline_model":         "gpt-3.5-turbo",
		"install_store.path":            "slackwise.db",
	}
	for key, val := range defaults {
		if !k.Exists(key) {
			k.Set(key, val)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
