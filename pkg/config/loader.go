package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/commercepipe/commercepipe/pkg/etlerrors"
)

// Load reads a YAML configuration file into config, substituting ${VAR}
// references with environment variable values first.
func Load(filePath string, config interface{}) error {
	data, err := os.ReadFile(filePath) //nolint:gosec // G304: File path is controlled by caller and validated
	if err != nil {
		return etlerrors.Wrap(err, etlerrors.ErrorTypeConfig, "failed to read config file").
			WithDetail("path", filePath)
	}

	content := substituteEnvVars(string(data))

	if err := yaml.Unmarshal([]byte(content), config); err != nil {
		return etlerrors.Wrap(err, etlerrors.ErrorTypeConfig, "failed to parse YAML").
			WithDetail("path", filePath)
	}
	return nil
}

// LoadPipelineConfig loads a pipeline configuration over the defaults, so a
// partial file only overrides what it names.
func LoadPipelineConfig(filePath string) (*PipelineConfig, error) {
	cfg := NewPipelineConfig()
	if err := Load(filePath, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, etlerrors.Wrap(err, etlerrors.ErrorTypeConfig, "invalid pipeline config").
			WithDetail("path", filePath)
	}
	return cfg, nil
}

// Save writes a configuration to a YAML file.
func Save(filePath string, config interface{}) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return etlerrors.Wrap(err, etlerrors.ErrorTypeConfig, "failed to marshal YAML")
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil { //nolint:gosec
		return etlerrors.Wrap(err, etlerrors.ErrorTypeConfig, "failed to write config file").
			WithDetail("path", filePath)
	}
	return nil
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
func substituteEnvVars(content string) string {
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		varName := content[start+2 : end]
		envValue := os.Getenv(varName)
		content = content[:start] + envValue + content[end+1:]
	}
	return content
}
