package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/dcshock/stepreg/registry"
)

// PipelineConfig is the root structure for a pipeline definition (e.g. from YAML or TOML).
type PipelineConfig struct {
	Name   string `yaml:"name" toml:"name"`
	Source string `yaml:"source" toml:"source"` // optional: name of a source registered in BuildOptions.Sources

	// Observers: names looked up in BuildOptions.Observers by BuildObserver.
	Observers []string `yaml:"observers" toml:"observers"`

	Stages []StageRef `yaml:"stages" toml:"stages"`
}

// StageRef is a single stage entry: either a plain name or name + options.
// In YAML, a stage can be written as:
//   - strip
//   - name: getword
//     with: {index: 1}
//     timeout: 60s
//     max_attempts: 5
type StageRef struct {
	Name string `yaml:"name" toml:"name"`

	// With overrides the registered callable's metadata for this stage.
	With registry.Metadata `yaml:"with" toml:"with"`

	// Timeout applied around the stage (e.g. "60s"). Zero means no timeout.
	Timeout Duration `yaml:"timeout" toml:"timeout"`

	// Retry: total attempts and fixed delay between them. MaxAttempts <= 1 means no retry.
	MaxAttempts int      `yaml:"max_attempts" toml:"max_attempts"`
	Backoff     Duration `yaml:"backoff" toml:"backoff"`
}

// UnmarshalYAML allows a stage to be a string (stage name only) or a struct.
func (s *StageRef) UnmarshalYAML(value *yaml.Node) error {
	var nameOnly string
	if err := value.Decode(&nameOnly); err == nil {
		s.Name = nameOnly
		return nil
	}
	type raw StageRef
	return value.Decode((*raw)(s))
}

// UnmarshalTOML allows a stage to be a string (stage name only) or a table.
func (s *StageRef) UnmarshalTOML(data interface{}) error {
	switch v := data.(type) {
	case string:
		s.Name = v
		return nil
	case map[string]interface{}:
		return s.fromMap(v)
	default:
		return fmt.Errorf("stage must be a string or a table, got %T", data)
	}
}

func (s *StageRef) fromMap(m map[string]interface{}) error {
	for key, raw := range m {
		var err error
		switch key {
		case "name":
			s.Name, err = asString(key, raw)
		case "with":
			w, ok := raw.(map[string]interface{})
			if !ok {
				return fmt.Errorf("with: expected a table, got %T", raw)
			}
			s.With = registry.Metadata(w)
		case "timeout":
			err = s.Timeout.parse(key, raw)
		case "backoff":
			err = s.Backoff.parse(key, raw)
		case "max_attempts":
			n, ok := raw.(int64)
			if !ok {
				return fmt.Errorf("max_attempts: expected an integer, got %T", raw)
			}
			s.MaxAttempts = int(n)
		default:
			return fmt.Errorf("stage %q: unknown key %q", s.Name, key)
		}
		if err != nil {
			return err
		}
	}
	if s.Name == "" {
		return fmt.Errorf("stage table requires a name")
	}
	return nil
}

func asString(key string, raw interface{}) (string, error) {
	v, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s: expected a string, got %T", key, raw)
	}
	return v, nil
}

// Duration is a time.Duration that unmarshals from strings (e.g. "60s", "5m")
// in both YAML and TOML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.parse("duration", s)
}

// UnmarshalText implements encoding.TextUnmarshaler, used by the TOML decoder.
func (d *Duration) UnmarshalText(text []byte) error {
	return d.parse("duration", string(text))
}

func (d *Duration) parse(key string, raw interface{}) error {
	s, err := asString(key, raw)
	if err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%s %q: %w", key, s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the standard time.Duration.
func (d Duration) Duration() time.Duration { return time.Duration(d) }

// ParsePipelineConfig parses YAML bytes into a single PipelineConfig.
func ParsePipelineConfig(data []byte) (*PipelineConfig, error) {
	var cfg PipelineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParsePipelineConfigTOML parses TOML bytes into a single PipelineConfig.
func ParsePipelineConfigTOML(data []byte) (*PipelineConfig, error) {
	var cfg PipelineConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SequenceConfig names an ordered list of pipelines to run as a sequence.
type SequenceConfig struct {
	Name      string   `yaml:"name" toml:"name"`
	Pipelines []string `yaml:"pipelines" toml:"pipelines"`
}

// MultiPipelineConfig is the root structure for a file that defines multiple
// pipelines and optional sequences over them.
type MultiPipelineConfig struct {
	Pipelines map[string]PipelineConfig `yaml:"pipelines" toml:"pipelines"`
	Sequences map[string]SequenceConfig `yaml:"sequences" toml:"sequences"`
}

// ParseMultiPipelineConfig parses YAML bytes that contain a "pipelines" map from name to pipeline config.
// Example YAML:
//
//	pipelines:
//	  clean:
//	    stages: [strip, toupper]
//	  extract:
//	    stages:
//	      - strip
//	      - name: getword
//	        with: {index: 1}
func ParseMultiPipelineConfig(data []byte) (*MultiPipelineConfig, error) {
	var cfg MultiPipelineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseMultiPipelineConfigTOML is ParseMultiPipelineConfig for TOML bytes.
func ParseMultiPipelineConfigTOML(data []byte) (*MultiPipelineConfig, error) {
	var cfg MultiPipelineConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
