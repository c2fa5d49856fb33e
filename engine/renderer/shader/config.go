package shader

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config is a shader program's on-disk description: which stage files to
// compile together, the render pass it belongs to, and its cull mode.
// LoadStageSources turns Stages and StageFiles into the stage-source map
// Create takes; Create and Link read none of the other fields.
type Config struct {
	Name        string   `toml:"name"`
	CullMode    string   `toml:"cull_mode"`
	Renderpass  string   `toml:"renderpass"`
	Stages      []string `toml:"stages"`
	StageFiles  []string `toml:"stagefiles"`
	UseInstance bool     `toml:"use_instance"`
	UseLocal    bool     `toml:"use_local"`
}

// LoadConfig reads and parses a shader config file from path.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("shader: parsing config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Stages) != len(c.StageFiles) {
		return fmt.Errorf("shader: config %s: %d stages but %d stage files", c.Name, len(c.Stages), len(c.StageFiles))
	}
	if len(c.Stages) == 0 {
		return fmt.Errorf("shader: config %s: no stages declared", c.Name)
	}
	return nil
}

// LoadStageSources reads every stage file named in the config (relative to
// dir) and returns them keyed by stage name, ready for Create.
func (c *Config) LoadStageSources(dir string) (map[string]string, error) {
	sources := make(map[string]string, len(c.Stages))
	for i, stage := range c.Stages {
		path := c.StageFiles[i]
		if dir != "" {
			path = dir + "/" + path
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("shader: reading stage %s of %s: %w", stage, c.Name, err)
		}
		sources[stage] = string(src)
	}
	return sources, nil
}
