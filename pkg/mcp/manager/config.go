package manager

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// ServerConfig describes how to launch one MCP server.
type ServerConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// Config is the host configuration: a set of named servers. The file
// shape follows the conventional mcpServers layout:
//
//	{
//	  "mcpServers": {
//	    "notes": {"command": "uvx", "args": ["notes-simple"]}
//	  }
//	}
type Config struct {
	MCPServers map[string]ServerConfig `json:"mcpServers"`
}

// LoadConfig reads a config file. Comments and trailing commas are
// permitted (JSONC).
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manager: read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
		return nil, fmt.Errorf("manager: parse config %s: %w", path, err)
	}

	for name, sc := range cfg.MCPServers {
		if sc.Command == "" {
			return nil, fmt.Errorf("manager: server %q has no command", name)
		}
	}

	return &cfg, nil
}
