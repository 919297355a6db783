// Package config provides centralized configuration for the platform bridge,
// including the catalog of known extensions.
package config

import (
	"os"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// ToolConfig declares one tool contributed by a catalog extension.
type ToolConfig struct {
	Name        string         `mapstructure:"name" json:"name"`
	Description string         `mapstructure:"description" json:"description"`
	InputSchema map[string]any `mapstructure:"input_schema" json:"input_schema,omitempty"`
}

// ResourceConfig declares one resource contributed by a catalog extension.
type ResourceConfig struct {
	URI         string `mapstructure:"uri" json:"uri"`
	Name        string `mapstructure:"name" json:"name"`
	Description string `mapstructure:"description" json:"description,omitempty"`
	MIMEType    string `mapstructure:"mime_type" json:"mime_type,omitempty"`
	Text        string `mapstructure:"text" json:"text,omitempty"`
}

// ExtensionConfig is one entry in the known-extensions catalog. Enabling an
// extension by name installs exactly this declaration into the extension
// manager's registry.
type ExtensionConfig struct {
	Name        string           `mapstructure:"name" json:"name"`
	Description string           `mapstructure:"description" json:"description"`
	Enabled     bool             `mapstructure:"enabled" json:"enabled"`
	Tools       []ToolConfig     `mapstructure:"tools" json:"tools"`
	Resources   []ResourceConfig `mapstructure:"resources" json:"resources,omitempty"`
}

// Config holds the complete configuration for the bridge process.
type Config struct {
	Server struct {
		Name    string `mapstructure:"name"`
		Version string `mapstructure:"version"`
	} `mapstructure:"server"`

	Router struct {
		// Enabled controls whether a tool route manager is wired at all.
		Enabled bool `mapstructure:"enabled"`
		// Backend selects the selector implementation: "memory" or "qdrant".
		Backend string `mapstructure:"backend"`

		Qdrant struct {
			Host       string `mapstructure:"host"`
			Port       int    `mapstructure:"port"`
			APIKey     string `mapstructure:"api_key"`
			Collection string `mapstructure:"collection"`
			UseTLS     bool   `mapstructure:"use_tls"`
		} `mapstructure:"qdrant"`

		OpenAI struct {
			APIKey string `mapstructure:"api_key"`
			Model  string `mapstructure:"model"`
		} `mapstructure:"openai"`
	} `mapstructure:"router"`

	// Extensions is the known-extensions catalog. Entries with Enabled set
	// are installed at startup; the rest stay available for manage_extensions.
	Extensions []ExtensionConfig `mapstructure:"extensions"`
}

var (
	once   sync.Once
	config *Config
)

// Load initializes the configuration from an optional bridge.yaml and the
// environment. Subsequent calls return the same instance.
func Load() *Config {
	once.Do(func() {
		v := viper.New()

		v.SetDefault("server.name", "MCP Platform Bridge")
		v.SetDefault("server.version", "1.0.0")
		v.SetDefault("router.enabled", true)
		v.SetDefault("router.backend", "memory")
		v.SetDefault("router.qdrant.host", "localhost")
		v.SetDefault("router.qdrant.port", 6334)
		v.SetDefault("router.qdrant.collection", "bridge_tools")
		v.SetDefault("router.openai.model", "text-embedding-3-large")

		v.SetConfigName("bridge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(dir + "/mcp-platform-bridge")
		}
		// Missing file is fine, the defaults plus env carry a full config.
		_ = v.ReadInConfig()

		v.SetEnvPrefix("BRIDGE")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		config = &Config{}
		if err := v.Unmarshal(config); err != nil {
			config = &Config{}
		}

		if config.Router.Qdrant.APIKey == "" {
			config.Router.Qdrant.APIKey = os.Getenv("QDRANT_API_KEY")
		}
		if config.Router.OpenAI.APIKey == "" {
			config.Router.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	})

	return config
}
