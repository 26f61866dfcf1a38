package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds the configuration for the application.
type Config struct {
	// Environment is the deployment environment name; "development" relaxes
	// TLS verification on the outbound CKAN connection.
	Environment string `mapstructure:"environment"`

	Server struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"server"`

	CKAN struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"ckan"`

	Auth struct {
		// Issuer enables OIDC access-token verification when set; tokens are
		// always forwarded to CKAN either way, since CKAN authorizes them.
		Issuer string `mapstructure:"issuer"`
	} `mapstructure:"auth"`

	MCP struct {
		Enable bool `mapstructure:"enable"`
		// ServiceToken is the pre-issued bearer token the MCP tool surface
		// uses for its read-only catalogue calls.
		ServiceToken string `mapstructure:"service_token"`
	} `mapstructure:"mcp"`

	TLS struct {
		Enable    bool     `mapstructure:"enable"`
		CertFile  string   `mapstructure:"cert_file"`
		KeyFile   string   `mapstructure:"key_file"`
		Hostnames []string `mapstructure:"hostnames"`
	} `mapstructure:"tls"`
}

// IsDevelopment reports whether the configured environment is development.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// LoadConfig loads the configuration from a file and the environment.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.SetEnvPrefix("CKAN_ADAPTER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.CKAN.URL = normalizeServerURL(config.CKAN.URL)
	config.Auth.Issuer = normalizeServerURL(config.Auth.Issuer)

	if config.Server.Port == 0 {
		config.Server.Port = 8080
		if config.TLS.Enable {
			config.Server.Port = 8443
		}
	}

	return &config, nil
}

// normalizeServerURL puts a pasted server URL into a predictable form by
// trimming surrounding whitespace and any trailing slash, leaving the scheme
// and path intact.
func normalizeServerURL(input string) string {
	url := strings.TrimSpace(input)
	if strings.HasSuffix(url, "/") {
		url = strings.TrimRight(url, "/")
	}
	return url
}
