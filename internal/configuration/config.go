package configuration

import (
	"countdowntimer/internal/logger"

	"github.com/BurntSushi/toml"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/pkg/errors"
)

type Config struct {
	ServerAddress    string
	DatabaseURI      string
	RedisAddress     string
	ShopifyAPIKey    string
	ShopifyAPISecret string
	SessionTokenKey  jwk.Key
	LogLevel         logger.Level
	LogToFile        bool
}

type tomlConfig struct {
	ServerAddress    string `toml:"server_address"`
	DatabaseURI      string `toml:"database_uri"`
	RedisAddress     string `toml:"redis_address"`
	ShopifyAPIKey    string `toml:"shopify_api_key"`
	ShopifyAPISecret string `toml:"shopify_api_secret"`
	LogLevel         string `toml:"log_level"`
	LogToFile        bool   `toml:"log_to_file"`
}

func GetConfig(path string) (*Config, error) {
	var tc tomlConfig
	_, err := toml.DecodeFile(path, &tc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode toml file with path: %s", path)
	}

	if tc.ServerAddress == "" {
		tc.ServerAddress = "localhost:8080"
	}

	if tc.DatabaseURI == "" {
		tc.DatabaseURI = "mongodb://localhost:27017"
	}

	if tc.LogLevel == "" {
		tc.LogLevel = "INFO"
	}
	logLevel, err := logger.ParseLevel(tc.LogLevel)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse log_level: %s", tc.LogLevel)
	}

	if tc.ShopifyAPIKey == "" {
		return nil, errors.New("shopify_api_key is not set")
	}
	if tc.ShopifyAPISecret == "" {
		return nil, errors.New("shopify_api_secret is not set")
	}

	// Session tokens from the embedded admin are HS256 JWTs signed with the
	// app secret.
	sessionTokenKey, err := jwk.FromRaw([]byte(tc.ShopifyAPISecret))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create key from shopify_api_secret")
	}

	return &Config{
		ServerAddress:    tc.ServerAddress,
		DatabaseURI:      tc.DatabaseURI,
		RedisAddress:     tc.RedisAddress,
		ShopifyAPIKey:    tc.ShopifyAPIKey,
		ShopifyAPISecret: tc.ShopifyAPISecret,
		SessionTokenKey:  sessionTokenKey,
		LogLevel:         logLevel,
		LogToFile:        tc.LogToFile,
	}, nil
}
