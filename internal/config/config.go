// Package config loads runtime configuration from the environment.
package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jacentio/postbox/store"
)

// Environment keys.
const (
	KeyTableName        = "TABLE_NAME"
	KeyLogLevel         = "LOG_LEVEL"
	KeyDynamoDBEndpoint = "AWS_ENDPOINT_URL_DYNAMODB"
)

// Config holds the function configuration.
type Config struct {
	// TableName is the posts table. Empty falls back to the store default.
	TableName string

	// LogLevel is one of debug, info, warn or error.
	LogLevel slog.Level

	// DynamoDBEndpoint overrides the DynamoDB endpoint, e.g. for DynamoDB Local.
	DynamoDBEndpoint string
}

// Load reads configuration from the environment and an optional .env file.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault(KeyLogLevel, "info")

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString(KeyLogLevel))); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeyLogLevel, err)
	}

	return &Config{
		TableName:        v.GetString(KeyTableName),
		LogLevel:         level,
		DynamoDBEndpoint: v.GetString(KeyDynamoDBEndpoint),
	}, nil
}

// StoreConfig returns the store configuration for this function.
func (c *Config) StoreConfig() store.Config {
	cfg := store.DefaultConfig()
	if c.TableName != "" {
		cfg.TableName = c.TableName
	}
	return cfg
}

// NewLogger returns a JSON logger writing to w at the configured level.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: c.LogLevel}))
}

// NewStore builds a post store backed by DynamoDB using the default AWS
// credential chain.
func (c *Config) NewStore(ctx context.Context) (*store.Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if c.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(c.DynamoDBEndpoint)
		}
	})
	return store.New(client, c.StoreConfig()), nil
}
