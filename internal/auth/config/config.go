package config

import "time"

type Config struct {
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
	Merchant string        `mapstructure:"merchant"`
}
