package config

import "time"

type Config struct {
	AssistantAddr    string        `mapstructure:"assistant_addr"`
	AssistantKey     string        `mapstructure:"assistant_key"`
	AssistantModel   string        `mapstructure:"assistant_model"`
	AssistantTimeout time.Duration `mapstructure:"assistant_timeout"`
	PredictionLimit  int           `mapstructure:"prediction_limit"`
	DigestInterval   time.Duration `mapstructure:"digest_interval"`
}
