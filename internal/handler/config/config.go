package config

import "time"

type Config struct {
	ServerAddr      string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// запросов к помощнику в минуту с одного адреса
	AssistantRate int `mapstructure:"assistant_rate"`
}
