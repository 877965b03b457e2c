package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	authConfig "github.com/iurnickita/aquamanager/internal/auth/config"
	handlerConfig "github.com/iurnickita/aquamanager/internal/handler/config"
	loggerConfig "github.com/iurnickita/aquamanager/internal/logger/config"
	serviceConfig "github.com/iurnickita/aquamanager/internal/service/config"
	storeConfig "github.com/iurnickita/aquamanager/internal/store/config"
)

type Config struct {
	Handler handlerConfig.Config `mapstructure:"handler"`
	Service serviceConfig.Config `mapstructure:"service"`
	Store   storeConfig.Config   `mapstructure:"store"`
	Logger  loggerConfig.Config  `mapstructure:"logger"`
	Auth    authConfig.Config    `mapstructure:"auth"`
}

// Переменные окружения: AQUA_<РАЗДЕЛ>_<КЛЮЧ>, например AQUA_STORE_BACKEND
const envPrefix = "AQUA"

// GetConfig - конфигурация по умолчанию
func GetConfig() Config {
	cfg, _ := load(newViper())
	return cfg
}

// LoadConfig читает значения по умолчанию, затем файл (если задан), затем окружение
func LoadConfig(path string) (Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return load(v)
}

func load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// ключ помощника можно передать и под привычным именем
	_ = v.BindEnv("service.assistant_key", envPrefix+"_SERVICE_ASSISTANT_KEY", "GEMINI_API_KEY")

	return v
}

func setDefaults(v *viper.Viper) {
	// HTTP
	v.SetDefault("handler.addr", "localhost:8080")
	v.SetDefault("handler.read_timeout", 10*time.Second)
	v.SetDefault("handler.write_timeout", 60*time.Second)
	v.SetDefault("handler.shutdown_timeout", 5*time.Second)
	v.SetDefault("handler.assistant_rate", 30)

	v.SetDefault("logger.level", "info")

	// Хранилище
	v.SetDefault("store.backend", storeConfig.BackendFile)
	v.SetDefault("store.dir", ".")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.key", "")

	// Помощник
	v.SetDefault("service.assistant_addr", "https://generativelanguage.googleapis.com")
	v.SetDefault("service.assistant_key", "")
	v.SetDefault("service.assistant_model", "gemini-3-flash-preview")
	v.SetDefault("service.assistant_timeout", 30*time.Second)
	v.SetDefault("service.prediction_limit", 0)
	v.SetDefault("service.digest_interval", time.Hour)

	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.token_ttl", 30*24*time.Hour)
	v.SetDefault("auth.merchant", "merchant")
}
