package config

// Хранилища документа состояния
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	Backend string `mapstructure:"backend"`
	Dir     string `mapstructure:"dir"`
	DBDsn   string `mapstructure:"dsn"`
	Key     string `mapstructure:"key"`
}
