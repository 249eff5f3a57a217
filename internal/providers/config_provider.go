package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"drinkaware/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "DAW_LOG_LEVEL")
	viper.BindEnv("polling.interval", "DAW_POLL_INTERVAL")
	viper.BindEnv("polling.catalogInterval", "DAW_CATALOG_INTERVAL")
	viper.BindEnv("persistence.saveInterval", "DAW_SAVE_INTERVAL")
	viper.BindEnv("api.baseUrl", "DAW_API_BASE_URL")
	viper.BindEnv("api.tokenUrl", "DAW_TOKEN_URL")
	viper.BindEnv("cache.enabled", "DAW_CACHE_ENABLED")
	viper.BindEnv("cache.size", "DAW_CACHE_SIZE")

	viper.SetDefault("api.requestTimeout", "30s")
	viper.SetDefault("api.throttleDelay", "1s")
	viper.SetDefault("polling.catalogInterval", "6h")
	viper.SetDefault("polling.summaryDays", 14)

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "DrinkawareSyncDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

func NewAPIConfigProvider(conf *structures.Config) *structures.APIConfig {
	return &conf.API
}
