package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	FilePath     string        `yaml:"filePath" validate:"required|unixPath"`
	SaveInterval time.Duration `yaml:"saveInterval" validate:"required|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type AccountConfig struct {
	ID           string `yaml:"id" validate:"required"`
	Name         string `yaml:"name" validate:"required"`
	Email        string `yaml:"email"`
	AccessToken  string `yaml:"accessToken"`
	RefreshToken string `yaml:"refreshToken"`
}

type APIConfig struct {
	BaseURL          string        `yaml:"baseUrl"`
	AuthorizationURL string        `yaml:"authorizationUrl"`
	TokenURL         string        `yaml:"tokenUrl"`
	ClientID         string        `yaml:"clientId"`
	RequestTimeout   time.Duration `yaml:"requestTimeout"`
	// MaxRateLimitRetries caps how often a single request is retransmitted
	// after a 429. Zero keeps retrying until the upstream relents.
	MaxRateLimitRetries int           `yaml:"maxRateLimitRetries"`
	ThrottleDelay       time.Duration `yaml:"throttleDelay"`
}

type PollingConfig struct {
	Interval        time.Duration `yaml:"interval" validate:"required|min:1"`
	CatalogInterval time.Duration `yaml:"catalogInterval"`
	SummaryDays     int           `yaml:"summaryDays"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	Accounts    []AccountConfig `yaml:"accounts"`
	API         APIConfig       `yaml:"api"`
	Polling     PollingConfig   `yaml:"polling"`
	WebServer   Server          `yaml:"webServer"`
	Persistence Persistence     `yaml:"persistence"`
	Logger      LoggerConfig    `yaml:"logger"`
	Cache       CacheConfig     `yaml:"cache"`
	Metrics     MetricsConfig   `yaml:"metrics"`
}
