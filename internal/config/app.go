package config

import (
	"log"
	"os"
	"strings"
	"sync"
)

type AppConfig struct {
	Name      string
	Env       string
	Port      string
	BaseURL   string
	LogFormat string // "json" or "console"
	LogLevel  string // "debug" or "info"
	UploadDir string
}

var (
	appConfig *AppConfig
	appOnce   sync.Once
)

func LoadAppConfig() *AppConfig {
	appOnce.Do(func() {
		env := os.Getenv("APP_ENV")
		if env == "" {
			env = "development"
			log.Printf("Warning: APP_ENV not set, defaulting to %s", env)
		}
		port := os.Getenv("APP_PORT")
		if port == "" {
			port = ":8080"
		}
		appConfig = &AppConfig{
			Name:      getEnv("APP_NAME", "cv-evaluator"),
			Env:       env,
			Port:      port,
			BaseURL:   os.Getenv("APP_URL"),
			LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "console")),
			LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			UploadDir: getEnv("UPLOAD_DIR", "./uploads"),
		}
	})
	return appConfig
}

func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

func (c *AppConfig) JSONLogs() bool {
	return c.LogFormat == "json"
}

func (c *AppConfig) DebugLogs() bool {
	return c.LogLevel == "debug"
}
