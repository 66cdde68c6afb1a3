package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Database struct {
		Host     string `yaml:"host"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		DBName   string `yaml:"dbname"`
		Port     string `yaml:"port"`
		SSLMode  string `yaml:"sslmode"`
	} `yaml:"database"`
	Provider struct {
		APIKey      string `yaml:"api_key"`
		BaseURL     string `yaml:"base_url"`
		Engine      string `yaml:"engine"`
		MaxAttempts int    `yaml:"max_attempts"`
		BaseDelayMs int    `yaml:"base_delay_ms"`
		MaxSamples  int    `yaml:"max_samples"`
	} `yaml:"provider"`
	RateLimit struct {
		PerSecond        float64 `yaml:"per_second"`
		Burst            int     `yaml:"burst"`
		AcquireTimeoutMs int     `yaml:"acquire_timeout_ms"`
	} `yaml:"rate_limit"`
	Coins struct {
		CostPerImage int64 `yaml:"cost_per_image"`
		AdReward     int64 `yaml:"ad_reward"`
	} `yaml:"coins"`
	Storage struct {
		Dir string `yaml:"dir"`
	} `yaml:"storage"`
	Auth struct {
		Secret  string `yaml:"secret"`
		ExpHour int    `yaml:"exp_hour"`
	} `yaml:"auth"`
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
}

// GlobalConfig is the global configuration instance
var GlobalConfig Config

// DSN generates the PostgreSQL DSN from database config
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Database.Host,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.Port,
		c.Database.SSLMode,
	)
}

// BaseDelay returns the provider retry base delay as a duration
func (c *Config) BaseDelay() time.Duration {
	return time.Duration(c.Provider.BaseDelayMs) * time.Millisecond
}

// AcquireTimeout returns the rate limiter wait deadline as a duration
func (c *Config) AcquireTimeout() time.Duration {
	return time.Duration(c.RateLimit.AcquireTimeoutMs) * time.Millisecond
}

// LoadConfig reads and parses the YAML configuration file into GlobalConfig
func LoadConfig(filePath string) error {
	// Read the YAML file
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	// Unmarshal YAML into GlobalConfig
	if err := yaml.Unmarshal(data, &GlobalConfig); err != nil {
		return err
	}

	applyDefaults(&GlobalConfig)

	// Validate required fields
	if GlobalConfig.Database.Host == "" {
		log.Fatal("database.host is required in config.yaml")
	}
	if GlobalConfig.Database.User == "" {
		log.Fatal("database.user is required in config.yaml")
	}
	if GlobalConfig.Database.Password == "" {
		log.Fatal("database.password is required in config.yaml")
	}
	if GlobalConfig.Database.DBName == "" {
		log.Fatal("database.dbname is required in config.yaml")
	}
	if GlobalConfig.Database.Port == "" {
		log.Fatal("database.port is required in config.yaml")
	}
	if GlobalConfig.Database.SSLMode == "" {
		log.Fatal("database.sslmode is required in config.yaml")
	}
	if GlobalConfig.Provider.APIKey == "" {
		log.Fatal("provider.api_key is required in config.yaml")
	}
	if GlobalConfig.Storage.Dir == "" {
		log.Fatal("storage.dir is required in config.yaml")
	}
	if GlobalConfig.Auth.Secret == "" {
		log.Fatal("auth.secret is required in config.yaml")
	}
	if GlobalConfig.Server.Port == 0 {
		log.Fatal("server.port is required in config.yaml")
	}
	if GlobalConfig.Server.Port < 1 || GlobalConfig.Server.Port > 65535 {
		log.Fatal("server.port must be between 1 and 65535")
	}

	return nil
}

func applyDefaults(c *Config) {
	if c.Provider.BaseURL == "" {
		c.Provider.BaseURL = "https://api.stability.ai"
	}
	if c.Provider.Engine == "" {
		c.Provider.Engine = "stable-diffusion-xl-1024-v1-0"
	}
	if c.Provider.MaxAttempts == 0 {
		c.Provider.MaxAttempts = 3
	}
	if c.Provider.BaseDelayMs == 0 {
		c.Provider.BaseDelayMs = 500
	}
	if c.Provider.MaxSamples == 0 {
		c.Provider.MaxSamples = 10
	}
	if c.RateLimit.PerSecond == 0 {
		c.RateLimit.PerSecond = 2
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 5
	}
	if c.RateLimit.AcquireTimeoutMs == 0 {
		c.RateLimit.AcquireTimeoutMs = 10000
	}
	if c.Coins.CostPerImage == 0 {
		c.Coins.CostPerImage = 10
	}
	if c.Coins.AdReward == 0 {
		c.Coins.AdReward = 1
	}
	if c.Auth.ExpHour == 0 {
		c.Auth.ExpHour = 24
	}
}
