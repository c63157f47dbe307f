package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	Secret     string        `mapstructure:"secret"`

	// Inbound frame budget per connection, sliding window.
	FrameLimit  int           `mapstructure:"frame_limit"`
	FrameWindow time.Duration `mapstructure:"frame_window"`

	Judge0URL    string        `mapstructure:"judge0_url"`
	Judge0APIKey string        `mapstructure:"judge0_api_key"`
	PollAttempts int           `mapstructure:"poll_attempts"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 3004)
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "25s")
	v.SetDefault("frame_limit", 200)
	v.SetDefault("frame_window", "1s")
	v.SetDefault("judge0_url", "https://api.judge0.com")
	v.SetDefault("judge0_api_key", "")
	v.SetDefault("poll_attempts", 10)
	v.SetDefault("poll_interval", "1s")

	// Deployment secrets come from the environment, not the yaml file.
	_ = v.BindEnv("port", "PORT")
	_ = v.BindEnv("judge0_url", "JUDGE0_API_URL")
	_ = v.BindEnv("judge0_api_key", "JUDGE0_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	fmt.Printf("🧩 Mode: %s | Port: %d | Judge0: %s\n", cfg.Mode, cfg.Port, cfg.Judge0URL)
	return &cfg, nil
}
