package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	req := require.New(t)

	cfg, err := Load()
	req.NoError(err)

	req.Equal("release", cfg.Mode)
	req.Equal(3004, cfg.Port)
	req.Equal(int64(32768), cfg.ReadLimit)
	req.Equal(25*time.Second, cfg.PingPeriod)
	req.Equal("https://api.judge0.com", cfg.Judge0URL)
	req.Empty(cfg.Judge0APIKey)
	req.Equal(10, cfg.PollAttempts)
	req.Equal(time.Second, cfg.PollInterval)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	req := require.New(t)

	t.Setenv("PORT", "9999")
	t.Setenv("JUDGE0_API_URL", "http://judge.internal:2358")
	t.Setenv("JUDGE0_API_KEY", "k-123")

	cfg, err := Load()
	req.NoError(err)

	req.Equal(9999, cfg.Port)
	req.Equal("http://judge.internal:2358", cfg.Judge0URL)
	req.Equal("k-123", cfg.Judge0APIKey)
}
