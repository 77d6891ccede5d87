package config_test

import (
	"testing"
	"time"

	"urbantales/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)

	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, "sqlite", cfg.AccountsDriver)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 4.0, cfg.ReturnWindowDays)
	assert.Equal(t, 50, cfg.NotificationLimit)
	assert.False(t, cfg.RabbitMQEnabled)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("STORE_DRIVER", "MONGO")
	v.Set("RETURN_WINDOW_DAYS", "7")
	v.Set("LOG_FORMAT", "json")

	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "mongo", cfg.StoreDriver)
	assert.Equal(t, 7.0, cfg.ReturnWindowDays)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestFromViper_RejectsUnknownDrivers(t *testing.T) {
	cases := map[string]string{
		"STORE_DRIVER":       "redis",
		"ACCOUNTS_DB_DRIVER": "oracle",
		"LOG_FORMAT":         "xml",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			v := viper.New()
			config.SetDefaults(v)
			v.Set(key, value)

			_, err := config.FromViper(v)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestNewLogger(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("LOG_LEVEL", "debug")
	v.Set("LOG_FORMAT", "json")
	cfg, err := config.FromViper(v)
	require.NoError(t, err)

	log, err := config.NewLogger(cfg)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	cfg.LogLevel = "loud"
	_, err = config.NewLogger(cfg)
	assert.Error(t, err)
}
