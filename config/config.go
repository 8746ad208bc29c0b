package config

import (
	"log"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`
	Redis struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	JWT struct {
		SecretKey        string `mapstructure:"secret_key"`
		AccessTTLSeconds int    `mapstructure:"access_ttl_seconds"`
		RefreshTTLDays   int    `mapstructure:"refresh_ttl_days"`
	} `mapstructure:"jwt"`
}

var AppConfig Config

func LoadConfig(path string) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yml")

	viper.SetDefault("jwt.access_ttl_seconds", 900)
	viper.SetDefault("jwt.refresh_ttl_days", 7)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	// Token lifetimes are admin-tunable. The file is watched so that edits
	// take effect on the next login without a restart.
	viper.OnConfigChange(func(e fsnotify.Event) {
		if err := viper.Unmarshal(&AppConfig); err != nil {
			log.Printf("Unable to reload config: %v", err)
		}
	})
	viper.WatchConfig()
}

// TokenTTLProvider supplies the lifetimes for newly issued tokens. It is
// consulted on every login and refresh, so implementations backed by a
// dynamic source pick up changes without a restart. Already issued tokens
// keep the expiry they were signed with.
type TokenTTLProvider interface {
	AccessTokenTTL() time.Duration
	RefreshTokenTTL() time.Duration
}

type viperTTLProvider struct{}

// NewTokenTTLProvider returns a provider that reads the lifetimes from the
// live viper configuration on every call.
func NewTokenTTLProvider() TokenTTLProvider {
	return viperTTLProvider{}
}

func (viperTTLProvider) AccessTokenTTL() time.Duration {
	return time.Duration(viper.GetInt("jwt.access_ttl_seconds")) * time.Second
}

func (viperTTLProvider) RefreshTokenTTL() time.Duration {
	return time.Duration(viper.GetInt("jwt.refresh_ttl_days")) * 24 * time.Hour
}
