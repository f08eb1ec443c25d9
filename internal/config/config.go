package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	AppPort string `mapstructure:"app_port"`
	BaseURL string `mapstructure:"base_url"`

	Database struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"database"`

	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`

	Google struct {
		ClientID     string `mapstructure:"client_id"`
		ClientSecret string `mapstructure:"client_secret"`
		RedirectURL  string `mapstructure:"redirect_url"`
	} `mapstructure:"google"`

	Mail struct {
		ResendAPIKey string `mapstructure:"resend_api_key"`
		FromAddress  string `mapstructure:"from_address"`
	} `mapstructure:"mail"`
}

func Load() Config {
	viper.SetDefault("app_port", "8080")
	viper.SetDefault("base_url", "http://localhost:8080")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	_ = viper.ReadInConfig()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// explicit bindings
	_ = viper.BindEnv("app_port", "APP_PORT")
	_ = viper.BindEnv("base_url", "BASE_URL")
	_ = viper.BindEnv("database.dsn", "DATABASE_DSN")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = viper.BindEnv("google.client_id", "GOOGLE_CLIENT_ID")
	_ = viper.BindEnv("google.client_secret", "GOOGLE_CLIENT_SECRET")
	_ = viper.BindEnv("google.redirect_url", "GOOGLE_REDIRECT_URL")
	_ = viper.BindEnv("mail.resend_api_key", "RESEND_API_KEY")
	_ = viper.BindEnv("mail.from_address", "MAIL_FROM_ADDRESS")

	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		panic("config error: " + err.Error())
	}
	return c
}
