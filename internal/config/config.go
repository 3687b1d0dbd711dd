package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	ServerAddr string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	RedisAddr  string
	JWTSecret  string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	AppURL       string
}

func LoadConfig() *Config {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.ReadInConfig() // missing .env is fine, env vars still apply
	viper.AutomaticEnv()

	viper.SetDefault("PORT", ":8080")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_NAME", "reviewhub")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("SMTP_HOST", "0.0.0.0")
	viper.SetDefault("SMTP_PORT", 1025)
	viper.SetDefault("FROM_EMAIL", "no-reply@reviewhub.local")
	viper.SetDefault("APP_URL", "http://localhost:8080")

	return &Config{
		ServerAddr:   viper.GetString("PORT"),
		DBHost:       viper.GetString("DB_HOST"),
		DBPort:       viper.GetString("DB_PORT"),
		DBUser:       viper.GetString("DB_USER"),
		DBPassword:   viper.GetString("DB_PASS"),
		DBName:       viper.GetString("DB_NAME"),
		RedisAddr:    viper.GetString("REDIS_ADDR"),
		JWTSecret:    viper.GetString("JWT_SECRET"),
		SMTPHost:     viper.GetString("SMTP_HOST"),
		SMTPPort:     viper.GetInt("SMTP_PORT"),
		SMTPUsername: viper.GetString("SMTP_USER"),
		SMTPPassword: viper.GetString("SMTP_PASS"),
		FromEmail:    viper.GetString("FROM_EMAIL"),
		AppURL:       viper.GetString("APP_URL"),
	}
}

// DSN assembles the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}
