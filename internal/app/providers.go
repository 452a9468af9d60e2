package app

import (
	"github.com/taskboxhq/taskbox/internal/auth"
	"github.com/taskboxhq/taskbox/internal/cache"
	"github.com/taskboxhq/taskbox/internal/database"
	"github.com/taskboxhq/taskbox/pkg/logger"
	"github.com/taskboxhq/taskbox/pkg/mail"
)

// ConfigureLogging initialises the global logger from server settings.
func ConfigureLogging(cfg *Config) error {
	return logger.Init(cfg.Server.LogLevel, cfg.Server.Debug)
}

// DatabaseConfigFromApp maps configuration onto the database package config.
func DatabaseConfigFromApp(cfg *Config) database.Config {
	out := database.Config{
		Driver: cfg.Database.Driver,
		Path:   cfg.Database.Path,
		DSN:    cfg.Database.DSN,
	}

	switch cfg.Database.Driver {
	case "postgres", "postgresql":
		out.Host = cfg.Database.Postgres.Host
		out.Port = cfg.Database.Postgres.Port
		out.Name = cfg.Database.Postgres.Database
		out.User = cfg.Database.Postgres.Username
		out.Password = cfg.Database.Postgres.Password
	case "mysql", "mariadb":
		out.Host = cfg.Database.MySQL.Host
		out.Port = cfg.Database.MySQL.Port
		out.Name = cfg.Database.MySQL.Database
		out.User = cfg.Database.MySQL.Username
		out.Password = cfg.Database.MySQL.Password
	}

	return out
}

// RedisConfigFromApp maps configuration onto the Redis store config.
func RedisConfigFromApp(cfg *Config) cache.RedisConfig {
	return cache.RedisConfig{
		Address:  cfg.Cache.Redis.Address,
		Username: cfg.Cache.Redis.Username,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		TLS:      cfg.Cache.Redis.TLS,
		Timeout:  cfg.Cache.Redis.Timeout,
	}
}

// JWTConfigFromApp maps configuration onto the token service config.
func JWTConfigFromApp(cfg *Config) auth.JWTConfig {
	return auth.JWTConfig{
		Secret:         cfg.Auth.JWT.Secret,
		Issuer:         cfg.Auth.JWT.Issuer,
		AccessTokenTTL: cfg.Auth.JWT.TTL,
	}
}

// SMTPSettingsFromApp maps configuration onto the mailer settings.
func SMTPSettingsFromApp(cfg *Config) mail.SMTPSettings {
	return mail.SMTPSettings{
		Enabled:  cfg.Email.SMTP.Enabled,
		Host:     cfg.Email.SMTP.Host,
		Port:     cfg.Email.SMTP.Port,
		Username: cfg.Email.SMTP.Username,
		Password: cfg.Email.SMTP.Password,
		From:     cfg.Email.SMTP.From,
		UseTLS:   cfg.Email.SMTP.UseTLS,
		Timeout:  cfg.Email.SMTP.Timeout,
	}
}
