package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type TelegramConfig struct {
	BotToken  string `yaml:"bot_token"`
	OpsChatID int64  `yaml:"ops_chat_id"`
	Enabled   bool   `yaml:"enabled"`
}

type AuthConfig struct {
	// Cookie / header name carrying the session id.
	SessionCookie string `yaml:"session_cookie"`
	// Session lifetime in seconds (server-side record TTL cleanup hint).
	SessionTTLSeconds int `yaml:"session_ttl_seconds"`
	// OTP settings for super-admin password reset.
	OTPTTLSeconds  int `yaml:"otp_ttl_seconds"`
	OTPMaxAttempts int `yaml:"otp_max_attempts"`
	// Sliding-window limits for login/signup attempts.
	LoginWindowSeconds int `yaml:"login_window_seconds"`
	LoginMaxAttempts   int `yaml:"login_max_attempts"`
	// Secret for signed client reset tokens.
	ResetTokenSecret string `yaml:"reset_token_secret"`
	// Identity classes under single-session enforcement.
	EnforceSingleSessionFor []string `yaml:"enforce_single_session_for"`
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Redis RedisConfig `yaml:"redis"`
	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUser     string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
	} `yaml:"email"`
	Telegram TelegramConfig `yaml:"telegram"`
	Auth     AuthConfig     `yaml:"auth"`
}

func LoadConfig() *Config {
	f, err := os.Open("config/config.yaml")
	if err != nil {
		panic("Failed to open config.yaml: " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse config.yaml: " + err.Error())
	}

	// Secrets may come from the environment instead of the file.
	if v := os.Getenv("RESET_TOKEN_SECRET"); v != "" {
		cfg.Auth.ResetTokenSecret = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}

	if cfg.Auth.SessionCookie == "" {
		cfg.Auth.SessionCookie = "flodo_session"
	}
	if cfg.Auth.SessionTTLSeconds <= 0 {
		cfg.Auth.SessionTTLSeconds = 24 * 3600
	}
	if cfg.Auth.OTPTTLSeconds <= 0 {
		cfg.Auth.OTPTTLSeconds = 600
	}
	if cfg.Auth.OTPMaxAttempts <= 0 {
		cfg.Auth.OTPMaxAttempts = 5
	}
	if cfg.Auth.LoginWindowSeconds <= 0 {
		cfg.Auth.LoginWindowSeconds = 60
	}
	if cfg.Auth.LoginMaxAttempts <= 0 {
		cfg.Auth.LoginMaxAttempts = 5
	}
	if len(cfg.Auth.EnforceSingleSessionFor) == 0 {
		cfg.Auth.EnforceSingleSessionFor = []string{"client"}
	}
	return &cfg
}
