package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Env holds runtime settings. Defaults are overridden by the optional YAML file
// named in CONFIG_FILE, which is in turn overridden by environment variables.
type Env struct {
	AppAddr  string `yaml:"app_addr"`
	GinMode  string `yaml:"gin_mode"`
	Timezone string `yaml:"timezone"`

	DB   DBConfig   `yaml:"db"`
	Auth AuthConfig `yaml:"auth"`
	SMTP SMTPConfig `yaml:"smtp"`
	Log  LogConfig  `yaml:"log"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
}

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type AuthConfig struct {
	UserSecret     string        `yaml:"user_secret"`
	EmployeeSecret string        `yaml:"employee_secret"`
	TokenTTL       time.Duration `yaml:"token_ttl"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func defaultEnv() Env {
	return Env{
		AppAddr:  ":8080",
		Timezone: "Asia/Kolkata",
		DB: DBConfig{
			Host: "127.0.0.1",
			Port: 3306,
			User: "root",
			Name: "railway",
		},
		Auth: AuthConfig{
			UserSecret:     "change-me-user",
			EmployeeSecret: "change-me-employee",
			TokenTTL:       24 * time.Hour,
		},
		SMTP: SMTPConfig{Port: 587, From: "no-reply@railway.local"},
		Log:  LogConfig{Level: "info", Format: "text"},
		CORSAllowedOrigins: []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		},
	}
}

// LoadEnv never fails on a missing variable; a broken CONFIG_FILE is fatal to the caller.
func LoadEnv() (Env, error) {
	env := defaultEnv()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return env, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &env); err != nil {
			return env, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	setString(&env.AppAddr, "APP_ADDR")
	setString(&env.GinMode, "GIN_MODE")
	setString(&env.Timezone, "APP_TIMEZONE")
	setString(&env.DB.Host, "DB_HOST")
	setInt(&env.DB.Port, "DB_PORT")
	setString(&env.DB.User, "DB_USER")
	setString(&env.DB.Password, "DB_PASSWORD")
	setString(&env.DB.Name, "DB_NAME")
	setString(&env.Auth.UserSecret, "JWT_SECRET")
	setString(&env.Auth.EmployeeSecret, "JWT_EMPLOYEE_SECRET")
	setString(&env.SMTP.Host, "SMTP_HOST")
	setInt(&env.SMTP.Port, "SMTP_PORT")
	setString(&env.SMTP.User, "SMTP_USER")
	setString(&env.SMTP.Password, "SMTP_PASSWORD")
	setString(&env.SMTP.From, "SMTP_FROM")
	setString(&env.Log.Level, "LOG_LEVEL")
	setString(&env.Log.Format, "LOG_FORMAT")

	if v := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); v != "" {
		env.CORSAllowedOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				env.CORSAllowedOrigins = append(env.CORSAllowedOrigins, o)
			}
		}
	}
	return env, nil
}

// Location resolves Timezone, falling back to the process local zone.
func (e Env) Location() *time.Location {
	if e.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
