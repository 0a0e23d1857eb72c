package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/SimpnicServerTeam/scs-user-federation/internal/query"
	"github.com/spf13/viper"
)

// Host authentication modes for the federation API.
const (
	AuthModeNone = "none"
	AuthModeJWT  = "jwt"
	AuthModeOIDC = "oidc"
)

// Attempt store backends.
const (
	AttemptStoreMemory = "memory"
	AttemptStoreRedis  = "redis"
)

type DatabaseConfig struct {
	// postgres or sqlite3
	Driver   string
	URL      string
	Username string
	// Resolved once at load time, from KC_DB_PASSWORD_FILE when set.
	Password       string
	MaxConns       int32
	MinConns       int32
	IdleTimeout    time.Duration
	ConnectTimeout time.Duration
	QueryTimeout   time.Duration
	Schema         query.Schema
}

type RedisSettings struct {
	Address  string
	Password string
	DB       int
}

type AuthConfig struct {
	Mode          string
	JWTSecret     string
	OIDCIssuerURL string
	OIDCClientID  string
}

type LockoutConfig struct {
	// 0 disables lockout.
	MaxFailures int64
	Window      time.Duration
	Duration    time.Duration
	Store       string
}

type Config struct {
	// Server port
	Port       string
	AppEnv     string
	LogLevel   string
	InstanceID string
	Database   DatabaseConfig
	Auth       AuthConfig
	// Requests per second per client IP, 0 disables the limiter.
	RateLimit     float64
	Lockout       LockoutConfig
	RedisSettings RedisSettings
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("DB_MIN_CONNS", 2)
	viper.SetDefault("DB_IDLE_TIMEOUT", "30s")
	viper.SetDefault("DB_CONNECT_TIMEOUT", "30s")
	viper.SetDefault("DB_QUERY_TIMEOUT", "10s")
	viper.SetDefault("DB_KEY_TYPE", query.DefaultSchema.KeyType)
	viper.SetDefault("API_AUTH_MODE", AuthModeJWT)
	viper.SetDefault("API_RATE_LIMIT", 50)
	viper.SetDefault("LOCKOUT_MAX_FAILURES", 5)
	viper.SetDefault("LOCKOUT_WINDOW", "15m")
	viper.SetDefault("LOCKOUT_DURATION", "15m")
	viper.SetDefault("ATTEMPT_STORE", AttemptStoreMemory)
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()
	setDefaults()

	// Load configuration
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Println("Config file not found, using defaults and environment variables")
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	instanceID := viper.GetString("ADAPTER_INSTANCE_ID")
	if instanceID == "" {
		return nil, errors.New("ADAPTER_INSTANCE_ID must be set")
	}
	if strings.Contains(instanceID, ":") {
		return nil, fmt.Errorf("ADAPTER_INSTANCE_ID %q must not contain ':'", instanceID)
	}

	db, err := loadDatabase()
	if err != nil {
		return nil, err
	}

	auth := AuthConfig{
		Mode:          strings.ToLower(viper.GetString("API_AUTH_MODE")),
		JWTSecret:     viper.GetString("API_JWT_SECRET"),
		OIDCIssuerURL: viper.GetString("OIDC_ISSUER_URL"),
		OIDCClientID:  viper.GetString("OIDC_CLIENT_ID"),
	}
	switch auth.Mode {
	case AuthModeNone:
	case AuthModeJWT:
		if auth.JWTSecret == "" {
			return nil, errors.New("API_JWT_SECRET must be set when API_AUTH_MODE is jwt")
		}
	case AuthModeOIDC:
		if auth.OIDCIssuerURL == "" || auth.OIDCClientID == "" {
			return nil, errors.New("OIDC_ISSUER_URL and OIDC_CLIENT_ID must be set when API_AUTH_MODE is oidc")
		}
	default:
		return nil, fmt.Errorf("unknown API_AUTH_MODE %q", auth.Mode)
	}

	lockout := LockoutConfig{
		MaxFailures: viper.GetInt64("LOCKOUT_MAX_FAILURES"),
		Window:      viper.GetDuration("LOCKOUT_WINDOW"),
		Duration:    viper.GetDuration("LOCKOUT_DURATION"),
		Store:       strings.ToLower(viper.GetString("ATTEMPT_STORE")),
	}
	if lockout.Store != AttemptStoreMemory && lockout.Store != AttemptStoreRedis {
		return nil, fmt.Errorf("unknown ATTEMPT_STORE %q", lockout.Store)
	}
	if lockout.MaxFailures > 0 && (lockout.Window <= 0 || lockout.Duration <= 0) {
		return nil, errors.New("LOCKOUT_WINDOW and LOCKOUT_DURATION must be positive")
	}

	return &Config{
		Port:          viper.GetString("APP_PORT"),
		AppEnv:        viper.GetString("APP_ENV"),
		LogLevel:      viper.GetString("LOG_LEVEL"),
		InstanceID:    instanceID,
		Database:      db,
		Auth:          auth,
		RateLimit:     viper.GetFloat64("API_RATE_LIMIT"),
		Lockout:       lockout,
		RedisSettings: RedisSettings{
			Address:  viper.GetString("REDIS_ADDRESS"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
	}, nil
}

func loadDatabase() (DatabaseConfig, error) {
	driver := strings.ToLower(viper.GetString("DATABASE_DRIVER"))
	dialect, ok := query.DialectFor(driver)
	if !ok {
		return DatabaseConfig{}, fmt.Errorf("unsupported DATABASE_DRIVER %q", driver)
	}

	schema := query.DefaultSchema
	if dialect.Name == query.SQLite.Name {
		schema.UsersTable = "users"
		schema.AttributesTable = "user_attributes"
		schema.KeyType = ""
	} else {
		schema.KeyType = viper.GetString("DB_KEY_TYPE")
	}
	if v := viper.GetString("DB_USERS_TABLE"); v != "" {
		schema.UsersTable = v
	}
	if v := viper.GetString("DB_ATTRIBUTES_TABLE"); v != "" {
		schema.AttributesTable = v
	}
	if !query.ValidIdentifier(schema.UsersTable) {
		return DatabaseConfig{}, fmt.Errorf("invalid DB_USERS_TABLE %q", schema.UsersTable)
	}
	if !query.ValidIdentifier(schema.AttributesTable) {
		return DatabaseConfig{}, fmt.Errorf("invalid DB_ATTRIBUTES_TABLE %q", schema.AttributesTable)
	}
	if schema.KeyType != "" && !query.ValidIdentifier(schema.KeyType) {
		return DatabaseConfig{}, fmt.Errorf("invalid DB_KEY_TYPE %q", schema.KeyType)
	}

	password, err := resolvePassword()
	if err != nil {
		return DatabaseConfig{}, err
	}

	db := DatabaseConfig{
		Driver:         dialect.Name,
		URL:            strings.TrimPrefix(viper.GetString("KC_DB_URL"), "jdbc:"),
		Username:       viper.GetString("KC_DB_USERNAME"),
		Password:       password,
		MaxConns:       viper.GetInt32("DB_MAX_CONNS"),
		MinConns:       viper.GetInt32("DB_MIN_CONNS"),
		IdleTimeout:    viper.GetDuration("DB_IDLE_TIMEOUT"),
		ConnectTimeout: viper.GetDuration("DB_CONNECT_TIMEOUT"),
		QueryTimeout:   viper.GetDuration("DB_QUERY_TIMEOUT"),
		Schema:         schema,
	}

	if dialect.Name == query.Postgres.Name {
		if db.URL == "" || db.Username == "" || db.Password == "" {
			return DatabaseConfig{}, errors.New("KC_DB_URL, KC_DB_USERNAME and a database password must be set for postgres")
		}
	} else if db.URL == "" {
		db.URL = "file:federation?mode=memory&cache=shared"
	}
	if db.MinConns > db.MaxConns {
		db.MinConns = db.MaxConns
	}
	return db, nil
}

// resolvePassword prefers KC_DB_PASSWORD_FILE over KC_DB_PASSWORD.
func resolvePassword() (string, error) {
	if path := viper.GetString("KC_DB_PASSWORD_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read KC_DB_PASSWORD_FILE: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	return viper.GetString("KC_DB_PASSWORD"), nil
}
