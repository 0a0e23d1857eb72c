package mocks

import (
	"time"

	"github.com/SimpnicServerTeam/scs-user-federation/internal/config"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/query"
)

func CreateTestConfig() *config.Config {
	return &config.Config{
		Port:       "8080",
		AppEnv:     "test",
		LogLevel:   "debug",
		InstanceID: "comp1",
		Database: config.DatabaseConfig{
			Driver:       "sqlite3",
			URL:          "file:federation-test?mode=memory&cache=shared",
			QueryTimeout: 5 * time.Second,
			Schema:       query.Schema{UsersTable: "users", AttributesTable: "user_attributes"},
		},
		Auth: config.AuthConfig{
			Mode:      config.AuthModeJWT,
			JWTSecret: "test-jwt-secret-for-federation-tests",
		},
		Lockout: CreateTestLockoutConfig(),
	}
}

func CreateTestLockoutConfig() config.LockoutConfig {
	return config.LockoutConfig{
		MaxFailures: 3,
		Window:      15 * time.Minute,
		Duration:    15 * time.Minute,
		Store:       config.AttemptStoreMemory,
	}
}
