package database

import (
	"fmt"

	coreconfig "github.com/teamhackers/boardbooster/core/config"
)

// keywordDSN renders the lib/pq keyword form used for pool connections.
func keywordDSN(cfg coreconfig.DatabaseConfig) string {
	return fmt.Sprintf(
		"user=%s password=%s host=%s port=%d dbname=%s sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name, cfg.SSLMode,
	)
}

// urlDSN renders the URL form required by golang-migrate.
func urlDSN(cfg coreconfig.DatabaseConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name, cfg.SSLMode,
	)
}
