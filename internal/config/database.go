// internal/config/database.go
package config

import (
	"fmt"
)

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC application_name=scholarship-escrow",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}
