package database

import (
	"errors"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const (
	mysqlDefaultHost = "127.0.0.1"
	mysqlDefaultPort = 3306
)

func openMySQL(cfg Config) (*gorm.DB, error) {
	dsn, err := buildMySQLDSN(cfg)
	if err != nil {
		return nil, err
	}
	return gorm.Open(mysql.Open(dsn), &gorm.Config{})
}

// buildMySQLDSN assembles a go-sql-driver DSN from the unified database
// config. An explicit DSN wins over the host-based fields. parseTime is
// forced on so gorm scans timestamps into time.Time.
func buildMySQLDSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}

	if cfg.User == "" || cfg.Name == "" {
		return "", errors.New("mysql configuration requires user and database name")
	}

	credentials := cfg.User
	if cfg.Password != "" {
		credentials += ":" + cfg.Password
	}

	host := cfg.Host
	if host == "" {
		host = mysqlDefaultHost
	}
	port := cfg.Port
	if port == 0 {
		port = mysqlDefaultPort
	}
	address := net.JoinHostPort(host, strconv.Itoa(port))

	options := map[string]string{
		"charset":   "utf8mb4",
		"parseTime": "True",
		"loc":       "Local",
	}
	for key, value := range cfg.Options {
		options[key] = value
	}

	// Deterministic option order keeps DSNs stable across restarts.
	keys := make([]string, 0, len(options))
	for key := range options {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+options[key])
	}

	return fmt.Sprintf("%s@tcp(%s)/%s?%s", credentials, address, cfg.Name, strings.Join(pairs, "&")), nil
}
