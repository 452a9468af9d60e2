package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskboxhq/taskbox/internal/models"
)

func TestOpenSQLiteInMemoryAndMigrate(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	for _, table := range []string{"users", "todos", "activity_logs", "cache_entries"} {
		require.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}

	user := models.User{Username: "migration-check", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	require.NotZero(t, user.ID)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
}

func TestBuildPostgresDSN(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{
		User:     "taskbox",
		Password: "secret",
		Name:     "taskbox",
		Host:     "db.internal",
		Port:     5433,
	})
	require.NoError(t, err)
	require.Contains(t, dsn, "host=db.internal")
	require.Contains(t, dsn, "port=5433")
	require.Contains(t, dsn, "sslmode=disable")

	_, err = buildPostgresDSN(Config{Host: "db"})
	require.Error(t, err)

	dsn, err = buildPostgresDSN(Config{DSN: "postgres://override"})
	require.NoError(t, err)
	require.Equal(t, "postgres://override", dsn)
}

func TestBuildMySQLDSN(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{
		User:     "taskbox",
		Password: "secret",
		Name:     "taskbox",
	})
	require.NoError(t, err)
	require.Contains(t, dsn, "taskbox:secret@tcp(127.0.0.1:3306)/taskbox?")
	require.Contains(t, dsn, "parseTime=True")

	dsn, err = buildMySQLDSN(Config{
		User:    "taskbox",
		Name:    "taskbox",
		Host:    "db.internal",
		Port:    3307,
		Options: map[string]string{"charset": "latin1", "tls": "true"},
	})
	require.NoError(t, err)
	require.Contains(t, dsn, "@tcp(db.internal:3307)/taskbox?")
	require.Contains(t, dsn, "charset=latin1")
	require.Contains(t, dsn, "tls=true")

	dsn, err = buildMySQLDSN(Config{DSN: "user@tcp(override)/db"})
	require.NoError(t, err)
	require.Equal(t, "user@tcp(override)/db", dsn)

	_, err = buildMySQLDSN(Config{})
	require.Error(t, err)
}
