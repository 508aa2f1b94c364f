package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectDriver(t *testing.T) {
	tests := []struct {
		url  string
		want Driver
	}{
		{"", DriverSQLite},
		{"postgres://bt:bt@localhost:5432/bt", DriverPostgres},
		{"postgresql://bt:bt@localhost:5432/bt", DriverPostgres},
		{"sqlite:///var/lib/bt.sqlite", DriverSQLite},
		{"file:/tmp/bt.db", DriverSQLite},
		{"/home/me/data.db", DriverSQLite},
		{"/home/me/data.sqlite3", DriverSQLite},
		{"mysql://root@localhost/bt", DriverPostgres},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDriver(tt.url))
		})
	}
}

func TestDriver_IsValid(t *testing.T) {
	assert.True(t, DriverPostgres.IsValid())
	assert.True(t, DriverSQLite.IsValid())
	assert.False(t, Driver("mysql").IsValid())
	assert.Equal(t, "sqlite", DriverSQLite.String())
}

func TestNewConnection_UnregisteredDriver(t *testing.T) {
	_, err := NewConnection(context.Background(), Config{Driver: "mysql"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestUnitOfWork_RequiresBegin(t *testing.T) {
	uow := NewUnitOfWork(nil)

	assert.ErrorIs(t, uow.Commit(context.Background()), ErrNoTransaction)
	assert.ErrorIs(t, uow.Rollback(context.Background()), ErrNoTransaction)
}
