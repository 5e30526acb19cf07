package infra

import (
	"testing"

	"github.com/amirasaad/fintechflow/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialector(t *testing.T) {
	d, isSQLite := Dialector("sqlite::memory:")
	assert.True(t, isSQLite)
	assert.Equal(t, "sqlite", d.Name())

	d, isSQLite = Dialector("file:ledger?mode=memory&cache=shared")
	assert.True(t, isSQLite)
	assert.Equal(t, "sqlite", d.Name())

	d, isSQLite = Dialector("postgres://u:p@localhost:5432/db")
	assert.False(t, isSQLite)
	assert.Equal(t, "postgres", d.Name())
}

func TestNewDBConnection(t *testing.T) {
	_, err := NewDBConnection(&config.DB{}, "test")
	require.Error(t, err)

	db, err := NewDBConnection(&config.DB{Url: "sqlite::memory:"}, "test")
	require.NoError(t, err)
	require.NoError(t, db.Exec("SELECT 1").Error)
}
