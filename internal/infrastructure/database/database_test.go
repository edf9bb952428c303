package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaintenanceTarget(t *testing.T) {
	tests := []struct {
		name      string
		dsn       string
		wantAdmin string
		wantDB    string
		wantOK    bool
	}{
		{
			name:      "url dsn",
			dsn:       "postgres://app:secret@db:5432/unibox?sslmode=disable",
			wantAdmin: "postgres://app:secret@db:5432/postgres?sslmode=disable",
			wantDB:    "unibox",
			wantOK:    true,
		},
		{name: "maintenance database", dsn: "postgres://app@db/postgres"},
		{name: "no database", dsn: "postgres://app@db"},
		{name: "keyword dsn", dsn: "host=db user=app dbname=unibox"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admin, db, ok := maintenanceTarget(tt.dsn)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantAdmin, admin)
			assert.Equal(t, tt.wantDB, db)
		})
	}
}

func TestWithApplicationName(t *testing.T) {
	assert.Equal(t,
		"postgres://db/unibox?application_name=unibox-api&sslmode=disable",
		withApplicationName("postgres://db/unibox?sslmode=disable", "unibox-api"))
	assert.Equal(t,
		"postgres://db/unibox?application_name=worker",
		withApplicationName("postgres://db/unibox?application_name=worker", "unibox-api"))
	assert.Equal(t, "host=db dbname=unibox", withApplicationName("host=db dbname=unibox", "unibox-api"))
	assert.Equal(t, "postgres://db/unibox", withApplicationName("postgres://db/unibox", ""))
}

func TestPQQuoteIdentifier(t *testing.T) {
	assert.Equal(t, `"unibox"`, pqQuoteIdentifier("unibox"))
	assert.Equal(t, `"we""ird"`, pqQuoteIdentifier(`we"ird`))
}
