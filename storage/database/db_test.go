package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_createQueries(t *testing.T) {
	assert.Equal(t,
		`CREATE USER "campus" CREATEDB ENCRYPTED PASSWORD 'secret'`,
		createUserQuery("campus", "secret"),
	)
	assert.Equal(t,
		`CREATE USER "bad""; DROP ROLE admin; --" CREATEDB ENCRYPTED PASSWORD 'it''s'`,
		createUserQuery(`bad"; DROP ROLE admin; --`, "it's"),
	)
	assert.Equal(t, `CREATE DATABASE "campus"`, createDBQuery("campus"))
	assert.Equal(t, `CREATE DATABASE "campus; DROP DATABASE x"`, createDBQuery("campus; DROP DATABASE x"))
}
