package persistence

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsSerializationFailure(t *testing.T) {
	assert.True(t, IsSerializationFailure(&pgconn.PgError{Code: "40001"}))
	assert.True(t, IsSerializationFailure(&pgconn.PgError{Code: "40P01"}))
	assert.True(t, IsSerializationFailure(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "40001"})))
	assert.False(t, IsSerializationFailure(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsSerializationFailure(errors.New("plain error")))
	assert.False(t, IsSerializationFailure(nil))
}

func TestIsUniqueViolation(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "uq_purchases_open"}

	assert.True(t, IsUniqueViolation(err, ""))
	assert.True(t, IsUniqueViolation(err, "uq_purchases_open"))
	assert.False(t, IsUniqueViolation(err, "accounts_email_key"))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23514"}, ""))
	assert.False(t, IsUniqueViolation(errors.New("plain error"), ""))
}

func TestIsCheckViolation(t *testing.T) {
	err := &pgconn.PgError{Code: "23514", ConstraintName: "accounts_balance_check"}

	assert.True(t, IsCheckViolation(err, ""))
	assert.True(t, IsCheckViolation(err, "accounts_balance_check"))
	assert.False(t, IsCheckViolation(err, "other_check"))
	assert.False(t, IsCheckViolation(&pgconn.PgError{Code: "23505"}, ""))
}

func TestRunMigrations_ArgumentValidation(t *testing.T) {
	assert.Error(t, RunMigrations("", "migrations/postgres"))
	assert.Error(t, RunMigrations("postgres://localhost/db", ""))
}
