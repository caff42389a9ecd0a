//go:build unit

package infra_test

import (
	"errors"
	"fmt"
	"testing"

	"smartpark/internal/infra"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestWrapRepoErrClassifies(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want infra.RepositoryErrorKind
	}{
		{name: "no rows", err: pgx.ErrNoRows, want: infra.KindNotFound},
		{name: "wrapped no rows", err: fmt.Errorf("scan: %w", pgx.ErrNoRows), want: infra.KindNotFound},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, want: infra.KindDuplicateKey},
		{name: "foreign key", err: &pgconn.PgError{Code: "23503"}, want: infra.KindForeignKeyViolated},
		{name: "check", err: &pgconn.PgError{Code: "23514"}, want: infra.KindCheckViolated},
		{name: "serialization failure", err: &pgconn.PgError{Code: "40001"}, want: infra.KindRetryable},
		{name: "deadlock", err: &pgconn.PgError{Code: "40P01"}, want: infra.KindRetryable},
		{name: "other pg code", err: &pgconn.PgError{Code: "42P01"}, want: infra.KindDBFailure},
		{name: "plain error", err: errors.New("connection reset"), want: infra.KindDBFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := infra.WrapRepoErr("insert booking", tc.err)
			assert.True(t, infra.IsKind(err, tc.want), "got %v", err)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("load: %w", infra.NewRepoErr(infra.KindNotFound, "location not found"))
	assert.True(t, infra.IsKind(err, infra.KindNotFound))
	assert.False(t, infra.IsKind(err, infra.KindDuplicateKey))
	assert.False(t, infra.IsKind(errors.New("boom"), infra.KindNotFound))
}
