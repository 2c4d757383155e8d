package database

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiban/gashift/internal/config"
	"github.com/paiban/gashift/pkg/errors"
)

func TestTruncateQuery(t *testing.T) {
	short := "SELECT 1"
	assert.Equal(t, short, truncateQuery(short))

	long := strings.Repeat("x", 250)
	got := truncateQuery(long)
	assert.Len(t, got, 203)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestNew_PingFailure(t *testing.T) {
	cfg := config.DefaultConfig().Database
	cfg.Host = "127.0.0.1"
	cfg.Port = 1

	db, err := New(context.Background(), &cfg)
	require.Error(t, err)
	assert.Nil(t, db)
	assert.Equal(t, errors.CodeDatabaseError, errors.GetCode(err))

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "127.0.0.1", appErr.Fields["host"])
}
