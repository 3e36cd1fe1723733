package repository

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewScheduleRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewScheduleRepository(pool)
	assert.NotNil(t, repo)
}
