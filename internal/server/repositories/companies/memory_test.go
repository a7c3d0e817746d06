package companies

import (
	"context"
	"math"
	"testing"

	"github.com/jobfind/jobfind/internal/common"
	"github.com/jobfind/jobfind/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	c, err := repo.Create(ctx, &models.Company{Name: "Acme"})
	require.NoError(t, err)

	c.Name = "Acme Ltd"
	updated, err := repo.Update(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, c.CreatedAt, updated.CreatedAt)

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", got.Name)

	list, total, err := repo.List(ctx, models.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, c.ID))
	_, err = repo.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = repo.Update(ctx, c)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_ListHugePage(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	_, err := repo.Create(ctx, &models.Company{Name: "Acme"})
	require.NoError(t, err)

	var (
		list  []*models.Company
		total int64
	)
	require.NotPanics(t, func() {
		list, total, err = repo.List(ctx, models.PageRequest{Page: math.MaxInt64, PageSize: 20})
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Empty(t, list)
}
