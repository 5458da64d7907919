package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khrental/internal/domain"
)

func TestNewPageParams(t *testing.T) {
	assert.Equal(t, domain.PaginationParams{Page: 1, PageSize: domain.DefaultPageSize}, domain.NewPageParams(0, 0))
	assert.Equal(t, domain.PaginationParams{Page: 3, PageSize: domain.MaxPageSize}, domain.NewPageParams(3, 500))

	p := domain.NewPageParams(3, 15)
	assert.Equal(t, 30, p.Offset())
}

func TestNewPaginatedResponse(t *testing.T) {
	page := domain.NewPaginatedResponse([]int{1, 2}, 2, 2, 5)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasNext)
	assert.True(t, page.HasPrev)

	last := domain.NewPaginatedResponse([]int{5}, 3, 2, 5)
	assert.False(t, last.HasNext)
}

func TestNewPaginatedResponse_EmptyPage(t *testing.T) {
	page := domain.NewPaginatedResponse[domain.Comment](nil, 1, 0, 0)
	assert.Zero(t, page.TotalPages)
	assert.False(t, page.HasNext)

	body, err := json.Marshal(page)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"data":[]`)
}
