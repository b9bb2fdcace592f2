package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSortSpec_Empty(t *testing.T) {
	assert.Nil(t, ParseSortSpec(""))
}

func TestParseSortSpec_SingleField(t *testing.T) {
	fields := ParseSortSpec("created_at:desc")

	require.Len(t, fields, 1)
	assert.Equal(t, "created_at", fields[0].Field)
	assert.Equal(t, "desc", fields[0].Direction)
}

func TestParseSortSpec_MultipleFields(t *testing.T) {
	fields := ParseSortSpec("rating:desc,created_at:asc")

	require.Len(t, fields, 2)
	assert.Equal(t, SortField{Field: "rating", Direction: "desc"}, fields[0])
	assert.Equal(t, SortField{Field: "created_at", Direction: "asc"}, fields[1])
}

func TestParseSortSpec_UnknownDirectionFallsBackToAsc(t *testing.T) {
	fields := ParseSortSpec("name:sideways")

	require.Len(t, fields, 1)
	assert.Equal(t, "asc", fields[0].Direction)
}

func TestParseSortSpec_MissingDirectionFallsBackToAsc(t *testing.T) {
	fields := ParseSortSpec("name")

	require.Len(t, fields, 1)
	assert.Equal(t, "name", fields[0].Field)
	assert.Equal(t, "asc", fields[0].Direction)
}

func TestProductOrderClause_Success(t *testing.T) {
	clause, err := ProductOrderClause(ParseSortSpec("created_at:desc,name:asc"))

	require.NoError(t, err)
	assert.Equal(t, "products.created_at DESC, products.name ASC", clause)
}

func TestProductOrderClause_UnknownFieldRejected(t *testing.T) {
	_, err := ProductOrderClause(ParseSortSpec("price:desc"))

	assert.ErrorIs(t, err, ErrUnknownSortField)
}

func TestProductOrderClause_InjectionAttemptRejected(t *testing.T) {
	_, err := ProductOrderClause([]SortField{{Field: "name; DROP TABLE products", Direction: "asc"}})

	assert.ErrorIs(t, err, ErrUnknownSortField)
}

func TestProductOrderClause_Empty(t *testing.T) {
	clause, err := ProductOrderClause(nil)

	require.NoError(t, err)
	assert.Empty(t, clause)
}

func TestReviewOrderClause_Success(t *testing.T) {
	clause, err := ReviewOrderClause(ParseSortSpec("helpful_votes:desc"))

	require.NoError(t, err)
	assert.Equal(t, "reviews.helpful_votes DESC", clause)
}

func TestReviewOrderClause_ProductFieldRejected(t *testing.T) {
	// slug сортируем у товаров, но не у отзывов
	_, err := ReviewOrderClause(ParseSortSpec("slug:asc"))

	assert.ErrorIs(t, err, ErrUnknownSortField)
}

func TestNewPageWindow_BothPresent(t *testing.T) {
	page, perPage := 3, 20
	w := NewPageWindow(&page, &perPage)

	assert.True(t, w.Enabled())
	assert.Equal(t, 40, w.Offset())
	assert.Equal(t, 20, w.Limit())
}

func TestNewPageWindow_MissingPageDisablesPagination(t *testing.T) {
	perPage := 20
	w := NewPageWindow(nil, &perPage)

	assert.False(t, w.Enabled())
}

func TestNewPageWindow_MissingPerPageDisablesPagination(t *testing.T) {
	page := 2
	w := NewPageWindow(&page, nil)

	assert.False(t, w.Enabled())
}

func TestPageWindow_FirstPageOffsetZero(t *testing.T) {
	w := PageWindow{Page: 1, PerPage: 10}

	assert.Equal(t, 0, w.Offset())
}
