package services

import (
	"errors"
	"testing"

	contextutils "triviaapi/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginate(t *testing.T) {
	items := make([]int, 19)
	for i := range items {
		items[i] = i + 1
	}

	tests := []struct {
		name     string
		page     int
		size     int
		expected []int
	}{
		{"first page", 1, 10, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{"partial last page", 2, 10, []int{11, 12, 13, 14, 15, 16, 17, 18, 19}},
		{"past the end", 3, 10, []int{}},
		{"zero page treated as first", 0, 5, []int{1, 2, 3, 4, 5}},
		{"negative page treated as first", -4, 5, []int{1, 2, 3, 4, 5}},
		{"zero size", 1, 0, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Paginate(items, tt.page, tt.size))
		})
	}
}

func TestPaginate_Empty(t *testing.T) {
	assert.Empty(t, Paginate([]string{}, 1, 10))
	assert.Empty(t, Paginate[string](nil, 1, 10))
}

func TestPageOf(t *testing.T) {
	notFound := contextutils.ErrQuestionNotFound

	t.Run("empty listing", func(t *testing.T) {
		_, err := pageOf([]int{}, 1, 10, notFound)
		assert.True(t, contextutils.IsError(err, contextutils.ErrQuestionNotFound))
	})

	t.Run("page beyond range", func(t *testing.T) {
		_, err := pageOf([]int{1, 2, 3}, 2, 10, notFound)
		require.Error(t, err)

		var pageErr *InvalidPageError
		require.True(t, errors.As(err, &pageErr))
		assert.Equal(t, 2, pageErr.Page)
		assert.Equal(t, 3, pageErr.Total)
		assert.Equal(t, contextutils.ErrorCodeInvalidPage, contextutils.GetErrorCode(err))
	})

	t.Run("page in range", func(t *testing.T) {
		current, err := pageOf([]int{1, 2, 3}, 1, 2, notFound)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, current)
	})
}

func TestNoQuestionsAvailableError(t *testing.T) {
	err := &NoQuestionsAvailableError{CategoryID: 3, PreviousCount: 2}

	assert.Contains(t, err.Error(), "category=3")
	assert.True(t, errors.Is(err, contextutils.ErrNoQuestionsAvailable))
	assert.Equal(t, contextutils.ErrorCodeNoQuestionsAvailable, contextutils.GetErrorCode(err))
}

func TestStoreError(t *testing.T) {
	cause := errors.New("connection reset")
	err := storeError(cause, "failed to query questions")

	assert.Equal(t, contextutils.ErrorCodeDatabaseQuery, contextutils.GetErrorCode(err))
	assert.ErrorIs(t, err, cause)
}

func TestFilteredPageOf(t *testing.T) {
	notFound := contextutils.ErrQuestionNotFound

	t.Run("empty listing", func(t *testing.T) {
		_, err := filteredPageOf([]int{}, 1, 10, notFound)
		assert.True(t, contextutils.IsError(err, contextutils.ErrQuestionNotFound))
	})

	t.Run("page beyond range", func(t *testing.T) {
		_, err := filteredPageOf([]int{1, 2, 3}, 5, 10, notFound)
		assert.True(t, contextutils.IsError(err, contextutils.ErrQuestionNotFound))

		var pageErr *InvalidPageError
		assert.False(t, errors.As(err, &pageErr))
	})

	t.Run("page in range", func(t *testing.T) {
		current, err := filteredPageOf([]int{1, 2, 3}, 2, 2, notFound)
		require.NoError(t, err)
		assert.Equal(t, []int{3}, current)
	})
}
