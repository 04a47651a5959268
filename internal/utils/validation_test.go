package contextutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pagingSettings struct {
	PageSize int    `validate:"min=1,max=100"`
	Protocol string `validate:"oneof=grpc http"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid struct", func(t *testing.T) {
		assert.NoError(t, ValidateStruct(pagingSettings{PageSize: 10, Protocol: "grpc"}))
	})

	t.Run("invalid struct lists every field", func(t *testing.T) {
		err := ValidateStruct(pagingSettings{PageSize: 0, Protocol: "udp"})
		require.Error(t, err)

		var appErr *AppError
		require.True(t, AsError(err, &appErr))
		assert.Equal(t, ErrorCodeValidationFailed, appErr.Code)
		assert.Contains(t, appErr.Details, "pagingSettings.PageSize failed 'min=1'")
		assert.Contains(t, appErr.Details, "pagingSettings.Protocol failed 'oneof=grpc http'")
	})

	t.Run("non struct input", func(t *testing.T) {
		err := ValidateStruct(42)
		require.Error(t, err)
		assert.Equal(t, ErrorCodeInternalError, GetErrorCode(err))
	})
}

func TestIsValidURL(t *testing.T) {
	assert.True(t, IsValidURL("http://localhost:8080"))
	assert.True(t, IsValidURL("https://trivia.example.com/health"))

	assert.False(t, IsValidURL(""))
	assert.False(t, IsValidURL("localhost:8080"))
	assert.False(t, IsValidURL("ftp://example.com"))
}
