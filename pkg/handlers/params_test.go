package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestParsePaging(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", 20, 0},
		{"explicit values", "limit=50&offset=10", 50, 10},
		{"limit clamped high", "limit=500", 100, 0},
		{"limit clamped low", "limit=0", 1, 0},
		{"negative offset ignored", "offset=-5", 20, 0},
		{"garbage ignored", "limit=abc&offset=xyz", 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/companies?"+tt.query, nil)
			limit, offset := ParsePaging(req)
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}

func TestParseJobID(t *testing.T) {
	logger := zap.NewNop()

	t.Run("valid UUID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/imports/x", nil)
		req.SetPathValue("id", "550e8400-e29b-41d4-a716-446655440000")
		rec := httptest.NewRecorder()

		id, ok := ParseJobID(rec, req, logger)
		assert.True(t, ok)
		assert.NotEqual(t, uuid.Nil, id)
	})

	t.Run("invalid UUID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/imports/x", nil)
		req.SetPathValue("id", "not-a-uuid")
		rec := httptest.NewRecorder()

		id, ok := ParseJobID(rec, req, logger)
		assert.False(t, ok)
		assert.Equal(t, uuid.Nil, id)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
