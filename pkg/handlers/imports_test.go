package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/companydb-io/companydb/pkg/config"
)

func importsFixture(t *testing.T) (*ImportsHandler, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Import.DataDirectory = dir
	h := NewImportsHandler(cfg, nil, nil, nil, zap.NewNop())
	return h, dir
}

func TestImportsListFiles(t *testing.T) {
	h, dir := importsFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "export.jsonl"), bytes.Repeat([]byte("x"), 2048), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	req := httptest.NewRequest(http.MethodGet, "/imports/files", nil)
	rec := httptest.NewRecorder()
	h.ListFiles(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Files []ImportFile `json:"files"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Files, 1)
	assert.Equal(t, "export.jsonl", resp.Files[0].Filename)
	assert.Equal(t, int64(2048), resp.Files[0].SizeBytes)
	assert.Equal(t, "2.0 KB", resp.Files[0].Size)
}

func TestImportsListFilesEmptyDirectory(t *testing.T) {
	h, _ := importsFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/imports/files", nil)
	rec := httptest.NewRecorder()
	h.ListFiles(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"files":[]}`, rec.Body.String())
}

func TestImportsCreateRejectsMissingFilename(t *testing.T) {
	h, _ := importsFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/imports", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportsCreateRejectsPathTraversal(t *testing.T) {
	h, _ := importsFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/imports",
		bytes.NewBufferString(`{"filename":"../../etc/passwd.jsonl"}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_filename")
}

func TestImportsCreateRejectsWrongExtension(t *testing.T) {
	h, _ := importsFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/imports",
		bytes.NewBufferString(`{"filename":"export.csv"}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportsCreateMissingFile(t *testing.T) {
	h, _ := importsFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/imports",
		bytes.NewBufferString(`{"filename":"missing.jsonl"}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "file_not_found")
}

func TestImportsReindexDisabled(t *testing.T) {
	h, _ := importsFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/imports/reindex", nil)
	rec := httptest.NewRecorder()
	h.Reindex(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "search_disabled")
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "512 B", humanSize(512))
	assert.Equal(t, "1.0 KB", humanSize(1024))
	assert.Equal(t, "1.5 MB", humanSize(1536*1024))
	assert.Equal(t, "2.0 GB", humanSize(2*1024*1024*1024))
}
