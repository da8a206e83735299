package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/tablegen/internal/apperr"
	"github.com/example/tablegen/internal/ports/primary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

type mockGenTableService struct {
	lastListDb primary.ListDbTablesRequest
	lastImport primary.ImportTablesRequest
	lastEdit   primary.EditTableRequest
	lastDelete []int64
	err        error
}

func (m *mockGenTableService) ListDbTables(ctx context.Context, req primary.ListDbTablesRequest) (*primary.DbTablePage, error) {
	m.lastListDb = req
	if m.err != nil {
		return nil, m.err
	}
	return &primary.DbTablePage{Total: 1, Rows: []*primary.DbTable{{TableName: "demo_order"}}}, nil
}

func (m *mockGenTableService) ListTables(ctx context.Context, req primary.ListTablesRequest) (*primary.GenTablePage, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &primary.GenTablePage{Total: 1, Rows: []*primary.GenTable{{ID: 1, TableName: "demo_order"}}}, nil
}

func (m *mockGenTableService) GetTable(ctx context.Context, tableID int64) (*primary.GenTableDetail, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &primary.GenTableDetail{
		Table:   &primary.GenTable{ID: tableID, TableName: "demo_order", EntityName: "DemoOrder"},
		Columns: []*primary.GenColumn{{ID: 10, TableID: tableID, ColumnName: "id", IsPk: true}},
	}, nil
}

func (m *mockGenTableService) ImportTables(ctx context.Context, req primary.ImportTablesRequest) (*primary.ImportTablesResponse, error) {
	m.lastImport = req
	if m.err != nil {
		return nil, m.err
	}
	tables := make([]*primary.GenTable, len(req.TableNames))
	for i, name := range req.TableNames {
		tables[i] = &primary.GenTable{ID: int64(i + 1), TableName: name}
	}
	return &primary.ImportTablesResponse{Tables: tables}, nil
}

func (m *mockGenTableService) SyncTable(ctx context.Context, tableID int64) (*primary.SyncTableResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &primary.SyncTableResponse{TableID: tableID, Updated: []string{"id"}, Added: []string{"category"}, Removed: []string{}}, nil
}

func (m *mockGenTableService) EditTable(ctx context.Context, req primary.EditTableRequest) (*primary.GenTableDetail, error) {
	m.lastEdit = req
	if m.err != nil {
		return nil, m.err
	}
	return m.GetTable(ctx, req.TableID)
}

func (m *mockGenTableService) DeleteTables(ctx context.Context, tableIDs []int64) (int64, error) {
	m.lastDelete = tableIDs
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(tableIDs)), nil
}

type mockCodegenService struct {
	lastIDs     []int64
	archivePath string
	err         error
}

func (m *mockCodegenService) PreviewCode(ctx context.Context, tableID int64) (map[string]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return map[string]string{"gocode/model.go": "package model"}, nil
}

func (m *mockCodegenService) DownloadCode(ctx context.Context, tableIDs []int64) (*primary.Archive, error) {
	m.lastIDs = tableIDs
	if m.err != nil {
		return nil, m.err
	}
	return &primary.Archive{
		Name:        "tablegen-1.zip",
		ContentType: "application/zip",
		Path:        m.archivePath,
		Data:        []byte("PK\x03\x04"),
	}, nil
}

func (m *mockCodegenService) WriteCode(ctx context.Context, req primary.WriteCodeRequest) (*primary.WriteCodeResponse, error) {
	return &primary.WriteCodeResponse{}, nil
}

// ============================================================================
// Helpers
// ============================================================================

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestRouter(tables *mockGenTableService, codegen *mockCodegenService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(Options{}, tables, codegen, logger)
}

func perform(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

// ============================================================================
// Tests
// ============================================================================

func TestListDbTables(t *testing.T) {
	tables := &mockGenTableService{}
	router := newTestRouter(tables, &mockCodegenService{})

	w := perform(t, router, http.MethodGet, "/api/v1/gen/db?table_name=demo&page=2&page_size=10", nil)

	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, primary.ListDbTablesRequest{TableName: "demo", Page: 2, PageSize: 10}, tables.lastListDb)

	var page primary.DbTablePage
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, "demo_order", page.Rows[0].TableName)
}

func TestListDbTables_InvalidPage(t *testing.T) {
	router := newTestRouter(&mockGenTableService{}, &mockCodegenService{})

	w := perform(t, router, http.MethodGet, "/api/v1/gen/db?page=abc", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", decode(t, w).Status)
}

func TestListTables(t *testing.T) {
	router := newTestRouter(&mockGenTableService{}, &mockCodegenService{})

	w := perform(t, router, http.MethodGet, "/api/v1/gen/tables", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var page primary.GenTablePage
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &page))
	assert.Len(t, page.Rows, 1)
}

func TestGetTable(t *testing.T) {
	router := newTestRouter(&mockGenTableService{}, &mockCodegenService{})

	w := perform(t, router, http.MethodGet, "/api/v1/gen/tables/7", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var detail primary.GenTableDetail
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &detail))
	assert.Equal(t, int64(7), detail.Table.ID)
	assert.Equal(t, "DemoOrder", detail.Table.EntityName)
	assert.Len(t, detail.Columns, 1)
}

func TestGetTable_InvalidID(t *testing.T) {
	router := newTestRouter(&mockGenTableService{}, &mockCodegenService{})

	for _, path := range []string{"/api/v1/gen/tables/abc", "/api/v1/gen/tables/0", "/api/v1/gen/tables/-3"} {
		w := perform(t, router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestImportTables(t *testing.T) {
	tables := &mockGenTableService{}
	router := newTestRouter(tables, &mockCodegenService{})

	w := perform(t, router, http.MethodPost, "/api/v1/gen/tables/import", gin.H{"table_names": []string{"demo_order", "demo_user"}})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []string{"demo_order", "demo_user"}, tables.lastImport.TableNames)

	var resp primary.ImportTablesResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &resp))
	assert.Len(t, resp.Tables, 2)
}

func TestImportTables_MissingBody(t *testing.T) {
	router := newTestRouter(&mockGenTableService{}, &mockCodegenService{})

	w := perform(t, router, http.MethodPost, "/api/v1/gen/tables/import", gin.H{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSyncTable(t *testing.T) {
	router := newTestRouter(&mockGenTableService{}, &mockCodegenService{})

	w := perform(t, router, http.MethodPost, "/api/v1/gen/tables/3/sync", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp primary.SyncTableResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &resp))
	assert.Equal(t, int64(3), resp.TableID)
	assert.Equal(t, []string{"category"}, resp.Added)
}

func TestEditTable(t *testing.T) {
	tables := &mockGenTableService{}
	router := newTestRouter(tables, &mockCodegenService{})

	body := gin.H{
		"entity_name":   "Order",
		"module_name":   "order",
		"function_name": "orders",
		"gen_tpl":       "crud",
		"columns":       []gin.H{{"id": 10, "field_name": "id", "html_type": "input"}},
	}
	w := perform(t, router, http.MethodPut, "/api/v1/gen/tables/5", body)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(5), tables.lastEdit.TableID)
	assert.Equal(t, "Order", tables.lastEdit.EntityName)
	require.Len(t, tables.lastEdit.Columns, 1)
	assert.Equal(t, int64(10), tables.lastEdit.Columns[0].ID)
}

func TestDeleteTables(t *testing.T) {
	tables := &mockGenTableService{}
	router := newTestRouter(tables, &mockCodegenService{})

	w := perform(t, router, http.MethodPost, "/api/v1/gen/tables/delete", gin.H{"ids": []int64{1, 2}})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{1, 2}, tables.lastDelete)
	assert.JSONEq(t, `{"deleted":2}`, string(decode(t, w).Data))
}

func TestErrorKindsMapToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", apperr.NotFound("get", "table 9 not found"), http.StatusNotFound},
		{"conflict", apperr.Conflict("import", "already imported"), http.StatusConflict},
		{"validation", apperr.Validation("edit", "bad field"), http.StatusBadRequest},
		{"catalog", apperr.Catalog("list", assert.AnError), http.StatusBadGateway},
		{"transaction", apperr.Transaction("import", assert.AnError), http.StatusInternalServerError},
		{"render", apperr.Render("preview", "vue/api.ts.tpl", assert.AnError), http.StatusInternalServerError},
		{"unknown", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&mockGenTableService{err: tt.err}, &mockCodegenService{})

			w := perform(t, router, http.MethodGet, "/api/v1/gen/tables/9", nil)

			assert.Equal(t, tt.want, w.Code)
			env := decode(t, w)
			assert.Equal(t, "error", env.Status)
			assert.Equal(t, tt.err.Error(), env.Error)
		})
	}
}

func TestPreviewCode(t *testing.T) {
	router := newTestRouter(&mockGenTableService{}, &mockCodegenService{})

	w := perform(t, router, http.MethodGet, "/api/v1/gen/tables/1/preview", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"gocode/model.go":"package model"}`, string(decode(t, w).Data))
}

func TestDownloadCode(t *testing.T) {
	codegen := &mockCodegenService{}
	router := newTestRouter(&mockGenTableService{}, codegen)

	w := perform(t, router, http.MethodGet, "/api/v1/gen/download?ids=1,2", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{1, 2}, codegen.lastIDs)
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="tablegen-1.zip"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK\x03\x04", w.Body.String())
}

func TestDownloadCode_RemovesPublishedArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tablegen-1.zip")
	require.NoError(t, os.WriteFile(path, []byte("PK\x03\x04"), 0644))
	router := newTestRouter(&mockGenTableService{}, &mockCodegenService{archivePath: path})

	w := perform(t, router, http.MethodGet, "/api/v1/gen/download?ids=1", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PK\x03\x04", w.Body.String())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "published archive should be removed, stat err = %v", err)
}

func TestDownloadCode_Errors(t *testing.T) {
	router := newTestRouter(&mockGenTableService{}, &mockCodegenService{err: apperr.NotFound("download", "table 4 not found")})

	w := perform(t, router, http.MethodGet, "/api/v1/gen/download?ids=1,x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(t, router, http.MethodGet, "/api/v1/gen/download?ids=4", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestID(t *testing.T) {
	router := newTestRouter(&mockGenTableService{}, &mockCodegenService{})

	w := perform(t, router, http.MethodGet, "/", nil)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs(" 1, 2,,3 ")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)

	ids, err = parseIDs("")
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = parseIDs("1,0")
	assert.Error(t, err)
}
