// Package web exposes the generator services over a gin HTTP API.
package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/example/tablegen/internal/ports/primary"
)

type GenTableHandler struct {
	tableService primary.GenTableService
}

func NewGenTableHandler(tableService primary.GenTableService) *GenTableHandler {
	return &GenTableHandler{
		tableService: tableService,
	}
}

// listQuery is shared by the live and imported table listings.
type listQuery struct {
	TableName    string `form:"table_name"`
	TableComment string `form:"table_comment"`
	Page         int    `form:"page"`
	PageSize     int    `form:"page_size"`
}

type importRequest struct {
	TableNames []string `json:"table_names" binding:"required"`
}

type deleteRequest struct {
	IDs []int64 `json:"ids" binding:"required"`
}

func (h *GenTableHandler) ListDbTables(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		Fail(c, http.StatusBadRequest, err, "Invalid query parameters")
		return
	}

	page, err := h.tableService.ListDbTables(c.Request.Context(), primary.ListDbTablesRequest{
		TableName:    q.TableName,
		TableComment: q.TableComment,
		Page:         q.Page,
		PageSize:     q.PageSize,
	})
	if err != nil {
		FailErr(c, err, "Error while listing database tables")
		return
	}

	Success(c, http.StatusOK, page, "")
}

func (h *GenTableHandler) ListTables(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		Fail(c, http.StatusBadRequest, err, "Invalid query parameters")
		return
	}

	page, err := h.tableService.ListTables(c.Request.Context(), primary.ListTablesRequest{
		TableName:    q.TableName,
		TableComment: q.TableComment,
		Page:         q.Page,
		PageSize:     q.PageSize,
	})
	if err != nil {
		FailErr(c, err, "Error while listing tables")
		return
	}

	Success(c, http.StatusOK, page, "")
}

func (h *GenTableHandler) GetTable(c *gin.Context) {
	tableID, err := paramID(c)
	if err != nil {
		Fail(c, http.StatusBadRequest, err, "Invalid table id")
		return
	}

	detail, err := h.tableService.GetTable(c.Request.Context(), tableID)
	if err != nil {
		FailErr(c, err, "Error while loading the table")
		return
	}

	Success(c, http.StatusOK, detail, "")
}

func (h *GenTableHandler) ImportTables(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	resp, err := h.tableService.ImportTables(c.Request.Context(), primary.ImportTablesRequest{TableNames: req.TableNames})
	if err != nil {
		FailErr(c, err, "Error while importing tables")
		return
	}

	Success(c, http.StatusCreated, resp, "Tables imported successfully")
}

func (h *GenTableHandler) SyncTable(c *gin.Context) {
	tableID, err := paramID(c)
	if err != nil {
		Fail(c, http.StatusBadRequest, err, "Invalid table id")
		return
	}

	resp, err := h.tableService.SyncTable(c.Request.Context(), tableID)
	if err != nil {
		FailErr(c, err, "Error while synchronizing the table")
		return
	}

	Success(c, http.StatusOK, resp, "Table synchronized successfully")
}

func (h *GenTableHandler) EditTable(c *gin.Context) {
	tableID, err := paramID(c)
	if err != nil {
		Fail(c, http.StatusBadRequest, err, "Invalid table id")
		return
	}

	var req primary.EditTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	req.TableID = tableID

	detail, err := h.tableService.EditTable(c.Request.Context(), req)
	if err != nil {
		FailErr(c, err, "Error while updating the table")
		return
	}

	Success(c, http.StatusOK, detail, "Table updated successfully")
}

func (h *GenTableHandler) DeleteTables(c *gin.Context) {
	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	n, err := h.tableService.DeleteTables(c.Request.Context(), req.IDs)
	if err != nil {
		FailErr(c, err, "Error while deleting tables")
		return
	}

	Success(c, http.StatusOK, gin.H{"deleted": n}, "Tables deleted successfully")
}

func paramID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id must be a positive integer, got %q", c.Param("id"))
	}
	return id, nil
}

// parseIDs parses a comma separated id list such as "1,2,3".
func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
