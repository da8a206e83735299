package web

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/example/tablegen/internal/ports/primary"
)

type CodegenHandler struct {
	codegenService primary.CodegenService
}

func NewCodegenHandler(codegenService primary.CodegenService) *CodegenHandler {
	return &CodegenHandler{
		codegenService: codegenService,
	}
}

func (h *CodegenHandler) PreviewCode(c *gin.Context) {
	tableID, err := paramID(c)
	if err != nil {
		Fail(c, http.StatusBadRequest, err, "Invalid table id")
		return
	}

	files, err := h.codegenService.PreviewCode(c.Request.Context(), tableID)
	if err != nil {
		FailErr(c, err, "Error while rendering the preview")
		return
	}

	Success(c, http.StatusOK, files, "")
}

// DownloadCode streams the archive as an attachment instead of the JSON envelope.
func (h *CodegenHandler) DownloadCode(c *gin.Context) {
	ids, err := parseIDs(c.Query("ids"))
	if err != nil {
		Fail(c, http.StatusBadRequest, err, "Invalid ids")
		return
	}

	archive, err := h.codegenService.DownloadCode(c.Request.Context(), ids)
	if err != nil {
		FailErr(c, err, "Error while packaging the code")
		return
	}

	// The response carries the bytes; the published copy is not kept.
	if archive.Path != "" {
		os.Remove(archive.Path)
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", archive.Name))
	c.Data(http.StatusOK, archive.ContentType, archive.Data)
}
