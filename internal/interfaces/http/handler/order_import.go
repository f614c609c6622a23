package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	importapp "github.com/sellerops/backend/internal/application/import"
	"github.com/sellerops/backend/internal/domain/orders"
	"github.com/sellerops/backend/internal/interfaces/http/dto"
)

// allowedUploadContentTypes are the content types accepted for import
// uploads. Browsers are inconsistent here, so octet-stream and plain text
// pass through; the real format check is done on the file itself.
var allowedUploadContentTypes = map[string]bool{
	"text/csv":                 true,
	"text/plain":               true,
	"application/octet-stream": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
}

// OrderImportHandler handles the bulk order import API endpoints
type OrderImportHandler struct {
	BaseHandler
	imports     *importapp.OrderImportService
	histories   *importapp.ImportHistoryService
	maxFileSize int64
}

// NewOrderImportHandler creates a new OrderImportHandler
func NewOrderImportHandler(
	imports *importapp.OrderImportService,
	histories *importapp.ImportHistoryService,
	maxFileSize int64,
) *OrderImportHandler {
	if maxFileSize <= 0 {
		maxFileSize = 10 << 20
	}
	return &OrderImportHandler{
		imports:     imports,
		histories:   histories,
		maxFileSize: maxFileSize,
	}
}

// RegisterRoutes registers the import routes on the API group
func (h *OrderImportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	imports := rg.Group("/orders/import")
	{
		imports.POST("/validate", h.Validate)
		imports.GET("/sessions/:id", h.GetSession)
		imports.POST("/sessions/:id/confirm", h.Confirm)
		imports.GET("/sessions/:id/corrected", h.DownloadCorrected)
		imports.GET("/history", h.ListHistory)
		imports.GET("/history/:id", h.GetHistory)
		imports.DELETE("/history/:id", h.DeleteHistory)
	}
}

// Validate accepts a multipart upload, runs the validation pipeline against
// the selected warehouse's catalog and opens an import session holding the
// result. A structurally invalid file yields a response with success=false
// and no session ID.
func (h *OrderImportHandler) Validate(c *gin.Context) {
	sellerID, err := getSellerID(c)
	if err != nil {
		h.BadRequest(c, "Invalid seller ID")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	warehouseID := c.PostForm("warehouse_id")
	if warehouseID == "" {
		h.ValidationError(c, []dto.ValidationDetail{
			{Field: "warehouse_id", Message: "warehouse_id is required"},
		})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.ValidationError(c, []dto.ValidationDetail{
			{Field: "file", Message: "file is required"},
		})
		return
	}
	defer file.Close()

	if header.Size > h.maxFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeFileTooLarge,
			fmt.Sprintf("file exceeds maximum size of %d bytes", h.maxFileSize))
		return
	}

	if ct := header.Header.Get("Content-Type"); ct != "" && !allowedUploadContentTypes[ct] {
		h.Error(c, http.StatusUnsupportedMediaType, dto.ErrCodeUnsupportedMedia,
			"file must be a CSV or Excel file")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		h.InternalError(c, "failed to read uploaded file")
		return
	}
	if int64(len(data)) > h.maxFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeFileTooLarge,
			fmt.Sprintf("file exceeds maximum size of %d bytes", h.maxFileSize))
		return
	}

	result, err := h.imports.ValidateFile(c.Request.Context(), importapp.ValidateFileCommand{
		SellerID:    sellerID,
		ImportedBy:  userID,
		WarehouseID: warehouseID,
		FileName:    header.Filename,
		Data:        data,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewValidationResponse(result.Session, result.Result))
}

// GetSession returns the state and validation result of one import session
func (h *OrderImportHandler) GetSession(c *gin.Context) {
	sellerID, err := getSellerID(c)
	if err != nil {
		h.BadRequest(c, "Invalid seller ID")
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID")
		return
	}

	session, err := h.imports.GetSession(c.Request.Context(), sellerID, sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewSessionResponse(session))
}

// Confirm submits the error-free rows of a validated session for bulk
// creation
func (h *OrderImportHandler) Confirm(c *gin.Context) {
	sellerID, err := getSellerID(c)
	if err != nil {
		h.BadRequest(c, "Invalid seller ID")
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID")
		return
	}

	result, err := h.imports.ConfirmImport(c.Request.Context(), sellerID, sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewConfirmResponse(result.Session, result.Created))
}

// DownloadCorrected streams the session's corrected file as a CSV attachment
// with per-row status and error columns appended
func (h *OrderImportHandler) DownloadCorrected(c *gin.Context) {
	sellerID, err := getSellerID(c)
	if err != nil {
		h.BadRequest(c, "Invalid seller ID")
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID")
		return
	}

	fileName, data, err := h.imports.ExportCorrected(c.Request.Context(), sellerID, sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// ListHistory returns a page of the seller's import history, most recent
// first
func (h *OrderImportHandler) ListHistory(c *gin.Context) {
	sellerID, err := getSellerID(c)
	if err != nil {
		h.BadRequest(c, "Invalid seller ID")
		return
	}

	var req dto.HistoryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := orders.ImportHistoryFilter{}
	if req.WarehouseID != "" {
		filter.WarehouseID = &req.WarehouseID
	}
	if req.Status != "" {
		status := orders.ImportStatus(req.Status)
		filter.Status = &status
	}

	result, err := h.histories.List(c.Request.Context(), sellerID, filter, req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c,
		dto.NewImportHistoryListResponse(result.Items),
		result.TotalCount, result.Page, result.PageSize)
}

// GetHistory returns one import history record
func (h *OrderImportHandler) GetHistory(c *gin.Context) {
	sellerID, err := getSellerID(c)
	if err != nil {
		h.BadRequest(c, "Invalid seller ID")
		return
	}

	historyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid history ID")
		return
	}

	history, err := h.histories.Get(c.Request.Context(), sellerID, historyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewImportHistoryResponse(history))
}

// DeleteHistory removes one import history record
func (h *OrderImportHandler) DeleteHistory(c *gin.Context) {
	sellerID, err := getSellerID(c)
	if err != nil {
		h.BadRequest(c, "Invalid seller ID")
		return
	}

	historyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid history ID")
		return
	}

	if err := h.histories.Delete(c.Request.Context(), sellerID, historyID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
