package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hamudi896/LagerAppENV/internal/core/domain"
	"github.com/hamudi896/LagerAppENV/internal/core/service"
)

type HTTPHandler struct {
	catalog    *service.CatalogService
	ledger     *service.LedgerService
	aggregator *service.Aggregator
	exporter   *service.Exporter
	logger     *slog.Logger
}

type NameHTTPRequest struct {
	Name string `json:"name" binding:"required"`
}

type ItemHTTPRequest struct {
	Name       string `json:"name" binding:"required"`
	CategoryID int64  `json:"category_id" binding:"required"`
}

// AdjustHTTPRequest carries a stock change. Adjustment is a pointer so a
// missing field is told apart from a zero delta, which is valid.
type AdjustHTTPRequest struct {
	RequestID  string `json:"request_id"`
	LocationID int64  `json:"location_id" binding:"required"`
	ItemID     int64  `json:"item_id" binding:"required"`
	Adjustment *int64 `json:"adjustment" binding:"required"`
}

type AdjustHTTPResponse struct {
	NewQuantity int64 `json:"new_quantity"`
}

type ErrorHTTPResponse struct {
	Error string `json:"error"`
}

func NewHTTPHandler(
	catalog *service.CatalogService,
	ledger *service.LedgerService,
	aggregator *service.Aggregator,
	exporter *service.Exporter,
	logger *slog.Logger,
) *HTTPHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPHandler{
		catalog:    catalog,
		ledger:     ledger,
		aggregator: aggregator,
		exporter:   exporter,
		logger:     logger,
	}
}

// Router wires every route. metrics may be nil.
func (h *HTTPHandler) Router(metrics http.Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger())

	router.GET("/health", h.HealthCheck)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	api := router.Group("/api")
	{
		api.GET("/locations", h.ListLocations)
		api.POST("/locations", h.CreateLocation)
		api.GET("/locations/:id", h.GetLocation)
		api.GET("/locations/:id/stock", h.LocationStock)
		api.GET("/locations/:id/sheet", h.LocationSheet)

		api.GET("/categories", h.ListCategories)
		api.POST("/categories", h.CreateCategory)
		api.PUT("/categories/:id", h.RenameCategory)
		api.DELETE("/categories/:id", h.DeleteCategory)

		api.GET("/items", h.ListItems)
		api.GET("/items/grouped", h.ItemsByCategory)
		api.POST("/items", h.CreateItem)
		api.PUT("/items/:id", h.RenameItem)
		api.DELETE("/items/:id", h.DeleteItem)

		api.POST("/stock/adjust", h.AdjustStock)
		api.POST("/stock/add", h.AddStock)

		api.GET("/dashboard", h.Dashboard)
		api.GET("/dashboard/export", h.ExportDashboard)
		api.POST("/dashboard/export/archive", h.ArchiveDashboard)
	}
	return router
}

func (h *HTTPHandler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		h.logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
		)
	}
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HTTPHandler) ListLocations(c *gin.Context) {
	locs, err := h.catalog.ListLocations(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, locs)
}

func (h *HTTPHandler) CreateLocation(c *gin.Context) {
	var req NameHTTPRequest
	if !bindJSON(c, &req) {
		return
	}
	loc, err := h.catalog.CreateLocation(c.Request.Context(), req.Name)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, loc)
}

func (h *HTTPHandler) GetLocation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	loc, err := h.catalog.GetLocation(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, loc)
}

// LocationStock answers with item id -> quantity; JSON object keys are the
// decimal item ids.
func (h *HTTPHandler) LocationStock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	stock, err := h.ledger.LocationStock(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stock)
}

func (h *HTTPHandler) LocationSheet(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	sheet, err := h.ledger.LocationSheet(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sheet)
}

func (h *HTTPHandler) ListCategories(c *gin.Context) {
	cats, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

func (h *HTTPHandler) CreateCategory(c *gin.Context) {
	var req NameHTTPRequest
	if !bindJSON(c, &req) {
		return
	}
	cat, err := h.catalog.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *HTTPHandler) RenameCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req NameHTTPRequest
	if !bindJSON(c, &req) {
		return
	}
	cat, err := h.catalog.RenameCategory(c.Request.Context(), id, req.Name)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *HTTPHandler) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) ListItems(c *gin.Context) {
	items, err := h.catalog.ListItems(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *HTTPHandler) ItemsByCategory(c *gin.Context) {
	groups, err := h.catalog.ItemsByCategory(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (h *HTTPHandler) CreateItem(c *gin.Context) {
	var req ItemHTTPRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.catalog.CreateItem(c.Request.Context(), req.Name, req.CategoryID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *HTTPHandler) RenameItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ItemHTTPRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.catalog.RenameItem(c.Request.Context(), id, req.Name, req.CategoryID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *HTTPHandler) DeleteItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteItem(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) AdjustStock(c *gin.Context) {
	h.applyStock(c, domain.AdjustBounded)
}

func (h *HTTPHandler) AddStock(c *gin.Context) {
	h.applyStock(c, domain.AdjustUnbounded)
}

func (h *HTTPHandler) applyStock(c *gin.Context, mode domain.AdjustMode) {
	var req AdjustHTTPRequest
	if !bindJSON(c, &req) {
		return
	}
	qty, err := h.ledger.ApplyOnce(c.Request.Context(), req.RequestID, mode, req.LocationID, req.ItemID, *req.Adjustment)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, AdjustHTTPResponse{NewQuantity: qty})
}

func (h *HTTPHandler) Dashboard(c *gin.Context) {
	m, err := h.aggregator.Build(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"locations": m.Locations,
		"matrix":    m.Map(),
		"rows":      m.Categories,
	})
}

func (h *HTTPHandler) ExportDashboard(c *gin.Context) {
	data, err := h.exporter.Export(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+h.exporter.FileName()+`"`)
	c.Data(http.StatusOK, h.exporter.ContentType(), data)
}

func (h *HTTPHandler) ArchiveDashboard(c *gin.Context) {
	where, err := h.exporter.Archive(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"location": where})
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorHTTPResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorHTTPResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *HTTPHandler) writeError(c *gin.Context, err error) {
	status := httpStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, ErrorHTTPResponse{Error: "internal error"})
		return
	}
	c.JSON(status, ErrorHTTPResponse{Error: err.Error()})
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidReference):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrDuplicateRequest):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
