package handler

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/flicky/greenmart/internal/report"
	"github.com/flicky/greenmart/internal/service"
)

type AdminHandler struct {
	adminService   *service.AdminService
	productService *service.ProductService
	log            *slog.Logger
	now            func() time.Time
}

func NewAdminHandler(adminService *service.AdminService, productService *service.ProductService, log *slog.Logger) *AdminHandler {
	return &AdminHandler{adminService: adminService, productService: productService, log: log, now: time.Now}
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	dash, err := h.adminService.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

func (h *AdminHandler) Users(c *gin.Context) {
	users, err := h.adminService.Users(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) Reports(c *gin.Context) {
	rep, err := h.adminService.Reports(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// LowStockExport streams the low-stock report as an xlsx attachment.
func (h *AdminHandler) LowStockExport(c *gin.Context) {
	threshold := h.adminService.LowStockThreshold()
	products, err := h.productService.LowStock(c.Request.Context(), threshold)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	now := h.now()
	var buf bytes.Buffer
	if err := report.WriteLowStock(&buf, products, threshold, now); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, report.LowStockFilename(now)))
	c.Data(http.StatusOK, report.ContentTypeXLSX, buf.Bytes())
}
