package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/domain/models"
	"github.com/mamadbah2/stockroom/internal/gateway"
	"github.com/mamadbah2/stockroom/internal/inventory"
	"github.com/mamadbah2/stockroom/internal/service/catalogcsv"
)

// InventoryService describes the operations the HTTP layer can perform.
type InventoryService interface {
	Refresh(ctx context.Context) error
	Products() []models.Product
	LookupBarcode(barcode string) (models.Product, error)
	LowStock() []models.Product
	SaveProduct(ctx context.Context, p models.Product) (models.Product, error)
	ImportProducts(ctx context.Context, products []models.Product) ([]models.Product, error)

	AddToOrder(ref string, quantity int) ([]models.OrderItem, error)
	UpdateOrderQuantity(productID string, quantity int) ([]models.OrderItem, error)
	RemoveFromOrder(productID string) []models.OrderItem
	ClearOrder()
	PendingOrder() []models.OrderItem
	SubmitOrder(ctx context.Context, notes string) (inventory.SubmitResult, error)

	AddToStocktake(ref string, counted int) ([]models.StocktakeItem, error)
	UpdateStocktakeQuantity(productID string, counted int) ([]models.StocktakeItem, error)
	RemoveFromStocktake(productID string) []models.StocktakeItem
	ClearStocktake()
	PendingStocktake() []models.StocktakeItem
	SubmitStocktake(ctx context.Context) (inventory.SubmitResult, error)

	ReceiveOrder(ctx context.Context, poID string) (models.PurchaseOrder, error)
	PurchaseOrders() []models.PurchaseOrder
	Suppliers() []models.Supplier
	SaveSupplier(ctx context.Context, s models.Supplier) (models.Supplier, error)
	CheckConfiguration(ctx context.Context) gateway.ConfigStatus
}

// InventoryHandler exposes the inventory service as a JSON API.
type InventoryHandler struct {
	svc    InventoryService
	logger *zap.Logger
}

// NewInventoryHandler constructs the HTTP handler adapter.
func NewInventoryHandler(svc InventoryService, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{svc: svc, logger: logger}
}

type scanRequest struct {
	Barcode   string `json:"barcode"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (r scanRequest) ref() string {
	if r.Barcode != "" {
		return r.Barcode
	}
	return r.ProductID
}

// countRequest carries a stocktake count. Zero is a valid count, so an
// omitted quantity is rejected instead of defaulted.
type countRequest struct {
	Barcode   string `json:"barcode"`
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity" binding:"required"`
}

func (r countRequest) ref() string {
	return scanRequest{Barcode: r.Barcode, ProductID: r.ProductID}.ref()
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type submitOrderRequest struct {
	Notes string `json:"notes"`
}

// ListProducts returns the catalog.
func (h *InventoryHandler) ListProducts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"products": h.svc.Products()})
}

// GetByBarcode looks a product up by its barcode.
func (h *InventoryHandler) GetByBarcode(c *gin.Context) {
	p, err := h.svc.LookupBarcode(c.Param("barcode"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// LowStock lists products at or below their minimum stock.
func (h *InventoryHandler) LowStock(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"products": h.svc.LowStock()})
}

// SaveProduct creates or updates one product.
func (h *InventoryHandler) SaveProduct(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		h.badRequest(c, err)
		return
	}
	saved, err := h.svc.SaveProduct(c.Request.Context(), p)
	if err != nil {
		h.failWith(c, err, gin.H{"product": saved})
		return
	}
	c.JSON(http.StatusOK, saved)
}

// ImportProducts replaces the catalog with the products of a CSV body.
func (h *InventoryHandler) ImportProducts(c *gin.Context) {
	parsed, err := catalogcsv.Parse(c.Request.Body)
	if err != nil {
		h.fail(c, err)
		return
	}
	imported, err := h.svc.ImportProducts(c.Request.Context(), parsed.Products)
	if err != nil {
		h.failWith(c, err, gin.H{"warnings": parsed.Warnings})
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": len(imported), "warnings": nonNil(parsed.Warnings)})
}

// ExportProducts writes the catalog as CSV.
func (h *InventoryHandler) ExportProducts(c *gin.Context) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="products.csv"`)
	c.Status(http.StatusOK)
	if err := catalogcsv.Write(c.Writer, h.svc.Products()); err != nil {
		h.logger.Error("failed writing csv export", zap.Error(err))
	}
}

// Refresh reloads the catalog from the backend.
func (h *InventoryHandler) Refresh(c *gin.Context) {
	if err := h.svc.Refresh(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": len(h.svc.Products())})
}

// BackendStatus reports whether the backend is configured and reachable.
func (h *InventoryHandler) BackendStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.CheckConfiguration(c.Request.Context()))
}

// GetOrder returns the pending order.
func (h *InventoryHandler) GetOrder(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.svc.PendingOrder()})
}

// AddOrderItem adds a scanned product to the pending order.
func (h *InventoryHandler) AddOrderItem(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	items, err := h.svc.AddToOrder(req.ref(), req.Quantity)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// UpdateOrderItem changes the quantity of an order line.
func (h *InventoryHandler) UpdateOrderItem(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	items, err := h.svc.UpdateOrderQuantity(c.Param("productId"), req.Quantity)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// RemoveOrderItem drops an order line.
func (h *InventoryHandler) RemoveOrderItem(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.svc.RemoveFromOrder(c.Param("productId"))})
}

// ClearOrder empties the pending order.
func (h *InventoryHandler) ClearOrder(c *gin.Context) {
	h.svc.ClearOrder()
	c.Status(http.StatusNoContent)
}

// SubmitOrder turns the pending order into purchase orders.
func (h *InventoryHandler) SubmitOrder(c *gin.Context) {
	var req submitOrderRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.badRequest(c, err)
			return
		}
	}
	result, err := h.svc.SubmitOrder(c.Request.Context(), req.Notes)
	if err != nil {
		h.failWith(c, err, gin.H{"result": result})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetStocktake returns the pending stocktake.
func (h *InventoryHandler) GetStocktake(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.svc.PendingStocktake()})
}

// AddStocktakeItem records a count for a scanned product.
func (h *InventoryHandler) AddStocktakeItem(c *gin.Context) {
	var req countRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	items, err := h.svc.AddToStocktake(req.ref(), *req.Quantity)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// UpdateStocktakeItem changes a counted quantity.
func (h *InventoryHandler) UpdateStocktakeItem(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	items, err := h.svc.UpdateStocktakeQuantity(c.Param("productId"), req.Quantity)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// RemoveStocktakeItem drops a stocktake entry.
func (h *InventoryHandler) RemoveStocktakeItem(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.svc.RemoveFromStocktake(c.Param("productId"))})
}

// ClearStocktake empties the pending stocktake.
func (h *InventoryHandler) ClearStocktake(c *gin.Context) {
	h.svc.ClearStocktake()
	c.Status(http.StatusNoContent)
}

// SubmitStocktake applies the counts.
func (h *InventoryHandler) SubmitStocktake(c *gin.Context) {
	result, err := h.svc.SubmitStocktake(c.Request.Context())
	if err != nil {
		h.failWith(c, err, gin.H{"result": result})
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListPurchaseOrders returns the purchase order history.
func (h *InventoryHandler) ListPurchaseOrders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"purchase_orders": h.svc.PurchaseOrders()})
}

// ReceivePurchaseOrder marks a purchase order as delivered.
func (h *InventoryHandler) ReceivePurchaseOrder(c *gin.Context) {
	po, err := h.svc.ReceiveOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.failWith(c, err, gin.H{"purchase_order": po})
		return
	}
	c.JSON(http.StatusOK, po)
}

// ListSuppliers returns the supplier directory.
func (h *InventoryHandler) ListSuppliers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"suppliers": h.svc.Suppliers()})
}

// SaveSupplier creates or updates a supplier.
func (h *InventoryHandler) SaveSupplier(c *gin.Context) {
	var s models.Supplier
	if err := c.ShouldBindJSON(&s); err != nil {
		h.badRequest(c, err)
		return
	}
	saved, err := h.svc.SaveSupplier(c.Request.Context(), s)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// StatusFor maps an error to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrSubmitInProgress), errors.Is(err, models.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, models.ErrBackendUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *InventoryHandler) fail(c *gin.Context, err error) {
	h.failWith(c, err, nil)
}

func (h *InventoryHandler) failWith(c *gin.Context, err error, extra gin.H) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	} else {
		h.logger.Warn("request rejected", zap.String("path", c.FullPath()), zap.Error(err))
	}
	body := gin.H{"error": err.Error()}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

func (h *InventoryHandler) badRequest(c *gin.Context, err error) {
	h.logger.Warn("invalid request body", zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + strings.TrimSpace(err.Error())})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
