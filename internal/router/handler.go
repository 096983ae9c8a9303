package router

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"julianmorley.ca/con-plar/petmart/internal/service"
	"julianmorley.ca/con-plar/petmart/pkg/global"
	"julianmorley.ca/con-plar/petmart/pkg/models"
)

// Pinger reports whether the durable store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	shop   *service.Storefront
	db     Pinger
	logger *zap.Logger
}

func NewHandler(shop *service.Storefront, db Pinger, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{shop: shop, db: db, logger: logger}
}

// respondError maps a service error onto the response envelope
func (h *Handler) respondError(c *gin.Context, err error) {
	h.respondErrorAs(c, err, global.KindOf(err).HTTPStatus())
}

func (h *Handler) respondErrorAs(c *gin.Context, err error, status int) {
	kind := global.KindOf(err)
	var ge *global.Error
	if kind == global.KindInternal || !errors.As(err, &ge) {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Internal server error", []global.ValidationError{
			{Message: "an unexpected error occurred", Code: string(global.KindInternal)},
		}))
		return
	}

	fields := ge.Fields
	if len(fields) == 0 {
		fields = []global.ValidationError{{Message: ge.Message, Code: string(kind)}}
	}
	c.JSON(status, global.ErrorResponse(ge.Message, fields))
}

// bindJSON decodes the body into req, answering 400 itself on failure
func bindJSON(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		out := make([]global.ValidationError, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			out = append(out, global.ValidationError{Field: fe.Field(), Message: fe.Error(), Code: fe.Tag()})
		}
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request body", out))
		return false
	}

	c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid JSON format", []global.ValidationError{
		{Field: "body", Message: err.Error(), Code: "json_parse_error"},
	}))
	return false
}

// bindOptionalCustomer decodes customer info when a body was sent
func bindOptionalCustomer(c *gin.Context) (*models.CustomerInfo, bool) {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil, true
	}
	var info models.CustomerInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, true
		}
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid JSON format", []global.ValidationError{
			{Field: "body", Message: err.Error(), Code: "json_parse_error"},
		}))
		return nil, false
	}
	return &info, true
}

func positiveIntParam(c *gin.Context, name string) (int64, bool) {
	n, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || n < 1 {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid "+name, []global.ValidationError{
			{Field: name, Message: name + " must be a positive integer", Code: "invalid_format"},
		}))
		return 0, false
	}
	return n, true
}

func (h *Handler) HealthCheck(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		h.logger.Error("health check failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Database connection failed", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"status": "OK", "database": "Connected"}))
}

// Products

func (h *Handler) ListProducts(c *gin.Context) {
	q := models.ProductQuery{SearchTerm: c.Query("search")}
	var err error
	if v := c.Query("page"); v != "" {
		if q.Page, err = strconv.Atoi(v); err != nil {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid page", []global.ValidationError{
				{Field: "page", Message: "page must be an integer", Code: "invalid_format"},
			}))
			return
		}
	}
	if v := c.Query("size"); v != "" {
		if q.Size, err = strconv.Atoi(v); err != nil {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid size", []global.ValidationError{
				{Field: "size", Message: "size must be an integer", Code: "invalid_format"},
			}))
			return
		}
	}

	page, err := h.shop.Catalog.List(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Header("X-Total-Count", strconv.FormatInt(page.TotalItems, 10))
	c.JSON(http.StatusOK, global.SuccessResponse(page))
}

// GetProduct serves a product through the Redis cache
func (h *Handler) GetProduct(c *gin.Context) {
	product, cached, err := h.shop.Catalog.Product(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if cached {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	c.JSON(http.StatusOK, global.SuccessResponse(product))
}

func (h *Handler) UpsertProduct(c *gin.Context) {
	var req models.UpsertProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := h.shop.Catalog.Upsert(c.Request.Context(), c.Param("code"), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(product))
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	if err := h.shop.Catalog.Delete(c.Request.Context(), c.Param("code")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.MessageResponse("Product deleted"))
}

// Cart

type cartItemRequest struct {
	Code     string `json:"code" binding:"required"`
	Quantity int    `json:"quantity"`
}

type cartUpdateRequest struct {
	Code     string                  `json:"code"`
	Quantity int                     `json:"quantity"`
	Items    []models.QuantityUpdate `json:"items" binding:"omitempty,dive"`
}

type cartRemoveRequest struct {
	Code string `json:"code"`
}

func (h *Handler) GetCart(c *gin.Context) {
	cart, err := h.shop.Carts.Get(c.Request.Context(), callerFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(cart))
}

func (h *Handler) AddToCart(c *gin.Context) {
	var req cartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	cart, err := h.shop.Carts.AddToCart(c.Request.Context(), callerFrom(c), req.Code, req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(cart))
}

// UpdateCart sets one line's quantity, or several with an items list
func (h *Handler) UpdateCart(c *gin.Context) {
	var req cartUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	var (
		cart *models.CartModel
		err  error
	)
	ctx, caller := c.Request.Context(), callerFrom(c)
	if len(req.Items) > 0 {
		cart, err = h.shop.Carts.UpdateQuantities(ctx, caller, req.Items)
	} else {
		cart, err = h.shop.Carts.UpdateQuantity(ctx, caller, req.Code, req.Quantity)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(cart))
}

// RemoveFromCart answers 400 for a missing code, an empty cart or an absent line
func (h *Handler) RemoveFromCart(c *gin.Context) {
	var req cartRemoveRequest
	if !bindJSON(c, &req) {
		return
	}
	cart, err := h.shop.Carts.RemoveFromCart(c.Request.Context(), callerFrom(c), req.Code)
	if err != nil {
		status := global.KindOf(err).HTTPStatus()
		if global.IsKind(err, global.KindNotFound) {
			status = http.StatusBadRequest
		}
		h.respondErrorAs(c, err, status)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(cart))
}

func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.shop.Carts.Clear(c.Request.Context(), callerFrom(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.MessageResponse("Cart cleared"))
}

func (h *Handler) SetCustomerInfo(c *gin.Context) {
	var info models.CustomerInfo
	if !bindJSON(c, &info) {
		return
	}
	cart, err := h.shop.Carts.SetCustomerInfo(c.Request.Context(), callerFrom(c), &info)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(cart))
}

func (h *Handler) Checkout(c *gin.Context) {
	info, ok := bindOptionalCustomer(c)
	if !ok {
		return
	}
	order, err := h.shop.Checkout(c.Request.Context(), callerFrom(c), info)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, global.SuccessResponse(order))
}

func (h *Handler) LastOrder(c *gin.Context) {
	cart, err := h.shop.Carts.LastOrdered(c.Request.Context(), callerFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(cart))
}

// Reservations

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) CreateReservation(c *gin.Context) {
	info, ok := bindOptionalCustomer(c)
	if !ok {
		return
	}
	reservation, err := h.shop.Reserve(c.Request.Context(), callerFrom(c), info)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, global.SuccessResponse(reservation))
}

func (h *Handler) MyReservations(c *gin.Context) {
	reservations, err := h.shop.Reservations.ListByEmail(c.Request.Context(), callerFrom(c).Email)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(reservations))
}

func (h *Handler) MyActiveReservations(c *gin.Context) {
	reservations, err := h.shop.Reservations.ListActiveByEmail(c.Request.Context(), callerFrom(c).Email)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(reservations))
}

func (h *Handler) WithdrawReservation(c *gin.Context) {
	id, ok := positiveIntParam(c, "id")
	if !ok {
		return
	}
	if err := h.shop.Reservations.Withdraw(c.Request.Context(), id, callerFrom(c).Email); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.MessageResponse("Reservation withdrawn"))
}

func (h *Handler) ClearCompletedReservations(c *gin.Context) {
	removed, err := h.shop.Reservations.ClearCompleted(c.Request.Context(), callerFrom(c).Email)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]int64{"removed": removed}))
}

// Admin

func (h *Handler) ListReservations(c *gin.Context) {
	reservations, err := h.shop.Reservations.ListAll(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(reservations))
}

func (h *Handler) ReservationSummary(c *gin.Context) {
	summary, err := h.shop.Reservations.Summary(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(summary))
}

func (h *Handler) GetReservation(c *gin.Context) {
	id, ok := positiveIntParam(c, "id")
	if !ok {
		return
	}
	reservation, err := h.shop.Reservations.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(reservation))
}

func (h *Handler) UpdateReservationStatus(c *gin.Context) {
	id, ok := positiveIntParam(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}
	reservation, err := h.shop.Reservations.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(reservation))
}

func (h *Handler) GetOrder(c *gin.Context) {
	num, ok := positiveIntParam(c, "orderNum")
	if !ok {
		return
	}
	order, err := h.shop.Orders.GetOrder(c.Request.Context(), int(num))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(order))
}
