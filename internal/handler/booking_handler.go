package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"car-rental-service/internal/model"
	"car-rental-service/internal/service"
)

type BookingHandler struct {
	svc *service.BookingService
	log *zap.Logger
}

func NewBookingHandler(svc *service.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{svc: svc, log: log}
}

func (h *BookingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/booking", h.Create)
	rg.GET("/bookings/:id", h.GetByBooker)
}

type bookingRequest struct {
	Name     string            `json:"name" binding:"required"`
	Phone    model.PhoneNumber `json:"phone" binding:"required"`
	PickUp   time.Time         `json:"pickUp" binding:"required"`
	DropOff  time.Time         `json:"dropOff" binding:"required"`
	Total    float64           `json:"total"`
	Post     string            `json:"post"`
	BookerID string            `json:"bookerId"`
}

// POST /api/booking
func (h *BookingHandler) Create(c *gin.Context) {
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	b := &model.Booking{
		ListingID: req.Post,
		BookerID:  req.BookerID,
		Name:      req.Name,
		Phone:     req.Phone,
		PickUp:    req.PickUp,
		DropOff:   req.DropOff,
		Total:     req.Total,
	}
	if err := h.svc.Create(c.Request.Context(), b); err != nil {
		respondError(c, h.log, err, "")
		return
	}
	c.JSON(http.StatusCreated, b)
}

// GET /api/bookings/:id
func (h *BookingHandler) GetByBooker(c *gin.Context) {
	list, err := h.svc.GetByBooker(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err, "")
		return
	}
	c.JSON(http.StatusOK, list)
}
