package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"car-rental-service/internal/middleware"
	"car-rental-service/internal/model"
	"car-rental-service/internal/service"
)

const listingNotFound = "listing not found"

// ListingHandler serves the listing routes.
type ListingHandler struct {
	svc *service.ListingService
	log *zap.Logger
}

func NewListingHandler(svc *service.ListingService, log *zap.Logger) *ListingHandler {
	return &ListingHandler{svc: svc, log: log}
}

// RegisterRoutes mounts the listing routes. requireAuth guards creation, and
// update/delete when ownership is enforced.
func (h *ListingHandler) RegisterRoutes(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	rg.GET("/posts", h.GetAll)
	rg.GET("/post/:id", h.GetByID)
	rg.GET("/user-posts/:id", h.GetByOwner)
	rg.POST("/create", requireAuth, h.Create)

	if h.svc.EnforcesOwnership() {
		rg.PUT("/update", requireAuth, h.Update)
		rg.DELETE("/delete/:id", requireAuth, h.Delete)
	} else {
		rg.PUT("/update", h.Update)
		rg.DELETE("/delete/:id", h.Delete)
	}
}

type updateListingRequest struct {
	ID string `json:"id" binding:"required"`
	model.ListingFields
}

// POST /api/create
func (h *ListingHandler) Create(c *gin.Context) {
	var req model.ListingFields
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	l, err := h.svc.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, h.log, err, listingNotFound)
		return
	}
	c.JSON(http.StatusCreated, l)
}

// PUT /api/update
func (h *ListingHandler) Update(c *gin.Context) {
	var req updateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	l, err := h.svc.Update(c.Request.Context(), middleware.UserID(c), req.ID, req.ListingFields)
	if err != nil {
		respondError(c, h.log, err, listingNotFound)
		return
	}
	c.JSON(http.StatusOK, l)
}

// GET /api/user-posts/:id
func (h *ListingHandler) GetByOwner(c *gin.Context) {
	list, err := h.svc.GetByOwner(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err, listingNotFound)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/posts
func (h *ListingHandler) GetAll(c *gin.Context) {
	list, err := h.svc.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err, listingNotFound)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/post/:id answers null for an unknown id.
func (h *ListingHandler) GetByID(c *gin.Context) {
	l, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusOK, nil)
		return
	}
	if err != nil {
		respondError(c, h.log, err, listingNotFound)
		return
	}
	c.JSON(http.StatusOK, l)
}

// DELETE /api/delete/:id
func (h *ListingHandler) Delete(c *gin.Context) {
	l, err := h.svc.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err, listingNotFound)
		return
	}
	c.JSON(http.StatusOK, l)
}
