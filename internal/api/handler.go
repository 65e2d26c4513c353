package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rongwang/railway-server/internal/auth"
	"github.com/rongwang/railway-server/internal/models"
	"github.com/rongwang/railway-server/internal/service"
	"github.com/rongwang/railway-server/internal/utils"
)

// Handler handles HTTP requests
type Handler struct {
	service     service.Service
	tokens      *auth.TokenManager
	revocations RevocationChecker
	limiter     *RateLimiter
	logger      *utils.Logger
}

// NewHandler creates a new Handler. revocations and limiter may be nil.
func NewHandler(
	svc service.Service,
	tokens *auth.TokenManager,
	revocations RevocationChecker,
	limiter *RateLimiter,
	logger *utils.Logger,
) *Handler {
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	return &Handler{
		service:     svc,
		tokens:      tokens,
		revocations: revocations,
		limiter:     limiter,
		logger:      logger,
	}
}

// SetupRoutes registers all routes on the router
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)

	// Public routes; credential endpoints are rate limited
	public := router.Group("/")
	if h.limiter != nil {
		public.POST("/register", h.limiter.Middleware(), h.Register)
		public.POST("/login", h.limiter.Middleware(), h.Login)
	} else {
		public.POST("/register", h.Register)
		public.POST("/login", h.Login)
	}
	public.GET("/stations", h.ListStations)
	public.GET("/trains", h.ListTrains)

	protected := router.Group("/")
	protected.Use(AuthMiddleware(h.tokens, h.revocations))
	{
		protected.POST("/logout", h.Logout)

		// Catalog
		protected.POST("/addstations", h.AddStation)
		protected.PUT("/updatestation/:id", h.UpdateStation)
		protected.DELETE("/stations/:id", h.DeleteStation)
		protected.POST("/trains", h.CreateTrain)
		protected.PUT("/trains/:id/stops/:stop_id", h.UpdateTrainStop)
		protected.DELETE("/trains/:id", h.DeleteTrain)

		// Tickets
		protected.POST("/tickets/purchase", h.PurchaseTicket)
		protected.GET("/tickets", h.ListTickets)

		// Wallet
		protected.POST("/wallet/add", h.AddFunds)
		protected.GET("/wallet/balance", h.GetBalance)
		protected.GET("/wallet/history", h.History)
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Authentication handlers
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if _, err := h.service.Register(c.Request.Context(), req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, models.MessageResponse{Message: "User registered successfully"})
}

func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), currentClaims(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Logged out successfully."})
}

// Station handlers
func (h *Handler) AddStation(c *gin.Context) {
	var req models.AddStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if _, err := h.service.AddStation(c.Request.Context(), req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, models.MessageResponse{Message: "Station added successfully"})
}

func (h *Handler) UpdateStation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var patch models.StationPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.service.UpdateStation(c.Request.Context(), id, patch); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: fmt.Sprintf("Station %d updated successfully.", id)})
}

func (h *Handler) DeleteStation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteStation(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: fmt.Sprintf("Station %d deleted successfully.", id)})
}

func (h *Handler) ListStations(c *gin.Context) {
	stations, err := h.service.ListStations(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, stations)
}

// Train handlers
func (h *Handler) CreateTrain(c *gin.Context) {
	var req models.CreateTrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if _, err := h.service.CreateTrain(c.Request.Context(), req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, models.MessageResponse{Message: "Train and stops added successfully."})
}

func (h *Handler) UpdateTrainStop(c *gin.Context) {
	trainID, ok := pathID(c, "id")
	if !ok {
		return
	}
	stopID, ok := pathID(c, "stop_id")
	if !ok {
		return
	}

	var patch models.StopPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.service.UpdateTrainStop(c.Request.Context(), trainID, stopID, patch); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Train stop updated successfully."})
}

func (h *Handler) DeleteTrain(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteTrain(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: fmt.Sprintf("Train %d deleted successfully.", id)})
}

func (h *Handler) ListTrains(c *gin.Context) {
	trains, err := h.service.ListTrains(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, trains)
}

// Ticket handlers
func (h *Handler) PurchaseTicket(c *gin.Context) {
	var req models.PurchaseTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ticket, err := h.service.PurchaseTicket(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.PurchaseResponse{
		Message:  "Ticket purchased successfully.",
		TicketID: ticket.ID,
	})
}

func (h *Handler) ListTickets(c *gin.Context) {
	tickets, err := h.service.ListTickets(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, tickets)
}

// Wallet handlers
func (h *Handler) AddFunds(c *gin.Context) {
	var req models.AddFundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.service.AddFunds(c.Request.Context(), currentUserID(c), req.Amount); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Funds added successfully."})
}

func (h *Handler) GetBalance(c *gin.Context) {
	balance, err := h.service.GetBalance(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.BalanceResponse{Balance: balance})
}

func (h *Handler) History(c *gin.Context) {
	history, err := h.service.History(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

// pathID parses a positive integer path parameter, writing a 400 when it is not one
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, fmt.Errorf("invalid %s %q", name, c.Param(name)))
		return 0, false
	}
	return id, true
}
