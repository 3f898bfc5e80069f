package api

import (
	"net/http"
	"strconv"

	"larder/internal/alerts"
	"larder/internal/models"
	"larder/internal/monitoring"
	"larder/internal/placement"
	"larder/internal/search"
	"larder/internal/store"

	"github.com/gin-gonic/gin"
)

// Server represents the dashboard-facing API for the storage map
type Server struct {
	Router    *gin.Engine
	Inventory *store.Inventory
	Resolver  *placement.Resolver
	Drag      *placement.DragController
	Search    *search.Index
	Alerts    *alerts.Evaluator
	Monitor   *monitoring.Monitor
	Metrics   *monitoring.MetricsCollector

	hub        *Hub
	authSecret string
}

// Config carries the server's collaborators and settings
type Config struct {
	Inventory  *store.Inventory
	Resolver   *placement.Resolver
	Drag       *placement.DragController
	Search     *search.Index
	Alerts     *alerts.Evaluator
	Monitor    *monitoring.Monitor
	Metrics    *monitoring.MetricsCollector
	AuthSecret string
}

// NewServer creates a new API server instance
func NewServer(cfg Config) *Server {
	router := gin.Default()

	s := &Server{
		Router:     router,
		Inventory:  cfg.Inventory,
		Resolver:   cfg.Resolver,
		Drag:       cfg.Drag,
		Search:     cfg.Search,
		Alerts:     cfg.Alerts,
		Monitor:    cfg.Monitor,
		Metrics:    cfg.Metrics,
		hub:        NewHub(),
		authSecret: cfg.AuthSecret,
	}

	// Placement outcomes flow to connected dashboards through the hub
	s.Resolver.SetNotifier(s.hub)

	s.setupRoutes()
	return s
}

// Hub returns the websocket hub for broadcasting events
func (s *Server) Hub() *Hub {
	return s.hub
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	// Health check
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "storage map API is running"})
	})

	s.Router.GET("/ws", s.handleWebSocket)

	v1 := s.Router.Group("/api/v1")
	{
		// Catalog and stock reads
		v1.GET("/storables", s.ListStorables)
		v1.GET("/stock", s.ListStock)
		v1.GET("/stock/:id", s.GetStockItem)

		// Storage locations
		v1.GET("/locations", s.ListLocations)
		v1.GET("/locations/:id", s.GetLocation)
		v1.GET("/locations/:id/occupancy", s.GetOccupancy)

		// Derived views
		v1.GET("/search", s.SearchInventory)
		v1.GET("/alerts", s.ListAlerts)
		v1.GET("/stats", s.GetStats)

		// Mutations
		mutations := v1.Group("")
		if s.authSecret != "" {
			mutations.Use(AuthMiddleware(s.authSecret))
		}
		mutations.POST("/stock", s.ReceiveStock)
		mutations.DELETE("/stock/:id", s.ConsumeStock)
		mutations.POST("/stock/:id/placement", s.MovePlacement)
		mutations.POST("/dropzones", s.SetDropZones)
	}
}

// Catalog and stock handlers

func (s *Server) ListStorables(c *gin.Context) {
	c.JSON(http.StatusOK, s.Inventory.Storables())
}

func (s *Server) ListStock(c *gin.Context) {
	filter := store.StockFilter{
		LocationID: c.Query("location"),
		StorableID: c.Query("storable"),
		Unplaced:   c.Query("unplaced") == "true",
	}
	c.JSON(http.StatusOK, s.Inventory.StockItems(filter))
}

func (s *Server) GetStockItem(c *gin.Context) {
	item, err := s.Inventory.StockItem(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) ReceiveStock(c *gin.Context) {
	var req struct {
		StorableID string  `json:"storable_id"`
		Quantity   float64 `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := s.Inventory.ReceiveStock(req.StorableID, req.Quantity)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	s.Monitor.IncrementStat("stock_received")
	c.JSON(http.StatusCreated, item)
}

func (s *Server) ConsumeStock(c *gin.Context) {
	if err := s.Inventory.RemoveStock(c.Param("id")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	s.Monitor.IncrementStat("stock_consumed")
	c.JSON(http.StatusOK, gin.H{"message": "Stock item removed"})
}

// Location handlers

func (s *Server) ListLocations(c *gin.Context) {
	c.JSON(http.StatusOK, s.Inventory.Locations())
}

func (s *Server) GetLocation(c *gin.Context) {
	loc, err := s.Inventory.Location(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, loc)
}

func (s *Server) GetOccupancy(c *gin.Context) {
	id := c.Param("id")
	occupancy, err := s.Inventory.OccupancyOf(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"location_id": id, "occupancy": occupancy})
}

// Derived view handlers

func (s *Server) SearchInventory(c *gin.Context) {
	var filters search.Filters
	if storage := c.Query("storage"); storage != "" {
		if !models.IsStorageTypeValid(storage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid storage type: " + storage})
			return
		}
		filters.Storage = models.StorageType(storage)
	}
	if days := c.Query("expiring_days"); days != "" {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expiring_days: " + days})
			return
		}
		filters.ExpiringWithinDays = n
	}

	query := c.Query("q")
	c.JSON(http.StatusOK, gin.H{
		"storables": s.Search.Storables(query, filters),
		"stock":     s.Search.StockItems(query, filters),
	})
}

func (s *Server) ListAlerts(c *gin.Context) {
	warnings := s.Alerts.Warnings()
	if warnings == nil {
		warnings = []models.Warning{}
	}
	c.JSON(http.StatusOK, warnings)
}

func (s *Server) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.Monitor.GetStats())
}

// Mutation handlers

func (s *Server) MovePlacement(c *gin.Context) {
	var req struct {
		// LocationID empty or absent unplaces the item
		LocationID string `json:"location_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.Resolver.Move(c.Param("id"), req.LocationID)
	if err != nil {
		s.Monitor.IncrementStat("moves_rejected")
		s.Metrics.RecordMove("rejected")
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	s.Monitor.IncrementStat("moves_committed")
	s.Metrics.RecordMove("committed")
	c.JSON(http.StatusOK, result)
}

func (s *Server) SetDropZones(c *gin.Context) {
	var zones []placement.DropZone
	if err := c.ShouldBindJSON(&zones); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.Drag.SetDropZones(zones)
	c.JSON(http.StatusOK, gin.H{"message": "Drop zones updated", "count": len(zones)})
}

// statusFor maps core error kinds to HTTP status codes
func statusFor(err error) int {
	switch {
	case store.IsNotFound(err):
		return http.StatusNotFound
	case store.IsCapacityExceeded(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
