package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/yaml.v3"

	"larder/internal/alerts"
	"larder/internal/api"
	"larder/internal/database"
	"larder/internal/monitoring"
	"larder/internal/placement"
	"larder/internal/search"
	"larder/internal/store"
)

var (
	port        = flag.Int("port", 8080, "API server port")
	metricsPort = flag.Int("metrics-port", 9090, "Metrics server port")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
	dbPath      = flag.String("db", "larder.db", "Path to the SQLite snapshot database")
)

// Config represents the application configuration
type Config struct {
	AuthSecret string `yaml:"auth_secret"`
	Alerts     struct {
		ExpiryWarningDays  int `yaml:"expiry_warning_days"`
		UnplacedGraceHours int `yaml:"unplaced_grace_hours"`
	} `yaml:"alerts"`
	MetricsConfig struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
}

func main() {
	flag.Parse()

	// Load configuration
	config, err := loadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database and load the inventory snapshot
	if err := database.InitDB(*dbPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDB()

	inventory := store.NewInventory()
	if err := database.LoadSnapshot(inventory); err != nil {
		log.Fatalf("Failed to load inventory snapshot: %v", err)
	}

	// Wire the engine
	resolver := placement.NewResolver(inventory)
	drag := placement.NewDragController(inventory, resolver)
	index := search.NewIndex(inventory)
	evaluator := alerts.NewEvaluator(inventory, alertPolicy(config))
	monitor := monitoring.NewMonitor()
	metrics := monitoring.NewMetricsCollector()

	// Gauges follow every committed mutation
	inventory.Subscribe(func() {
		metrics.RefreshInventory(inventory, evaluator)
	})
	metrics.RefreshInventory(inventory, evaluator)

	server := api.NewServer(api.Config{
		Inventory:  inventory,
		Resolver:   resolver,
		Drag:       drag,
		Search:     index,
		Alerts:     evaluator,
		Monitor:    monitor,
		Metrics:    metrics,
		AuthSecret: config.AuthSecret,
	})

	// Start metrics server
	if config.MetricsConfig.Enabled {
		go startMetricsServer(*metricsPort, config.MetricsConfig.Path, metrics)
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", *port),
		Handler: server.Router,
	}

	// Graceful shutdown: persist the stock snapshot before exit
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")

		if err := database.SaveSnapshot(inventory); err != nil {
			log.Printf("Failed to save inventory snapshot: %v", err)
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("API server shutdown error: %v", err)
		}
	}()

	log.Printf("Starting API server on port %d", *port)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("API server error: %v", err)
	}
}

func loadConfig(path string) (*Config, error) {
	config := &Config{}
	config.MetricsConfig.Enabled = true
	config.MetricsConfig.Path = "/metrics"

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Defaults apply when no config file is present
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return config, nil
}

func alertPolicy(config *Config) alerts.Policy {
	policy := alerts.DefaultPolicy()
	if config.Alerts.ExpiryWarningDays > 0 {
		policy.ExpiryWarning = time.Duration(config.Alerts.ExpiryWarningDays) * 24 * time.Hour
	}
	if config.Alerts.UnplacedGraceHours > 0 {
		policy.UnplacedGrace = time.Duration(config.Alerts.UnplacedGraceHours) * time.Hour
	}
	return policy
}

func startMetricsServer(port int, path string, metrics *monitoring.MetricsCollector) {
	if path == "" {
		path = "/metrics"
	}

	metricsRouter := gin.Default()
	metricsRouter.GET(path, gin.WrapH(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: metricsRouter,
	}

	log.Printf("Starting metrics server on port %d", port)
	if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Printf("Metrics server error: %v", err)
	}
}
