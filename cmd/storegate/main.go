package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/storegate-io/storegate/internal/config"
	"github.com/storegate-io/storegate/internal/directory"
	"github.com/storegate-io/storegate/internal/gateway"
	"github.com/storegate-io/storegate/internal/identity"
	"github.com/storegate-io/storegate/internal/notify"
	"github.com/storegate-io/storegate/internal/store"
)

const (
	appName    = "storegate"
	appVersion = "0.1.0"
)

func main() {
	var (
		devMode     = flag.Bool("dev", false, "Use development logging")
		seed        = flag.Bool("seed", false, "Load demo tenants, users and suppliers on startup")
		showVersion = flag.Bool("version", false, "Show version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s v%s\n", appName, appVersion)
		os.Exit(0)
	}

	logger, err := newLogger(*devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	// Wire the gateway core
	verifier := identity.NewJWTVerifier(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	dir := directory.NewInMemoryDirectory(logger)
	resolver := gateway.NewResolver(verifier, dir, logger)
	registry := gateway.NewRegistry(logger)
	hub := gateway.NewHub(logger)

	server := gateway.NewServer(gateway.Options{
		Addr:           ":" + cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AuthWait:       cfg.Gateway.AuthWait,
		RejectGrace:    cfg.Gateway.RejectGrace,
		SendBuffer:     cfg.Gateway.SendBuffer,
	}, resolver, registry, hub, logger)

	// Wire the domain services through the fan-out notifier
	notifier := notify.NewGatewayNotifier(hub, logger)
	tenants := store.NewTenantService(dir, notifier, logger)
	users := store.NewUserService(notifier, logger)
	products := store.NewProductService(notifier, logger)
	suppliers := store.NewSupplierService(notifier, logger)

	if *seed {
		if err := seedDemoData(tenants, users, products, suppliers); err != nil {
			logger.Fatal("failed to seed demo data", zap.Error(err))
		}
		logger.Info("demo data loaded", zap.Int("tenants", dir.Len()))
	}

	logger.Info("starting gateway",
		zap.String("app", appName),
		zap.String("version", appVersion),
		zap.String("port", cfg.Server.Port))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Fatal("server stopped unexpectedly", zap.Error(err))
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("gateway stopped")
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// seedDemoData loads a pair of demo storefronts so a fresh instance has
// something to connect to.
func seedDemoData(tenants *store.TenantService, users *store.UserService, products *store.ProductService, suppliers *store.SupplierService) error {
	shopA, err := tenants.Create(store.CreateTenantInput{
		Name:         "Demo Store A",
		Domain:       "store-a.localhost",
		PrimaryColor: "#1a73e8",
	})
	if err != nil {
		return err
	}
	shopB, err := tenants.Create(store.CreateTenantInput{
		Name:         "Demo Store B",
		Domain:       "store-b.localhost",
		PrimaryColor: "#e8711a",
	})
	if err != nil {
		return err
	}

	for _, u := range []store.CreateUserInput{
		{Email: "admin@store-a.localhost", Name: "Store A Admin", Role: identity.RoleAdmin, TenantID: shopA.ID, PasswordHash: "demo"},
		{Email: "member@store-a.localhost", Name: "Store A Member", Role: identity.RoleMember, TenantID: shopA.ID, PasswordHash: "demo"},
		{Email: "member@store-b.localhost", Name: "Store B Member", Role: identity.RoleMember, TenantID: shopB.ID, PasswordHash: "demo"},
	} {
		if _, err := users.Create(u); err != nil {
			return err
		}
	}

	supplier, err := suppliers.Create(store.CreateSupplierInput{
		Name:     "Demo Supplier",
		Type:     "european",
		APIURL:   "https://supplier.example/api",
		TenantID: shopA.ID,
	})
	if err != nil {
		return err
	}

	_, err = products.Create(store.CreateProductInput{
		Name:       "Demo Product",
		Price:      19.90,
		Category:   "demo",
		SupplierID: supplier.ID,
		TenantID:   shopA.ID,
	})
	return err
}
