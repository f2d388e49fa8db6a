package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/tu-usuario/facturacion-api/internal/application/auth"
	"github.com/tu-usuario/facturacion-api/internal/application/billing"
	"github.com/tu-usuario/facturacion-api/internal/application/delivery"
	"github.com/tu-usuario/facturacion-api/internal/infrastructure/external"
	"github.com/tu-usuario/facturacion-api/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/facturacion-api/internal/interfaces/http"
	"github.com/tu-usuario/facturacion-api/pkg/config"
	"github.com/tu-usuario/facturacion-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	sequenceRepo := postgres.NewSequenceRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	deliveryRepo := postgres.NewDeliveryRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, nil)
	customerUC := billing.NewCustomerUseCase(customerRepo, invoiceRepo, log)
	productUC := billing.NewProductUseCase(productRepo, invoiceRepo, log)
	sequenceUC := billing.NewSequenceUseCase(sequenceRepo, log)
	invoiceUC := billing.NewInvoiceUseCase(
		txRunner, customerRepo, productRepo, sequenceRepo, invoiceRepo,
		billing.EnvioPolicy{
			Enabled:     cfg.Envio.Enabled,
			Delay:       cfg.Envio.Delay,
			MaxAttempts: cfg.Envio.MaxAttempts,
		},
		nil, log,
	)

	// El dispatcher corre embebido en el API; cmd/worker permite separarlo.
	if cfg.Envio.Enabled {
		sender := external.NewInvoiceClient(external.Config{
			URL:        cfg.Envio.URL,
			Timeout:    cfg.Envio.Timeout,
			MaxRetries: cfg.Envio.TransportRetries,
			RetryWait:  cfg.Envio.TransportWait,
		})
		dispatcher := delivery.NewDispatcher(
			deliveryRepo, invoiceRepo, customerRepo, productRepo, sender,
			delivery.Config{
				Backoff:      cfg.Envio.Backoff,
				PollInterval: cfg.Envio.PollInterval,
				BatchSize:    cfg.Envio.BatchSize,
				ClaimLease:   cfg.Envio.ClaimLease,
			},
			nil, log,
		)
		go dispatcher.Run(ctx)
	} else {
		log.Info().Msg("envío de facturas deshabilitado")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		CustomerUC: customerUC,
		ProductUC:  productUC,
		SequenceUC: sequenceUC,
		InvoiceUC:  invoiceUC,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	cancel() // detiene el dispatcher

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
