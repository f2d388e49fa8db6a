package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tu-usuario/facturacion-api/internal/application/delivery"
	"github.com/tu-usuario/facturacion-api/internal/infrastructure/external"
	"github.com/tu-usuario/facturacion-api/internal/infrastructure/postgres"
	"github.com/tu-usuario/facturacion-api/pkg/config"
	"github.com/tu-usuario/facturacion-api/pkg/logger"
)

// Worker dedicado al despacho de envíos de facturas. Permite escalar el envío
// por separado del API; varios workers pueden correr a la vez gracias al
// reclamo con SKIP LOCKED.
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
		Msg("iniciando worker de envíos")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	sender := external.NewInvoiceClient(external.Config{
		URL:        cfg.Envio.URL,
		Timeout:    cfg.Envio.Timeout,
		MaxRetries: cfg.Envio.TransportRetries,
		RetryWait:  cfg.Envio.TransportWait,
	})
	dispatcher := delivery.NewDispatcher(
		postgres.NewDeliveryRepository(pool),
		postgres.NewInvoiceRepository(pool),
		postgres.NewCustomerRepository(pool),
		postgres.NewProductRepository(pool),
		sender,
		delivery.Config{
			Backoff:      cfg.Envio.Backoff,
			PollInterval: cfg.Envio.PollInterval,
			BatchSize:    cfg.Envio.BatchSize,
			ClaimLease:   cfg.Envio.ClaimLease,
		},
		nil, log,
	)

	go dispatcher.Run(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, deteniendo worker...")
	cancel()
	log.Info().Msg("worker detenido")
}
