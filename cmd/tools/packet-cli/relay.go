package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/annel0/mmo-wire/internal/api"
	"github.com/annel0/mmo-wire/internal/cache"
	"github.com/annel0/mmo-wire/internal/config"
	"github.com/annel0/mmo-wire/internal/eventbus"
	"github.com/annel0/mmo-wire/internal/localization"
	"github.com/annel0/mmo-wire/internal/logging"
	"github.com/annel0/mmo-wire/internal/network"
	"github.com/annel0/mmo-wire/internal/observability"
	wiresync "github.com/annel0/mmo-wire/internal/sync"
)

// openBus подключается к NATS JetStream или, если адрес не задан, создаёт in-memory шину.
func openBus(cfg *config.Config) (eventbus.EventBus, error) {
	url := cfg.EventBus.GetURL()
	if url == "" {
		return eventbus.NewMemoryBus(cfg.EventBus.GetBuffer()), nil
	}
	bus, err := eventbus.NewJetStreamBus(url, cfg.EventBus.GetStream(), cfg.EventBus.GetRetention())
	if err != nil {
		return nil, err
	}
	return bus, nil
}

// openCatalogSync подключает общий каталог переводов. Без Redis возвращает nil.
func openCatalogSync(cfg *config.Config, store *localization.Store) (*cache.CatalogSync, func(), error) {
	addr := cfg.Cache.GetRedisAddr()
	if addr == "" {
		return nil, func() {}, nil
	}
	repo, err := cache.NewRedisCatalog(cache.RedisConfig{
		Addr:     addr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
		Prefix:   cfg.Cache.GetPrefix(),
	})
	if err != nil {
		return nil, nil, err
	}
	var inv cache.CatalogInvalidator
	if url := cfg.EventBus.GetURL(); url != "" {
		ni, err := cache.NewNATSInvalidator(url, cfg.Cache.GetSubject(), time.Second)
		if err != nil {
			repo.Close()
			return nil, nil, err
		}
		inv = ni
	}
	closeAll := func() {
		if inv != nil {
			inv.Close()
		}
		repo.Close()
	}
	return cache.NewCatalogSync(repo, inv, store), closeAll, nil
}

// hexTransport печатает каждый исходящий пакет вместо отправки клиенту.
func hexTransport(out io.Writer) network.Transport {
	return network.TransportFunc(func(data []byte) error {
		_, err := fmt.Fprintf(out, "%s  %d bytes\n%s", time.Now().Format("15:04:05.000"), len(data), hex.Dump(data))
		return err
	})
}

func relayCmd(a *app) *cobra.Command {
	var (
		session     string
		verbose     bool
		capturePath string
		quiet       bool
	)
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Batch ItemChanged events from the bus into InventoryUpdate packets",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			shutdownTracing, err := observability.InitTelemetry(ctx, a.cfg.Tracing.GetServiceName(), a.cfg.Tracing.GetEndpoint())
			if err != nil {
				return fmt.Errorf("init tracing: %w", err)
			}
			defer shutdownTracing(context.Background())

			bus, err := openBus(a.cfg)
			if err != nil {
				return err
			}
			defer bus.Close()

			store := localization.NewStore()
			if dir := a.cfg.Protocol.GetLocalizationDir(); dir != "" {
				if err := store.LoadDir(dir); err != nil {
					return err
				}
			}
			catalogs, closeCatalogs, err := openCatalogSync(a.cfg, store)
			if err != nil {
				return err
			}
			defer closeCatalogs()
			if catalogs != nil {
				if _, err := catalogs.Start(ctx); err != nil {
					return err
				}
			}

			reg := prometheus.NewRegistry()
			ns := a.cfg.Metrics.GetNamespace()
			metrics := network.NewEncoderMetrics(ns, reg)
			busMetrics := eventbus.NewMetricsExporter(bus, ns, reg)
			busMetrics.Start(time.Second)
			defer busMetrics.Stop()

			if verbose {
				if _, err := eventbus.StartLoggingListener(bus); err != nil {
					return err
				}
			}

			var transport network.Transport
			if !quiet {
				transport = hexTransport(cmd.OutOrStdout())
			}
			if capturePath != "" {
				capture, err := network.CreateCapture(capturePath, session, transport)
				if err != nil {
					return err
				}
				defer capture.Close()
				transport = capture
			}
			if transport == nil {
				transport = network.TransportFunc(func([]byte) error { return nil })
			}

			out := network.NewOutbound(session, transport, metrics)
			mgr, err := wiresync.NewManager(wiresync.Config{
				Bus:        bus,
				Sink:       out,
				FlushEvery: a.cfg.Batch.GetFlushEvery(),
				Observer:   metrics,
			})
			if err != nil {
				return err
			}
			defer mgr.Stop()

			srv := api.NewServer(api.Config{
				Addr:      a.cfg.Metrics.GetAddr(),
				Namespace: ns,
				Registry:  reg,
				Pending:   mgr.Accumulator().Len,
				Localizer: store,
			})
			srv.Start()
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = srv.Shutdown(sctx)
			}()

			logging.GetSyncLogger().Info("relay запущен, сессия %s; Ctrl+C для выхода", session)
			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().StringVar(&session, "session", "relay", "session name used in packet logs")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every bus event")
	cmd.Flags().StringVar(&capturePath, "capture", "", "write every sent packet to a zstd capture file")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print packets to stdout")
	return cmd
}

func publishCmd(a *app) *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "publish <inventory.yaml>",
		Short: "Publish inventory changes as ItemChanged events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var f inventoryFixture
			if err := loadFixture(args[0], &f); err != nil {
				return err
			}
			changes, err := f.changes()
			if err != nil {
				return err
			}
			if a.cfg.EventBus.GetURL() == "" {
				return fmt.Errorf("eventbus.url is not set: nothing would receive the events")
			}

			bus, err := openBus(a.cfg)
			if err != nil {
				return err
			}
			defer bus.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			for _, c := range changes {
				if err := wiresync.PublishItemChange(ctx, bus, source, c.Kind, c.Item); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %d changes\n", len(changes))
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "packet-cli", "event source name")
	return cmd
}
