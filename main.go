package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/vadiminshakov/assetbook/config"
	"github.com/vadiminshakov/assetbook/internal/events"
	"github.com/vadiminshakov/assetbook/internal/ledger"
	"github.com/vadiminshakov/assetbook/internal/setup"
	"github.com/vadiminshakov/assetbook/internal/storage/eventlog"
	"github.com/vadiminshakov/assetbook/internal/web"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Get()
	if err != nil {
		logger.Fatal("failed to get configuration", zap.Error(err))
	}

	if cfg.RunSetup {
		if err := setup.RunTUI(); err != nil {
			logger.Fatal("setup wizard failed", zap.Error(err))
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := eventlog.NewWALStore(cfg.WALDir)
	if err != nil {
		logger.Fatal("failed to open event log", zap.Error(err))
	}
	defer store.Close()

	mode, err := ledger.ParseURIMode(cfg.URIMode)
	if err != nil {
		logger.Fatal("failed to parse uri mode", zap.Error(err))
	}

	transfers := events.NewTransferBroadcaster(256)
	sinks := ledger.Sinks{store, ledger.NewLogSink(logger)}
	book := ledger.NewAssetLedger(logger, cfg.BaseURI, mode, cfg.Admin, sinks, transfers)

	for _, g := range cfg.Genesis {
		id, err := book.NewAsset(cfg.Admin, g.Metadata, g.Recipient, g.Amount)
		if err != nil {
			logger.Fatal("failed to mint genesis asset", zap.Error(err))
		}
		logger.Info("genesis asset minted",
			zap.Uint64("asset", id),
			zap.Stringer("recipient", g.Recipient),
			zap.String("amount", g.Amount.String()))
	}

	server := web.NewServer(cfg.ListenAddr, book, store)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if len(cfg.TLSDomains) > 0 {
			return server.StartWithAutoTLS(ctx, cfg.TLSDomains, cfg.TLSCacheDir)
		}
		return server.Start(ctx)
	})
	g.Go(func() error {
		ch := transfers.Subscribe()
		defer transfers.Unsubscribe(ch)
		for {
			select {
			case <-ctx.Done():
				return nil
			case n := <-ch:
				logger.Info("transfer",
					zap.Stringer("from", n.From),
					zap.Stringer("to", n.To),
					zap.Uint64s("assets", n.AssetIDs),
					zap.Strings("amounts", n.Amounts))
			}
		}
	})

	logger.Info("ledger started", zap.String("listen", cfg.ListenAddr))
	if err := g.Wait(); err != nil {
		logger.Fatal("ledger stopped", zap.Error(err))
	}
}
