package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"stock_go/internal/app"
	"stock_go/internal/domain"
	"stock_go/internal/portfolio"
	"stock_go/internal/strategy"

	"github.com/shopspring/decimal"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	days := flag.Int("days", 250, "number of trading days to simulate")
	flag.Parse()

	// 1. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}

	// 2. Graceful Shutdown Context (covers the preload fetches)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.PreloadSeries(ctx); err != nil {
		slog.Error("❌ Series preload failed", slog.Any("error", err))
		os.Exit(1)
	}

	cfg := bootstrap.Config

	// 3. Portfolio on the reference ticker's calendar
	pf, err := portfolio.New(bootstrap.Series, portfolio.Config{
		Cash:       cfg.Simulation.Cash,
		Commission: cfg.Simulation.Commission,
		Start:      cfg.StartDay(),
		Reference:  cfg.Data.Reference,
		Adjusted:   cfg.Simulation.Adjusted,
	})
	if err != nil {
		slog.Error("❌ Portfolio creation failed", slog.Any("error", err))
		os.Exit(1)
	}

	// 4. Demo strategy: SMA cross (10, 30) on the reference ticker
	strat := strategy.NewSMACrossStrategy(cfg.Data.Reference, 10, 30, 10)

	slog.Info("✨ Simulation starting",
		slog.String("reference", cfg.Data.Reference),
		slog.String("start", cfg.Simulation.StartDate),
		slog.Int("days", *days))

	if err := run(pf, bootstrap, strat, *days); err != nil {
		slog.Error("❌ Simulation failed", slog.Any("error", err))
		os.Exit(1)
	}

	fmt.Print(pf.String())

	// 5. Render the reference chart over the simulated window
	ref, err := bootstrap.Series.Series(cfg.Data.Reference)
	if err == nil {
		if path, err := bootstrap.Renderer.RenderOHLC(ref, cfg.StartDay(), pf.Date(), cfg.Simulation.Adjusted); err != nil {
			slog.Warn("Chart rendering failed", slog.Any("error", err))
		} else {
			slog.Info("📈 Chart written", slog.String("path", path))
		}
	}

	slog.Info("👋 Simulation finished",
		slog.String("date", pf.Date().Format("2006-01-02")),
		slog.String("value", pf.Value().StringFixed(2)))
}

// run ticks the portfolio day by day, feeding closes to the strategy and
// placing the orders it emits. The run stops early when the reference
// series runs out of days.
func run(pf *portfolio.Portfolio, bootstrap *app.Bootstrap, strat strategy.Strategy, days int) error {
	cfg := bootstrap.Config
	ref, err := bootstrap.Series.Series(cfg.Data.Reference)
	if err != nil {
		return err
	}

	for i := 0; i < days; i++ {
		if err := pf.Step(); err != nil {
			if errors.Is(err, domain.ErrNoDataAfter) {
				slog.Info("Reference series exhausted", slog.String("date", pf.Date().Format("2006-01-02")))
				return nil
			}
			return err
		}

		close, err := ref.Close(pf.Date(), cfg.Simulation.Adjusted)
		if err != nil {
			return err
		}

		for _, action := range strat.OnClose(cfg.Data.Reference, pf.Date(), close) {
			switch action.Type {
			case strategy.ActionBuy:
				_, err = pf.Buy(action.Ticker, action.Shares, decimal.Zero, decimal.Zero, nil)
			case strategy.ActionSell:
				_, err = pf.Sell(action.Ticker, action.Shares, decimal.Zero, decimal.Zero, nil)
			}
			if err != nil {
				slog.Warn("Order placement rejected",
					slog.String("ticker", action.Ticker),
					slog.String("type", string(action.Type)),
					slog.Any("error", err))
			}
		}
	}
	return nil
}
