package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/InkedLau/Polymarket-Copytrading/config"
	"github.com/InkedLau/Polymarket-Copytrading/internal/adapters/notify"
	"github.com/InkedLau/Polymarket-Copytrading/internal/adapters/polymarket"
	"github.com/InkedLau/Polymarket-Copytrading/internal/adapters/storage"
	"github.com/InkedLau/Polymarket-Copytrading/internal/copier"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one poll cycle and exit")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full portfolio table (default: compact 1-line)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	sizingMode, err := copier.ParseSizingMode(cfg.Copier.SizingMode)
	if err != nil {
		slog.Error("invalid sizing mode", "err", err)
		os.Exit(1)
	}

	slog.Info("copytrader starting",
		"config", *configPath,
		"mode", cfg.Copier.Mode,
		"sizing", string(sizingMode),
		"poll", cfg.PollInterval(),
		"once", *once,
	)

	client := polymarket.NewClient(cfg.API.CLOBBase, cfg.API.GammaBase, cfg.API.DataBase)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	wallets := resolveTargets(ctx, client, cfg.Targets)
	if len(wallets) == 0 {
		slog.Error("no target traders resolved — check targets in config")
		os.Exit(1)
	}

	monCfg := copier.DefaultConfig()
	monCfg.Mode = cfg.Copier.Mode
	monCfg.PollInterval = cfg.PollInterval()
	monCfg.StatusInterval = cfg.StatusInterval()
	monCfg.InitialCapital = cfg.Copier.InitialCapital
	monCfg.Sizer = copier.Sizer{
		Mode:               sizingMode,
		FixedSize:          cfg.Copier.FixedSize,
		PercentOfTrade:     cfg.Copier.PercentOfTrade,
		PercentOfPortfolio: cfg.Copier.PercentOfPortfolio,
	}
	monCfg.Guard = copier.Guard{
		MinPrice:    cfg.Copier.MinPrice,
		MaxPrice:    cfg.Copier.MaxPrice,
		MaxSlippage: cfg.Copier.MaxSlippage,
	}
	monCfg.Allocations = cfg.Targets.Allocations

	deps := copier.Deps{
		Activity: client,
		Prices:   client,
		Store:    storage.NewSnapshotFile(cfg.Storage.SnapshotPath),
		Notifier: notify.NewConsole(*table),
	}

	if sizingMode == copier.SizingProportional {
		valuer, err := polymarket.NewWalletValuer(client, cfg.API.PolygonRPC)
		if err != nil {
			slog.Error("failed to init wallet valuer", "err", err)
			os.Exit(1)
		}
		deps.Valuer = valuer
	}

	if cfg.Copier.Mode == copier.ModeLive {
		creds, err := config.LoadCredentials()
		if err != nil {
			slog.Error("live mode requires trading credentials", "err", err)
			os.Exit(1)
		}
		auth, err := polymarket.NewAuthClient(client, creds.PrivateKey, creds.SignatureType, creds.Funder)
		if err != nil {
			slog.Error("failed to init auth client", "err", err)
			os.Exit(1)
		}
		if err := auth.EnsureCreds(ctx); err != nil {
			slog.Error("failed to derive API credentials", "err", err)
			os.Exit(1)
		}
		deps.Executor = polymarket.NewTradingClient(auth)
		slog.Info("live trading enabled", "address", auth.Address(), "funder", auth.Funder())
	}

	journal, err := storage.NewSQLiteJournal(cfg.Storage.JournalDSN, cfg.Copier.Mode)
	if err != nil {
		slog.Error("failed to open journal", "err", err, "dsn", cfg.Storage.JournalDSN)
		os.Exit(1)
	}
	defer journal.Close()
	deps.Journal = journal

	mon := copier.NewMonitor(monCfg, wallets, deps)
	if err := mon.Init(ctx); err != nil {
		slog.Error("monitor init failed", "err", err)
		os.Exit(1)
	}

	if *once {
		mon.RunOnce(ctx)
		if err := journal.CloseRun(ctx, mon.Stats()); err != nil {
			slog.Warn("journal close failed", "err", err)
		}
		slog.Info("single cycle complete", "stats", mon.Stats())
		return
	}

	if err := mon.Run(ctx); err != nil {
		slog.Error("copier exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("copytrader stopped cleanly")
}

// resolveTargets convierte los targets configurados en wallet -> display name.
// Un username que no resuelve se salta con warning; el caller decide si
// quedarse sin targets es fatal.
func resolveTargets(ctx context.Context, client *polymarket.Client, targets config.TargetsConfig) map[string]string {
	wallets := make(map[string]string)

	if len(targets.Usernames) > 0 {
		resolved, err := client.ResolveUsers(ctx, targets.Usernames)
		if err != nil {
			slog.Warn("username resolution failed", "err", err)
		}
		for w, name := range resolved {
			wallets[w] = name
		}
	}

	if len(targets.Wallets) > 0 {
		resolved, err := client.ResolveWallets(ctx, targets.Wallets)
		if err != nil {
			slog.Warn("wallet resolution failed", "err", err)
		}
		for w, name := range resolved {
			wallets[w] = name
		}
	}

	return wallets
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
