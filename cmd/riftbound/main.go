package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/silentapi/riftbounddecks/internal/catalog"
	"github.com/silentapi/riftbounddecks/internal/config"
	"github.com/silentapi/riftbounddecks/internal/deck"
	"github.com/silentapi/riftbounddecks/internal/game"
	"github.com/silentapi/riftbounddecks/internal/repository"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath   = flag.String("config", "", "path to configuration file")
	deckID       = flag.String("deck", "", "id of the deck to play")
	opponentID   = flag.String("opponent", "", "id of an opponent deck to mirror")
	listDecks    = flag.Bool("list", false, "list stored decks and exit")
	validateOnly = flag.Bool("validate", false, "print the legality report of -deck and exit")
	version      = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting riftbound console",
		zap.String("version", version),
		zap.String("config", *configPath),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("catalog_source", cfg.Catalog.Source),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	backends, err := openBackends(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open backends", zap.Error(err))
	}
	defer backends.Close()

	cached := catalog.NewCachedGateway(backends.catalog, catalog.CacheOptions{
		Size: cfg.Catalog.CacheSize,
		TTL:  cfg.Catalog.CacheTTL,
	}, logger)

	if cfg.Catalog.Watch && backends.file != nil {
		go func() {
			err := catalog.WatchFile(ctx, cfg.Catalog.File, backends.file, func(int) { cached.Purge() }, logger)
			if err != nil {
				logger.Error("catalog watcher stopped", zap.Error(err))
			}
		}()
	}

	var recorder *game.ReplayRecorder
	if cfg.Match.RecordReplays {
		recorder = game.NewReplayRecorder(logger, cfg.Match.ReplayDir)
		logger.Info("replay recording enabled", zap.String("directory", cfg.Match.ReplayDir))
	}

	sessionMgr := game.NewManager(logger, game.ManagerOptions{
		Decks:     backends.decks,
		Catalog:   cached,
		RuneTable: deck.RuneTableFrom(cfg.Runes.Table),
		Seed:      cfg.Match.Seed,
		Recorder:  recorder,
	})

	out := json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")

	if *listDecks {
		records, err := backends.decks.ListDecks(ctx)
		if err != nil {
			logger.Fatal("failed to list decks", zap.Error(err))
		}
		for _, r := range records {
			fmt.Printf("%s\t%s\t(updated %s)\n", r.ID, r.Name, r.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return
	}

	if *deckID == "" {
		fmt.Fprintln(os.Stderr, "-deck is required")
		os.Exit(2)
	}

	session, err := sessionMgr.Create(ctx, *deckID, *opponentID)
	if err != nil {
		logger.Fatal("failed to create session", zap.Error(err))
	}

	report := session.Validate()
	printJSON(out, logger, report)
	if *validateOnly {
		if !report.IsValid {
			os.Exit(1)
		}
		return
	}
	if !report.IsValid {
		logger.Warn("deck is not tournament legal",
			zap.String("deck_id", *deckID),
			zap.Int("failed_rules", len(report.Failed())),
		)
	}

	session.Events().Subscribe(func(e game.Event) {
		logger.Debug("event",
			zap.String("type", string(e.Type)),
			zap.Int("sequence", e.Sequence),
			zap.String("card_id", string(e.CardID)),
		)
	})

	lines := make(chan string)
	go readLines(os.Stdin, lines)

	term := &console{session: session, out: out, errOut: os.Stderr, logger: logger}
	term.dispatch("init")

loop:
	for {
		select {
		case sig := <-sigChan:
			logger.Info("received shutdown signal", zap.String("signal", sig.String()))
			break loop
		case line, ok := <-lines:
			if !ok || !term.handle(line) {
				break loop
			}
		}
	}

	logger.Info("shutting down gracefully...")
	cancel()

	if err := sessionMgr.CloseAll(); err != nil {
		logger.Error("failed to close sessions", zap.Error(err))
	}

	logger.Info("riftbound console stopped")
}

type backends struct {
	decks   repository.DeckStore
	catalog catalog.Gateway
	file    *catalog.MemoryGateway // set for the file source
	closers []func()
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openBackends wires the deck store and card catalog selected by cfg.
func openBackends(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*backends, error) {
	b := &backends{}
	var pool *pgxpool.Pool

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := repository.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		pool = db
		b.closers = append(b.closers, db.Close)
		b.decks = repository.NewPostgresDeckStore(db)

		stats := db.Stat()
		logger.Info("database connection pool initialized",
			zap.Int32("total_conns", stats.TotalConns()),
			zap.Int32("idle_conns", stats.IdleConns()),
		)
	case config.DriverSQLite:
		db, err := repository.OpenSQLite(cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		b.closers = append(b.closers, func() { db.Close() })
		b.decks = repository.NewSQLiteDeckStore(db)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	switch cfg.Catalog.Source {
	case config.CatalogPostgres:
		b.catalog = catalog.NewPostgresGateway(pool)
	case config.CatalogFile:
		gw, err := catalog.LoadFile(cfg.Catalog.File)
		if err != nil {
			b.Close()
			return nil, err
		}
		logger.Info("card catalog loaded", zap.String("file", cfg.Catalog.File), zap.Int("cards", gw.Len()))
		b.catalog = gw
		b.file = gw
	default:
		b.Close()
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}

	return b, nil
}

func readLines(r io.Reader, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines <- scanner.Text()
	}
}

// console turns input lines into session commands. Results go to out as
// JSON; help, errors and rejections go to errOut.
type console struct {
	session *game.Session
	out     *json.Encoder
	errOut  io.Writer
	logger  *zap.Logger
}

// handle processes one line and reports whether the console should keep
// reading.
func (c *console) handle(line string) bool {
	line = strings.TrimSpace(line)
	switch strings.ToLower(line) {
	case "":
		return true
	case "quit", "exit":
		return false
	case "help":
		fmt.Fprintln(c.errOut, "commands: init, draw, shuffle <libraryDeck|runeLibrary>, shuffle-hand,")
		fmt.Fprintln(c.errOut, "  hand-top <i>, hand-recycle <i>, discard <i>, channel <n>, exhaust <i>,")
		fmt.Fprintln(c.errOut, "  exhaust-many <n>, awaken-many <n>, rune-top <i>, rune-recycle <i>,")
		fmt.Fprintln(c.errOut, "  legend-exhaust, legend-awaken, snapshot, counts, validate, opponent, quit")
		return true
	case "validate":
		printJSON(c.out, c.logger, c.session.Validate())
		return true
	case "opponent":
		mirror, ok := c.session.Opponent()
		if !ok {
			fmt.Fprintln(c.errOut, "no opponent deck loaded")
			return true
		}
		printJSON(c.out, c.logger, mirror)
		return true
	case "counts":
		printJSON(c.out, c.logger, c.session.Snapshot().Counts())
		return true
	}

	c.dispatch(line)
	return true
}

func (c *console) dispatch(line string) {
	cmd, err := game.ParseCommand(line)
	if err != nil {
		fmt.Fprintf(c.errOut, "error: %v\n", err)
		return
	}

	res := c.session.Dispatch(cmd)
	if res.Err != nil {
		fmt.Fprintf(c.errOut, "rejected: %v\n", res.Err)
		return
	}

	printJSON(c.out, c.logger, consoleResult{Snapshot: res.Snapshot, Count: res.Count})

	done := game.NewEvent(game.EventPresentationComplete, c.session.ID)
	done.Sequence = res.Snapshot.Sequence
	c.session.Events().Publish(done)
}

type consoleResult struct {
	Snapshot game.Snapshot `json:"snapshot"`
	Count    int           `json:"count,omitempty"`
}

func printJSON(out *json.Encoder, logger *zap.Logger, v any) {
	if err := out.Encode(v); err != nil {
		logger.Error("failed to write output", zap.Error(err))
	}
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	// stdout carries snapshots; keep logs off it
	zapCfg.OutputPaths = []string{"stderr"}

	return zapCfg.Build()
}
