package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"lukechampine.com/frand"

	"threes/communication/client"
	"threes/communication/server"
	"threes/config"
	"threes/engine"
	"threes/eval"
	"threes/experiments"
	"threes/game"
	"threes/gamemaster"
	"threes/player"
	"threes/searcher"
)

func main() {
	c, experiment, err := parseConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	setupLogging(c.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, c, experiment); err != nil {
		log.Fatal().Err(err).Str("mode", c.Mode).Msg("exiting")
	}
}

func parseConfig(args []string) (config.Config, string, error) {
	fs := flag.NewFlagSet("threes", flag.ContinueOnError)
	path := fs.String("config", "", "YAML config file")
	mode := fs.String("mode", "", "console, ai, serve or experiment")
	depth := fs.Int("depth", 0, "Moves the AI looks ahead")
	goroutines := fs.Int("goroutines", 0, "Goroutines scoring paths, 0 for one per CPU")
	duration := fs.Duration("duration", 0, "Search budget per move, 0 for none")
	games := fs.Int("games", 0, "Games the AI plays")
	seed := fs.Uint64("seed", 0, "Random seed, 0 for a random one")
	addr := fs.String("addr", "", "Listen address for serve mode")
	remote := fs.String("remote", "", "Websocket URL of a session server for ai mode")
	mirrored := fs.Bool("mirrored", false, "The backend reports its board upside down")
	level := fs.String("log-level", "", "trace, debug, info, warn or error")
	statsDir := fs.String("stats-dir", "", "Directory for experiment CSV files")
	experiment := fs.String("experiment", "depth", "depth, parallel or throughput")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, "", err
	}

	c := config.Default()
	if *path != "" {
		var err error
		if c, err = config.Load(*path); err != nil {
			return c, "", err
		}
	}

	// Flags given on the command line win over the file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			c.Mode = *mode
		case "depth":
			c.Depth = *depth
		case "goroutines":
			c.Goroutines = *goroutines
		case "duration":
			c.Duration = *duration
		case "games":
			c.Games = *games
		case "seed":
			c.Seed = *seed
		case "addr":
			c.Addr = *addr
		case "remote":
			c.Remote = *remote
		case "mirrored":
			c.Mirrored = *mirrored
		case "log-level":
			c.LogLevel = *level
		case "stats-dir":
			c.StatsDir = *statsDir
		}
	})
	if c.Seed == 0 {
		c.Seed = frand.Uint64n(math.MaxUint64)
	}
	return c, *experiment, c.Validate()
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func run(ctx context.Context, c config.Config, experiment string) error {
	log.Debug().Uint64("seed", c.Seed).Msg("configured")

	switch c.Mode {
	case config.ModeConsole:
		g := game.New(rand.New(rand.NewSource(c.Seed)))
		return player.NewConsole(g, os.Stdin, os.Stdout).Run(ctx)

	case config.ModeAI:
		backend, closeBackend, err := newBackend(ctx, c)
		if err != nil {
			return err
		}
		defer closeBackend()
		e := engine.New(backend, newSearcher(c), engine.WithGames(c.Games))
		summary, err := e.Run(ctx)
		summary.Log()
		return err

	case config.ModeServe:
		return server.New(server.WithSeed(c.Seed)).ListenAndServe(ctx, c.Addr)

	case config.ModeExperiment:
		r := experiments.Runner{
			Root:     c.StatsDir,
			Games:    c.Games,
			Seed:     c.Seed,
			Evaluate: eval.New(c.Weights).Score,
		}
		budget := c.Duration
		if budget == 0 {
			budget = experiments.TimeBudget
		}
		var dir string
		var err error
		switch experiment {
		case "depth":
			dir, err = r.Run(ctx, "depth", experiments.DepthConfigs(budget))
		case "parallel":
			dir, err = r.Run(ctx, "parallel", experiments.ParallelConfigs(c.Depth, budget))
		case "throughput":
			dir, err = r.Throughput(ctx, "throughput", experiments.ParallelConfigs(c.Depth, budget))
		default:
			return fmt.Errorf("unknown experiment %q", experiment)
		}
		if err != nil {
			return err
		}
		log.Info().Str("dir", dir).Msg("stored experiment")
		return nil
	}
	return fmt.Errorf("unknown mode %q", c.Mode)
}

func newBackend(ctx context.Context, c config.Config) (gamemaster.Backend, func(), error) {
	var backend gamemaster.Backend
	closeBackend := func() {}
	if c.Remote != "" {
		remote, err := client.Dial(ctx, c.Remote)
		if err != nil {
			return nil, nil, err
		}
		backend = remote
		closeBackend = func() { _ = remote.Close() }
		log.Info().Str("url", c.Remote).Msg("connected to session server")
	} else {
		backend = gamemaster.NewLocal(rand.New(rand.NewSource(c.Seed)))
	}
	if c.Mirrored {
		backend = gamemaster.NewMirrored(backend)
	}
	return backend, closeBackend, nil
}

func newSearcher(c config.Config) *searcher.Searcher {
	options := []searcher.Option{
		searcher.WithDepth(c.Depth),
		searcher.WithDuration(c.Duration),
		searcher.WithEvaluator(eval.New(c.Weights).Score),
		searcher.WithSeed(c.Seed),
	}
	if c.Goroutines > 0 {
		options = append(options, searcher.WithGoroutines(c.Goroutines))
	}
	return searcher.New(options...)
}
