package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/go-logr/stdr"

	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/uci"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	depth      = flag.Int("depth", engine.DifficultyDepth[engine.Hard], "default search depth")
	workers    = flag.Int("workers", 0, "search goroutines (0 = one per CPU)")
	cacheSize  = flag.Int64("cache", 1<<18, "transposition cache entries (0 disables)")
	verbosity  = flag.Int("v", 0, "log verbosity")
)

func main() {
	flag.Parse()

	// Logs go to stderr; stdout carries the protocol.
	stdr.SetVerbosity(*verbosity)
	logger := stdr.New(log.New(os.Stderr, "", log.LstdFlags))

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		logger.Info("CPU profiling enabled", "path", profilePath)
	}

	opts := []engine.Option{
		engine.WithDepth(*depth),
		engine.WithCacheSize(*cacheSize),
		engine.WithLogger(logger.WithName("engine")),
	}
	if *workers > 0 {
		opts = append(opts, engine.WithWorkers(*workers))
	}
	eng, err := engine.New(opts...)
	if err != nil {
		log.Fatal("could not create engine: ", err)
	}
	defer eng.Close()

	protocol := uci.New(eng, os.Stdin, os.Stdout, logger.WithName("uci"))
	if err := protocol.Run(); err != nil {
		logger.Error(err, "reading commands")
	}
}
