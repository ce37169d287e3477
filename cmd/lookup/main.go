// Command lookup is a development shell over the word lookup pipeline. It
// prints every snapshot produced for the given words.
//
// Usage:
//
//	lookup [flags] word...
//	lookup -recent
//	lookup -listen          # each line typed on stdin is a voice query
//	lookup -warm 4 word...  # prefetch words into the cache
//
// Configuration is read from CONFIG_PATH (default ./lookup.yaml) and the
// environment. Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/heartmarshall/myenglish-lookup/internal/adapter/console"
	"github.com/heartmarshall/myenglish-lookup/internal/app"
	"github.com/heartmarshall/myenglish-lookup/internal/config"
)

func main() {
	recent := flag.Bool("recent", false, "print cached words, newest first")
	listen := flag.Bool("listen", false, "read voice queries from stdin")
	speak := flag.Bool("speak", false, "read the first result aloud")
	warm := flag.Int("warm", 0, "prefetch the given words with this many workers")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println(app.BuildVersion())
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := app.NewLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger, app.Platform{
		Speech:     console.NewSpeechEngine(os.Stdin),
		Permission: console.Gate{Allowed: true},
		Narration:  console.NewNarrator(os.Stdout, cfg.Narration.Language),
	})
	if err != nil {
		logger.Error("start", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sh := &shell{app: a, out: os.Stdout, log: logger, speak: *speak}

	switch {
	case *warm > 0:
		err = sh.warm(ctx, *warm, flag.Args())
	case *listen:
		err = sh.listen(ctx)
	case *recent:
		err = sh.recent(ctx)
	default:
		err = sh.search(ctx, flag.Args())
	}

	if closeErr := a.Close(); closeErr != nil {
		logger.Warn("shutdown", slog.String("error", closeErr.Error()))
	}
	if err != nil {
		logger.Error("lookup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
