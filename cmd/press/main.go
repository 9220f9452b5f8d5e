package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/yola1107/cards56/internal/press"
	"github.com/yola1107/cards56/library/zlog"
)

var (
	endpoint  = flag.String("endpoint", "ws://127.0.0.1:8080/Cards56Hub", "hub endpoint")
	bots      = flag.Int("n", 4, "number of bot players")
	tableType = flag.String("table", "0", "table type 0-2")
	duration  = flag.Duration("duration", 0, "how long to run, 0 = until interrupted")
)

func main() {
	flag.Parse()

	cfg := press.DefaultConfig()
	cfg.Endpoint = *endpoint
	cfg.Bots = *bots
	cfg.TableType = *tableType

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	start := time.Now()
	if err := press.NewRunner(cfg).Run(ctx); err != nil {
		zlog.Fatalf("press: %v", err)
	}
	zlog.Infof("press finished after %s", time.Since(start).Round(time.Second))
}
