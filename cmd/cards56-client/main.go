package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yola1107/cards56/internal/conf"
	"github.com/yola1107/cards56/internal/game"
	"github.com/yola1107/cards56/library/ext"
	"github.com/yola1107/cards56/library/zlog"
)

var confPath = flag.String("conf", "", "config file path, e.g. configs/config.yaml")

func main() {
	flag.Parse()

	bc, err := conf.Load(*confPath)
	if err != nil {
		zlog.Fatalf("load config: %v", err)
	}
	logger := zlog.NewLogger(&bc.Log)
	defer logger.Close()

	if *confPath != "" {
		stop, err := conf.Watch(*confPath, func(next *conf.Bootstrap) {
			if delta, err := ext.DiffLog(bc, next); err == nil && delta != "" {
				zlog.Infof("config changed:\n%s", delta)
			}
			logger.SetLevel(next.Log.Level)
			bc = next
		})
		if err != nil {
			zlog.Warnf("config watch unavailable: %v", err)
		} else {
			defer stop()
		}
	}

	ctrl, err := game.New(bc)
	if err != nil {
		zlog.Fatalf("build session: %v", err)
	}
	defer ctrl.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = ctrl.Connect(ctx)
	cancel()
	if err != nil {
		zlog.Fatalf("connect %s: %v", bc.Client.Endpoint, err)
	}
	zlog.Infof("connected to %s", bc.Client.Endpoint)

	ctrl.Subscribe(func(p game.Projections, changed game.ChangeSet) {
		if changed.Progress {
			zlog.Infof("stage=%s teams=%+v", p.Progress.Stage(), p.Progress.Teams())
		}
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Infof("shutting down")
}
