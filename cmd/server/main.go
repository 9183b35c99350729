package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/huynhanx03/go-crud/internal/server"
	"github.com/huynhanx03/go-crud/pkg/settings"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to config file (default $GOCRUD_CONFIG or ./config.yaml)")
	pflag.Parse()

	cfg, err := settings.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fx.New(
		fx.Supply(cfg),
		server.Module,
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Named("fx")}
		}),
	).Run()
}
