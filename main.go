// Package main is the entry point for the vibe application.
package main

import (
	"context"

	"github.com/vibe-audio/vibe/cmd"
	"github.com/vibe-audio/vibe/config"
	"github.com/vibe-audio/vibe/internal/cache"
	"github.com/vibe-audio/vibe/key"
	"github.com/vibe-audio/vibe/log"
	"github.com/vibe-audio/vibe/metrics"
	"github.com/vibe-audio/vibe/network"
	"github.com/vibe-audio/vibe/where"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())
	network.Configure()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go cache.CollectGarbage(where.Media())
	metrics.Default.Serve(ctx, viper.GetString(key.MetricsAddress))

	cmd.Execute()
}
