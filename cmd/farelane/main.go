package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/farelane/farelane/internal/clock"
	"github.com/farelane/farelane/internal/config"
	"github.com/farelane/farelane/internal/migration"
	"github.com/farelane/farelane/internal/observability"
	"github.com/farelane/farelane/internal/server"
	"github.com/farelane/farelane/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
