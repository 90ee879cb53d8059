package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/safetydesk/safetydesk/internal/clock"
	"github.com/safetydesk/safetydesk/internal/config"
	"github.com/safetydesk/safetydesk/internal/logger"
	"github.com/safetydesk/safetydesk/internal/migration"
	"github.com/safetydesk/safetydesk/internal/server"
	"github.com/safetydesk/safetydesk/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		clock.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
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
