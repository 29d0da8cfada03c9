package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danthegoodman1/icescore/converter"
	"github.com/danthegoodman1/icescore/crdb"
	"github.com/danthegoodman1/icescore/datastore"
	"github.com/danthegoodman1/icescore/gologger"
	"github.com/danthegoodman1/icescore/http_server"
	"github.com/danthegoodman1/icescore/metastore"
	"github.com/danthegoodman1/icescore/migrations"
	"github.com/danthegoodman1/icescore/scoring"
	"github.com/danthegoodman1/icescore/utils"
)

var logger = gologger.NewLogger()

func main() {
	logger.Debug().Msg("starting icescore")

	catalog := scoring.NewCatalog()
	if err := scoring.RegisterBuiltins(catalog); err != nil {
		logger.Error().Err(err).Msg("error registering scoring engines")
		os.Exit(1)
	}

	var ms metastore.MetaStore
	if utils.CRDB_DSN != "" {
		if err := crdb.ConnectToDB(); err != nil {
			logger.Error().Err(err).Msg("error connecting to CRDB")
			os.Exit(1)
		}
		if _, err := migrations.RunMigrations(utils.CRDB_DSN); err != nil {
			logger.Error().Err(err).Msg("error running migrations")
			os.Exit(1)
		}
		if err := migrations.CheckMigrations(utils.CRDB_DSN); err != nil {
			logger.Error().Err(err).Msg("Error checking migrations")
			os.Exit(1)
		}
		ms = metastore.NewCRDBMetaStore(crdb.PGPool)
	} else {
		logger.Warn().Msg("CRDB_DSN not set, keeping the run log in memory")
		ms = metastore.NewMemoryMetaStore()
	}

	ds, err := datastore.FromEnv()
	if err != nil {
		logger.Error().Err(err).Msg("error creating datastore")
		os.Exit(1)
	}

	httpServer := http_server.StartHTTPServer(catalog, converter.Default(), ds, ms)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logger.Warn().Msg("received shutdown signal!")

	// For AWS ALB needing some time to de-register pod
	// Convert the time to seconds
	sleepTime := utils.GetEnvOrDefaultInt("SHUTDOWN_SLEEP_SEC", 0)
	logger.Info().Msg(fmt.Sprintf("sleeping for %ds before exiting", sleepTime))

	time.Sleep(time.Second * time.Duration(sleepTime))
	logger.Info().Msg(fmt.Sprintf("slept for %ds, exiting", sleepTime))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown HTTP server")
	} else {
		logger.Info().Msg("successfully shutdown HTTP server")
	}
	if err := ds.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown datastore")
	}
	if err := ms.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown metastore")
	}
}
