package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/getversions/internal/server"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored reports over HTTP",
	Long: `Serve exposes the report history kept in the MySQL report store. It requires
database.enabled in the configuration.

Endpoints:
  GET /health
  GET /environments/{env}/versions
  GET /environments/{env}/versions/{instance}

Example:
  getversions serve --listen :8080`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "",
		"Override listen address")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	if a.store == nil {
		return fmt.Errorf("serve requires database.enabled: true")
	}

	listen := a.cfg.Server.Listen
	if serveListen != "" {
		listen = serveListen
	}

	srv, err := server.New(a.store, a.log)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(context.Background(), a.log)
	defer cancel()

	return srv.ListenAndServe(ctx, listen)
}
