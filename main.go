package main

import (
	"fmt"
	"os"

	"edenhttp/internal/bootstrap"
	"edenhttp/internal/config"
	"edenhttp/internal/schema"
	"edenhttp/internal/version"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "edenhttp",
	Short: "Minimal HTTP/1.1 engine with a route registry and a generated schema",
	Long: `edenhttp answers one request per connection from a frozen route table.

  edenhttp serve           # start the listener
  edenhttp schema          # print the route schema and exit
  edenhttp version         # print build information`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP listener",
	RunE:  runServe,
}

var schemaFormat string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the schema document for the registered routes",
	RunE:  runSchema,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.GetVersion())
	},
}

func init() {
	schemaCmd.Flags().StringVarP(&schemaFormat, "format", "f", "json", "output format (json|yaml)")
	rootCmd.AddCommand(serveCmd, schemaCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	conf, err := config.MustLoad()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	logger := bootstrap.NewLogger(os.Stdout, conf.LogLevel(), conf.LogFormat())
	logger.Info().Str("version", version.GetVersion()).Msg("Starting edenhttp")

	b, err := bootstrap.New(conf, logger, bootstrap.BuiltinRoutes)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to build route registry")
		return err
	}

	if err = b.Run(); err != nil {
		logger.Error().Err(err).Msg("Application error")
		return err
	}
	return nil
}

func runSchema(cmd *cobra.Command, args []string) error {
	conf, err := config.MustLoad()
	if err != nil {
		return err
	}

	reg, err := bootstrap.BuildRegistry(conf, bootstrap.BuiltinRoutes)
	if err != nil {
		return err
	}

	doc := schema.Build(reg, schema.Info{Title: conf.APITitle()})
	switch schemaFormat {
	case "json":
		return schema.WriteJSON(cmd.OutOrStdout(), doc)
	case "yaml":
		return schema.WriteYAML(cmd.OutOrStdout(), doc)
	default:
		return fmt.Errorf("unknown schema format %q", schemaFormat)
	}
}
