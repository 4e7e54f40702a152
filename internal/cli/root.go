// Package cli arma el programa cobra: serve (default), migrate, history, statuses.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"shelter-operations/internal/config"
	"shelter-operations/internal/platform/i18n"
	"shelter-operations/internal/platform/logger"

	"github.com/spf13/cobra"
)

// App es el estado compartido por los subcomandos, cargado en PersistentPreRunE.
type App struct {
	Config config.Config
	Log    logger.Logger
	Labels i18n.LabelResolver

	out        io.Writer
	configPath string
}

// NewRootCommand arma el árbol de comandos escribiendo en out.
func NewRootCommand(out io.Writer) *cobra.Command {
	app := &App{out: out}

	root := &cobra.Command{
		Use:           "shelter-operations",
		Short:         "Shelter animal status and location lifecycle service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(app.configPath)
			if err != nil {
				return err
			}
			app.Config = cfg
			app.Log = logger.New(logger.Options{
				Level:  logger.ParseLevel(cfg.LogLevel),
				Format: logger.ParseFormat(cfg.LogFormat),
				App:    cfg.AppName,
				Output: os.Stdout,
			})
			app.Labels = i18n.NewResolver(cfg.DefaultLocale)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), app)
		},
	}
	root.SetOut(out)
	root.SetErr(out)
	root.PersistentFlags().StringVar(&app.configPath, "config", "", "path to a YAML config file (or "+config.ConfigFileEnv+")")

	root.AddCommand(
		newServeCommand(app),
		newMigrateCommand(app),
		newHistoryCommand(app),
		newStatusesCommand(app),
	)
	return root
}

// Execute corre el CLI y devuelve el exit code.
func Execute() int {
	cmd := NewRootCommand(os.Stdout)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}
