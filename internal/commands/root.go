package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taskdeck/taskdeck/internal/auth"
	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/data"
	"github.com/taskdeck/taskdeck/internal/logger"
	"github.com/taskdeck/taskdeck/internal/store"
	"github.com/taskdeck/taskdeck/internal/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "taskdeck",
	Short: "A terminal task board for small teams",
	Long: `taskdeck is a terminal client for shared project boards.
Sign in, pick a project, and manage its tasks on a live three-column board.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *appContext) error {
			return tui.Run(tui.Deps{Auth: app.auth, Repo: app.repo})
		})
	},
}

// appContext bundles the services every command needs
type appContext struct {
	cfg   *config.Config
	store store.Store
	auth  auth.Provider
	repo  *data.Repo
}

// withApp loads config, opens the store and wires the services, then runs fn.
// The store and logger are torn down when fn returns.
func withApp(fn func(*appContext) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.LogFile, cfg.LogLevel); err != nil {
		return err
	}
	defer logger.Sync()

	st, err := store.Open(cfg.StorePath)
	if err != nil {
		logger.Error("failed to open store", err, zap.String("path", cfg.StorePath))
		return err
	}
	defer st.Close()

	app := &appContext{
		cfg:   cfg,
		store: st,
		auth:  auth.NewLocal(st, cfg.DataDir),
		repo:  data.NewRepo(st),
	}
	logger.Info("taskdeck started", zap.String("version", version))
	return fn(app)
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("taskdeck %s (commit %s, built %s)\n", version, commit, date)
	},
}
