// Package cli implements the iqclient command line.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/intelliquiz/iqclient/auth"
	"github.com/intelliquiz/iqclient/internal/app"
	"github.com/intelliquiz/iqclient/internal/config"
	"github.com/intelliquiz/iqclient/internal/logger"
)

var (
	ErrNotLoggedIn = errors.New("not logged in: run `iqclient login`")
	ErrExpired     = errors.New("session expired: run `iqclient login`")
	ErrWrongRole   = errors.New("command not available for your role")
)

// state is shared by the commands of one root.
type state struct {
	v          *viper.Viper
	configFile string
}

type runFunc func(cmd *cobra.Command, args []string, rt *app.Runtime) error

// NewRootCmd creates the root cobra command for the iqclient CLI.
func NewRootCmd() *cobra.Command {
	s := &state{v: viper.New()}

	root := &cobra.Command{
		Use:           "iqclient",
		Short:         "IntelliQuiz command line client",
		Long:          "iqclient logs in to IntelliQuiz, keeps the session on disk and runs quiz, analytics and resource commands.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&s.configFile, "config", "", "config file (default ./iqclient.yaml)")
	flags.String("api", "", "IntelliQuiz API base URL (or IQ_API_BASE_URL)")
	flags.String("storage", "", "session storage driver: sqlite, memory, redis, postgres")
	flags.String("storage-path", "", "sqlite session database path")
	flags.String("log-mode", "", "log mode: warn, debug, release, quiet")
	for key, name := range map[string]string{
		"api.base_url":   "api",
		"storage.driver": "storage",
		"storage.path":   "storage-path",
		"log.mode":       "log-mode",
	} {
		_ = s.v.BindPFlag(key, flags.Lookup(name))
	}

	root.AddCommand(
		newLoginCmd(s),
		newRegisterCmd(s),
		newLogoutCmd(s),
		newStatusCmd(s),
		newQuizCmd(s),
		newLeaderboardCmd(s),
		newAnalyticsCmd(s),
		newResourcesCmd(s),
		newServeCmd(s),
	)
	return root
}

// run builds the runtime before fn and closes it when fn returns.
func (s *state) run(fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		cfg, err := config.Load(config.WithViper(s.v), config.WithFile(s.configFile))
		if err != nil {
			return err
		}
		log, err := logger.New(cfg.Log.Mode)
		if err != nil {
			return err
		}
		rt, err := app.New(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer func() {
			_ = log.Sync()
			err = errors.Join(err, rt.Close())
		}()
		return fn(cmd, args, rt)
	}
}

// admit runs the route guard for a command standing in for the view at path.
func admit(cmd *cobra.Command, rt *app.Runtime, path string, roles ...string) error {
	decision := rt.Guard.Decide(cmd.Context(), path, roles...)
	switch decision.Outcome {
	case auth.Render:
		return nil
	case auth.RedirectHome:
		return fmt.Errorf("%w: %s needs one of %v, your dashboard is %s", ErrWrongRole, path, roles, decision.Location)
	case auth.RedirectLogin:
		if decision.Expired {
			return ErrExpired
		}
		return ErrNotLoggedIn
	default:
		rt.Logger.Warn("session not ready", zap.String("path", path))
		return ErrNotLoggedIn
	}
}
