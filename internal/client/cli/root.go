package cli

import (
	"context"
	"os"
	"strings"

	"github.com/dmitrijs2005/skudadmin/internal/client/config"
	"github.com/dmitrijs2005/skudadmin/internal/flagx"
	"github.com/dmitrijs2005/skudadmin/internal/logging"
	"github.com/spf13/cobra"
)

// CommandArgs returns os.Args without the flags consumed by config.LoadConfig,
// ready for the cobra command tree.
func CommandArgs() []string {
	flags := append(append([]string{}, config.Flags...), flagx.ConfigFileFlags...)
	return flagx.StripArgs(os.Args[1:], flags)
}

// NewRootCmd builds the command tree. Without a subcommand it starts the
// interactive console.
func NewRootCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "skudadmin",
		Short:        "SKUD access-control admin console",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive console
  skudadmin -a https://skud.example

  # Show the signed-in user
  skudadmin whoami

  # Forget the stored session
  skudadmin logout
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyColorProfile()
			app, err := openApp(cmd, cfg)
			if err != nil {
				return err
			}
			app.Run(cmd.Context())
			return nil
		},
	}

	cmd.AddCommand(
		newSessionCmd(cfg, "whoami", "Show the signed-in user", (*App).WhoAmI),
		newSessionCmd(cfg, "logout", "Forget the stored session", (*App).Logout),
	)
	return cmd
}

func newSessionCmd(cfg *config.Config, use, short string, run func(*App, context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, cfg)
			if err != nil {
				return err
			}
			defer app.Close()
			return run(app, cmd.Context())
		},
	}
}

func openApp(cmd *cobra.Command, cfg *config.Config) (*App, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	log := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
	return newApp(ctx, cfg, log, cmd.InOrStdin(), cmd.OutOrStdout())
}
