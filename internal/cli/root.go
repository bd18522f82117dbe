package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sprout/internal/ui"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

// New returns the sprout command tree. Flags can also be set through
// SPROUT_CONFIG, SPROUT_STORE and SPROUT_DB.
func New() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("SPROUT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "sprout",
		Short: "A terminal task tracker with a category tree and a focus timer.",
		Long: `sprout keeps tasks filed in a tree of categories. Selecting a category shows
every task under it and its subcategories, incomplete first and soonest
deadline first. A pomodoro timer credits focused minutes to the task you
work on.

Run without a subcommand to open the full-screen interface.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(v)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String(keyConfig, "", "config file (default ~/.config/sprout/config.toml)")
	flags.String(keyStore, "", "store backend: sqlite or diskv")
	flags.String(keyDB, "", "path of the sqlite database or diskv directory")
	for _, name := range []string{keyConfig, keyStore, keyDB} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}

	AddCommands(cmd, v)
	return cmd
}

func AddCommands(topLevel *cobra.Command, v *viper.Viper) {
	addList(topLevel, v)
	addTree(topLevel, v)
	addFocus(topLevel, v)
	addReset(topLevel, v)
	addVersion(topLevel)
}

func runUI(v *viper.Viper) error {
	a, err := open(v, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	collapsed, err := a.repo.PanelCollapsed()
	if err != nil {
		a.logger.Warn("panel state unreadable", "err", err)
	}
	err = ui.Run(ui.Deps{
		View:      a.view,
		Prefs:     a.repo,
		Keys:      a.cfg.Keys,
		Pomodoro:  a.pomodoro,
		Collapsed: collapsed,
		Notifier:  a.notifier(),
		Logger:    a.logger,
	})
	if err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

func addVersion(topLevel *cobra.Command) {
	topLevel.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sprout %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
		},
	})
}

// Execute runs the sprout command tree.
func Execute() error {
	return New().Execute()
}
