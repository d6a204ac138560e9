package cmd

import (
	"errors"
	"io/fs"
	"log"
	"os"

	"github.com/josephlewis42/osh/core/config"
	"github.com/josephlewis42/osh/core/logger"
	"github.com/josephlewis42/osh/core/repl"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	cfgPath     string
	commandLine string

	// exitCode is the status the process exits with once cobra returns.
	exitCode int
)

func loadConfig() (*config.Configuration, error) {
	configuration, err := config.Load(afero.NewOsFs(), cfgPath)

	if errors.Is(err, fs.ErrNotExist) {
		log.Println("Couldn't load config: did you run init?")
	}

	return configuration, err
}

// loadConfigOrDefault falls back to the built-in configuration when none was
// initialized.
func loadConfigOrDefault(logger *log.Logger) (*config.Configuration, error) {
	configuration, err := config.Load(afero.NewOsFs(), cfgPath)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Println("Couldn't load config: did you run init? Using defaults.")
		return config.Default(), nil
	}
	return configuration, err
}

// openEventLog returns the event logger and a function to release it.
func openEventLog(cfg *config.Configuration) (*logger.Logger, func() error, error) {
	fd, err := cfg.OpenEventLog()
	switch {
	case errors.Is(err, config.ErrEventLogDisabled):
		return logger.NewNopLogger(), func() error { return nil }, nil
	case err != nil:
		return nil, nil, err
	}
	return logger.NewJSONLinesLogRecorder(fd), fd.Close, nil
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "osh",
	Short: "A minimal interactive command shell",
	Long: `osh reads command lines, runs them as child processes, and connects
them with pipes and file redirections.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		diag := log.New(cmd.ErrOrStderr(), "[osh] ", 0)
		cfg, err := loadConfigOrDefault(diag)
		if err != nil {
			return err
		}

		events, closeEvents, err := openEventLog(cfg)
		if err != nil {
			return err
		}
		defer closeEvents()
		session := events.NewSession()

		if cmd.Flags().Changed("command") {
			s := repl.New(nil, cmd.OutOrStdout(), cfg, session)
			s.Log = diag
			s.RunLine(commandLine)
			exitCode = s.LastStatus
			return nil
		}

		s, err := repl.NewShell(cfg, session)
		if err != nil {
			return err
		}
		s.Log = diag
		exitCode = s.Run()
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
	os.Exit(exitCode)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "config path")
	rootCmd.Flags().StringVarP(&commandLine, "command", "c", "", "run a single command line and exit with its status")
}
