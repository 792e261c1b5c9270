package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/driftglass/specimen/app"
	"github.com/driftglass/specimen/audio"
	"github.com/driftglass/specimen/config"
)

const helpDescription = `
A terminal organism that decays when ignored.

Leave it alone and it sickens through panic, decay, and death. Press any key
to soothe it back to health. What happens after death is between you and the
password. There is no way back from the ocean.

Keys:
  any        touch the specimen (resets decay)
  v          cycle volume
  ESC / ^C   leave
`

var exampleUsage = strings.TrimSpace(`
  specimen
  specimen --config ~/.specimen/stages.toml --volume low
  specimen --ocean
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// setupLogger directs logs to a file; stdout belongs to the screen
func setupLogger(path, level string) (zerolog.Logger, func(), error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("parse log level: %w", err)
	}

	var w io.Writer = io.Discard
	cleanup := func() {}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		cleanup = func() { f.Close() }
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), cleanup, nil
}

func main() {
	var (
		cfgPath  string
		ocean    bool
		mute     bool
		volume   string
		password string
		logFile  string
		logLevel string
	)

	root := &cobra.Command{
		Use:     "specimen",
		Short:   "A terminal organism that decays when ignored",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, closeLog, err := setupLogger(logFile, logLevel)
			if err != nil {
				return err
			}
			defer closeLog()

			table := config.Default()
			if cfgPath != "" {
				table, err = config.Load(cfgPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				log.Info().Str("path", cfgPath).Msg("stage table loaded")
			}

			level := audio.LevelMed
			if volume != "" {
				level, err = audio.ParseLevel(volume)
				if err != nil {
					return err
				}
			}

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("open terminal: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("init terminal: %w", err)
			}
			defer screen.Fini()

			a := app.New(screen, app.Options{
				Permanent: ocean,
				Mute:      mute,
				Level:     level,
				Password:  password,
				Table:     table,
				Logger:    log,
			})
			defer a.Destroy()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				log.Info().Msg("signal received, stopping")
				a.Quit()
			}()

			return a.Run()
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to stage table TOML (defaults built in)")
	root.Flags().BoolVar(&ocean, "ocean", false, "start permanently underwater, no lifecycle timer")
	root.Flags().BoolVar(&mute, "mute", false, "disable audio entirely")
	root.Flags().StringVar(&volume, "volume", "", "initial volume: off, low, med, high")
	root.Flags().StringVar(&password, "password", "", "override the gate password")
	root.Flags().StringVar(&logFile, "log-file", "", "append logs to this file (stdout is the display)")
	root.Flags().StringVar(&logLevel, "log-level", "info", "log level: trace, debug, info, warn, error")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "specimen: %v\n", err)
		os.Exit(1)
	}
}
