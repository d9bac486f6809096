// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package cli implements wlproxy's command-line surface: a single
// long-running "run" command plus a "version" command, in the same
// cobra-rooted shape as adoctl's cmd/root.go (persistent flags parsed
// once in PersistentPreRunE, log level wired through before any
// subcommand body runs).
package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"code.hybscloud.com/wlproxy/config"
	"code.hybscloud.com/wlproxy/proxy"
	"code.hybscloud.com/wlproxy/wlog"
)

const unknownValue = "unknown"

var (
	Version   string
	BuildTime string
	GitCommit string
)

var (
	logLevelFlag    string
	listenNameFlag  string
	compositorFlag  string
	pollTimeoutFlag int
)

var rootCmd = &cobra.Command{
	Use:   "wlproxy",
	Short: "Man-in-the-middle proxy for the Wayland wire protocol",
	Long: `wlproxy sits between Wayland clients and the real compositor socket,
relaying every request and event while keeping independent client- and
server-side object ID spaces translated transparently.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logLevelFlag
		if !cmd.Flags().Changed("log-level") {
			if envLevel := os.Getenv("WLPROXY_LOG_LEVEL"); envLevel != "" {
				level = envLevel
			}
		}
		wlog.SetLevel(level)
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the proxy and relay connections until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProxy()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		ver := Version
		if ver == "" {
			ver = "dev"
		}
		bt := BuildTime
		if bt == "" {
			bt = unknownValue
		}
		gc := GitCommit
		if gc == "" {
			gc = unknownValue
		}
		bold := color.New(color.FgCyan, color.Bold)
		_, _ = bold.Printf("wlproxy version %s\n", ver)
		fmt.Printf("Built: %s\n", bt)
		fmt.Printf("Git commit: %s\n", gc)
	},
}

func runProxy() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cli: loading config: %w", err)
	}
	if listenNameFlag != "" {
		cfg.ListenName = listenNameFlag
	}
	if compositorFlag != "" {
		cfg.CompositorSocketPath = compositorFlag
	}
	if pollTimeoutFlag != 0 {
		cfg.PollTimeoutMillis = pollTimeoutFlag
	}

	compositorPath := cfg.CompositorSocketPath
	if compositorPath == "" {
		compositorPath, err = proxy.CompositorSocketPath()
		if err != nil {
			return fmt.Errorf("cli: resolving compositor socket: %w", err)
		}
	}
	listenPath, err := proxy.ListenSocketPath(cfg.ListenName)
	if err != nil {
		return fmt.Errorf("cli: resolving listen socket: %w", err)
	}

	p, err := proxy.New(compositorPath, listenPath)
	if err != nil {
		return fmt.Errorf("cli: starting proxy: %w", err)
	}
	defer p.Close()

	p.OnAcceptError = func(err error) {
		wlog.Error().Err(err).Msg("accept failed")
	}

	wlog.Info().Str("listen_socket", listenPath).Str("compositor_socket", compositorPath).Msg("wlproxy starting")
	go p.AcceptLoop()

	for {
		if err := p.RunOnce(cfg.PollTimeoutMillis); err != nil {
			return fmt.Errorf("cli: run loop: %w", err)
		}
	}
}

// Execute runs the root command, exiting the process with a non-zero
// status on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		wlog.Fatal().Err(err).Msg("wlproxy exited")
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd, versionCmd)
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info", "Log level (debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&listenNameFlag, "listen-name", "", "Socket filename created under $XDG_RUNTIME_DIR (default from config)")
	runCmd.Flags().StringVar(&compositorFlag, "compositor-socket", "", "Path to the real compositor socket (default $XDG_RUNTIME_DIR/$WAYLAND_DISPLAY)")
	runCmd.Flags().IntVar(&pollTimeoutFlag, "poll-timeout-ms", 0, "Poll timeout in milliseconds, -1 to block indefinitely (default from config)")
}
