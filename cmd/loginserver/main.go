// Command loginserver wires configuration to the listener: flag/config
// parsing, logger construction, and starting the tick loop.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"bedrock-login-server/internal/config"
	"bedrock-login-server/internal/listener"
	"bedrock-login-server/internal/motd"
)

const serverVersion = "1.0.0"

var (
	flagConfigPath string
	flagBindAddr   string
)

var rootCmd = &cobra.Command{
	Use:     "loginserver",
	Short:   "Bedrock-edition login/session core",
	Version: serverVersion,
	RunE:    run,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagConfigPath, "config", "config.yaml", "path to the YAML configuration file")
	flags.StringVar(&flagBindAddr, "bind", "", "override the configured bind address")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return fmt.Errorf("loginserver: %w", err)
	}
	if flagBindAddr != "" {
		cfg.BindAddress = flagBindAddr
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

	rak, err := newRakNetCollaborator(cfg, log)
	if err != nil {
		return fmt.Errorf("loginserver: %w", err)
	}

	rak.SetMOTD(motd.MOTD{
		Title:           cfg.Title,
		ProtocolVersion: cfg.ProtocolVersion,
		Version:         cfg.VersionString,
		Online:          uint32(cfg.Online),
		Max:             uint32(cfg.Max),
		GUID:            rak.GUID(),
		SubTitle:        cfg.SubTitle,
		GameMode:        cfg.GameMode,
	}.Format())

	l := listener.New(rak, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("shutting down")
		cancel()
	}()

	log.Info().Str("bind", cfg.BindAddress).Msg("login server starting")
	if err := l.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
