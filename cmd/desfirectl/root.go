package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nfc-tools/desfire-go/internal/cliconfig"
	"github.com/nfc-tools/desfire-go/internal/pcsc"
	"github.com/nfc-tools/desfire-go/pkg/desfire"
)

var (
	cfgFile    string
	readerFlag int
	verbose    bool
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "desfirectl",
	Short: "MIFARE DESFire EV1 command-line client",
	Long: `desfirectl drives a DESFire EV1 card over a PC/SC reader: select
applications, authenticate, manage keys and files.

Reader and key material are declared once in a config.yaml (see
internal/cliconfig); --reader overrides the configured reader index for
one invocation.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "path to desfirectl config.yaml")
	rootCmd.PersistentFlags().IntVar(&readerFlag, "reader", -1, "override the configured reader index")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func configureLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if logFormat == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, opts)))
	} else {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
	}
}

// loadConfig resolves and strictly decodes the config file named by
// --config.
func loadConfig() (*cliconfig.Config, error) {
	path := viper.GetString("config")
	if path == "" {
		path = cfgFile
	}
	return cliconfig.Load(path)
}

// connectClient opens the configured (or overridden) reader and wraps it
// in a desfire.DesfireClient using the configured wire framing.
func connectClient(cfg *cliconfig.Config) (*pcsc.Connection, *desfire.DesfireClient, error) {
	idx := *cfg.Reader.Index
	if readerFlag >= 0 {
		idx = readerFlag
	}

	conn, err := pcsc.Connect(idx)
	if err != nil {
		return nil, nil, fmt.Errorf("connect reader: %w", err)
	}

	framing := desfire.FramingNative
	if cfg.Reader.Framing == "wrapped" {
		framing = desfire.FramingWrapped
	}
	return conn, desfire.NewClient(conn, framing), nil
}

// loadSlotKey loads the key declared for slot (a decimal string, e.g.
// "0") in cfg.Keys.
func loadSlotKey(cfg *cliconfig.Config, slot string) (*desfire.Key, error) {
	kc, ok := cfg.Keys[slot]
	if !ok {
		return nil, fmt.Errorf("desfirectl: no key configured for slot %q", slot)
	}
	return cliconfig.LoadKey(kc)
}

// slotKeyNo parses a config key slot name (e.g. "0") into the DESFire
// key number byte it denotes.
func slotKeyNo(slot string) (byte, error) {
	var n int
	if _, err := fmt.Sscanf(slot, "%d", &n); err != nil {
		return 0, fmt.Errorf("desfirectl: key slot %q is not a number", slot)
	}
	if n < 0 || n > 0x3F {
		return 0, fmt.Errorf("desfirectl: key slot %q out of range", slot)
	}
	return byte(n), nil
}
