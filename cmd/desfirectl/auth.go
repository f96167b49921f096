package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nfc-tools/desfire-go/pkg/desfire"
)

var authAppID uint32

var authCmd = &cobra.Command{
	Use:   "auth <slot>",
	Short: "Select an application and authenticate with the configured key for slot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		key, err := loadSlotKey(cfg, args[0])
		if err != nil {
			return err
		}

		conn, client, err := connectClient(cfg)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := client.SelectApplication(desfire.ApplicationID(authAppID)); err != nil {
			return fmt.Errorf("select application %06X: %w", authAppID, err)
		}

		keyNo, err := slotKeyNo(args[0])
		if err != nil {
			return err
		}
		if err := client.Authenticate(keyNo, key); err != nil {
			return fmt.Errorf("authenticate: %w", err)
		}

		fmt.Printf("Authenticated with slot %s (key no %d) on application %06X\n", args[0], keyNo, authAppID)
		return nil
	},
}

func init() {
	authCmd.Flags().Uint32Var(&authAppID, "aid", 0, "application ID to select before authenticating (default: PICC level)")
	rootCmd.AddCommand(authCmd)
}
