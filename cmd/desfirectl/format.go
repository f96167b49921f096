package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	formatAuthSlot string
	formatYes      bool
)

var formatCmd = &cobra.Command{
	Use:   "format",
	Short: "Erase all applications and files, returning the card to its factory state",
	Long: `format authenticates with the PICC master key and issues FormatPICC.
This is destructive and irreversible: every application and file on the
card is erased. Pass --yes to skip the confirmation delay.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		key, err := loadSlotKey(cfg, formatAuthSlot)
		if err != nil {
			return err
		}
		keyNo, err := slotKeyNo(formatAuthSlot)
		if err != nil {
			return err
		}

		if !formatYes {
			fmt.Println("WARNING: this will erase every application and file on the card.")
			fmt.Println("Press Ctrl+C now to cancel. Continuing in 3 seconds...")
			time.Sleep(3 * time.Second)
		}

		conn, client, err := connectClient(cfg)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := client.Authenticate(keyNo, key); err != nil {
			return fmt.Errorf("authenticate with PICC master key: %w", err)
		}
		if err := client.FormatPICC(); err != nil {
			return fmt.Errorf("format picc: %w", err)
		}
		fmt.Println("Card formatted.")
		return nil
	},
}

func init() {
	formatCmd.Flags().StringVar(&formatAuthSlot, "auth", "0", "key slot holding the PICC master key")
	formatCmd.Flags().BoolVar(&formatYes, "yes", false, "skip the confirmation delay")
	rootCmd.AddCommand(formatCmd)
}
