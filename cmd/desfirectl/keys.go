package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nfc-tools/desfire-go/pkg/desfire"
)

var (
	changeKeyAppID    uint32
	changeKeyAuthSlot string
	changeKeyNewSlot  string
	changeKeyOldSlot  string
)

var changeKeyCmd = &cobra.Command{
	Use:   "change-key <key-no>",
	Short: "Authenticate and change one key slot on the selected application",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keyNo, err := slotKeyNo(args[0])
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		authKey, err := loadSlotKey(cfg, changeKeyAuthSlot)
		if err != nil {
			return err
		}
		authKeyNo, err := slotKeyNo(changeKeyAuthSlot)
		if err != nil {
			return err
		}
		newKey, err := loadSlotKey(cfg, changeKeyNewSlot)
		if err != nil {
			return err
		}
		var oldKey *desfire.Key
		if changeKeyOldSlot != "" {
			oldKey, err = loadSlotKey(cfg, changeKeyOldSlot)
			if err != nil {
				return err
			}
		}

		conn, client, err := connectClient(cfg)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := client.SelectApplication(desfire.ApplicationID(changeKeyAppID)); err != nil {
			return fmt.Errorf("select application: %w", err)
		}
		if err := client.Authenticate(authKeyNo, authKey); err != nil {
			return fmt.Errorf("authenticate with slot %s: %w", changeKeyAuthSlot, err)
		}
		if err := client.ChangeKey(keyNo, newKey, oldKey); err != nil {
			return fmt.Errorf("change key %d: %w", keyNo, err)
		}
		fmt.Printf("Changed key %d on application %06X\n", keyNo, changeKeyAppID)
		return nil
	},
}

var (
	changeKeySettingsAppID    uint32
	changeKeySettingsAuthSlot string
	changeKeySettingsNewValue uint8
)

var changeKeySettingsCmd = &cobra.Command{
	Use:   "change-key-settings",
	Short: "Authenticate and change the selected application's key settings byte",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		authKey, err := loadSlotKey(cfg, changeKeySettingsAuthSlot)
		if err != nil {
			return err
		}
		authKeyNo, err := slotKeyNo(changeKeySettingsAuthSlot)
		if err != nil {
			return err
		}

		conn, client, err := connectClient(cfg)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := client.SelectApplication(desfire.ApplicationID(changeKeySettingsAppID)); err != nil {
			return fmt.Errorf("select application: %w", err)
		}
		if err := client.Authenticate(authKeyNo, authKey); err != nil {
			return fmt.Errorf("authenticate with slot %s: %w", changeKeySettingsAuthSlot, err)
		}
		if err := client.ChangeKeySettings(changeKeySettingsNewValue); err != nil {
			return fmt.Errorf("change key settings: %w", err)
		}
		fmt.Printf("Changed key settings on application %06X to %02X\n", changeKeySettingsAppID, changeKeySettingsNewValue)
		return nil
	},
}

var (
	keyVersionAppID uint32
)

var keyVersionCmd = &cobra.Command{
	Use:   "key-version <key-no>",
	Short: "Show a key slot's version byte",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keyNo, err := slotKeyNo(args[0])
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		conn, client, err := connectClient(cfg)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := client.SelectApplication(desfire.ApplicationID(keyVersionAppID)); err != nil {
			return fmt.Errorf("select application: %w", err)
		}
		version, err := client.GetKeyVersion(keyNo)
		if err != nil {
			return fmt.Errorf("get key version: %w", err)
		}
		fmt.Printf("Key %d version: %d\n", keyNo, version)
		return nil
	},
}

var keySettingsAppID uint32

var keySettingsCmd = &cobra.Command{
	Use:   "key-settings",
	Short: "Show the selected application's key settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		conn, client, err := connectClient(cfg)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := client.SelectApplication(desfire.ApplicationID(keySettingsAppID)); err != nil {
			return fmt.Errorf("select application: %w", err)
		}
		settings, countAndType, err := client.GetKeySettings()
		if err != nil {
			return fmt.Errorf("get key settings: %w", err)
		}
		printKeySettings(settings, countAndType)
		return nil
	},
}

func init() {
	changeKeyCmd.Flags().Uint32Var(&changeKeyAppID, "aid", 0, "application ID to select")
	changeKeyCmd.Flags().StringVar(&changeKeyAuthSlot, "auth", "", "key slot to authenticate with (required)")
	changeKeyCmd.Flags().StringVar(&changeKeyNewSlot, "new-key", "", "key slot holding the new key material (required)")
	changeKeyCmd.Flags().StringVar(&changeKeyOldSlot, "old-key", "", "key slot holding the current key material for the slot being changed (required unless changing the authenticated slot itself)")
	changeKeyCmd.MarkFlagRequired("auth")
	changeKeyCmd.MarkFlagRequired("new-key")

	changeKeySettingsCmd.Flags().Uint32Var(&changeKeySettingsAppID, "aid", 0, "application ID to select")
	changeKeySettingsCmd.Flags().StringVar(&changeKeySettingsAuthSlot, "auth", "", "key slot to authenticate with (required)")
	changeKeySettingsCmd.Flags().Uint8Var(&changeKeySettingsNewValue, "value", 0x0F, "new key settings byte")
	changeKeySettingsCmd.MarkFlagRequired("auth")

	keyVersionCmd.Flags().Uint32Var(&keyVersionAppID, "aid", 0, "application ID to select")
	keySettingsCmd.Flags().Uint32Var(&keySettingsAppID, "aid", 0, "application ID to select")

	rootCmd.AddCommand(changeKeyCmd, changeKeySettingsCmd, keyVersionCmd, keySettingsCmd)
}
