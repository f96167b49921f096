package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nfc-tools/desfire-go/pkg/desfire"
)

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "List application IDs present at PICC level",
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

		ids, err := client.GetApplicationIDs()
		if err != nil {
			return fmt.Errorf("get application ids: %w", err)
		}
		printApplicationIDs(ids)
		return nil
	},
}

var (
	createAppKeySettings uint8
	createAppKeyCount    uint8
	createAppKeyType     string
)

var createAppCmd = &cobra.Command{
	Use:   "create-app <aid>",
	Short: "Create an application at PICC level",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		aid, err := parseAID(args[0])
		if err != nil {
			return err
		}
		flag, err := keyTypeFlagByName(createAppKeyType)
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

		if err := client.CreateApplication(aid, createAppKeySettings, createAppKeyCount, flag); err != nil {
			return fmt.Errorf("create application: %w", err)
		}
		fmt.Printf("Created application %06X\n", uint32(aid))
		return nil
	},
}

var deleteAppCmd = &cobra.Command{
	Use:   "delete-app <aid>",
	Short: "Delete an application",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		aid, err := parseAID(args[0])
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

		if err := client.DeleteApplication(aid); err != nil {
			return fmt.Errorf("delete application: %w", err)
		}
		fmt.Printf("Deleted application %06X\n", uint32(aid))
		return nil
	},
}

func init() {
	createAppCmd.Flags().Uint8Var(&createAppKeySettings, "key-settings", 0x0F, "application key settings byte")
	createAppCmd.Flags().Uint8Var(&createAppKeyCount, "key-count", 1, "number of keys in the new application")
	createAppCmd.Flags().StringVar(&createAppKeyType, "key-type", "aes128", "key type: des, 3k3des, aes128")

	rootCmd.AddCommand(appsCmd, createAppCmd, deleteAppCmd)
}

func parseAID(s string) (desfire.ApplicationID, error) {
	var v uint32
	if _, err := fmt.Sscanf(s, "%06X", &v); err != nil {
		return 0, fmt.Errorf("desfirectl: invalid AID %q, want 6 hex digits", s)
	}
	return desfire.ApplicationID(v), nil
}

func keyTypeFlagByName(name string) (desfire.KeyTypeFlag, error) {
	switch name {
	case "des":
		return desfire.KeyTypeFlagDES, nil
	case "3k3des":
		return desfire.KeyTypeFlag3K3, nil
	case "aes128":
		return desfire.KeyTypeFlagAES, nil
	default:
		return 0, fmt.Errorf("desfirectl: unknown key type %q (want des, 3k3des, aes128)", name)
	}
}
