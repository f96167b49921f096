package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nfc-tools/desfire-go/pkg/desfire"
)

var filesAppID uint32

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List file IDs in the currently selected application",
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

		if err := client.SelectApplication(desfire.ApplicationID(filesAppID)); err != nil {
			return fmt.Errorf("select application: %w", err)
		}
		ids, err := client.GetFileIDs()
		if err != nil {
			return fmt.Errorf("get file ids: %w", err)
		}
		printFileIDs(ids)
		return nil
	},
}

var fileSettingsAppID uint32

var fileSettingsCmd = &cobra.Command{
	Use:   "file-settings <file-id>",
	Short: "Show a file's settings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fileID, err := parseFileID(args[0])
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

		if err := client.SelectApplication(desfire.ApplicationID(fileSettingsAppID)); err != nil {
			return fmt.Errorf("select application: %w", err)
		}
		fs, err := client.GetFileSettings(fileID)
		if err != nil {
			return fmt.Errorf("get file settings: %w", err)
		}
		printFileSettings(fileID, fs)
		return nil
	},
}

var (
	readAppID    uint32
	readOffset   int
	readLength   int
	readCommMode string
	readAuthSlot string
)

var readCmd = &cobra.Command{
	Use:   "read <file-id>",
	Short: "Read data from a standard/backup data file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fileID, err := parseFileID(args[0])
		if err != nil {
			return err
		}
		mode, err := commModeByName(readCommMode)
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

		if err := client.SelectApplication(desfire.ApplicationID(readAppID)); err != nil {
			return fmt.Errorf("select application: %w", err)
		}
		if readAuthSlot != "" {
			key, err := loadSlotKey(cfg, readAuthSlot)
			if err != nil {
				return err
			}
			keyNo, err := slotKeyNo(readAuthSlot)
			if err != nil {
				return err
			}
			if err := client.Authenticate(keyNo, key); err != nil {
				return fmt.Errorf("authenticate: %w", err)
			}
		}

		data, err := client.ReadData(fileID, readOffset, readLength, mode)
		if err != nil {
			return fmt.Errorf("read data: %w", err)
		}
		fmt.Println(hex.EncodeToString(data))
		return nil
	},
}

func init() {
	filesCmd.Flags().Uint32Var(&filesAppID, "aid", 0, "application ID to select")
	fileSettingsCmd.Flags().Uint32Var(&fileSettingsAppID, "aid", 0, "application ID to select")

	readCmd.Flags().Uint32Var(&readAppID, "aid", 0, "application ID to select")
	readCmd.Flags().IntVar(&readOffset, "offset", 0, "byte offset to read from")
	readCmd.Flags().IntVar(&readLength, "length", 0, "number of bytes to read (0 = to end of file)")
	readCmd.Flags().StringVar(&readCommMode, "mode", "plain", "communication mode: plain, maced, enciphered, plain-mac")
	readCmd.Flags().StringVar(&readAuthSlot, "auth", "", "key slot to authenticate with before reading (optional)")

	rootCmd.AddCommand(filesCmd, fileSettingsCmd, readCmd)
}

func parseFileID(s string) (byte, error) {
	var v uint32
	if _, err := fmt.Sscanf(s, "%d", &v); err != nil || v > 0xFF {
		return 0, fmt.Errorf("desfirectl: invalid file id %q", s)
	}
	return byte(v), nil
}

func commModeByName(name string) (desfire.CommMode, error) {
	switch name {
	case "plain":
		return desfire.CommPlain, nil
	case "maced":
		return desfire.CommMACed, nil
	case "enciphered":
		return desfire.CommEnciphered, nil
	case "plain-mac":
		return desfire.CommPlainMAC, nil
	default:
		return 0, fmt.Errorf("desfirectl: unknown comm mode %q", name)
	}
}
