package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Read the card's hardware/software/production version",
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

		v, err := client.GetVersion()
		if err != nil {
			return fmt.Errorf("get version: %w", err)
		}
		printCardVersion(v)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
