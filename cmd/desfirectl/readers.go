package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nfc-tools/desfire-go/internal/pcsc"
)

var readersCmd = &cobra.Command{
	Use:   "readers",
	Short: "List available PC/SC readers",
	RunE: func(cmd *cobra.Command, args []string) error {
		readers, err := pcsc.ListReaders()
		if err != nil {
			return fmt.Errorf("list readers: %w", err)
		}
		printReaders(readers)
		return nil
	},
}

func printReaders(readers []string) {
	if len(readers) == 0 {
		fmt.Println("No PC/SC readers found.")
		return
	}
	t := newTable("READERS")
	t.AppendHeader(table.Row{"Index", "Name"})
	for i, r := range readers {
		t.AppendRow(table.Row{i, r})
	}
	t.Render()
}

func init() {
	rootCmd.AddCommand(readersCmd)
}
