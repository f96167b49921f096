// Command desfirectl is a command-line client for MIFARE DESFire EV1
// cards over a PC/SC reader: select applications, manage keys, and list
// and read files, using keys from a single YAML configuration.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
