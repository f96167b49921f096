package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nfc-tools/desfire-go/internal/cliconfig"
)

var keygenOut string

var keygenCmd = &cobra.Command{
	Use:   "keygen <hex-key>",
	Short: "Write a passphrase-protected key file, in the format LoadKey understands",
	Long: `keygen prompts twice for a passphrase on the controlling terminal, then
writes an "encrypted:<salt>:<nonce>:<ciphertext>" line to --out that
LoadKey transparently decrypts at use time.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keyBytes, err := hex.DecodeString(args[0])
		if err != nil {
			return fmt.Errorf("invalid hex key: %w", err)
		}

		passphrase, err := readPassphraseTwice()
		if err != nil {
			return err
		}

		salt := make([]byte, 16)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return fmt.Errorf("generate salt: %w", err)
		}

		line, err := cliconfig.EncryptKeyFile(keyBytes, salt, passphrase)
		if err != nil {
			return fmt.Errorf("encrypt key: %w", err)
		}

		if keygenOut == "" || keygenOut == "-" {
			fmt.Println(line)
			return nil
		}
		if err := os.WriteFile(keygenOut, []byte(line+"\n"), 0o600); err != nil {
			return fmt.Errorf("write %s: %w", keygenOut, err)
		}
		fmt.Printf("Wrote %s\n", keygenOut)
		return nil
	},
}

func readPassphraseTwice() ([]byte, error) {
	fmt.Fprint(os.Stderr, "New passphrase: ")
	fd := int(os.Stdin.Fd())
	p1, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("read passphrase: %w", err)
	}
	fmt.Fprint(os.Stderr, "Confirm passphrase: ")
	p2, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("read passphrase: %w", err)
	}
	if string(p1) != string(p2) {
		return nil, fmt.Errorf("passphrases do not match")
	}
	return p1, nil
}

func init() {
	keygenCmd.Flags().StringVar(&keygenOut, "out", "-", "output path (\"-\" prints to stdout)")
	rootCmd.AddCommand(keygenCmd)
}
