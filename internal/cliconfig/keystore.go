package cliconfig

import (
	"bufio"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/term"

	"github.com/nfc-tools/desfire-go/pkg/desfire"
)

const pbkdf2Iterations = 100000

// keyTypeByName maps a config "type" string to a desfire.KeyType,
// mirroring the declarations the YAML schema accepts.
func keyTypeByName(name string) (desfire.KeyType, error) {
	switch name {
	case "des":
		return desfire.KeyTypeDES, nil
	case "2k3des":
		return desfire.KeyTypeTDES2, nil
	case "3k3des":
		return desfire.KeyTypeTDES3, nil
	case "aes128":
		return desfire.KeyTypeAES128, nil
	default:
		return 0, fmt.Errorf("cliconfig: unknown key type %q", name)
	}
}

// LoadKey reads slot's key file and constructs a *desfire.Key of its
// declared type. A file beginning with the line "encrypted:" holds a
// passphrase-protected key (see EncryptKeyFile) and prompts on the
// controlling terminal; any other file is read as a single line of hex.
func LoadKey(kc KeySlotConfig) (*desfire.Key, error) {
	keyType, err := keyTypeByName(kc.Type)
	if err != nil {
		return nil, err
	}

	raw, err := loadKeyBytes(kc.File)
	if err != nil {
		return nil, fmt.Errorf("load key file %s: %w", kc.File, err)
	}
	return desfire.NewKey(keyType, raw, kc.Version)
}

func loadKeyBytes(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "encrypted:") {
			return decryptKeyLine(line)
		}
		key, err := hex.DecodeString(line)
		if err != nil {
			return nil, fmt.Errorf("invalid hex key: %w", err)
		}
		return key, nil
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nil, errors.New("key file is empty")
}

// decryptKeyLine parses "encrypted:<saltHex>:<nonceHex>:<ciphertextHex>"
// and decrypts it with a passphrase read from the controlling terminal.
func decryptKeyLine(line string) ([]byte, error) {
	parts := strings.Split(line, ":")
	if len(parts) != 4 {
		return nil, fmt.Errorf("malformed encrypted key line (want encrypted:salt:nonce:ciphertext)")
	}
	salt, err := hex.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid salt: %w", err)
	}
	nonce, err := hex.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("invalid nonce: %w", err)
	}
	ciphertext, err := hex.DecodeString(parts[3])
	if err != nil {
		return nil, fmt.Errorf("invalid ciphertext: %w", err)
	}

	passphrase, err := promptPassphrase("Key passphrase: ")
	if err != nil {
		return nil, err
	}
	gcm, err := gcmFromPassphrase(passphrase, salt)
	if err != nil {
		return nil, err
	}
	return gcm.Open(nil, nonce, ciphertext, nil)
}

// EncryptKeyFile produces the "encrypted:..." line format decryptKeyLine
// consumes, for provisioning a new passphrase-protected key file.
func EncryptKeyFile(keyBytes, salt []byte, passphrase []byte) (string, error) {
	gcm, err := gcmFromPassphrase(passphrase, salt)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	ciphertext := gcm.Seal(nil, nonce, keyBytes, nil)
	return fmt.Sprintf("encrypted:%s:%s:%s", hex.EncodeToString(salt), hex.EncodeToString(nonce), hex.EncodeToString(ciphertext)), nil
}

func gcmFromPassphrase(passphrase, salt []byte) (cipher.AEAD, error) {
	derived := pbkdf2.Key(passphrase, salt, pbkdf2Iterations, 32, sha256.New)
	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// promptPassphrase reads a passphrase from the controlling terminal with
// input echo disabled.
func promptPassphrase(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	passphrase, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("read passphrase: %w", err)
	}
	return passphrase, nil
}
