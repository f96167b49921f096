package desfire

import "fmt"

// KeyType identifies one of the four symmetric credential families the
// DESFire EV1 command set supports. Each type carries its own block size
// and authentication instruction byte, known at compile time so a Key's
// cipher behavior is never inferred from the length of its raw bytes.
type KeyType int

const (
	KeyTypeDES KeyType = iota
	KeyTypeTDES2
	KeyTypeTDES3
	KeyTypeAES128
)

func (t KeyType) String() string {
	switch t {
	case KeyTypeDES:
		return "DES"
	case KeyTypeTDES2:
		return "2K-3DES"
	case KeyTypeTDES3:
		return "3K-3DES"
	case KeyTypeAES128:
		return "AES-128"
	default:
		return fmt.Sprintf("KeyType(%d)", int(t))
	}
}

// BlockSize returns the cipher block size for the key type: 8 for any DES
// variant, 16 for AES.
func (t KeyType) BlockSize() int {
	if t == KeyTypeAES128 {
		return 16
	}
	return 8
}

// KeyLength returns the expected raw key length in bytes.
func (t KeyType) KeyLength() int {
	switch t {
	case KeyTypeDES:
		return 8
	case KeyTypeTDES2:
		return 16
	case KeyTypeTDES3:
		return 24
	case KeyTypeAES128:
		return 16
	default:
		return 0
	}
}

// changeKeyTypeFlag returns the upper-nibble type flag OR-ed into the
// ChangeKey key-number byte when changing a PICC master key:
// 0x00 for DES/2K-3DES, 0x40 for 3K-3DES, 0x80 for AES. At
// application level this flag is always zero since the application's key
// type was fixed at creation time.
func (t KeyType) changeKeyTypeFlag() byte {
	switch t {
	case KeyTypeTDES3:
		return 0x40
	case KeyTypeAES128:
		return 0x80
	default:
		return 0x00
	}
}

// authInstruction returns the first-pass AUTH instruction byte used to
// begin a three-pass exchange with a key of this type.
func (t KeyType) authInstruction() byte {
	switch t {
	case KeyTypeAES128:
		return insAuthenticateAES
	case KeyTypeTDES2, KeyTypeTDES3:
		return insAuthenticateISO
	default:
		return insAuthenticateLegacy
	}
}
