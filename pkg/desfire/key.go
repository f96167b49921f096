package desfire

import (
	"crypto/subtle"
	"fmt"
)

// Key is an opaque symmetric credential: raw key bytes, its declared
// type, a version tag, the CBC running IV carried across a session, and
// the CMAC subkeys derived from the key bytes. It is re-derived in place
// into a session key by DesfireClient.Authenticate once mutual
// authentication succeeds.
type Key struct {
	keyType    KeyType
	keyBytes   []byte
	keyVersion byte
	iv         []byte
	cmacSub1   []byte
	cmacSub2   []byte
}

// NewKey constructs a Key from raw bytes and a declared type. len(keyBytes)
// must equal keyType.KeyLength(). CMAC subkeys are derived immediately:
// they are a pure function of keyBytes and must be recomputed atomically
// with any mutation of it.
func NewKey(keyType KeyType, keyBytes []byte, keyVersion byte) (*Key, error) {
	if len(keyBytes) != keyType.KeyLength() {
		return nil, fmt.Errorf("desfire: %v key must be %d bytes, got %d", keyType, keyType.KeyLength(), len(keyBytes))
	}
	k := &Key{
		keyType:    keyType,
		keyBytes:   append([]byte(nil), keyBytes...),
		keyVersion: keyVersion,
	}
	if err := k.GenerateCmac(); err != nil {
		return nil, err
	}
	k.CipherInit()
	return k, nil
}

// Type reports the key's declared type.
func (k *Key) Type() KeyType { return k.keyType }

// Version reports the key's 8-bit version tag.
func (k *Key) Version() byte { return k.keyVersion }

// Bytes returns a copy of the raw key material.
func (k *Key) Bytes() []byte { return append([]byte(nil), k.keyBytes...) }

// BlockSize returns the key type's cipher block size (8 or 16).
func (k *Key) BlockSize() int { return k.keyType.BlockSize() }

// CipherInit resets the running IV to an all-zero block of the key's
// block size.
func (k *Key) CipherInit() {
	k.iv = make([]byte, k.keyType.BlockSize())
}

// GenerateCmac recomputes the CMAC subkeys from the current key bytes.
// Must be called whenever keyBytes changes; NewKey and the
// authentication session-key derivation both call it for this reason.
func (k *Key) GenerateCmac() error {
	block, err := newCipherBlock(k.keyType, k.keyBytes)
	if err != nil {
		return err
	}
	k.cmacSub1, k.cmacSub2 = deriveCmacSubkeys(block)
	return nil
}

// Encrypt CBC-encrypts plaintext (which must already be block-aligned)
// under the key's current running IV, then advances the IV to the last
// ciphertext block.
func (k *Key) Encrypt(plaintext []byte) ([]byte, error) {
	ct, err := cbcEncrypt(k.keyType, k.keyBytes, k.iv, plaintext)
	if err != nil {
		return nil, err
	}
	k.advanceIV(ct)
	return ct, nil
}

// Decrypt CBC-decrypts ciphertext (which must already be block-aligned)
// under the key's current running IV, then advances the IV to the last
// block of the *input* ciphertext.
func (k *Key) Decrypt(ciphertext []byte) ([]byte, error) {
	pt, err := cbcDecrypt(k.keyType, k.keyBytes, k.iv, ciphertext)
	if err != nil {
		return nil, err
	}
	k.advanceIV(ciphertext)
	return pt, nil
}

// PaddedEncrypt zero-pads plaintext to a multiple of the block size, then
// CBC-encrypts it. Used for ChangeKey cryptograms and other enciphered
// payloads whose length is not naturally block-aligned.
func (k *Key) PaddedEncrypt(plaintext []byte) ([]byte, error) {
	return k.Encrypt(zeroPad(plaintext, k.keyType.BlockSize()))
}

// CalculateCmac computes CMAC(msg) using the key's running IV as the
// initial chaining value, not a fresh IV: this is what binds the tag to
// the session's message history. It advances the running IV to the last
// ciphertext block produced and returns the first 8 bytes of the full
// tag.
func (k *Key) CalculateCmac(msg []byte) ([]byte, error) {
	block, err := newCipherBlock(k.keyType, k.keyBytes)
	if err != nil {
		return nil, err
	}
	tag, newIV := cmacFull(block, k.iv, k.cmacSub1, k.cmacSub2, msg)
	k.iv = newIV
	return truncateTag(tag), nil
}

func (k *Key) advanceIV(lastCiphertext []byte) {
	bs := k.keyType.BlockSize()
	if len(lastCiphertext) < bs {
		return
	}
	k.iv = append([]byte(nil), lastCiphertext[len(lastCiphertext)-bs:]...)
}

// deriveSessionKeyBytes builds the session key byte sequence from the two
// authentication nonces. For any DES/3DES type the low bit of every
// resulting byte is cleared, since the card ignores DES parity bits.
func deriveSessionKeyBytes(t KeyType, rndA, rndB []byte) []byte {
	var out []byte
	switch t {
	case KeyTypeDES, KeyTypeTDES2:
		out = concatBytes(rndA[0:4], rndB[0:4], rndA[4:8], rndB[4:8])
	case KeyTypeTDES3:
		out = concatBytes(rndA[0:4], rndB[0:4], rndA[6:10], rndB[6:10], rndA[12:16], rndB[12:16])
	case KeyTypeAES128:
		out = concatBytes(rndA[0:4], rndB[0:4], rndA[12:16], rndB[12:16])
	}
	if t != KeyTypeAES128 {
		for i := range out {
			out[i] &^= 0x01
		}
	}
	return out
}

func concatBytes(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// reinitAsSessionKey rewrites k in place with newKeyBytes: CMAC subkeys
// are regenerated and the running IV is zeroed. The key type is
// unchanged; a session key always has the same type as the key that
// authenticated it.
func (k *Key) reinitAsSessionKey(newKeyBytes []byte) error {
	k.keyBytes = append([]byte(nil), newKeyBytes...)
	if err := k.GenerateCmac(); err != nil {
		return err
	}
	k.CipherInit()
	return nil
}

// Wipe overwrites the key's secret material with zeros. Called when the
// owning session is destroyed.
func (k *Key) Wipe() {
	subtle.ConstantTimeCopy(1, k.keyBytes, make([]byte, len(k.keyBytes)))
	subtle.ConstantTimeCopy(1, k.cmacSub1, make([]byte, len(k.cmacSub1)))
	subtle.ConstantTimeCopy(1, k.cmacSub2, make([]byte, len(k.cmacSub2)))
}
