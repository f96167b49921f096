package desfire

import (
	"bytes"
	"testing"
)

func TestChangeKeySameKeyClearsAuthentication(t *testing.T) {
	sessionRaw := bytes.Repeat([]byte{0x11}, 16)
	card := &fakeCard{responses: [][]byte{nativeResponse(StatusOK, nil)}}
	client := NewClient(card, FramingNative)
	client.state = stateAuthenticated
	client.sessionKey, _ = NewKey(KeyTypeAES128, sessionRaw, 0)
	client.lastAuthKeyNo = 2

	newKey, err := NewKey(KeyTypeAES128, bytes.Repeat([]byte{0x22}, 16), 1)
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}

	if err := client.ChangeKey(2, newKey, nil); err != nil {
		t.Fatalf("ChangeKey: %v", err)
	}
	if client.Authenticated() {
		t.Fatalf("a same-key ChangeKey must clear authentication")
	}

	sent := card.recorded[0]
	if sent[0] != insChangeKey {
		t.Fatalf("instruction byte = 0x%02X, want ChangeKey", sent[0])
	}
	// At PICC level the key number byte carries the new key's type flag
	// in its upper nibble; AES-128 flags 0x80.
	if sent[1] != 0x82 {
		t.Fatalf("key number byte = 0x%02X, want 0x82", sent[1])
	}
	if (len(sent)-2)%16 != 0 {
		t.Fatalf("cryptogram length %d not AES-block-aligned", len(sent)-2)
	}
}

func TestChangeKeyDifferentKeyRequiresOldKey(t *testing.T) {
	card := &fakeCard{}
	client := NewClient(card, FramingNative)
	client.state = stateAuthenticated
	client.currentApp = 0x112233
	client.sessionKey, _ = NewKey(KeyTypeAES128, bytes.Repeat([]byte{0x11}, 16), 0)
	client.lastAuthKeyNo = 0

	newKey, _ := NewKey(KeyTypeAES128, bytes.Repeat([]byte{0x22}, 16), 1)
	if err := client.ChangeKey(3, newKey, nil); err == nil {
		t.Fatalf("expected an error when changing a different key slot without its current value")
	}
}

func TestChangeKeyAtPICCLevelIsAlwaysSameKey(t *testing.T) {
	// At PICC level every change replaces the master key that
	// authenticated the session, even when the key number argument
	// differs, so no XOR against an old key is required and none need
	// be supplied.
	card := &fakeCard{responses: [][]byte{nativeResponse(StatusOK, nil)}}
	client := NewClient(card, FramingNative)
	client.state = stateAuthenticated
	client.sessionKey, _ = NewKey(KeyTypeAES128, bytes.Repeat([]byte{0x11}, 16), 0)
	client.lastAuthKeyNo = 3

	newKey, _ := NewKey(KeyTypeAES128, bytes.Repeat([]byte{0x22}, 16), 1)
	if err := client.ChangeKey(0, newKey, nil); err != nil {
		t.Fatalf("ChangeKey at PICC level with differing key_no should not require oldKey: %v", err)
	}
	if client.Authenticated() {
		t.Fatalf("same-key ChangeKey must clear authentication")
	}
}

func TestChangeKeyDifferentKeyVerifiesResponseMAC(t *testing.T) {
	sessionRaw := bytes.Repeat([]byte{0x11}, 16)
	hostSession, _ := NewKey(KeyTypeAES128, sessionRaw, 0)
	mirror, _ := NewKey(KeyTypeAES128, sessionRaw, 0)

	newKey, _ := NewKey(KeyTypeAES128, bytes.Repeat([]byte{0x22}, 16), 1)
	oldKey, _ := NewKey(KeyTypeAES128, bytes.Repeat([]byte{0x33}, 16), 0)

	// Mirror the cryptogram the client will send so the mirror session
	// key's running IV advances identically, then compute the response
	// MAC the card would return over the bare status byte.
	cryptogram := xorExtend(newKey.Bytes(), oldKey.Bytes())
	cryptogram = append(cryptogram, newKey.Version())
	crcMsg := append([]byte{insChangeKey, 0x03}, cryptogram...)
	cryptogram = append(cryptogram, crcBytesFor(KeyTypeAES128, crcMsg)...)
	cryptogram = append(cryptogram, crcBytesFor(KeyTypeAES128, newKey.Bytes())...)
	if _, err := mirror.PaddedEncrypt(cryptogram); err != nil {
		t.Fatalf("mirror encrypt: %v", err)
	}
	respTag, err := mirror.CalculateCmac([]byte{byte(StatusOK)})
	if err != nil {
		t.Fatalf("mirror response tag: %v", err)
	}

	card := &fakeCard{responses: [][]byte{nativeResponse(StatusOK, respTag)}}
	client := NewClient(card, FramingNative)
	client.state = stateAuthenticated
	client.currentApp = 0x112233
	client.sessionKey = hostSession
	client.lastAuthKeyNo = 0

	if err := client.ChangeKey(3, newKey, oldKey); err != nil {
		t.Fatalf("ChangeKey: %v", err)
	}
	if !client.Authenticated() {
		t.Fatalf("a different-key ChangeKey must leave the session authenticated")
	}
}

func TestChangeKeyRequiresAuthenticatedSession(t *testing.T) {
	card := &fakeCard{}
	client := NewClient(card, FramingNative)
	newKey, _ := NewKey(KeyTypeAES128, bytes.Repeat([]byte{0x22}, 16), 1)
	if err := client.ChangeKey(0, newKey, nil); !IsAuthenticationError(err) {
		t.Fatalf("expected *AuthenticationError, got %v", err)
	}
}
