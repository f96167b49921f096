package desfire

import "fmt"

// ChangeKey replaces keyNo's credential in the currently selected
// application (or at PICC level) with newKey, authenticating the
// cryptogram under the current session key.
//
// When keyNo differs from the key used to authenticate the session, the
// cryptogram XORs the new key's bytes against the current value of that
// key slot (oldKey), appends a CRC over the instruction, key number and
// XORed bytes, and then a second CRC over the bare new key bytes so the
// card can check the key it recovers after removing the XOR.
// When keyNo equals the authenticating key ("same-key" change), no XOR is
// applied and only the CRC over the instruction, key number and new key
// bytes is appended; the CRC over the bare new key is omitted.
//
// A successful same-key ChangeKey invalidates the current session: the
// card itself drops authentication since the key it authenticated with
// no longer exists.
func (c *DesfireClient) ChangeKey(keyNo byte, newKey *Key, oldKey *Key) error {
	if c.sessionKey == nil {
		return &AuthenticationError{Reason: "ChangeKey requires an authenticated session"}
	}
	// At PICC level the master key slot is singular, so changing it
	// always replaces the very key that authenticated the session. At
	// application level a same-key change happens only when the slot
	// being changed is the one that authenticated.
	sameKey := c.currentApp == 0 || keyNo == c.lastAuthKeyNo

	keyNoByte := keyNo
	if c.currentApp == 0 {
		keyNoByte |= newKey.Type().changeKeyTypeFlag()
	}
	header := []byte{keyNoByte}

	newBytes := newKey.Bytes()
	var cryptogram []byte
	if sameKey {
		cryptogram = append([]byte(nil), newBytes...)
	} else {
		if oldKey == nil {
			return fmt.Errorf("desfire: ChangeKey to a different key slot requires the slot's current key")
		}
		cryptogram = xorExtend(newBytes, oldKey.Bytes())
	}
	if newKey.Type() == KeyTypeAES128 {
		cryptogram = append(cryptogram, newKey.Version())
	}

	crcMsg := append([]byte{insChangeKey}, header...)
	crcMsg = append(crcMsg, cryptogram...)
	cryptogram = append(cryptogram, crcBytesFor(c.sessionKey.Type(), crcMsg)...)

	if !sameKey {
		cryptogram = append(cryptogram, crcBytesFor(c.sessionKey.Type(), newBytes)...)
	}

	cipherText, err := c.sessionKey.PaddedEncrypt(cryptogram)
	if err != nil {
		return err
	}

	wireParams := append(append([]byte(nil), header...), cipherText...)
	payload, status, err := c.exchangeLoop(insChangeKey, wireParams, false)
	if err != nil {
		return err
	}
	if status != StatusOK {
		return &ProtocolError{Command: insChangeKey, Status: status}
	}

	if sameKey {
		// The card drops its own authentication once the key the session
		// was built on no longer exists, so there is no response MAC to
		// verify.
		c.clearAuthentication()
		return nil
	}
	if _, err := c.stripAndVerifyTag(payload, status, 8); err != nil {
		if IsIntegrityError(err) {
			c.clearAuthentication()
		}
		return err
	}
	return nil
}
