package desfire

import "fmt"

// SelectApplication selects aid as the application all subsequent file
// commands apply to. This unconditionally clears authentication, even
// when aid equals the already-selected application, since the card
// itself resets its own authentication state on SELECT_APPLICATION.
func (c *DesfireClient) SelectApplication(aid ApplicationID) error {
	_, err := c.secureCommand(insSelectApplication, nil, aid.marshalLE(), CommPlain)
	c.clearAuthentication()
	if err != nil {
		return err
	}
	c.currentApp = aid
	return nil
}

// GetApplicationIDs enumerates the AIDs present at PICC level. The
// response is 3*N bytes, each consecutive triple a little-endian 24-bit
// AID.
func (c *DesfireClient) GetApplicationIDs() ([]ApplicationID, error) {
	payload, err := c.secureCommand(insGetApplicationIDs, nil, nil, CommPlain)
	if err != nil {
		return nil, err
	}
	if len(payload)%3 != 0 {
		return nil, fmt.Errorf("desfire: GetApplicationIDs response length %d not a multiple of 3", len(payload))
	}
	ids := make([]ApplicationID, 0, len(payload)/3)
	for i := 0; i < len(payload); i += 3 {
		ids = append(ids, unmarshalAppIDLE(payload[i:i+3]))
	}
	return ids, nil
}

// KeyTypeFlag encodes the key type of a newly created application's keys
// in the upper nibble of CreateApplication's key-count byte.
type KeyTypeFlag byte

const (
	KeyTypeFlagDES KeyTypeFlag = 0x00
	KeyTypeFlag3K3 KeyTypeFlag = 0x40
	KeyTypeFlagAES KeyTypeFlag = 0x80
)

// CreateApplication creates an application with the given AID,
// key-settings byte, and key count/type. Requires an authenticated
// session; MACed.
func (c *DesfireClient) CreateApplication(aid ApplicationID, keySettings byte, keyCount byte, keyType KeyTypeFlag) error {
	data := append(aid.marshalLE(), keySettings, keyCount|byte(keyType))
	_, err := c.secureCommand(insCreateApplication, nil, data, CommMACed)
	return err
}

// DeleteApplication removes the application identified by aid. Requires
// an authenticated session.
func (c *DesfireClient) DeleteApplication(aid ApplicationID) error {
	_, err := c.secureCommand(insDeleteApplication, nil, aid.marshalLE(), CommMACed)
	return err
}

// GetFileIDs lists the file numbers present in the currently selected
// application.
func (c *DesfireClient) GetFileIDs() ([]byte, error) {
	return c.secureCommand(insGetFileIDs, nil, nil, CommPlain)
}

// GetFileSettings retrieves and parses the settings blob for fileID.
func (c *DesfireClient) GetFileSettings(fileID byte) (*FileSettings, error) {
	payload, err := c.secureCommand(insGetFileSettings, []byte{fileID}, nil, CommPlain)
	if err != nil {
		return nil, err
	}
	return ParseFileSettings(payload)
}

// ReadData reads length bytes starting at offset from fileID, using the
// given communication mode; the file's actual access-rights-configured
// mode is not knowable from the client alone. length == 0 means "to end
// of file".
func (c *DesfireClient) ReadData(fileID byte, offset, length int, mode CommMode) ([]byte, error) {
	header := []byte{fileID}
	params := append(u24LE(uint32(offset)), u24LE(uint32(length))...)
	return c.secureCommand(insReadData, header, params, mode)
}

// ChangeKeySettings updates the key-settings byte of the currently
// selected application (or PICC, at level 0). Requires an authenticated
// session.
func (c *DesfireClient) ChangeKeySettings(newSettings byte) error {
	_, err := c.secureCommand(insChangeKeySettings, nil, []byte{newSettings}, CommEnciphered)
	return err
}

// GetKeyVersion retrieves the version byte of keyNo in the currently
// selected application.
func (c *DesfireClient) GetKeyVersion(keyNo byte) (byte, error) {
	payload, err := c.secureCommand(insGetKeyVersion, []byte{keyNo}, nil, CommPlain)
	if err != nil {
		return 0, err
	}
	if len(payload) < 1 {
		return 0, fmt.Errorf("desfire: GetKeyVersion response empty")
	}
	return payload[0], nil
}

// GetKeySettings retrieves the key-settings byte (and packed key
// count/type) of the currently selected application.
func (c *DesfireClient) GetKeySettings() (KeySettings, byte, error) {
	payload, err := c.secureCommand(insGetKeySettings, nil, nil, CommPlain)
	if err != nil {
		return 0, 0, err
	}
	if len(payload) < 2 {
		return 0, 0, fmt.Errorf("desfire: GetKeySettings response too short")
	}
	return KeySettings(payload[0]), payload[1], nil
}

// FormatPICC erases all applications and files, returning the card to
// its factory state. Requires authentication with the PICC master key;
// leaves the client unauthenticated at PICC level.
func (c *DesfireClient) FormatPICC() error {
	_, err := c.secureCommand(insFormatPICC, nil, nil, CommMACed)
	c.clearAuthentication()
	if err != nil {
		return err
	}
	c.currentApp = 0
	return nil
}

// GetVersion retrieves the card's hardware/software/production
// information across three 0xAF-continued frames and parses it into a
// CardVersion.
func (c *DesfireClient) GetVersion() (*CardVersion, error) {
	payload, err := c.secureCommand(insGetVersion, nil, nil, CommPlain)
	if err != nil {
		return nil, err
	}
	if len(payload) != 28 {
		return nil, fmt.Errorf("desfire: GetVersion expected 28 bytes total, got %d", len(payload))
	}

	hw, sw, prod := payload[0:7], payload[7:14], payload[14:28]
	v := &CardVersion{
		HWVendorID: hw[0], HWType: hw[1], HWSubType: hw[2],
		HWMajorVer: hw[3], HWMinorVer: hw[4], HWStorageSize: hw[5], HWProtocol: hw[6],
		SWVendorID: sw[0], SWType: sw[1], SWSubType: sw[2],
		SWMajorVer: sw[3], SWMinorVer: sw[4], SWStorageSize: sw[5], SWProtocol: sw[6],
		FabKey:   prod[12],
		ProdYear: prod[13] >> 4,
		ProdWeek: prod[13] & 0x0F,
	}
	copy(v.UID[:], prod[0:7])
	copy(v.BatchNo[:], prod[7:12])
	return v, nil
}
