package desfire

// DESFire EV1 instruction bytes.
const (
	insAuthenticateLegacy byte = 0x0A // legacy DES AUTH
	insAuthenticateISO    byte = 0x1A // ISO-Auth, 2K/3K-3DES
	insAuthenticateAES    byte = 0xAA // AES-Auth
	insAdditionalFrame    byte = 0xAF // 0xAF continuation

	insGetApplicationIDs  byte = 0x6A
	insSelectApplication  byte = 0x5A
	insCreateApplication  byte = 0xCA
	insDeleteApplication  byte = 0xDA
	insGetFileIDs         byte = 0x6F
	insGetFileSettings    byte = 0xF5
	insReadData           byte = 0xBD
	insChangeKey          byte = 0xC4
	insChangeKeySettings  byte = 0x54
	insGetKeyVersion      byte = 0x64
	insGetKeySettings     byte = 0x45
	insFormatPICC         byte = 0xFC
	insGetVersion         byte = 0x60
)
