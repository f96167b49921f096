package desfire

import (
	"bytes"
	"testing"
)

func TestGetVersionReassemblesThreeFrames(t *testing.T) {
	hw := []byte{0x04, 0x01, 0x01, 0x01, 0x00, 0x1A, 0x05}
	sw := []byte{0x04, 0x01, 0x01, 0x01, 0x00, 0x1A, 0x05}
	prod := []byte{
		0x04, 0x78, 0x12, 0x34, 0x56, 0x78, 0x9A, // UID (7)
		0x11, 0x22, 0x33, 0x44, 0x55, // BatchNo (5)
		0x01,       // FabKey
		0x42,       // ProdYear/Week BCD: year nibble 4, week nibble 2
	}

	card := &fakeCard{responses: [][]byte{
		nativeResponse(StatusAdditionalFrame, hw),
		nativeResponse(StatusAdditionalFrame, sw),
		nativeResponse(StatusOK, prod),
	}}
	client := NewClient(card, FramingNative)

	v, err := client.GetVersion()
	if err != nil {
		t.Fatalf("GetVersion: %v", err)
	}
	if v.HWVendorID != 0x04 || v.SWStorageSize != 0x1A {
		t.Fatalf("unexpected hw/sw fields: %+v", v)
	}
	if !bytes.Equal(v.UID[:], prod[0:7]) {
		t.Fatalf("UID = %x, want %x", v.UID[:], prod[0:7])
	}
	if !bytes.Equal(v.BatchNo[:], prod[7:12]) {
		t.Fatalf("BatchNo = %x, want %x", v.BatchNo[:], prod[7:12])
	}
	if v.FabKey != 0x01 {
		t.Fatalf("FabKey = %x, want 0x01", v.FabKey)
	}
	if v.ProdYear != 0x04 || v.ProdWeek != 0x02 {
		t.Fatalf("ProdYear/Week = %x/%x, want 4/2", v.ProdYear, v.ProdWeek)
	}
}

func TestGetVersionRejectsWrongTotalLength(t *testing.T) {
	card := &fakeCard{responses: [][]byte{
		nativeResponse(StatusOK, []byte{0x01, 0x02, 0x03}),
	}}
	client := NewClient(card, FramingNative)
	if _, err := client.GetVersion(); err == nil {
		t.Fatalf("expected an error for a short GetVersion payload")
	}
}

func TestFormatPICCClearsAuthenticationAndApplication(t *testing.T) {
	// FormatPICC is MACed: mirror the request and response CMACs so the
	// card's reply carries the tag the client verifies.
	mirror, _ := NewKey(KeyTypeAES128, bytes.Repeat([]byte{0x01}, 16), 0)
	if _, err := mirror.CalculateCmac([]byte{insFormatPICC}); err != nil {
		t.Fatalf("mirror request tag: %v", err)
	}
	respTag, err := mirror.CalculateCmac([]byte{byte(StatusOK)})
	if err != nil {
		t.Fatalf("mirror response tag: %v", err)
	}

	card := &fakeCard{responses: [][]byte{nativeResponse(StatusOK, respTag)}}
	client := NewClient(card, FramingNative)
	client.state = stateAuthenticated
	client.sessionKey, _ = NewKey(KeyTypeAES128, bytes.Repeat([]byte{0x01}, 16), 0)
	client.currentApp = ApplicationID(0x112233)

	if err := client.FormatPICC(); err != nil {
		t.Fatalf("FormatPICC: %v", err)
	}
	if client.Authenticated() {
		t.Fatalf("FormatPICC must clear authentication")
	}
	if client.CurrentApplication() != 0 {
		t.Fatalf("FormatPICC must reset to PICC level, got %v", client.CurrentApplication())
	}
}

func TestReadDataZeroLengthMeansToEnd(t *testing.T) {
	card := &fakeCard{responses: [][]byte{nativeResponse(StatusOK, []byte{0x01, 0x02})}}
	client := NewClient(card, FramingNative)

	out, err := client.ReadData(0x01, 0, 0, CommPlain)
	if err != nil {
		t.Fatalf("ReadData: %v", err)
	}
	if !bytes.Equal(out, []byte{0x01, 0x02}) {
		t.Fatalf("ReadData payload = %x, want 0102", out)
	}
	sent := card.recorded[0]
	// ins(1) + fileID(1) + offset(3) + length(3) = 8 bytes
	if len(sent) != 8 {
		t.Fatalf("ReadData APDU length = %d, want 8", len(sent))
	}
	if !bytes.Equal(sent[2:8], make([]byte, 6)) {
		t.Fatalf("offset/length must both be zero-encoded for a full-file read, got %x", sent[2:8])
	}
}
