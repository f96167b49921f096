package desfire

import (
	"bytes"
	"testing"
)

func TestBuildAPDUNative(t *testing.T) {
	got := buildAPDU(FramingNative, 0x5A, []byte{0x01, 0x02, 0x03})
	want := []byte{0x5A, 0x01, 0x02, 0x03}
	if !bytes.Equal(got, want) {
		t.Fatalf("native APDU = %x, want %x", got, want)
	}
}

func TestBuildAPDUWrapped(t *testing.T) {
	got := buildAPDU(FramingWrapped, 0x5A, []byte{0x01, 0x02, 0x03})
	want := []byte{0x90, 0x5A, 0x00, 0x00, 0x03, 0x01, 0x02, 0x03, 0x00}
	if !bytes.Equal(got, want) {
		t.Fatalf("wrapped APDU = %x, want %x", got, want)
	}

	gotEmpty := buildAPDU(FramingWrapped, 0x60, nil)
	wantEmpty := []byte{0x90, 0x60, 0x00, 0x00, 0x00}
	if !bytes.Equal(gotEmpty, wantEmpty) {
		t.Fatalf("wrapped empty-params APDU = %x, want %x", gotEmpty, wantEmpty)
	}
}

func TestTransceiveNativeSplitsStatusFromPayload(t *testing.T) {
	card := &fakeCard{responses: [][]byte{{0x00, 0xAA, 0xBB}}}
	payload, status, err := transceive(card, FramingNative, []byte{0x60})
	if err != nil {
		t.Fatalf("transceive: %v", err)
	}
	if status != StatusOK {
		t.Fatalf("status = %v, want OK", status)
	}
	if !bytes.Equal(payload, []byte{0xAA, 0xBB}) {
		t.Fatalf("payload = %x, want AABB", payload)
	}
}

func TestTransceiveWrappedSplitsStatusWord(t *testing.T) {
	card := &fakeCard{responses: [][]byte{{0xAA, 0xBB, 0x91, 0xAF}}}
	payload, status, err := transceive(card, FramingWrapped, []byte{0x90, 0x60, 0, 0, 0})
	if err != nil {
		t.Fatalf("transceive: %v", err)
	}
	if status != StatusAdditionalFrame {
		t.Fatalf("status = %v, want ADDITIONAL_FRAME", status)
	}
	if !bytes.Equal(payload, []byte{0xAA, 0xBB}) {
		t.Fatalf("payload = %x, want AABB", payload)
	}
}

func TestTransceiveWrappedRejectsUnexpectedSW1(t *testing.T) {
	card := &fakeCard{responses: [][]byte{{0x6A, 0x82}}}
	if _, _, err := transceive(card, FramingWrapped, []byte{0x90, 0x5A, 0, 0, 0}); err == nil {
		t.Fatalf("expected an error for a non-0x91 status word")
	}
}
