package desfire

import (
	"bytes"
	"testing"
)

func TestExpandToTripleDESKey(t *testing.T) {
	k8 := bytes.Repeat([]byte{0x11}, 8)
	got := expandToTripleDESKey(k8)
	want := bytes.Repeat([]byte{0x11}, 24)
	if !bytes.Equal(got, want) {
		t.Fatalf("single-DES expansion = %x, want %x", got, want)
	}

	k16 := append(bytes.Repeat([]byte{0x01}, 8), bytes.Repeat([]byte{0x02}, 8)...)
	got16 := expandToTripleDESKey(k16)
	want16 := append(append([]byte{}, k16...), k16[:8]...)
	if !bytes.Equal(got16, want16) {
		t.Fatalf("2K-3DES expansion = %x, want %x", got16, want16)
	}

	k24 := bytes.Repeat([]byte{0x03}, 24)
	if got24 := expandToTripleDESKey(k24); !bytes.Equal(got24, k24) {
		t.Fatalf("3K-3DES key must pass through unchanged, got %x", got24)
	}
}

func TestCBCRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 16)
	iv := make([]byte, 16)
	plain := []byte("0123456789ABCDEF")

	ct, err := cbcEncrypt(KeyTypeAES128, key, iv, plain)
	if err != nil {
		t.Fatalf("cbcEncrypt: %v", err)
	}
	pt, err := cbcDecrypt(KeyTypeAES128, key, iv, ct)
	if err != nil {
		t.Fatalf("cbcDecrypt: %v", err)
	}
	if !bytes.Equal(pt, plain) {
		t.Fatalf("round trip = %q, want %q", pt, plain)
	}
}

func TestZeroPad(t *testing.T) {
	got := zeroPad([]byte{1, 2, 3}, 8)
	want := []byte{1, 2, 3, 0, 0, 0, 0, 0}
	if !bytes.Equal(got, want) {
		t.Fatalf("zeroPad = %x, want %x", got, want)
	}
	if aligned := zeroPad([]byte{1, 2, 3, 4, 5, 6, 7, 8}, 8); len(aligned) != 8 {
		t.Fatalf("already block-aligned input must not be padded further, got len %d", len(aligned))
	}
}

func TestCRCDeterministicAndSensitive(t *testing.T) {
	a := crc16ISO13239([]byte("hello"))
	b := crc16ISO13239([]byte("hello"))
	c := crc16ISO13239([]byte("hellp"))
	if a != b {
		t.Fatalf("CRC16 must be deterministic: %04X != %04X", a, b)
	}
	if a == c {
		t.Fatalf("CRC16 must be sensitive to its input")
	}

	a32 := crc32ISO13239([]byte("hello"))
	c32 := crc32ISO13239([]byte("hellp"))
	if a32 == c32 {
		t.Fatalf("CRC32 must be sensitive to its input")
	}
}

func TestCrcBytesForWidthByKeyType(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}
	if got := crcBytesFor(KeyTypeDES, data); len(got) != 2 {
		t.Fatalf("DES CRC width = %d, want 2", len(got))
	}
	if got := crcBytesFor(KeyTypeTDES2, data); len(got) != 2 {
		t.Fatalf("2K-3DES CRC width = %d, want 2", len(got))
	}
	if got := crcBytesFor(KeyTypeTDES3, data); len(got) != 4 {
		t.Fatalf("3K-3DES CRC width = %d, want 4", len(got))
	}
	if got := crcBytesFor(KeyTypeAES128, data); len(got) != 4 {
		t.Fatalf("AES CRC width = %d, want 4", len(got))
	}
}

func TestRotateLeftRight1RoundTrip(t *testing.T) {
	in := []byte{0x01, 0x02, 0x03, 0x04}
	got := rotateRight1(rotateLeft1(in))
	if !bytes.Equal(got, in) {
		t.Fatalf("rotateRight1(rotateLeft1(x)) = %x, want %x", got, in)
	}
}

func TestXorExtendZeroPadsShorterOperand(t *testing.T) {
	a := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	b := []byte{0x0F, 0x0F}
	got := xorExtend(a, b)
	want := []byte{0xF0, 0xF0, 0xFF, 0xFF}
	if !bytes.Equal(got, want) {
		t.Fatalf("xorExtend = %x, want %x", got, want)
	}
}
