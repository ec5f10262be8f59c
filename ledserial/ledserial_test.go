package ledserial

import (
	"bytes"
	"io"
	"reflect"
	"strings"
	"testing"
)

func TestIncomingPackets(t *testing.T) {
	ctx := ReadContext{NumLEDs: 2}

	packets := []IncomingPacket{
		InitializePacket{NumLEDs: 2},
		ClearPacket{},
		SetPacket{Pix: []uint8{1, 2, 3, 4, 5, 6}},
	}

	var buf bytes.Buffer
	for _, p := range packets {
		if err := WriteIncomingPacket(&buf, p); err != nil {
			t.Fatalf("failed to write %s packet: %v", p.Type(), err)
		}
	}

	for _, want := range packets {
		got, err := ReadIncomingPacket(&buf, ctx)
		if err != nil {
			t.Fatalf("failed to read %s packet: %v", want.Type(), err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %#v, want %#v", got, want)
		}
	}

	if buf.Len() != 0 {
		t.Errorf("%d bytes left over", buf.Len())
	}
}

func TestOutgoingPackets(t *testing.T) {
	packets := []OutgoingPacket{
		ErrorPacket{Message: "invalid number of LEDs: 0"},
		PanicPacket{},
		LogPacket{Message: "received packet: set"},
		AckPacket{IncomingPacketType: TypeSetPacket},
	}

	var buf bytes.Buffer
	for _, p := range packets {
		if err := WriteOutgoingPacket(&buf, p); err != nil {
			t.Fatalf("failed to write %s packet: %v", p.Type(), err)
		}
	}

	for _, want := range packets {
		got, err := ReadOutgoingPacket(&buf)
		if err != nil {
			t.Fatalf("failed to read %s packet: %v", want.Type(), err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %#v, want %#v", got, want)
		}
	}
}

func TestSetPacketLayout(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteIncomingPacket(&buf, SetPacket{Pix: []uint8{0xaa, 0xbb, 0xcc}}); err != nil {
		t.Fatal(err)
	}

	b := buf.Bytes()
	// type + 3 pixel bytes + 4 checksum bytes
	if len(b) != 8 {
		t.Fatalf("packet is %d bytes, want 8", len(b))
	}
	if IncomingPacketType(b[0]) != TypeSetPacket {
		t.Errorf("packet type = %d, want %d", b[0], TypeSetPacket)
	}
	if !bytes.Equal(b[1:4], []uint8{0xaa, 0xbb, 0xcc}) {
		t.Errorf("pixel data = %x", b[1:4])
	}
}

func TestChecksumMismatch(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOutgoingPacket(&buf, LogPacket{Message: "hello"}); err != nil {
		t.Fatal(err)
	}

	b := buf.Bytes()
	b[len(b)-1] ^= 0xff

	_, err := ReadOutgoingPacket(bytes.NewReader(b))
	if err == nil || !strings.Contains(err.Error(), "checksum mismatch") {
		t.Errorf("got error %v, want checksum mismatch", err)
	}
}

func TestUnknownPacketType(t *testing.T) {
	_, err := ReadIncomingPacket(bytes.NewReader([]byte{0x7f}), ReadContext{})
	if err == nil || !strings.Contains(err.Error(), "IncomingPacketType(127)") {
		t.Errorf("got error %v, want unknown packet type", err)
	}

	_, err = ReadOutgoingPacket(bytes.NewReader([]byte{0x7f}))
	if err == nil || !strings.Contains(err.Error(), "OutgoingPacketType(127)") {
		t.Errorf("got error %v, want unknown packet type", err)
	}
}

func TestShortRead(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteIncomingPacket(&buf, SetPacket{Pix: []uint8{1, 2, 3}}); err != nil {
		t.Fatal(err)
	}

	// The reader expects two LEDs but the packet only carries one.
	_, err := ReadIncomingPacket(&buf, ReadContext{NumLEDs: 2})
	if err == nil {
		t.Fatal("expected error")
	}

	_, err = ReadOutgoingPacket(bytes.NewReader(nil))
	if err == nil || !strings.Contains(err.Error(), io.EOF.Error()) {
		t.Errorf("got error %v, want EOF", err)
	}
}
