package presence

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
)

func TestFrame_WriteRead(t *testing.T) {
	var buf bytes.Buffer
	if err := writeFrame(&buf, opFrame, map[string]string{"cmd": "SET_ACTIVITY"}); err != nil {
		t.Fatalf("writeFrame: %v", err)
	}

	raw := buf.Bytes()
	if got := binary.LittleEndian.Uint32(raw[0:4]); got != uint32(opFrame) {
		t.Errorf("Expected opcode %d in header, got %d", opFrame, got)
	}
	if got := binary.LittleEndian.Uint32(raw[4:8]); int(got) != len(raw)-frameHeaderSize {
		t.Errorf("Header length %d does not match body length %d", got, len(raw)-frameHeaderSize)
	}

	op, body, err := readFrame(&buf)
	if err != nil {
		t.Fatalf("readFrame: %v", err)
	}
	if op != opFrame {
		t.Errorf("Expected opcode %d, got %d", opFrame, op)
	}
	if string(body) != `{"cmd":"SET_ACTIVITY"}` {
		t.Errorf("Unexpected body %s", body)
	}
}

func TestFrame_ReadErrors(t *testing.T) {
	oversized := make([]byte, frameHeaderSize)
	binary.LittleEndian.PutUint32(oversized[0:4], uint32(opFrame))
	binary.LittleEndian.PutUint32(oversized[4:8], maxFrameSize+1)

	short := make([]byte, frameHeaderSize, frameHeaderSize+2)
	binary.LittleEndian.PutUint32(short[4:8], 10)
	short = append(short, '{', '}')

	tests := []struct {
		name    string
		input   []byte
		errPart string
	}{
		{"Truncated Header", []byte{1, 0, 0}, "header"},
		{"Oversized Length", oversized, "too large"},
		{"Truncated Body", short, "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := readFrame(bytes.NewReader(tt.input))
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("Expected error mentioning %q, got %v", tt.errPart, err)
			}
		})
	}
}
