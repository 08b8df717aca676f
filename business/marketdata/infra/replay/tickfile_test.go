package replay

import (
	"bytes"
	"testing"
)

func appendRecord(buf *bytes.Buffer, msgType byte, body []byte, receiveTime uint64) {
	msgLen := byte(2 + len(body))
	buf.WriteByte(msgType)
	buf.WriteByte(msgLen)
	buf.Write(body)
	ts := make([]byte, 8)
	for i := 0; i < 8; i++ {
		ts[i] = byte(receiveTime >> (8 * i))
	}
	buf.Write(ts)
}

func TestTickFileReader_ReadsTwoRecords(t *testing.T) {
	var buf bytes.Buffer
	appendRecord(&buf, 0, []byte("AAAA"), 100)
	appendRecord(&buf, 1, []byte("BB"), 200)

	r := NewTickFileReader(&buf)

	tick1, ok, err := r.Next()
	if err != nil || !ok {
		t.Fatalf("Next() #1: ok=%v err=%v", ok, err)
	}
	if tick1.ReceiveTime != 100 {
		t.Errorf("ReceiveTime = %d, want 100", tick1.ReceiveTime)
	}
	if tick1.Payload[0] != 1 || tick1.Payload[1] != 0 {
		t.Errorf("Payload header = %v, want [1 0 ...]", tick1.Payload[:2])
	}

	tick2, ok, err := r.Next()
	if err != nil || !ok {
		t.Fatalf("Next() #2: ok=%v err=%v", ok, err)
	}
	if tick2.ReceiveTime != 200 {
		t.Errorf("ReceiveTime = %d, want 200", tick2.ReceiveTime)
	}

	_, ok, err = r.Next()
	if err != nil {
		t.Fatalf("Next() at EOF: unexpected error %v", err)
	}
	if ok {
		t.Error("Next() at EOF: ok = true, want false")
	}
}

func TestTickFileReader_TruncatedRecordIsError(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0, 10, 'a', 'b'}) // msgLen=10 claims an 8-byte body; only 2 bytes follow
	r := NewTickFileReader(buf)
	_, _, err := r.Next()
	if err == nil {
		t.Fatal("expected error for truncated record")
	}
}

func TestTickFileReader_RejectsMsgLenBelowTwo(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0, 1})
	r := NewTickFileReader(buf)
	_, _, err := r.Next()
	if err == nil {
		t.Fatal("expected error for msgLen < 2")
	}
}
