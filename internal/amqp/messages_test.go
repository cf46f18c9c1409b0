package amqp

import (
	"testing"
	"time"
)

func TestStateSyncMessage_JSONRoundTrip(t *testing.T) {
	msg := NewStateSyncMessage("acct-1", 1234567890)

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := StateSyncMessageFromJSON(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AccountID != "acct-1" || got.LastModified != 1234567890 {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Error("timestamp should survive the round trip")
	}
}

func TestStateSyncMessageFromJSON_Invalid(t *testing.T) {
	if _, err := StateSyncMessageFromJSON([]byte("{broken")); err == nil {
		t.Error("expected error for malformed message")
	}
}

func TestNewStateSyncMessage_StampsTime(t *testing.T) {
	before := time.Now()
	msg := NewStateSyncMessage("a", 1)
	if msg.Timestamp.Before(before.Add(-time.Second)) {
		t.Errorf("expected fresh timestamp, got %v", msg.Timestamp)
	}
}
