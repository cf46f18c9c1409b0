package amqp

import (
	"encoding/json"
	"time"
)

// StateSyncMessage signals that an account's local state document changed and
// should be pushed to the cloud. It carries only identifiers; the worker
// reads the full document from local storage.
type StateSyncMessage struct {
	AccountID    string    `json:"account_id"`
	LastModified int64     `json:"last_modified"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewStateSyncMessage(accountID string, lastModified int64) *StateSyncMessage {
	return &StateSyncMessage{
		AccountID:    accountID,
		LastModified: lastModified,
		Timestamp:    time.Now(),
	}
}

func (m *StateSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func StateSyncMessageFromJSON(data []byte) (*StateSyncMessage, error) {
	var msg StateSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
