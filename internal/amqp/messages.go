package amqp

import (
	"encoding/json"
	"time"
)

// LedgerEventMessage is the lightweight notification published after a
// ledger mutation. It carries only the transaction id and the action;
// the worker fetches the full record from the database.
type LedgerEventMessage struct {
	TxID      string    `json:"tx_id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerEventMessage(txID, action string) *LedgerEventMessage {
	return &LedgerEventMessage{
		TxID:      txID,
		Action:    action,
		Timestamp: time.Now(),
	}
}

func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
