package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entry kinds carried by LedgerChangedMessage.
const (
	KindIncome      = "income"
	KindExpense     = "expense"
	KindInvoice     = "invoice"
	KindTransfer    = "transfer"
	KindSettings    = "settings"
	KindBankDetails = "bank_details"
)

// Operations carried by LedgerChangedMessage.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

// LedgerChangedMessage announces that a user's ledger changed. It carries
// identifiers only; consumers re-read the ledger.
type LedgerChangedMessage struct {
	UserID    int64     `json:"user_id"`
	Kind      string    `json:"kind"`
	EntryID   int64     `json:"entry_id,omitempty"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerChangedMessage(userID int64, kind string, entryID int64, op string) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		UserID:    userID,
		Kind:      kind,
		EntryID:   entryID,
		Op:        op,
		Timestamp: time.Now().UTC(),
	}
}

func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON decodes and sanity-checks a message body.
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.UserID <= 0 {
		return nil, fmt.Errorf("invalid user id %d", msg.UserID)
	}
	return &msg, nil
}
