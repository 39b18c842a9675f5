package amqp

import (
	"encoding/json"
	"time"
)

// AdviceRequestMessage asks the worker to refine a stored purchase suggestion.
// Only the suggestion ID travels on the wire, the worker fetches the full
// record and the user's ledger from the database.
type AdviceRequestMessage struct {
	SuggestionID string    `json:"suggestion_id"`
	UID          string    `json:"uid"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewAdviceRequestMessage(suggestionID, uid string) *AdviceRequestMessage {
	return &AdviceRequestMessage{
		SuggestionID: suggestionID,
		UID:          uid,
		Timestamp:    time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *AdviceRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON creates a message from JSON bytes
func AdviceRequestMessageFromJSON(data []byte) (*AdviceRequestMessage, error) {
	var msg AdviceRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
