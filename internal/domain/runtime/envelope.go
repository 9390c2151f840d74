package runtime

import "encoding/json"

// SignalEnvelope - сигнал от одного участника другому. Payload не разбирается.
type SignalEnvelope struct {
	SenderUserID string
	TargetUserID string
	Payload      json.RawMessage
}
