package dto

import "encoding/json"

// AskRequest is one user turn on any channel
type AskRequest struct {
	Prompt             string            `json:"prompt"`
	OldResponseSummary string            `json:"old_response_summary"`
	ConversationState  ConversationState `json:"conversation_state"`
	Language           string            `json:"language,omitempty"`
	AudioURL           string            `json:"audio_url,omitempty"`
	Channel            string            `json:"-"`
}

// ConversationState is the client's copy of the collected slots. Clients may
// send flags and numbers alongside the slot values; only strings are kept.
type ConversationState map[string]string

func (c *ConversationState) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	state := make(ConversationState, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			state[k] = s
		}
	}
	*c = state
	return nil
}

type AskResponse struct {
	Status             string            `json:"status"`
	Response           string            `json:"response"`
	Audio              *string           `json:"audio"`
	OldResponseSummary string            `json:"old_response_summary"`
	ConversationState  map[string]string `json:"conversation_state"`
}

// AskError is the envelope of a failed turn
type AskError struct {
	Status   string  `json:"status"`
	Response string  `json:"response"`
	Audio    *string `json:"audio"`
}

const (
	ChannelWeb       = "web"
	ChannelWebSocket = "ws"
	ChannelIVR       = "ivr"
)

// WsFrame wraps every message pushed over the chat socket
type WsFrame struct {
	Type string      `json:"type"` // response, error, or an event type such as email.sent
	Data interface{} `json:"data"`
}
