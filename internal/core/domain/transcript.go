package domain

import "encoding/json"

// RawTurn is a client-supplied transcript entry before normalization.
// Decoding never fails: non-string roles or contents decode to "".
type RawTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (t *RawTurn) UnmarshalJSON(b []byte) error {
	*t = RawTurn{}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil
	}
	if v, ok := fields["role"]; ok {
		_ = json.Unmarshal(v, &t.Role)
	}
	if v, ok := fields["content"]; ok {
		_ = json.Unmarshal(v, &t.Content)
	}
	return nil
}

// Transcript is the client's final conversation. Anything that is not a JSON array decodes to empty.
type Transcript []RawTurn

func (t *Transcript) UnmarshalJSON(b []byte) error {
	var items []RawTurn
	if err := json.Unmarshal(b, &items); err != nil {
		*t = nil
		return nil
	}
	*t = items
	return nil
}

// Normalize maps every entry to exactly one user or assistant turn.
// "assistant" and "model" become assistant, everything else user.
// An empty transcript yields a single placeholder user turn.
func (t Transcript) Normalize() []Turn {
	turns := make([]Turn, 0, len(t))
	for _, raw := range t {
		role := RoleUser
		if raw.Role == "assistant" || raw.Role == "model" {
			role = RoleAssistant
		}
		turns = append(turns, Turn{Role: role, Content: raw.Content})
	}
	if len(turns) == 0 {
		turns = append(turns, Turn{Role: RoleUser, Content: PlaceholderTurn})
	}
	return turns
}

// GradableTurns returns the user and assistant turns of a stored conversation.
// ok is false when the conversation holds no user turn.
func GradableTurns(conversation []Turn) (turns []Turn, ok bool) {
	for _, t := range conversation {
		switch t.Role {
		case RoleUser:
			ok = true
			turns = append(turns, t)
		case RoleAssistant:
			turns = append(turns, t)
		}
	}
	return turns, ok
}
