package shared

// MessageType definiert den Typ einer Nachricht für die WebSocket-Kommunikation.
type MessageType int

// Konstanten für MessageType. Die Werte sind Teil des Protokolls und bleiben stabil.
const (
	MessageTypeText    MessageType = 0  // Textausgabe, eine Zeile pro Nachricht
	MessageTypeSession MessageType = 8  // Session-ID Übermittlung
	MessageTypePrompt  MessageType = 12 // INPUT wartet auf eine Antwort
	MessageTypeInput   MessageType = 14 // Eingabezeile vom Client
	MessageTypeError   MessageType = 32 // Protokoll- oder Sitzungsfehler
)

func (t MessageType) String() string {
	switch t {
	case MessageTypeText:
		return "text"
	case MessageTypeSession:
		return "session"
	case MessageTypePrompt:
		return "prompt"
	case MessageTypeInput:
		return "input"
	case MessageTypeError:
		return "error"
	}
	return "unknown"
}

// Message repräsentiert eine Nachricht, die über WebSocket gesendet oder empfangen wird.
type Message struct {
	Type    MessageType `json:"type"`
	Content string      `json:"content"`

	// Für SESSION
	SessionID string `json:"sessionId,omitempty"`

	// Für PROMPT
	PromptSymbol string `json:"promptSymbol,omitempty"`
}
