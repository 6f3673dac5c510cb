package entities

// Role identifies who produced a conversation turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DefaultMaxHistoryPairs bounds the conversation memory of a session
const DefaultMaxHistoryPairs = 10

// ConversationTurn is one utterance in the conversation
type ConversationTurn struct {
	Role Role   `json:"role" bson:"role"`
	Text string `json:"text" bson:"text"`
}

type conversationPair struct {
	user      string
	assistant string
}

// ConversationHistory keeps the most recent (user, assistant) pairs in a ring.
// Pairs are appended and evicted as a unit, so the history never holds an
// unanswered user entry. It is not safe for concurrent use.
type ConversationHistory struct {
	pairs []conversationPair
	start int
	size  int
}

// NewConversationHistory creates a history holding at most maxPairs pairs.
// A non-positive maxPairs falls back to DefaultMaxHistoryPairs.
func NewConversationHistory(maxPairs int) *ConversationHistory {
	if maxPairs <= 0 {
		maxPairs = DefaultMaxHistoryPairs
	}
	return &ConversationHistory{pairs: make([]conversationPair, maxPairs)}
}

// AppendPair records a completed exchange, evicting the oldest pair when full
func (h *ConversationHistory) AppendPair(user, assistant string) {
	p := conversationPair{user: user, assistant: assistant}
	if h.size < len(h.pairs) {
		h.pairs[(h.start+h.size)%len(h.pairs)] = p
		h.size++
		return
	}
	h.pairs[h.start] = p
	h.start = (h.start + 1) % len(h.pairs)
}

// Turns returns the history in chronological order
func (h *ConversationHistory) Turns() []ConversationTurn {
	turns := make([]ConversationTurn, 0, h.size*2)
	for i := 0; i < h.size; i++ {
		p := h.pairs[(h.start+i)%len(h.pairs)]
		turns = append(turns,
			ConversationTurn{Role: RoleUser, Text: p.user},
			ConversationTurn{Role: RoleAssistant, Text: p.assistant})
	}
	return turns
}

// Len returns the number of turns (twice the number of pairs)
func (h *ConversationHistory) Len() int {
	return h.size * 2
}

// Pairs returns the number of stored pairs
func (h *ConversationHistory) Pairs() int {
	return h.size
}

// MaxPairs returns the capacity in pairs
func (h *ConversationHistory) MaxPairs() int {
	return len(h.pairs)
}

// IsEmpty reports whether no exchange has been recorded
func (h *ConversationHistory) IsEmpty() bool {
	return h.size == 0
}

// Clear forgets every pair
func (h *ConversationHistory) Clear() {
	for i := range h.pairs {
		h.pairs[i] = conversationPair{}
	}
	h.start = 0
	h.size = 0
}
