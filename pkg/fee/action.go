package fee

// Action describes the shape of a pending transaction for fee purposes.
// It is a closed set: Send, Airdrop, Mint, Burn and Message.
type Action interface {
	// Kind returns the action's short name ("send", "airdrop", ...).
	Kind() string
	isAction()
}

// Send is a token transfer to one recipient, optionally with a note.
type Send struct {
	MessageLen int // note length in bytes, 0 for none
}

// Airdrop is a multi-recipient XEC distribution.
type Airdrop struct {
	Recipients int // must be >= 1
	MessageLen int
}

// Mint issues new token units against the mint baton.
type Mint struct{}

// Burn destroys token units.
type Burn struct{}

// Message is a public on-chain message with no token movement.
type Message struct {
	MessageLen int
}

func (Send) Kind() string    { return "send" }
func (Airdrop) Kind() string { return "airdrop" }
func (Mint) Kind() string    { return "mint" }
func (Burn) Kind() string    { return "burn" }
func (Message) Kind() string { return "message" }

func (Send) isAction()    {}
func (Airdrop) isAction() {}
func (Mint) isAction()    {}
func (Burn) isAction()    {}
func (Message) isAction() {}
