package model

// LetterRequest is the request body for POST /generate-letter
type LetterRequest struct {
	UserIssue     string `json:"user_issue"`
	UserName      string `json:"user_name"`
	UserAddress   string `json:"user_address"`
	Department    string `json:"department"`
	PIOAuthority  string `json:"pio_authority"`
	AuthorityName string `json:"authority_name"`
	State         string `json:"state"`
}

// NewLetterRequest merges the user's identity fields with the selected officer.
func NewLetterRequest(issue, name, address string, pio PIO) LetterRequest {
	return LetterRequest{
		UserIssue:     issue,
		UserName:      name,
		UserAddress:   address,
		Department:    pio.Department,
		PIOAuthority:  pio.PIOAuthority,
		AuthorityName: pio.AuthorityName,
		State:         pio.State,
	}
}

// LetterResponse is returned by POST /generate-letter
type LetterResponse struct {
	Letter string `json:"letter"`
}

// Tone of a generated letter body
type Tone string

const (
	ToneFormal   Tone = "formal"
	ToneInformal Tone = "informal"
	ToneNeutral  Tone = "neutral"
)

// Valid reports whether t is one of the known tones
func (t Tone) Valid() bool {
	switch t {
	case ToneFormal, ToneInformal, ToneNeutral:
		return true
	}
	return false
}

// LetterInput is the request body for the letter body endpoint. Every field is optional.
type LetterInput struct {
	RecipientName    string   `json:"recipientName,omitempty"`
	RecipientAddress string   `json:"recipientAddress,omitempty"`
	Subject          string   `json:"subject,omitempty"`
	KeyPoints        []string `json:"keyPoints,omitempty"`
	Tone             Tone     `json:"tone,omitempty"`
	Language         string   `json:"language,omitempty"`
	SenderName       string   `json:"senderName,omitempty"`
}

// LetterBodyResponse is returned by the letter body endpoint on success
type LetterBodyResponse struct {
	Body string `json:"body"`
}

// ErrorResponse is the JSON failure envelope
type ErrorResponse struct {
	Error string `json:"error"`
}
