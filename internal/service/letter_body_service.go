package service

import (
	"context"
	"fmt"
	"strings"

	"rtiassist/internal/config"
	"rtiassist/internal/llm"
	"rtiassist/internal/model"

	"go.uber.org/zap"
)

const notAvailable = "N/A"

// LetterBodyService drafts the body paragraphs of a letter with a completion provider.
// It keeps no state between calls.
type LetterBodyService struct {
	completer llm.Completer
	logger    *zap.Logger
}

// NewLetterBodyService creates a new letter body service
func NewLetterBodyService(completer llm.Completer, logger *zap.Logger) *LetterBodyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LetterBodyService{completer: completer, logger: logger.Named("letter-body")}
}

// Generate returns the trimmed body text, or "" when the provider returned no completion.
func (s *LetterBodyService) Generate(ctx context.Context, input model.LetterInput) (string, error) {
	prompt := BuildLetterBodyPrompt(input)
	out, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		s.logger.Warn("completion failed", zap.Error(err))
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// FormatKeyPoints renders key points as a numbered list, or "N/A" when there are none.
func FormatKeyPoints(points []string) string {
	if len(points) == 0 {
		return notAvailable
	}
	lines := make([]string, len(points))
	for i, p := range points {
		lines[i] = fmt.Sprintf("%d. %s", i+1, p)
	}
	return strings.Join(lines, "\n")
}

// BuildLetterBodyPrompt builds the system and user directives for a letter body.
func BuildLetterBodyPrompt(input model.LetterInput) llm.Prompt {
	tone := input.Tone
	if !tone.Valid() {
		tone = model.ToneFormal
	}
	language := strings.TrimSpace(input.Language)
	if language == "" {
		language = "English"
	}

	var sys strings.Builder
	fmt.Fprintf(&sys, "You are an assistant that drafts well-structured %s letters in %s.\n", tone, language)
	sys.WriteString("Return only the body paragraphs of the letter without salutations, addresses, subject lines, or signatures.\n")
	sys.WriteString("Write clear, concise paragraphs that cover all provided points.")

	var usr strings.Builder
	usr.WriteString("Draft the body of a letter.\n")
	fmt.Fprintf(&usr, "Recipient: %s\n", orNA(input.RecipientName))
	if strings.TrimSpace(input.RecipientAddress) != "" {
		fmt.Fprintf(&usr, "Recipient address: %s\n", input.RecipientAddress)
	}
	fmt.Fprintf(&usr, "Subject: %s\n", orNA(input.Subject))
	fmt.Fprintf(&usr, "Sender: %s\n\n", orNA(input.SenderName))
	usr.WriteString("Key points to cover:\n")
	usr.WriteString(FormatKeyPoints(input.KeyPoints))
	usr.WriteString("\n\nConstraints:\n")
	fmt.Fprintf(&usr, "- Keep it %s.\n", tone)
	fmt.Fprintf(&usr, "- Use %s.\n", language)
	usr.WriteString("- Return only the body paragraphs (no greeting/salutation line, no addresses, no closing/signature).")

	return llm.Prompt{
		System:      sys.String(),
		User:        usr.String(),
		Temperature: config.LetterBodyTemperature,
	}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}
