package model

import (
	"errors"
	"fmt"
	"time"
)

// Step is the wizard screen a session is on
type Step string

const (
	StepHome    Step = "home"
	StepForm    Step = "form"
	StepDisplay Step = "display"
)

var (
	ErrInvalidTransition = errors.New("invalid wizard transition")
	ErrInvalidSession    = errors.New("invalid wizard session state")
)

// WizardSession is the per-browser wizard state. Exactly one of Home, Form and Display is
// set, and it is the one matching Step.
type WizardSession struct {
	ID        string        `json:"id"`
	Step      Step          `json:"step"`
	Home      *HomeState    `json:"home,omitempty"`
	Form      *FormState    `json:"form,omitempty"`
	Display   *DisplayState `json:"display,omitempty"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// HomeState backs the issue intake screen
type HomeState struct {
	Complaint string `json:"complaint,omitempty"`
	Error     string `json:"error,omitempty"`
}

// FormState backs the officer selection / personal details screen
type FormState struct {
	Prediction    PredictionResult `json:"prediction"`
	Issue         string           `json:"issue"`
	SelectedIndex int              `json:"selectedIndex"`
	SelectedPIO   PIO              `json:"selectedPio"`
	UserName      string           `json:"userName,omitempty"`
	UserAddress   string           `json:"userAddress,omitempty"`
	Error         string           `json:"error,omitempty"`
}

// DisplayState backs the letter output screen
type DisplayState struct {
	Prediction PredictionResult `json:"prediction"`
	Issue      string           `json:"issue"`
	Letter     string           `json:"letter"`
}

// NewWizardSession starts a session on the home step
func NewWizardSession(id string) *WizardSession {
	return &WizardSession{
		ID:        id,
		Step:      StepHome,
		Home:      &HomeState{},
		UpdatedAt: time.Now(),
	}
}

// OnPredictionComplete stores the classifier result and the complaint and moves to the form step.
func (s *WizardSession) OnPredictionComplete(result PredictionResult, issue string) error {
	if s.Step != StepHome {
		return fmt.Errorf("%w: prediction completed on step %q", ErrInvalidTransition, s.Step)
	}
	s.Step = StepForm
	s.Home = nil
	s.Form = &FormState{
		Prediction:  result,
		Issue:       issue,
		SelectedPIO: result.DefaultPIO(),
	}
	s.touch()
	return nil
}

// OnLetterGenerated stores the letter and moves to the display step.
func (s *WizardSession) OnLetterGenerated(letter string) error {
	if s.Step != StepForm || s.Form == nil {
		return fmt.Errorf("%w: letter generated on step %q", ErrInvalidTransition, s.Step)
	}
	s.Step = StepDisplay
	s.Display = &DisplayState{
		Prediction: s.Form.Prediction,
		Issue:      s.Form.Issue,
		Letter:     letter,
	}
	s.Form = nil
	s.touch()
	return nil
}

// OnBackToHome discards prediction, issue and letter together. Valid from any step.
func (s *WizardSession) OnBackToHome() {
	s.Step = StepHome
	s.Home = &HomeState{}
	s.Form = nil
	s.Display = nil
	s.touch()
}

// Validate checks that the payload matches the step.
func (s *WizardSession) Validate() error {
	var ok bool
	switch s.Step {
	case StepHome:
		ok = s.Home != nil && s.Form == nil && s.Display == nil
	case StepForm:
		ok = s.Form != nil && s.Home == nil && s.Display == nil
	case StepDisplay:
		ok = s.Display != nil && s.Home == nil && s.Form == nil
	}
	if !ok {
		return fmt.Errorf("%w: step %q", ErrInvalidSession, s.Step)
	}
	return nil
}

// Prediction returns the stored classifier result, or nil on the home step.
func (s *WizardSession) Prediction() *PredictionResult {
	switch {
	case s.Form != nil:
		return &s.Form.Prediction
	case s.Display != nil:
		return &s.Display.Prediction
	}
	return nil
}

// UserIssue returns the complaint the prediction was made for.
func (s *WizardSession) UserIssue() string {
	switch {
	case s.Form != nil:
		return s.Form.Issue
	case s.Display != nil:
		return s.Display.Issue
	}
	return ""
}

// GeneratedLetter returns the letter text, or "" before the display step.
func (s *WizardSession) GeneratedLetter() string {
	if s.Display != nil {
		return s.Display.Letter
	}
	return ""
}

func (s *WizardSession) touch() {
	s.UpdatedAt = time.Now()
}
