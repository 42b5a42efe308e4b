package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rtiassist/internal/cache"
	"rtiassist/internal/model"

	"go.uber.org/zap"
)

// Inline messages shown on the wizard screens
const (
	MsgComplaintRequired = "Please enter your complaint or issue"
	MsgPredictFailed     = "Failed to predict department. Please ensure the backend server is running."
	MsgDetailsRequired   = "Please fill in all required fields"
	MsgLetterFailed      = "Failed to generate letter. Please try again."
)

var (
	ErrInvalidSelection = errors.New("invalid officer selection")
	ErrNoLetter         = errors.New("no generated letter in this session")
)

// DetailsInput is the submission of the officer selection screen
type DetailsInput struct {
	UserName    string
	UserAddress string
	// PIOIndex, when set, selects the officer before the letter request is built.
	PIOIndex *int
}

// WizardService runs the three wizard screens on top of a session cache
type WizardService struct {
	sessions   cache.SessionCache
	classifier Classifier
	drafter    LetterDrafter
	inflight   *inflightGuard
	logger     *zap.Logger
}

// NewWizardService creates a new wizard service
func NewWizardService(sessions cache.SessionCache, classifier Classifier, drafter LetterDrafter, logger *zap.Logger) *WizardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WizardService{
		sessions:   sessions,
		classifier: classifier,
		drafter:    drafter,
		inflight:   newInflightGuard(),
		logger:     logger.Named("wizard"),
	}
}

// Load returns the session for id, starting a fresh one when none is stored.
// A stored session whose payload does not match its step is reset to home.
func (s *WizardService) Load(ctx context.Context, id string) (*model.WizardSession, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return model.NewWizardSession(id), nil
	}
	if err := sess.Validate(); err != nil {
		s.logger.Warn("resetting invalid session", zap.String("session", id), zap.Error(err))
		sess.OnBackToHome()
		if err := s.save(ctx, sess); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

// Busy reports whether a state change, backend call included, is running for the session
func (s *WizardService) Busy(id string) bool {
	return s.inflight.busy(id)
}

// SubmitComplaint runs the issue intake screen. Validation and backend failures are
// reported through HomeState.Error, not as errors.
func (s *WizardService) SubmitComplaint(ctx context.Context, id, complaint string) (*model.WizardSession, error) {
	if !s.inflight.tryAcquire(id) {
		return nil, ErrRequestInFlight
	}
	defer s.inflight.release(id)

	sess, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Step != model.StepHome {
		return sess, fmt.Errorf("%w: complaint submitted on step %q", model.ErrInvalidTransition, sess.Step)
	}

	if !model.ValidComplaint(complaint) {
		sess.Home = &model.HomeState{Complaint: complaint, Error: MsgComplaintRequired}
		return sess, s.save(ctx, sess)
	}

	result, err := s.classifier.Predict(ctx, complaint)
	if err != nil {
		s.logger.Warn("prediction failed", zap.String("session", id), zap.Error(err))
		sess.Home = &model.HomeState{Complaint: complaint, Error: failureMessage(err, MsgPredictFailed)}
		return sess, s.save(ctx, sess)
	}

	if err := sess.OnPredictionComplete(*result, complaint); err != nil {
		return sess, err
	}
	s.logger.Info("department predicted",
		zap.String("session", id),
		zap.String("department", result.PredictedDepartment),
		zap.Float64("confidence", result.Confidence),
		zap.Int("pios", len(result.Pios)))
	return sess, s.save(ctx, sess)
}

// SelectOfficer replaces the selected officer with candidate index. The identity fields
// typed so far are stored with it so they survive the page reload.
func (s *WizardService) SelectOfficer(ctx context.Context, id string, index int, userName, userAddress string) (*model.WizardSession, error) {
	if !s.inflight.tryAcquire(id) {
		return nil, ErrRequestInFlight
	}
	defer s.inflight.release(id)

	sess, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Step != model.StepForm {
		return sess, fmt.Errorf("%w: officer selected on step %q", model.ErrInvalidTransition, sess.Step)
	}
	if err := selectOfficer(sess.Form, index); err != nil {
		return sess, err
	}
	sess.Form.UserName = userName
	sess.Form.UserAddress = userAddress
	return sess, s.save(ctx, sess)
}

// SubmitDetails runs the officer selection screen: it validates the identity fields,
// builds the letter request and asks the drafter for the letter.
func (s *WizardService) SubmitDetails(ctx context.Context, id string, in DetailsInput) (*model.WizardSession, error) {
	if !s.inflight.tryAcquire(id) {
		return nil, ErrRequestInFlight
	}
	defer s.inflight.release(id)

	sess, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Step != model.StepForm {
		return sess, fmt.Errorf("%w: details submitted on step %q", model.ErrInvalidTransition, sess.Step)
	}

	form := sess.Form
	if in.PIOIndex != nil {
		if err := selectOfficer(form, *in.PIOIndex); err != nil {
			return sess, err
		}
	}
	form.UserName = in.UserName
	form.UserAddress = in.UserAddress

	if strings.TrimSpace(in.UserName) == "" || strings.TrimSpace(in.UserAddress) == "" {
		form.Error = MsgDetailsRequired
		return sess, s.save(ctx, sess)
	}

	form.Error = ""
	req := model.NewLetterRequest(form.Issue, in.UserName, in.UserAddress, form.SelectedPIO)
	resp, err := s.drafter.GenerateLetter(ctx, req)
	if err != nil {
		s.logger.Warn("letter generation failed", zap.String("session", id), zap.Error(err))
		form.Error = failureMessage(err, MsgLetterFailed)
		return sess, s.save(ctx, sess)
	}

	if err := sess.OnLetterGenerated(resp.Letter); err != nil {
		return sess, err
	}
	s.logger.Info("letter generated", zap.String("session", id), zap.Int("chars", len(resp.Letter)))
	return sess, s.save(ctx, sess)
}

// BackToHome drops the stored session, so prediction, issue and letter are gone and the
// next Load starts fresh. Valid from any step.
func (s *WizardService) BackToHome(ctx context.Context, id string) (*model.WizardSession, error) {
	if !s.inflight.tryAcquire(id) {
		return nil, ErrRequestInFlight
	}
	defer s.inflight.release(id)

	if err := s.sessions.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("delete session: %w", err)
	}
	return model.NewWizardSession(id), nil
}

// Letter returns the generated letter of a session on the display step
func (s *WizardService) Letter(ctx context.Context, id string) (string, error) {
	sess, err := s.Load(ctx, id)
	if err != nil {
		return "", err
	}
	if sess.Step != model.StepDisplay {
		return "", ErrNoLetter
	}
	return sess.GeneratedLetter(), nil
}

func (s *WizardService) save(ctx context.Context, sess *model.WizardSession) error {
	if err := s.sessions.Set(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func selectOfficer(form *model.FormState, index int) error {
	pios := form.Prediction.Pios
	if index < 0 || index >= len(pios) {
		return fmt.Errorf("%w: index %d of %d", ErrInvalidSelection, index, len(pios))
	}
	form.SelectedIndex = index
	form.SelectedPIO = pios[index]
	return nil
}

// failureMessage prefers the backend's own detail over the generic fallback.
func failureMessage(err error, fallback string) string {
	if detail := ErrorDetail(err); detail != "" {
		return detail
	}
	return fallback
}
