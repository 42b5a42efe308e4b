package model

import (
	"fmt"
	"strings"
)

// PIO is a Public Information Officer record as returned by the classifier backend.
// JSON keys follow the backend dataset columns.
type PIO struct {
	Department         string `json:"Department"`
	PIOAuthority       string `json:"PIO_Authority"`
	AuthorityName      string `json:"Authority_Name"`
	State              string `json:"State"`
	ProblemDescription string `json:"Problem_Description"`
	DomainDescription  string `json:"Domain_Description"`
}

// Label is the text shown for the officer in the selection list
func (p PIO) Label() string {
	return fmt.Sprintf("%s - %s (%s)", p.PIOAuthority, p.AuthorityName, p.State)
}

// PredictRequest is the request body for POST /predict
type PredictRequest struct {
	Complaint string `json:"complaint"`
}

// PredictionResult is the classifier's answer for one complaint
type PredictionResult struct {
	PredictedDepartment string  `json:"predicted_department"`
	Confidence          float64 `json:"confidence"`
	Pios                []PIO   `json:"pios"`
}

// ConfidencePercent formats the confidence as a percentage with one decimal, e.g. "82.0%".
func (r PredictionResult) ConfidencePercent() string {
	return fmt.Sprintf("%.1f%%", r.Confidence*100)
}

// DefaultPIO is the initial officer selection: the first candidate, or an empty record.
func (r PredictionResult) DefaultPIO() PIO {
	if len(r.Pios) == 0 {
		return PIO{}
	}
	return r.Pios[0]
}

// PIODirectory is the backend's GET /pios listing.
type PIODirectory struct {
	Departments    []string         `json:"departments"`
	DepartmentPIOs map[string][]PIO `json:"department_pios"`
}

// BackendStatus is the backend's GET / banner.
type BackendStatus struct {
	Message   string   `json:"message"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
}

// ValidComplaint reports whether a complaint has any non-whitespace content.
func ValidComplaint(complaint string) bool {
	return strings.TrimSpace(complaint) != ""
}
