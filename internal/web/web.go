// Package web renders the wizard screens.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"rtiassist/internal/model"
	"rtiassist/internal/service"

	"github.com/yuin/goldmark"
)

//go:embed templates/*.html content/*.md
var files embed.FS

// CopiedFeedback is how long the copy button shows "Copied!"
const CopiedFeedback = 2 * time.Second

// HomePage is the view model of the issue intake screen
type HomePage struct {
	Complaint  string
	Error      string
	Busy       bool
	HowItWorks template.HTML
}

// OfficerOption is one entry of the officer select list
type OfficerOption struct {
	Index    int
	Label    string
	Selected bool
}

// FormPage is the view model of the officer selection screen
type FormPage struct {
	Department    string
	Confidence    string
	Officers      []OfficerOption
	SelectedIndex int
	Selected      model.PIO
	UserName      string
	UserAddress   string
	Error         string
	Busy          bool
}

// DisplayPage is the view model of the letter output screen
type DisplayPage struct {
	Letter       string
	Filename     string
	CopiedMillis int64
	NextSteps    template.HTML
}

// Renderer executes the embedded page templates
type Renderer struct {
	pages      map[model.Step]*template.Template
	howItWorks template.HTML
	nextSteps  template.HTML
}

// NewRenderer parses the embedded templates and renders the static markdown blocks once.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[model.Step]*template.Template)}

	layout, err := template.ParseFS(files, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	for step, file := range map[model.Step]string{
		model.StepHome:    "templates/home.html",
		model.StepForm:    "templates/form.html",
		model.StepDisplay: "templates/display.html",
	} {
		base, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		page, err := base.ParseFS(files, file)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		r.pages[step] = page
	}

	if r.howItWorks, err = renderMarkdown("content/how_it_works.md"); err != nil {
		return nil, err
	}
	if r.nextSteps, err = renderMarkdown("content/next_steps.md"); err != nil {
		return nil, err
	}
	return r, nil
}

// Render writes the screen for the session's current step. A form or display step
// without its payload renders nothing.
func (r *Renderer) Render(w io.Writer, sess *model.WizardSession, busy bool, now time.Time) error {
	switch sess.Step {
	case model.StepHome:
		page := HomePage{Busy: busy, HowItWorks: r.howItWorks}
		if sess.Home != nil {
			page.Complaint = sess.Home.Complaint
			page.Error = sess.Home.Error
		}
		return r.execute(w, model.StepHome, page)
	case model.StepForm:
		if sess.Form == nil {
			return nil
		}
		return r.execute(w, model.StepForm, NewFormPage(sess.Form, busy))
	case model.StepDisplay:
		if sess.Display == nil {
			return nil
		}
		return r.execute(w, model.StepDisplay, DisplayPage{
			Letter:       sess.Display.Letter,
			Filename:     service.DownloadFilename(now),
			CopiedMillis: CopiedFeedback.Milliseconds(),
			NextSteps:    r.nextSteps,
		})
	default:
		return fmt.Errorf("%w: unknown step %q", model.ErrInvalidSession, sess.Step)
	}
}

// NewFormPage builds the officer screen view model
func NewFormPage(form *model.FormState, busy bool) FormPage {
	officers := make([]OfficerOption, len(form.Prediction.Pios))
	for i, pio := range form.Prediction.Pios {
		officers[i] = OfficerOption{Index: i, Label: pio.Label(), Selected: i == form.SelectedIndex}
	}
	return FormPage{
		Department:    form.Prediction.PredictedDepartment,
		Confidence:    form.Prediction.ConfidencePercent(),
		Officers:      officers,
		SelectedIndex: form.SelectedIndex,
		Selected:      form.SelectedPIO,
		UserName:      form.UserName,
		UserAddress:   form.UserAddress,
		Error:         form.Error,
		Busy:          busy,
	}
}

func (r *Renderer) execute(w io.Writer, step model.Step, data any) error {
	var buf bytes.Buffer
	if err := r.pages[step].ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", step, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func renderMarkdown(name string) (template.HTML, error) {
	src, err := files.ReadFile(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := goldmark.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("convert %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}
