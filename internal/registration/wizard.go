// Package registration implements the store registration wizard: a linear
// sequence of steps that only moves forward once the current step is filled.
package registration

import (
	"fmt"
	"strings"

	"github.com/qbazz/storefront/internal/domain"
	apperrors "github.com/qbazz/storefront/pkg/errors"
)

// StepID names a wizard step after the form field it fills.
type StepID string

const (
	StepTelegramID    StepID = "telegramId"
	StepOwnerID       StepID = "ownerId"
	StepContactNumber StepID = "contactNumber"
	StepLocation      StepID = "location"
	StepAddress       StepID = "address"
)

// StepKind tells the browser which input to render.
type StepKind string

const (
	KindText     StepKind = "text"
	KindTel      StepKind = "tel"
	KindMap      StepKind = "map"
	KindTextarea StepKind = "textarea"
)

// Step describes one wizard step.
type Step struct {
	ID          StepID   `json:"id"`
	Label       string   `json:"label"`
	Kind        StepKind `json:"type"`
	Placeholder string   `json:"placeholder,omitempty"`
}

// Steps is the fixed step order.
var Steps = []Step{
	{ID: StepTelegramID, Label: "آیدی چنل تلگرام", Kind: KindText, Placeholder: "مثال: qbazz_shop"},
	{ID: StepOwnerID, Label: "کد ملی صاحب فروشگاه", Kind: KindText, Placeholder: "کد ملی ۱۰ رقمی را وارد کنید"},
	{ID: StepContactNumber, Label: "شماره تماس", Kind: KindTel, Placeholder: "مثال: 09123456789"},
	{ID: StepLocation, Label: "موقعیت فروشگاه روی نقشه", Kind: KindMap},
	{ID: StepAddress, Label: "آدرس دقیق فروشگاه", Kind: KindTextarea, Placeholder: "آدرس کامل را به همراه پلاک وارد کنید"},
}

// Wizard is the state of one visitor's registration. The zero value is a
// fresh wizard on the first step.
type Wizard struct {
	Current int                     `json:"current"`
	Form    domain.RegistrationForm `json:"form"`
}

// New returns a wizard on the first step.
func New() *Wizard {
	return &Wizard{}
}

// Step returns the current step.
func (w *Wizard) Step() Step {
	return Steps[w.index()]
}

// IsLast reports whether the wizard is on the final step.
func (w *Wizard) IsLast() bool {
	return w.index() == len(Steps)-1
}

// Set stores a value for the current text step.
func (w *Wizard) Set(value string) error {
	step := w.Step()
	field := w.textField(step.ID)
	if field == nil {
		return apperrors.Conflict(fmt.Sprintf("step %s does not take a text value", step.ID))
	}
	*field = value
	return nil
}

// SetLocation stores the map coordinate. Only the map step accepts it.
func (w *Wizard) SetLocation(c domain.Coords) error {
	if w.Step().ID != StepLocation {
		return apperrors.Conflict(fmt.Sprintf("step %s does not take a location", w.Step().ID))
	}
	c = domain.Coords{Lat: clamp(c.Lat), Lng: clamp(c.Lng)}
	w.Form.Location = &c
	return nil
}

// StepValid reports whether the current step is filled.
func (w *Wizard) StepValid() bool {
	return w.valid(w.Step().ID)
}

// CanSubmit reports whether the wizard is on the final step with every step
// filled.
func (w *Wizard) CanSubmit() bool {
	if !w.IsLast() {
		return false
	}
	for _, s := range Steps {
		if !w.valid(s.ID) {
			return false
		}
	}
	return true
}

// Next advances one step. It fails when the current step is empty or the
// wizard is already on the final step.
func (w *Wizard) Next() error {
	if !w.StepValid() {
		return apperrors.Conflict(fmt.Sprintf("step %s is incomplete", w.Step().ID))
	}
	if w.IsLast() {
		return apperrors.Conflict("already on the final step")
	}
	w.Current = w.index() + 1
	return nil
}

// Submit returns the collected form with text values trimmed.
func (w *Wizard) Submit() (domain.RegistrationForm, error) {
	if !w.CanSubmit() {
		return domain.RegistrationForm{}, apperrors.Conflict("registration is not ready to submit")
	}
	form := w.Form
	form.TelegramID = strings.TrimSpace(form.TelegramID)
	form.OwnerID = strings.TrimSpace(form.OwnerID)
	form.ContactNumber = strings.TrimSpace(form.ContactNumber)
	form.Address = strings.TrimSpace(form.Address)
	loc := *form.Location
	form.Location = &loc
	return form, nil
}

func (w *Wizard) valid(id StepID) bool {
	if id == StepLocation {
		return w.Form.Location != nil
	}
	field := w.textField(id)
	return field != nil && strings.TrimSpace(*field) != ""
}

func (w *Wizard) textField(id StepID) *string {
	switch id {
	case StepTelegramID:
		return &w.Form.TelegramID
	case StepOwnerID:
		return &w.Form.OwnerID
	case StepContactNumber:
		return &w.Form.ContactNumber
	case StepAddress:
		return &w.Form.Address
	default:
		return nil
	}
}

// index guards against out-of-range values restored from storage.
func (w *Wizard) index() int {
	switch {
	case w.Current < 0:
		return 0
	case w.Current >= len(Steps):
		return len(Steps) - 1
	default:
		return w.Current
	}
}

// View is the wizard as presented to the browser.
type View struct {
	Step      Step                    `json:"step"`
	Index     int                     `json:"index"`
	Total     int                     `json:"total"`
	StepValid bool                    `json:"stepValid"`
	CanSubmit bool                    `json:"canSubmit"`
	Form      domain.RegistrationForm `json:"form"`
}

// View renders the wizard.
func (w *Wizard) View() View {
	return View{
		Step:      w.Step(),
		Index:     w.index(),
		Total:     len(Steps),
		StepValid: w.StepValid(),
		CanSubmit: w.CanSubmit(),
		Form:      w.Form,
	}
}
