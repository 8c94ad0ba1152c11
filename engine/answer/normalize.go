package answer

import (
	"errors"
	"fmt"
)

var ErrRawMismatch = errors.New("raw value does not match answer type")

// Stored is an answer as returned by the server alongside a question.
type Stored struct {
	UserEmail            string         `json:"userEmail,omitempty"`
	ProjectID            string         `json:"projectId,omitempty"`
	TaskIndex            int            `json:"taskIndex"`
	SubtaskIndex         int            `json:"subtaskIndex"`
	QuestionID           string         `json:"questionId,omitempty"`
	AnswerType           Type           `json:"answerType"`
	TextAnswer           string         `json:"textAnswer,omitempty"`
	SelectedOption       string         `json:"selectedOption,omitempty"`
	SelectedOptions      []string       `json:"selectedOptions,omitempty"`
	FileName             string         `json:"fileName,omitempty"`
	FileURL              string         `json:"fileUrl,omitempty"`
	SliderValue          *float64       `json:"sliderValue,omitempty"`
	HyperparameterValues map[string]any `json:"hyperparameterValues,omitempty"`
	AnsweredAt           string         `json:"answeredAt,omitempty"`
}

// HasFile reports whether the stored answer references an uploaded file.
func (s *Stored) HasFile() bool {
	return s != nil && s.FileName != "" && s.FileURL != ""
}

// FromStored tags a stored answer as t. Missing fields hydrate to their zero
// values, so a nil stored answer yields the empty payload for t.
// A missing slider value hydrates to 0; callers substitute the question default.
func FromStored(t Type, s *Stored) (Payload, error) {
	if s == nil {
		s = &Stored{}
	}
	switch t {
	case TypeText:
		return Text(s.TextAnswer), nil
	case TypeRadio:
		return Radio(s.SelectedOption), nil
	case TypeMultiSelect:
		return MultiSelect(s.SelectedOptions), nil
	case TypeFile:
		return File(FileRef{Name: s.FileName, URL: s.FileURL}), nil
	case TypeSlider:
		if s.SliderValue == nil {
			return Slider(0), nil
		}
		return Slider(*s.SliderValue), nil
	case TypeHyperparameter:
		return Hyperparameter(s.HyperparameterValues), nil
	case TypeReadOnly:
		return ReadOnly(), nil
	}
	return Payload{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
}

// FromEdit tags a raw edit value as t.
//
//	text, radio     string
//	multiselect     []string
//	file            FileRef
//	slider          float64 or int
//	hyperparameter  map[string]any
//	readonly        anything (ignored)
func FromEdit(t Type, raw any) (Payload, error) {
	mismatch := func() (Payload, error) {
		return Payload{}, fmt.Errorf("%w: %s got %T", ErrRawMismatch, t, raw)
	}
	switch t {
	case TypeText:
		v, ok := raw.(string)
		if !ok {
			return mismatch()
		}
		return Text(v), nil
	case TypeRadio:
		v, ok := raw.(string)
		if !ok {
			return mismatch()
		}
		return Radio(v), nil
	case TypeMultiSelect:
		v, ok := raw.([]string)
		if !ok {
			return mismatch()
		}
		return MultiSelect(v), nil
	case TypeFile:
		v, ok := raw.(FileRef)
		if !ok {
			return mismatch()
		}
		return File(v), nil
	case TypeSlider:
		switch v := raw.(type) {
		case float64:
			return Slider(v), nil
		case int:
			return Slider(float64(v)), nil
		}
		return mismatch()
	case TypeHyperparameter:
		v, ok := raw.(map[string]any)
		if !ok {
			return mismatch()
		}
		return Hyperparameter(v), nil
	case TypeReadOnly:
		return ReadOnly(), nil
	}
	return Payload{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
}
