package answer

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Type tags the variant carried by a Payload.
type Type string

const (
	TypeText           Type = "text"
	TypeRadio          Type = "radio"
	TypeMultiSelect    Type = "multiselect"
	TypeFile           Type = "file"
	TypeSlider         Type = "slider"
	TypeHyperparameter Type = "hyperparameter"
	TypeReadOnly       Type = "readonly"
)

// ReadOnlySentinel is the raw value emitted by read-only and code-display questions.
const ReadOnlySentinel = "readonly"

var ErrUnknownType = errors.New("unknown answer type")

// Types lists every answer type in declaration order.
func Types() []Type {
	return []Type{
		TypeText, TypeRadio, TypeMultiSelect, TypeFile,
		TypeSlider, TypeHyperparameter, TypeReadOnly,
	}
}

func (t Type) String() string {
	return string(t)
}

// Valid reports whether t is one of the closed set of answer types.
func (t Type) Valid() bool {
	switch t {
	case TypeText, TypeRadio, TypeMultiSelect, TypeFile,
		TypeSlider, TypeHyperparameter, TypeReadOnly:
		return true
	}
	return false
}

// FileRef identifies an uploaded file. URL holds the storage key returned by the server.
type FileRef struct {
	Name string `json:"fileName"`
	URL  string `json:"fileUrl"`
}

// Payload is a normalized answer. Only the field matching Type is meaningful,
// and only that field is encoded.
type Payload struct {
	Type            Type
	Text            string
	Option          string
	Options         []string
	File            FileRef
	Slider          float64
	Hyperparameters map[string]any
}

func Text(s string) Payload { return Payload{Type: TypeText, Text: s} }

func Radio(option string) Payload { return Payload{Type: TypeRadio, Option: option} }

func MultiSelect(options []string) Payload {
	out := make([]string, len(options))
	copy(out, options)
	return Payload{Type: TypeMultiSelect, Options: out}
}

func File(ref FileRef) Payload { return Payload{Type: TypeFile, File: ref} }

func Slider(v float64) Payload { return Payload{Type: TypeSlider, Slider: v} }

func Hyperparameter(values map[string]any) Payload {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = v
	}
	return Payload{Type: TypeHyperparameter, Hyperparameters: out}
}

func ReadOnly() Payload { return Payload{Type: TypeReadOnly} }

type textWire struct {
	AnswerType Type   `json:"answerType"`
	TextAnswer string `json:"textAnswer"`
}

type radioWire struct {
	AnswerType     Type   `json:"answerType"`
	SelectedOption string `json:"selectedOption"`
}

type multiSelectWire struct {
	AnswerType      Type     `json:"answerType"`
	SelectedOptions []string `json:"selectedOptions"`
}

type fileWire struct {
	AnswerType Type   `json:"answerType"`
	FileName   string `json:"fileName"`
	FileURL    string `json:"fileUrl"`
}

type sliderWire struct {
	AnswerType  Type    `json:"answerType"`
	SliderValue float64 `json:"sliderValue"`
}

type hyperparameterWire struct {
	AnswerType           Type           `json:"answerType"`
	HyperparameterValues map[string]any `json:"hyperparameterValues"`
}

type readOnlyWire struct {
	AnswerType Type `json:"answerType"`
}

// wire returns the variant-specific encoding of p.
func (p Payload) wire() (any, error) {
	switch p.Type {
	case TypeText:
		return textWire{p.Type, p.Text}, nil
	case TypeRadio:
		return radioWire{p.Type, p.Option}, nil
	case TypeMultiSelect:
		opts := p.Options
		if opts == nil {
			opts = []string{}
		}
		return multiSelectWire{p.Type, opts}, nil
	case TypeFile:
		return fileWire{p.Type, p.File.Name, p.File.URL}, nil
	case TypeSlider:
		return sliderWire{p.Type, p.Slider}, nil
	case TypeHyperparameter:
		values := p.Hyperparameters
		if values == nil {
			values = map[string]any{}
		}
		return hyperparameterWire{p.Type, values}, nil
	case TypeReadOnly:
		return readOnlyWire{p.Type}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, p.Type)
}

// MarshalJSON encodes the answerType tag followed by the variant's fields.
func (p Payload) MarshalJSON() ([]byte, error) {
	w, err := p.wire()
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a tagged payload, rejecting unknown tags.
func (p *Payload) UnmarshalJSON(data []byte) error {
	var s Stored
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	out, err := FromStored(s.AnswerType, &s)
	if err != nil {
		return err
	}
	*p = out
	return nil
}

// Equal reports whether two payloads encode identically.
func (p Payload) Equal(other Payload) bool {
	a, errA := json.Marshal(p)
	b, errB := json.Marshal(other)
	return errA == nil && errB == nil && string(a) == string(b)
}
