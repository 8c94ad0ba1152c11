package question

import (
	"fmt"

	"github.com/tinkerfai/tinkerfai/engine/answer"
)

// Kind is the closed set of question types.
type Kind string

const (
	KindText           Kind = "text"
	KindRadio          Kind = "radio"
	KindMultiSelect    Kind = "multiselect"
	KindFile           Kind = "file"
	KindReadOnly       Kind = "readonly"
	KindSlider         Kind = "slider"
	KindHyperparameter Kind = "hyperparameter"
)

// ErrUnknownKind is returned for a question type outside the closed set.
type ErrUnknownKind struct {
	Tag string
}

func (e *ErrUnknownKind) Error() string {
	return fmt.Sprintf("unknown question type: %s", e.Tag)
}

// ParseKind validates a question type tag.
func ParseKind(tag string) (Kind, error) {
	k := Kind(tag)
	switch k {
	case KindText, KindRadio, KindMultiSelect, KindFile,
		KindReadOnly, KindSlider, KindHyperparameter:
		return k, nil
	}
	return "", &ErrUnknownKind{Tag: tag}
}

// AnswerType maps a question kind to the tag of the answer it produces.
func (k Kind) AnswerType() answer.Type {
	switch k {
	case KindText:
		return answer.TypeText
	case KindRadio:
		return answer.TypeRadio
	case KindMultiSelect:
		return answer.TypeMultiSelect
	case KindFile:
		return answer.TypeFile
	case KindReadOnly:
		return answer.TypeReadOnly
	case KindSlider:
		return answer.TypeSlider
	case KindHyperparameter:
		return answer.TypeHyperparameter
	}
	return ""
}

func (k Kind) String() string {
	return string(k)
}

// UnmarshalText rejects unknown tags when decoding a question.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
