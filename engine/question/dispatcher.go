package question

import (
	"fmt"
	"slices"
	"sync"

	"github.com/tinkerfai/tinkerfai/engine/answer"
	"github.com/tinkerfai/tinkerfai/engine/upload"
)

// Callbacks receive the normalized answer and validity after mount and every edit.
type Callbacks struct {
	OnAnswerChange   func(answer.Payload)
	OnValidityChange func(bool)
}

// Dispatcher mounts one renderer at a time and relays its changes.
type Dispatcher struct {
	mu       sync.Mutex
	cb       Callbacks
	question *Question
	current  Renderer
}

func NewDispatcher(cb Callbacks) *Dispatcher {
	return &Dispatcher{cb: cb}
}

// Build creates the renderer for q, seeded from the stored answer when present.
func Build(q *Question, existing *answer.Stored, summary *DatasetSummary) (Renderer, error) {
	seed, err := answer.FromStored(q.QuestionType.AnswerType(), existing)
	if err != nil {
		return nil, err
	}
	switch q.QuestionType {
	case KindText:
		return &Text{required: q.IsRequired, text: seed.Text}, nil
	case KindRadio:
		return &Radio{required: q.IsRequired, options: q.Options, selected: seed.Option}, nil
	case KindMultiSelect:
		return &MultiSelect{required: q.IsRequired, options: q.Options, selected: seed.Options}, nil
	case KindFile:
		r := &File{
			required: q.IsRequired,
			types:    slices.Clone(q.AllowedFileTypes()),
			maxSize:  q.MaxUploadSize(),
			status:   upload.StatusIdle,
		}
		if existing.HasFile() {
			r.Succeed(seed.File)
		}
		return r, nil
	case KindReadOnly:
		return &ReadOnly{text: q.QuestionText, code: q.GeneratedCode, summary: summary}, nil
	case KindSlider:
		if q.SliderConfig == nil {
			return nil, fmt.Errorf("slider: %w", ErrMissingConfig)
		}
		value := seed.Slider
		if value == 0 {
			value = q.SliderConfig.Default
		}
		if value == 0 {
			value = DefaultSliderPos
		}
		return &Slider{config: *q.SliderConfig, value: value}, nil
	case KindHyperparameter:
		if len(q.Hyperparameters) == 0 {
			return nil, fmt.Errorf("hyperparameter: %w", ErrMissingConfig)
		}
		values := make(map[string]any, len(q.Hyperparameters))
		for _, spec := range q.Hyperparameters {
			if v, ok := seed.Hyperparameters[spec.Name]; ok {
				values[spec.Name] = v
				continue
			}
			values[spec.Name] = spec.Default
		}
		return &Hyperparameter{specs: q.Hyperparameters, values: values}, nil
	}
	return nil, &ErrUnknownKind{Tag: string(q.QuestionType)}
}

// Mount replaces the current renderer with one for q and emits its initial state.
// A failed mount leaves nothing mounted.
func (d *Dispatcher) Mount(q Question, existing *answer.Stored, summary *DatasetSummary) (Renderer, error) {
	r, err := Build(&q, existing, summary)
	d.mu.Lock()
	if err != nil {
		d.question, d.current = nil, nil
		d.mu.Unlock()
		return nil, err
	}
	d.question, d.current = &q, r
	payload, valid := r.Answer(), r.Valid()
	d.mu.Unlock()
	d.emit(payload, valid)
	return r, nil
}

// Unmount discards the current renderer.
func (d *Dispatcher) Unmount() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.question, d.current = nil, nil
}

// Current returns the mounted renderer, or nil.
func (d *Dispatcher) Current() Renderer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Question returns the mounted question, or nil.
func (d *Dispatcher) Question() *Question {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.question
}

// Edit applies fn to the mounted renderer and re-emits both callbacks.
// Callbacks are emitted even when fn fails, since a failed edit may change validity.
func (d *Dispatcher) Edit(fn func(Renderer) error) error {
	d.mu.Lock()
	r := d.current
	if r == nil {
		d.mu.Unlock()
		return ErrNothingMounted
	}
	err := fn(r)
	payload, valid := r.Answer(), r.Valid()
	d.mu.Unlock()
	d.emit(payload, valid)
	return err
}

// Inspect runs fn with the mounted renderer without emitting callbacks.
// It reports false when nothing is mounted.
func (d *Dispatcher) Inspect(fn func(Renderer)) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil {
		return false
	}
	fn(d.current)
	return true
}

func (d *Dispatcher) emit(payload answer.Payload, valid bool) {
	if d.cb.OnAnswerChange != nil {
		d.cb.OnAnswerChange(payload)
	}
	if d.cb.OnValidityChange != nil {
		d.cb.OnValidityChange(valid)
	}
}
