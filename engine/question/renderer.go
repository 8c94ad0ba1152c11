package question

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/tinkerfai/tinkerfai/engine/answer"
	"github.com/tinkerfai/tinkerfai/engine/upload"
)

// Renderer owns the input state of one mounted question.
type Renderer interface {
	Kind() Kind
	Valid() bool
	Answer() answer.Payload
}

var ErrUnknownOption = errors.New("option is not offered by this question")

// -----------------------------------------------------------------------------
// Text
// -----------------------------------------------------------------------------

type Text struct {
	required bool
	text     string
}

func (r *Text) Kind() Kind { return KindText }

func (r *Text) Valid() bool {
	return !r.required || strings.TrimSpace(r.text) != ""
}

func (r *Text) Answer() answer.Payload { return answer.Text(r.text) }

func (r *Text) Value() string { return r.text }

func (r *Text) SetText(s string) { r.text = s }

// -----------------------------------------------------------------------------
// Radio
// -----------------------------------------------------------------------------

type Radio struct {
	required bool
	options  []string
	selected string
}

func (r *Radio) Kind() Kind { return KindRadio }

func (r *Radio) Valid() bool { return !r.required || r.selected != "" }

func (r *Radio) Answer() answer.Payload { return answer.Radio(r.selected) }

func (r *Radio) Options() []string { return r.options }

func (r *Radio) Selected() string { return r.selected }

func (r *Radio) Select(option string) error {
	if !slices.Contains(r.options, option) {
		return fmt.Errorf("%w: %q", ErrUnknownOption, option)
	}
	r.selected = option
	return nil
}

// -----------------------------------------------------------------------------
// MultiSelect
// -----------------------------------------------------------------------------

type MultiSelect struct {
	required bool
	options  []string
	selected []string
}

func (r *MultiSelect) Kind() Kind { return KindMultiSelect }

func (r *MultiSelect) Valid() bool { return !r.required || len(r.selected) > 0 }

func (r *MultiSelect) Answer() answer.Payload { return answer.MultiSelect(r.selected) }

func (r *MultiSelect) Options() []string { return r.options }

func (r *MultiSelect) Selected() []string { return slices.Clone(r.selected) }

func (r *MultiSelect) IsSelected(option string) bool {
	return slices.Contains(r.selected, option)
}

// Toggle adds or removes option, keeping selection order.
func (r *MultiSelect) Toggle(option string) error {
	if !slices.Contains(r.options, option) {
		return fmt.Errorf("%w: %q", ErrUnknownOption, option)
	}
	if i := slices.Index(r.selected, option); i >= 0 {
		r.selected = slices.Delete(r.selected, i, i+1)
		return nil
	}
	r.selected = append(r.selected, option)
	return nil
}

// AllSelected reports whether every option is selected.
func (r *MultiSelect) AllSelected() bool {
	return len(r.options) > 0 && len(r.selected) == len(r.options)
}

// SelectAll selects every option, or clears the selection when all are selected.
func (r *MultiSelect) SelectAll() {
	if r.AllSelected() {
		r.selected = nil
		return
	}
	r.selected = slices.Clone(r.options)
}

// -----------------------------------------------------------------------------
// File
// -----------------------------------------------------------------------------

type File struct {
	required bool
	types    []string
	maxSize  int64
	status   upload.Status
	progress int
	uploaded *answer.FileRef
	errMsg   string
}

func (r *File) Kind() Kind { return KindFile }

// Valid requires a file that finished upload and validation.
func (r *File) Valid() bool {
	return !r.required || (r.uploaded != nil && r.status == upload.StatusSuccess)
}

func (r *File) Answer() answer.Payload {
	if r.uploaded == nil {
		return answer.File(answer.FileRef{})
	}
	return answer.File(*r.uploaded)
}

func (r *File) Status() upload.Status { return r.status }

func (r *File) Progress() int { return r.progress }

func (r *File) Error() string { return r.errMsg }

// Uploaded returns the completed file, or nil.
func (r *File) Uploaded() *answer.FileRef {
	if r.uploaded == nil {
		return nil
	}
	ref := *r.uploaded
	return &ref
}

// Disabled reports whether new file selection is blocked.
func (r *File) Disabled() bool { return r.status.Busy() }

// Hint describes what the question accepts.
func (r *File) Hint() string {
	return fmt.Sprintf("Supported: %s • Max %s", strings.Join(r.types, ", "), humanize.IBytes(uint64(r.maxSize)))
}

// Check runs the local pre-upload checks. A failure puts the renderer in the error state.
// While an upload is running the renderer is left untouched.
func (r *File) Check(name string, size int64) error {
	if r.Disabled() {
		return upload.ErrUploadInProgress
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !slices.Contains(r.types, ext) {
		return r.reject(fmt.Sprintf("Invalid file type. Allowed types: %s", strings.Join(r.types, ", ")))
	}
	if size > r.maxSize {
		mb := int64(math.Round(float64(r.maxSize) / (1024 * 1024)))
		return r.reject(fmt.Sprintf("File size exceeds %dMB limit", mb))
	}
	return nil
}

// textExtensions are the accepted types whose content must sniff as text.
var textExtensions = []string{".csv", ".tsv", ".txt", ".json"}

// CheckContent rejects a text-format file whose bytes sniff as binary.
func (r *File) CheckContent(name string, data []byte) error {
	if r.Disabled() {
		return upload.ErrUploadInProgress
	}
	ext := strings.ToLower(filepath.Ext(name))
	if slices.Contains(textExtensions, ext) && !upload.LooksLikeText(data) {
		return r.reject(fmt.Sprintf("File content does not match the %s format", ext))
	}
	return nil
}

func (r *File) reject(msg string) error {
	r.errMsg = msg
	r.status = upload.StatusError
	return errors.New(msg)
}

// Begin clears any previous file and enters the uploading state.
func (r *File) Begin() error {
	if r.Disabled() {
		return upload.ErrUploadInProgress
	}
	r.uploaded = nil
	r.errMsg = ""
	r.status = upload.StatusUploading
	r.progress = 0
	return nil
}

// Advance records an intermediate status reported by the uploader.
func (r *File) Advance(status upload.Status, progress int) {
	r.status = status
	r.progress = progress
}

func (r *File) Succeed(ref answer.FileRef) {
	r.uploaded = &ref
	r.status = upload.StatusSuccess
	r.progress = 100
	r.errMsg = ""
}

// Fail reverts to the no-file state and keeps msg for display.
func (r *File) Fail(msg string) {
	r.uploaded = nil
	r.status = upload.StatusError
	r.progress = 0
	r.errMsg = msg
}

// Remove discards the uploaded file. It is refused while an upload is running.
func (r *File) Remove() error {
	if r.Disabled() {
		return upload.ErrUploadInProgress
	}
	r.uploaded = nil
	r.status = upload.StatusIdle
	r.progress = 0
	r.errMsg = ""
	return nil
}

// -----------------------------------------------------------------------------
// Slider
// -----------------------------------------------------------------------------

type Slider struct {
	config SliderConfig
	value  float64
}

func (r *Slider) Kind() Kind { return KindSlider }

func (r *Slider) Valid() bool { return true }

func (r *Slider) Answer() answer.Payload { return answer.Slider(r.value) }

func (r *Slider) Config() SliderConfig { return r.config }

func (r *Slider) Value() float64 { return r.value }

// Set clamps v to the configured bounds and snaps it to the step grid.
func (r *Slider) Set(v float64) {
	c := r.config
	if c.Step > 0 {
		v = c.Min + math.Round((v-c.Min)/c.Step)*c.Step
	}
	if c.Max > c.Min {
		v = math.Max(c.Min, math.Min(c.Max, v))
	}
	r.value = v
}

// Labels returns the left and right split labels, e.g. "Training: 80%" and "Testing: 20%".
func (r *Slider) Labels() (left, right string) {
	left = fmt.Sprintf("%s: %s%%", r.config.LeftLabel, formatNumber(r.value))
	right = fmt.Sprintf("%s: %s%%", r.config.RightLabel, formatNumber(100-r.value))
	return left, right
}

// -----------------------------------------------------------------------------
// Hyperparameter
// -----------------------------------------------------------------------------

type Hyperparameter struct {
	specs  []HyperparameterSpec
	values map[string]any
}

func (r *Hyperparameter) Kind() Kind { return KindHyperparameter }

func (r *Hyperparameter) Valid() bool { return len(r.Errors()) == 0 }

func (r *Hyperparameter) Answer() answer.Payload { return answer.Hyperparameter(r.values) }

func (r *Hyperparameter) Specs() []HyperparameterSpec { return r.specs }

func (r *Hyperparameter) Value(name string) any { return r.values[name] }

// Set stores raw input for name. Numeric parameters keep a number when raw parses.
func (r *Hyperparameter) Set(name, raw string) error {
	idx := slices.IndexFunc(r.specs, func(s HyperparameterSpec) bool { return s.Name == name })
	if idx < 0 {
		return fmt.Errorf("unknown hyperparameter: %s", name)
	}
	switch r.specs[idx].Type {
	case ParamInteger, ParamFloat:
		if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			r.values[name] = f
			return nil
		}
	}
	r.values[name] = raw
	return nil
}

// Errors returns the validation message of every invalid parameter.
func (r *Hyperparameter) Errors() map[string]string {
	errs := make(map[string]string)
	for _, spec := range r.specs {
		if msg := checkParam(spec, r.values[spec.Name]); msg != "" {
			errs[spec.Name] = msg
		}
	}
	return errs
}

func checkParam(spec HyperparameterSpec, value any) string {
	switch spec.Type {
	case ParamInteger, ParamFloat:
		n, ok := toNumber(value)
		if !ok {
			return "Must be a valid number"
		}
		if spec.Type == ParamInteger && n != math.Trunc(n) {
			return "Must be a whole number"
		}
		if spec.Min != nil && n < *spec.Min {
			return "Must be at least " + formatNumber(*spec.Min)
		}
		if spec.Max != nil && n > *spec.Max {
			return "Must be at most " + formatNumber(*spec.Max)
		}
	case ParamSelect:
		if len(spec.Options) == 0 {
			return ""
		}
		s, ok := value.(string)
		if !ok || !slices.Contains(spec.Options, s) {
			return "Invalid selection"
		}
	}
	return ""
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// -----------------------------------------------------------------------------
// ReadOnly
// -----------------------------------------------------------------------------

// ReadOnly shows information only. With generated code it is the code display.
type ReadOnly struct {
	text    string
	code    string
	summary *DatasetSummary
}

func (r *ReadOnly) Kind() Kind { return KindReadOnly }

func (r *ReadOnly) Valid() bool { return true }

func (r *ReadOnly) Answer() answer.Payload { return answer.ReadOnly() }

func (r *ReadOnly) Code() string { return r.code }

func (r *ReadOnly) IsCode() bool { return r.code != "" }

func (r *ReadOnly) Summary() *DatasetSummary { return r.summary }
