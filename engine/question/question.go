package question

import (
	"errors"

	"github.com/tinkerfai/tinkerfai/engine/answer"
)

const (
	DefaultSliderPos = 80
	DefaultMaxUpload = 5 * 1024 * 1024
)

// DefaultFileTypes is the extension allowlist used when a question declares none.
var DefaultFileTypes = []string{".csv"}

// ErrMissingConfig is returned when a slider or hyperparameter question
// arrives without the configuration it needs to render.
var ErrMissingConfig = errors.New("question configuration missing")

// ErrNothingMounted is returned when editing with no question mounted.
var ErrNothingMounted = errors.New("no question mounted")

// Question is a server-declared prompt for one (task, subtask).
type Question struct {
	QuestionID      string               `json:"questionId"`
	TaskIndex       int                  `json:"taskIndex"`
	SubtaskIndex    int                  `json:"subtaskIndex"`
	QuestionType    Kind                 `json:"questionType"`
	QuestionText    string               `json:"questionText"`
	IsRequired      bool                 `json:"isRequired"`
	Options         []string             `json:"options,omitempty"`
	FileTypes       []string             `json:"fileTypes,omitempty"`
	MaxFileSize     int64                `json:"maxFileSize,omitempty"`
	SliderConfig    *SliderConfig        `json:"sliderConfig,omitempty"`
	Hyperparameters []HyperparameterSpec `json:"hyperparameters,omitempty"`
	GeneratedCode   string               `json:"generatedCode,omitempty"`
}

type SliderConfig struct {
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Default    float64 `json:"default"`
	Step       float64 `json:"step"`
	LeftLabel  string  `json:"leftLabel"`
	RightLabel string  `json:"rightLabel"`
}

// ParamType is the declared type of a hyperparameter.
type ParamType string

const (
	ParamInteger ParamType = "integer"
	ParamFloat   ParamType = "float"
	ParamSelect  ParamType = "select"
)

type HyperparameterSpec struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Min         *float64  `json:"min,omitempty"`
	Max         *float64  `json:"max,omitempty"`
	Default     any       `json:"default"`
	Options     []string  `json:"options,omitempty"`
	Description string    `json:"description"`
}

// Loaded is a question together with the caller's stored answer and,
// for read-only questions, the dataset summary.
type Loaded struct {
	Question       Question        `json:"question"`
	ExistingAnswer *answer.Stored  `json:"existingAnswer,omitempty"`
	DatasetSummary *DatasetSummary `json:"datasetSummary,omitempty"`
}

// DatasetSummary describes an uploaded dataset. It accompanies read-only questions.
type DatasetSummary struct {
	RowCount      int             `json:"rowCount"`
	ColumnCount   int             `json:"columnCount"`
	Columns       []ColumnSummary `json:"columns"`
	MissingValues map[string]int  `json:"missingValues,omitempty"`
}

type ColumnSummary struct {
	Name         string   `json:"name"`
	SemanticType string   `json:"semantic_type"`
	UniqueValues int      `json:"unique_values"`
	Mean         *float64 `json:"mean,omitempty"`
	Mode         any      `json:"mode,omitempty"`
	MissingCount int      `json:"missing_count"`
}

// AllowedFileTypes returns the declared allowlist or the default.
func (q *Question) AllowedFileTypes() []string {
	if len(q.FileTypes) == 0 {
		return DefaultFileTypes
	}
	return q.FileTypes
}

// MaxUploadSize returns the declared byte limit or the default.
func (q *Question) MaxUploadSize() int64 {
	if q.MaxFileSize <= 0 {
		return DefaultMaxUpload
	}
	return q.MaxFileSize
}

// IsCodeDisplay reports whether a read-only question carries generated code.
func (q *Question) IsCodeDisplay() bool {
	return q.QuestionType == KindReadOnly && q.GeneratedCode != ""
}

// APITaskNumber is the 1-based task number used by the question endpoint.
func APITaskNumber(taskIndex int) int {
	return taskIndex + 1
}
