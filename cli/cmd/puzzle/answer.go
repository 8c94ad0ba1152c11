package puzzle

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
	"github.com/tinkerfai/tinkerfai/cli/api"
	"github.com/tinkerfai/tinkerfai/engine/answer"
	"github.com/tinkerfai/tinkerfai/engine/progress"
	"github.com/tinkerfai/tinkerfai/engine/question"
	"github.com/tinkerfai/tinkerfai/engine/session"
	"github.com/tinkerfai/tinkerfai/engine/upload"
	"github.com/tinkerfai/tinkerfai/engine/workflow"
)

// answerInput is an answer given on the command line. Value is interpreted
// by question kind; File is a local path for file questions.
type answerInput struct {
	Value string
	File  string
}

type answerResult struct {
	Success    bool                `json:"success"`
	QuestionID string              `json:"questionId"`
	Kind       question.Kind       `json:"questionType"`
	Answer     *answer.Payload     `json:"answer,omitempty"`
	Transition progress.Transition `json:"transition"`
}

// submitOnce answers the question at (t, s) without an interactive session.
// The walkthrough resumes at that step so the submission goes through the same
// load, edit, validate and submit path as the terminal view.
func submitOnce(
	ctx context.Context,
	backend workflow.Backend,
	sess *session.Session,
	fs afero.Fs,
	projectID string,
	t, s int,
	in answerInput,
) (*answerResult, error) {
	machine, err := progress.Resume(t, s)
	if err != nil {
		return nil, &api.ValidationError{Field: "task", Message: err.Error()}
	}
	wf := workflow.New(backend, sess, projectID, workflow.WithMachine(machine))
	loaded, err := wf.LoadQuestion(ctx)
	if err != nil {
		return nil, err
	}
	kind := loaded.Question.QuestionType
	switch {
	case kind == question.KindFile && in.File != "":
		name, data, err := upload.LoadFile(fs, in.File)
		if err != nil {
			return nil, err
		}
		if err := wf.UploadFile(ctx, name, data); err != nil {
			return nil, err
		}
	case in.File != "":
		return nil, &api.ValidationError{Field: "file", Message: fmt.Sprintf("a %s question does not accept files", kind)}
	case in.Value != "":
		if err := wf.Edit(func(r question.Renderer) error { return applyValue(r, in.Value) }); err != nil {
			return nil, &api.ValidationError{Field: "value", Message: err.Error()}
		}
	}
	view := wf.View()
	if !view.CanSubmit {
		return nil, &api.ValidationError{Field: "answer", Message: invalidReason(wf, kind)}
	}
	tr, err := wf.Submit(ctx)
	if err != nil {
		return nil, err
	}
	return &answerResult{
		Success:    true,
		QuestionID: loaded.Question.QuestionID,
		Kind:       kind,
		Answer:     view.Answer,
		Transition: tr,
	}, nil
}

// applyValue sets the renderer's answer from command line text.
//
//	text            the text as given
//	radio           one option
//	multiselect     a JSON array or a comma separated list; replaces the selection
//	slider          a number, snapped to the step grid
//	hyperparameter  a JSON object of name to value
func applyValue(r question.Renderer, raw string) error {
	switch r := r.(type) {
	case *question.Text:
		r.SetText(raw)
	case *question.Radio:
		return r.Select(strings.TrimSpace(raw))
	case *question.MultiSelect:
		want := parseList(raw)
		for _, opt := range want {
			if !slices.Contains(r.Options(), opt) {
				return fmt.Errorf("%w: %q", question.ErrUnknownOption, opt)
			}
		}
		for _, opt := range r.Selected() {
			if !slices.Contains(want, opt) {
				_ = r.Toggle(opt)
			}
		}
		for _, opt := range want {
			if !r.IsSelected(opt) {
				_ = r.Toggle(opt)
			}
		}
	case *question.Slider:
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return fmt.Errorf("slider value must be a number: %q", raw)
		}
		r.Set(v)
	case *question.Hyperparameter:
		if !gjson.Valid(raw) || !gjson.Parse(raw).IsObject() {
			return errors.New(`hyperparameter values must be a JSON object, e.g. {"max_depth": 5}`)
		}
		var setErr error
		gjson.Parse(raw).ForEach(func(key, value gjson.Result) bool {
			setErr = r.Set(key.String(), value.String())
			return setErr == nil
		})
		return setErr
	case *question.File:
		return errors.New("file questions take --file")
	case *question.ReadOnly:
	}
	return nil
}

// parseList accepts `["a","b"]` or `a, b`.
func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if gjson.Valid(raw) && gjson.Parse(raw).IsArray() {
		var out []string
		for _, v := range gjson.Parse(raw).Array() {
			out = append(out, v.String())
		}
		return out
	}
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func invalidReason(wf *workflow.Workflow, kind question.Kind) string {
	reason := "an answer is required"
	wf.Inspect(func(r question.Renderer) {
		switch r := r.(type) {
		case *question.Hyperparameter:
			errs := r.Errors()
			names := slices.Sorted(maps.Keys(errs))
			parts := make([]string, 0, len(names))
			for _, name := range names {
				parts = append(parts, name+": "+errs[name])
			}
			if len(parts) > 0 {
				reason = strings.Join(parts, "; ")
			}
		case *question.File:
			reason = "a file is required, pass --file"
			if msg := r.Error(); msg != "" {
				reason = msg
			}
		}
	})
	if kind == question.KindText {
		reason = "an answer is required and cannot be blank"
	}
	return reason
}
