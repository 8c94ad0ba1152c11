package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tinkerfai/tinkerfai/engine/answer"
	"github.com/tinkerfai/tinkerfai/engine/progress"
	"github.com/tinkerfai/tinkerfai/engine/question"
	"github.com/tinkerfai/tinkerfai/engine/session"
	"github.com/tinkerfai/tinkerfai/engine/upload"
	"github.com/tinkerfai/tinkerfai/pkg/logger"
)

var (
	// ErrStale is returned when a response arrived after its view was cancelled
	// or after the active (task, subtask) changed. The response was not applied.
	ErrStale          = errors.New("response dropped: view changed")
	ErrNoTaskSelected = errors.New("no task selected")
	ErrNotReady       = errors.New("answer is missing or invalid")
	ErrNothingToRetry = errors.New("no failed load to retry")
	ErrNoUser         = session.ErrNoUser
)

// Backend is the remote API used by the walkthrough.
type Backend interface {
	GetQuestion(ctx context.Context, projectID string, taskIndex, subtaskIndex int) (*question.Loaded, error)
	SubmitAnswer(ctx context.Context, sub answer.Submission) (string, error)
	upload.Backend
}

// View is a consistent snapshot for rendering.
type View struct {
	ProjectID  string            `json:"projectId"`
	Progress   progress.Snapshot `json:"progress"`
	Layout     progress.Layout   `json:"layout"`
	Loading    bool              `json:"loading"`
	Loaded     *question.Loaded  `json:"loaded,omitempty"`
	Answer     *answer.Payload   `json:"answer,omitempty"`
	Valid      bool              `json:"valid"`
	CanSubmit  bool              `json:"canSubmit"`
	Submitting bool              `json:"submitting"`
	Error      string            `json:"error,omitempty"`
	Retryable  bool              `json:"retryable"`
}

type slot struct {
	task, subtask int
}

// Workflow drives one project's walkthrough: the progression state machine,
// the mounted question and answer submission.
type Workflow struct {
	backend    Backend
	session    *session.Session
	projectID  string
	machine    *progress.Machine
	dispatcher *question.Dispatcher
	uploader   *upload.Uploader
	onChange   func()

	mu         sync.Mutex
	layout     progress.Layout
	gen        uint64
	current    slot
	loading    bool
	loaded     *question.Loaded
	answer     *answer.Payload
	valid      bool
	submitting bool
	errMsg     string
	failedLoad bool
}

type Option func(*Workflow)

// WithOnChange registers fn to run after every state change.
func WithOnChange(fn func()) Option {
	return func(w *Workflow) { w.onChange = fn }
}

// WithMachine resumes from an existing state machine.
func WithMachine(m *progress.Machine) Option {
	return func(w *Workflow) { w.machine = m }
}

func New(backend Backend, sess *session.Session, projectID string, opts ...Option) *Workflow {
	w := &Workflow{
		backend:   backend,
		session:   sess,
		projectID: projectID,
		machine:   progress.New(),
		uploader:  upload.NewUploader(backend),
		layout:    progress.NewLayout(),
	}
	w.dispatcher = question.NewDispatcher(question.Callbacks{
		OnAnswerChange: func(p answer.Payload) {
			w.mu.Lock()
			w.answer = &p
			w.mu.Unlock()
		},
		OnValidityChange: func(v bool) {
			w.mu.Lock()
			w.valid = v
			w.mu.Unlock()
		},
	})
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Workflow) ProjectID() string { return w.projectID }

func (w *Workflow) Machine() *progress.Machine { return w.machine }

// Renderer returns the mounted question's renderer, or nil.
func (w *Workflow) Renderer() question.Renderer { return w.dispatcher.Current() }

func (w *Workflow) changed() {
	if w.onChange != nil {
		w.onChange()
	}
}

// SelectTask enters task t and clears any previous question.
func (w *Workflow) SelectTask(t int) progress.Transition {
	tr := w.machine.SelectTask(t)
	if tr.Changed() {
		w.resetQuestion()
		w.changed()
	}
	return tr
}

// Layout returns the current panel heights.
func (w *Workflow) Layout() progress.Layout {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.layout
}

// UpdateLayout applies fn to the panel heights.
func (w *Workflow) UpdateLayout(fn func(*progress.Layout)) progress.Layout {
	w.mu.Lock()
	fn(&w.layout)
	l := w.layout
	w.mu.Unlock()
	w.changed()
	return l
}

func (w *Workflow) resetQuestion() {
	w.dispatcher.Unmount()
	w.mu.Lock()
	w.gen++
	w.loading = false
	w.loaded = nil
	w.answer = nil
	w.valid = false
	w.errMsg = ""
	w.failedLoad = false
	w.mu.Unlock()
}

// LoadQuestion fetches and mounts the question for the active (task, subtask).
// Validity starts true when the caller already answered it.
func (w *Workflow) LoadQuestion(ctx context.Context) (*question.Loaded, error) {
	log := logger.FromContext(ctx).With("project_id", w.projectID)
	task, subtask, ok := w.machine.Selected()
	if !ok {
		w.resetQuestion()
		return nil, ErrNoTaskSelected
	}
	w.dispatcher.Unmount()
	w.mu.Lock()
	w.gen++
	gen := w.gen
	w.current = slot{task, subtask}
	w.loading = true
	w.loaded, w.answer, w.valid = nil, nil, false
	w.errMsg, w.failedLoad = "", false
	w.mu.Unlock()
	w.changed()

	res, err := w.backend.GetQuestion(ctx, w.projectID, task, subtask)

	if w.stale(ctx, gen, task, subtask) {
		log.Debug("Dropping stale question", "task", task, "subtask", subtask)
		return nil, ErrStale
	}
	if err != nil {
		w.mu.Lock()
		w.loading = false
		w.errMsg = err.Error()
		w.failedLoad = true
		w.mu.Unlock()
		w.changed()
		return nil, err
	}

	_, mountErr := w.dispatcher.Mount(res.Question, res.ExistingAnswer, res.DatasetSummary)
	w.mu.Lock()
	w.loading = false
	w.loaded = res
	if res.ExistingAnswer != nil && mountErr == nil {
		w.valid = true
	}
	if mountErr != nil {
		w.errMsg = mountErr.Error()
	}
	w.mu.Unlock()
	w.changed()
	if mountErr != nil {
		return res, fmt.Errorf("failed to render question: %w", mountErr)
	}
	log.Debug("Question loaded", "task", task, "subtask", subtask, "kind", res.Question.QuestionType)
	return res, nil
}

func (w *Workflow) stale(ctx context.Context, gen uint64, task, subtask int) bool {
	if ctx.Err() != nil {
		return true
	}
	t, s, ok := w.machine.Selected()
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.gen != gen || !ok || t != task || s != subtask
}

// Retry reissues the last failed load.
func (w *Workflow) Retry(ctx context.Context) (*question.Loaded, error) {
	w.mu.Lock()
	failed := w.failedLoad
	w.mu.Unlock()
	if !failed {
		return nil, ErrNothingToRetry
	}
	return w.LoadQuestion(ctx)
}

// Inspect runs fn with the mounted renderer for reading. It reports false when
// nothing is mounted.
func (w *Workflow) Inspect(fn func(question.Renderer)) bool {
	return w.dispatcher.Inspect(fn)
}

// Edit applies fn to the mounted renderer.
func (w *Workflow) Edit(fn func(question.Renderer) error) error {
	err := w.dispatcher.Edit(fn)
	w.changed()
	return err
}

// CanSubmit reports whether the submit control is enabled.
func (w *Workflow) CanSubmit() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canSubmitLocked()
}

func (w *Workflow) canSubmitLocked() bool {
	return w.loaded != nil && w.answer != nil && w.valid && !w.submitting && !w.loading
}

// Submit posts the current answer and, on success, completes the active subtask.
func (w *Workflow) Submit(ctx context.Context) (progress.Transition, error) {
	log := logger.FromContext(ctx).With("project_id", w.projectID)
	w.mu.Lock()
	if !w.canSubmitLocked() {
		w.mu.Unlock()
		return progress.Transition{Outcome: progress.OutcomeIgnored}, ErrNotReady
	}
	gen := w.gen
	cur := w.current
	q := w.loaded.Question
	payload := *w.answer
	w.submitting = true
	w.errMsg = ""
	w.mu.Unlock()
	w.changed()

	done := func(msg string) {
		w.mu.Lock()
		w.submitting = false
		w.errMsg = msg
		w.mu.Unlock()
		w.changed()
	}

	user, err := w.session.CurrentUser()
	if err != nil {
		done(ErrNoUser.Error())
		return progress.Transition{Outcome: progress.OutcomeIgnored}, ErrNoUser
	}
	_, err = w.backend.SubmitAnswer(ctx, answer.Submission{
		UserEmail:    user.Email,
		ProjectID:    w.projectID,
		TaskIndex:    q.TaskIndex,
		SubtaskIndex: q.SubtaskIndex,
		QuestionID:   q.QuestionID,
		Answer:       payload,
	})
	if w.stale(ctx, gen, cur.task, cur.subtask) {
		w.mu.Lock()
		w.submitting = false
		w.mu.Unlock()
		return progress.Transition{Outcome: progress.OutcomeIgnored}, ErrStale
	}
	if err != nil {
		done(err.Error())
		return progress.Transition{Outcome: progress.OutcomeIgnored}, err
	}

	tr := w.machine.CompleteSubtask(cur.subtask)
	w.resetQuestion()
	w.changed()
	log.Info("Answer submitted", "task", cur.task, "subtask", cur.subtask, "outcome", tr.Outcome)
	return tr, nil
}

// UploadFile runs the upload protocol for the mounted file question. The
// renderer reflects each step; any failure leaves it without a file.
func (w *Workflow) UploadFile(ctx context.Context, name string, data []byte) error {
	loaded := w.Loaded()
	if loaded == nil || loaded.Question.QuestionType != question.KindFile {
		return fmt.Errorf("current question does not accept files")
	}
	w.mu.Lock()
	gen, cur := w.gen, w.current
	w.mu.Unlock()

	err := w.Edit(func(r question.Renderer) error {
		f := r.(*question.File)
		if err := f.Check(name, int64(len(data))); err != nil {
			return err
		}
		if err := f.CheckContent(name, data); err != nil {
			return err
		}
		return f.Begin()
	})
	if err != nil {
		return err
	}

	observe := func(status upload.Status, percent int) {
		if w.stale(ctx, gen, cur.task, cur.subtask) {
			return
		}
		_ = w.Edit(func(r question.Renderer) error {
			r.(*question.File).Advance(status, percent)
			return nil
		})
	}
	ref, upErr := w.uploader.Upload(ctx, upload.Request{
		ProjectID:    w.projectID,
		TaskIndex:    loaded.Question.TaskIndex,
		SubtaskIndex: loaded.Question.SubtaskIndex,
		FileName:     name,
		Data:         data,
	}, observe)
	if w.stale(ctx, gen, cur.task, cur.subtask) {
		return ErrStale
	}
	_ = w.Edit(func(r question.Renderer) error {
		f := r.(*question.File)
		if upErr != nil {
			f.Fail(upErr.Error())
			return nil
		}
		f.Succeed(ref)
		return nil
	})
	return upErr
}

// Loaded returns the mounted question, or nil.
func (w *Workflow) Loaded() *question.Loaded {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loaded
}

// View returns a snapshot of the whole walkthrough.
func (w *Workflow) View() View {
	snap := w.machine.Snapshot()
	w.mu.Lock()
	defer w.mu.Unlock()
	v := View{
		ProjectID:  w.projectID,
		Progress:   snap,
		Layout:     w.layout,
		Loading:    w.loading,
		Loaded:     w.loaded,
		Valid:      w.valid,
		CanSubmit:  w.canSubmitLocked(),
		Submitting: w.submitting,
		Error:      w.errMsg,
		Retryable:  w.failedLoad,
	}
	if w.answer != nil {
		p := *w.answer
		v.Answer = &p
	}
	return v
}
