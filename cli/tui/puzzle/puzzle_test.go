package puzzle

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinkerfai/tinkerfai/cli/api"
	"github.com/tinkerfai/tinkerfai/engine/answer"
	"github.com/tinkerfai/tinkerfai/engine/progress"
	"github.com/tinkerfai/tinkerfai/engine/project"
	"github.com/tinkerfai/tinkerfai/engine/question"
	"github.com/tinkerfai/tinkerfai/engine/session"
	"github.com/tinkerfai/tinkerfai/engine/upload"
	"github.com/tinkerfai/tinkerfai/engine/workflow"
)

type fakeBackend struct {
	questions   map[[2]int]question.Loaded
	submissions []answer.Submission
	questionErr error
	submitErr   error
	uploadErr   error
}

func (f *fakeBackend) GetQuestion(_ context.Context, _ string, task, subtask int) (*question.Loaded, error) {
	if f.questionErr != nil {
		return nil, f.questionErr
	}
	q, ok := f.questions[[2]int{task, subtask}]
	if !ok {
		return nil, errors.New("Question not found")
	}
	return &q, nil
}

func (f *fakeBackend) SubmitAnswer(_ context.Context, sub answer.Submission) (string, error) {
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.submissions = append(f.submissions, sub)
	return "ok", nil
}

func (f *fakeBackend) RequestUploadURL(context.Context, string, upload.URLRequest) (*upload.Destination, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &upload.Destination{UploadURL: "https://bucket/x", FileKey: "uploads/train.csv"}, nil
}

func (f *fakeBackend) UploadFile(context.Context, string, []byte, string) error { return nil }

func (f *fakeBackend) ValidateFile(context.Context, string, string) error { return nil }

type harness struct {
	model   *Model
	backend *fakeBackend
	fs      afero.Fs
	copied  []string
}

func newHarness(t *testing.T, questions map[[2]int]question.Loaded) *harness {
	t.Helper()
	sess := session.New(session.NewMemoryStore())
	require.NoError(t, sess.SaveSignIn(session.Tokens{AccessToken: "a"}, session.User{Email: "ada@example.com"}))
	h := &harness{backend: &fakeBackend{questions: questions}, fs: afero.NewMemMapFs()}
	wf := workflow.New(h.backend, sess, "p1")
	h.model = New(context.Background(), wf, project.Project{ProjectID: "p1", ProjectName: "Iris Species"}, Options{
		Fs:        h.fs,
		OutputDir: "out",
		Clipboard: func(s string) error {
			h.copied = append(h.copied, s)
			return nil
		},
		RenderCode: func(code string, _ int) (string, error) { return code, nil },
	})
	h.send(tea.WindowSizeMsg{Width: 100, Height: 30})
	return h
}

// send feeds msg to the model and runs the resulting commands synchronously.
func (h *harness) send(msg tea.Msg) {
	for msg != nil {
		_, cmd := h.model.Update(msg)
		if cmd == nil {
			return
		}
		msg = cmd()
	}
}

func (h *harness) key(s string) {
	switch s {
	case "enter":
		h.send(tea.KeyMsg{Type: tea.KeyEnter})
	case "down":
		h.send(tea.KeyMsg{Type: tea.KeyDown})
	case "ctrl+s":
		h.send(tea.KeyMsg{Type: tea.KeyCtrlS})
	case " ":
		h.send(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	default:
		h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	}
}

func codeQuestion() question.Loaded {
	return question.Loaded{Question: question.Question{
		QuestionID: "code", QuestionType: question.KindReadOnly, GeneratedCode: "print('hello')",
	}}
}

func TestModel_TaskZero(t *testing.T) {
	t.Run("Should show, copy, save and complete the code display task", func(t *testing.T) {
		h := newHarness(t, map[[2]int]question.Loaded{{0, 0}: codeQuestion()})

		h.key("enter")
		assert.Contains(t, h.model.View(), "print('hello')")

		h.key("c")
		assert.Equal(t, []string{"print('hello')"}, h.copied)

		h.key("s")
		data, err := afero.ReadFile(h.fs, "out/iris_species_ml_model.py")
		require.NoError(t, err)
		assert.Equal(t, "print('hello')", string(data))

		h.key("enter")
		assert.Equal(t, 1, h.model.Workflow().Machine().Unlocked())
		require.Len(t, h.backend.submissions, 1)
		assert.Equal(t, answer.TypeReadOnly, h.backend.submissions[0].Answer.Type)
		assert.Equal(t, 1, h.model.taskCursor)
		assert.Contains(t, h.model.View(), "Select next task to get started")
	})

	t.Run("Should refuse a locked task", func(t *testing.T) {
		h := newHarness(t, nil)
		h.key("down")
		h.key("enter")
		_, _, ok := h.model.Workflow().Machine().Selected()
		assert.False(t, ok)
		assert.Contains(t, h.model.View(), "Task 2 is locked")
	})
}

func TestModel_Questions(t *testing.T) {
	unlockTask1 := func(h *harness) {
		h.key("enter")
		h.key("enter")
	}

	t.Run("Should keep a blank required text answer from being submitted", func(t *testing.T) {
		h := newHarness(t, map[[2]int]question.Loaded{
			{0, 0}: codeQuestion(),
			{1, 0}: {Question: question.Question{QuestionID: "goal", TaskIndex: 1, QuestionType: question.KindText, IsRequired: true}},
		})
		unlockTask1(h)
		h.key("enter")

		h.key(" ")
		h.key("ctrl+s")

		assert.Len(t, h.backend.submissions, 1)
		assert.Equal(t, "Answer is missing or invalid", h.model.flash)

		h.key("classify flowers")
		h.key("ctrl+s")
		require.Len(t, h.backend.submissions, 2)
		assert.Equal(t, answer.Text(" classify flowers"), h.backend.submissions[1].Answer)
		snap := h.model.Workflow().Machine().Snapshot()
		assert.Equal(t, 1, snap.CurrentSubtask)
	})

	t.Run("Should toggle every option with select all", func(t *testing.T) {
		h := newHarness(t, map[[2]int]question.Loaded{
			{0, 0}: codeQuestion(),
			{1, 0}: {Question: question.Question{
				QuestionID: "features", TaskIndex: 1, QuestionType: question.KindMultiSelect,
				IsRequired: true, Options: []string{"petal", "sepal"},
			}},
		})
		unlockTask1(h)
		h.key("enter")

		h.key("a")

		view := h.model.Workflow().View()
		require.NotNil(t, view.Answer)
		assert.Equal(t, []string{"petal", "sepal"}, view.Answer.Options)
		assert.Contains(t, h.model.View(), "deselect all")
	})

	t.Run("Should move the slider by its step", func(t *testing.T) {
		h := newHarness(t, map[[2]int]question.Loaded{
			{0, 0}: codeQuestion(),
			{1, 0}: {Question: question.Question{
				QuestionID: "split", TaskIndex: 1, QuestionType: question.KindSlider,
				SliderConfig: &question.SliderConfig{Min: 50, Max: 90, Default: 80, Step: 5, LeftLabel: "Training", RightLabel: "Testing"},
			}},
		})
		unlockTask1(h)
		h.key("enter")

		h.send(tea.KeyMsg{Type: tea.KeyRight})

		assert.Equal(t, answer.Slider(85), *h.model.Workflow().View().Answer)
		assert.Contains(t, h.model.View(), "Testing: 15%")
	})

	t.Run("Should upload a file from the filesystem", func(t *testing.T) {
		h := newHarness(t, map[[2]int]question.Loaded{
			{0, 0}: codeQuestion(),
			{1, 0}: {Question: question.Question{QuestionID: "data", TaskIndex: 1, QuestionType: question.KindFile, IsRequired: true}},
		})
		require.NoError(t, afero.WriteFile(h.fs, "train.csv", []byte("a,b\n1,2\n"), 0o644))
		unlockTask1(h)
		h.key("enter")

		h.key("train.csv")
		h.key("enter")

		view := h.model.Workflow().View()
		assert.True(t, view.CanSubmit)
		assert.Equal(t, answer.File(answer.FileRef{Name: "train.csv", URL: "uploads/train.csv"}), *view.Answer)
		assert.Equal(t, "File uploaded", h.model.flash)
	})
}

func TestModel_SessionEnded(t *testing.T) {
	expired := &api.SessionExpiredError{Operation: "get question"}
	textQuestions := map[[2]int]question.Loaded{
		{0, 0}: codeQuestion(),
		{1, 0}: {Question: question.Question{QuestionID: "goal", TaskIndex: 1, QuestionType: question.KindText, IsRequired: true}},
	}
	assertLeft := func(t *testing.T, h *harness) {
		t.Helper()
		assert.True(t, h.model.IsQuitting())
		assert.ErrorIs(t, h.model.Error(), api.ErrSessionExpired)
	}

	t.Run("Should leave the walkthrough when loading a question hits 401", func(t *testing.T) {
		h := newHarness(t, nil)
		h.backend.questionErr = expired
		h.key("enter")
		assertLeft(t, h)
	})

	t.Run("Should leave the walkthrough when submitting hits 401", func(t *testing.T) {
		h := newHarness(t, textQuestions)
		h.key("enter")
		h.backend.submitErr = expired
		h.key("enter")
		assertLeft(t, h)
		assert.Empty(t, h.backend.submissions)
	})

	t.Run("Should leave the walkthrough when uploading hits 401", func(t *testing.T) {
		h := newHarness(t, map[[2]int]question.Loaded{
			{0, 0}: codeQuestion(),
			{1, 0}: {Question: question.Question{QuestionID: "data", TaskIndex: 1, QuestionType: question.KindFile, IsRequired: true}},
		})
		require.NoError(t, afero.WriteFile(h.fs, "train.csv", []byte("a,b\n1,2\n"), 0o644))
		h.key("enter")
		h.key("enter")
		h.key("enter")
		h.backend.uploadErr = expired
		h.key("train.csv")
		h.key("enter")
		assertLeft(t, h)
	})

	t.Run("Should keep running on other errors", func(t *testing.T) {
		h := newHarness(t, nil)
		h.key("enter")
		assert.False(t, h.model.IsQuitting())
		assert.NoError(t, h.model.Error())
	})
}

func TestLayoutHelpers(t *testing.T) {
	t.Run("Should convert panel percentages to rows", func(t *testing.T) {
		assert.Equal(t, 10, panelRows(40, progress.DefaultProgressHeight))
		assert.Equal(t, 2, panelRows(40, progress.DefaultAssistantHeight))
		assert.Equal(t, 1, panelRows(0, 5))
	})

	t.Run("Should resize panels with shortcuts", func(t *testing.T) {
		h := newHarness(t, nil)
		h.send(tea.KeyMsg{Type: tea.KeyCtrlP})
		assert.Equal(t, progress.MaxPanelHeight, h.model.Workflow().Layout().Progress)
		h.send(tea.KeyMsg{Type: tea.KeyCtrlO})
		l := h.model.Workflow().Layout()
		assert.Equal(t, progress.MaxPanelHeight, l.Assistant)
		assert.Equal(t, progress.DefaultProgressHeight, l.Progress)
	})

	t.Run("Should mark task 0 done once task 1 unlocks", func(t *testing.T) {
		m := progress.New()
		m.SelectTask(0)
		m.CompleteSubtask(0)
		snap := m.Snapshot()
		assert.True(t, taskDone(snap, 0))
		assert.False(t, taskDone(snap, 1))
	})
}
