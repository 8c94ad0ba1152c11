package puzzle

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinkerfai/tinkerfai/cli/api"
	"github.com/tinkerfai/tinkerfai/engine/answer"
	"github.com/tinkerfai/tinkerfai/engine/progress"
	"github.com/tinkerfai/tinkerfai/engine/question"
	"github.com/tinkerfai/tinkerfai/engine/session"
	"github.com/tinkerfai/tinkerfai/engine/upload"
)

type stubBackend struct {
	loaded      *question.Loaded
	asked       [2]int
	submissions []answer.Submission
	uploaded    []string
}

func (b *stubBackend) GetQuestion(_ context.Context, _ string, task, subtask int) (*question.Loaded, error) {
	b.asked = [2]int{task, subtask}
	if b.loaded == nil {
		return nil, errors.New("Question not found")
	}
	copied := *b.loaded
	return &copied, nil
}

func (b *stubBackend) SubmitAnswer(_ context.Context, sub answer.Submission) (string, error) {
	b.submissions = append(b.submissions, sub)
	return "Answer saved", nil
}

func (b *stubBackend) RequestUploadURL(_ context.Context, _ string, req upload.URLRequest) (*upload.Destination, error) {
	b.uploaded = append(b.uploaded, req.FileName)
	return &upload.Destination{UploadURL: "https://bucket/put", FileKey: "uploads/" + req.FileName}, nil
}

func (b *stubBackend) UploadFile(context.Context, string, []byte, string) error { return nil }

func (b *stubBackend) ValidateFile(context.Context, string, string) error { return nil }

func signedIn(t *testing.T) *session.Session {
	t.Helper()
	sess := session.New(session.NewMemoryStore())
	require.NoError(t, sess.SaveSignIn(session.Tokens{AccessToken: "a", RefreshToken: "r", IDToken: "i"},
		session.User{Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace"}))
	return sess
}

func loaded(task, subtask int, q question.Question) *question.Loaded {
	q.QuestionID = "q-1"
	q.TaskIndex, q.SubtaskIndex = task, subtask
	return &question.Loaded{Question: q}
}

func TestSubmitOnce(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()

	t.Run("Should submit text and advance to the next subtask", func(t *testing.T) {
		b := &stubBackend{loaded: loaded(1, 0, question.Question{QuestionType: question.KindText, IsRequired: true})}
		res, err := submitOnce(ctx, b, signedIn(t), fs, "p1", 1, 0, answerInput{Value: "predict species"})
		require.NoError(t, err)
		assert.Equal(t, [2]int{1, 0}, b.asked)
		require.Len(t, b.submissions, 1)
		assert.Equal(t, answer.Text("predict species"), b.submissions[0].Answer)
		assert.Equal(t, "ada@example.com", b.submissions[0].UserEmail)
		assert.Equal(t, progress.OutcomeAdvanced, res.Transition.Outcome)
		assert.Equal(t, 1, res.Transition.Subtask)
	})

	t.Run("Should refuse a blank required text answer without submitting", func(t *testing.T) {
		b := &stubBackend{loaded: loaded(1, 0, question.Question{QuestionType: question.KindText, IsRequired: true})}
		_, err := submitOnce(ctx, b, signedIn(t), fs, "p1", 1, 0, answerInput{Value: "   "})
		var verr *api.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Empty(t, b.submissions)
	})

	t.Run("Should complete the task on the last subtask", func(t *testing.T) {
		b := &stubBackend{loaded: loaded(2, 3, question.Question{
			QuestionType: question.KindRadio, IsRequired: true, Options: []string{"accuracy", "f1"},
		})}
		res, err := submitOnce(ctx, b, signedIn(t), fs, "p1", 2, 3, answerInput{Value: "f1"})
		require.NoError(t, err)
		assert.Equal(t, progress.OutcomeTaskCompleted, res.Transition.Outcome)
		assert.Equal(t, 3, res.Transition.Unlocked)
	})

	t.Run("Should replace a multiselect selection from a list", func(t *testing.T) {
		q := question.Question{QuestionType: question.KindMultiSelect, IsRequired: true, Options: []string{"a", "b", "c"}}
		l := loaded(1, 1, q)
		l.ExistingAnswer = &answer.Stored{AnswerType: answer.TypeMultiSelect, SelectedOptions: []string{"a"}}
		b := &stubBackend{loaded: l}
		_, err := submitOnce(ctx, b, signedIn(t), fs, "p1", 1, 1, answerInput{Value: `["c","b"]`})
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "b"}, b.submissions[0].Answer.Options)

		_, err = submitOnce(ctx, b, signedIn(t), fs, "p1", 1, 1, answerInput{Value: "b, z"})
		var verr *api.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Message, `"z"`)
		assert.Len(t, b.submissions, 1)
	})

	t.Run("Should set hyperparameters from a JSON object", func(t *testing.T) {
		maxDepth := 20.0
		b := &stubBackend{loaded: loaded(3, 0, question.Question{
			QuestionType: question.KindHyperparameter,
			Hyperparameters: []question.HyperparameterSpec{
				{Name: "max_depth", Type: question.ParamInteger, Max: &maxDepth, Default: 3.0},
				{Name: "criterion", Type: question.ParamSelect, Options: []string{"gini", "entropy"}, Default: "gini"},
			},
		})}
		_, err := submitOnce(ctx, b, signedIn(t), fs, "p1", 3, 0, answerInput{Value: `{"max_depth": 7, "criterion": "entropy"}`})
		require.NoError(t, err)
		values := b.submissions[0].Answer.Hyperparameters
		assert.Equal(t, 7.0, values["max_depth"])
		assert.Equal(t, "entropy", values["criterion"])

		_, err = submitOnce(ctx, b, signedIn(t), fs, "p1", 3, 0, answerInput{Value: "max_depth=7"})
		var verr *api.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "value", verr.Field)
	})

	t.Run("Should upload a file before submitting it", func(t *testing.T) {
		require.NoError(t, afero.WriteFile(fs, "data/iris.csv", []byte("a,b\n1,2\n"), 0o644))
		b := &stubBackend{loaded: loaded(1, 2, question.Question{QuestionType: question.KindFile, IsRequired: true})}
		_, err := submitOnce(ctx, b, signedIn(t), fs, "p1", 1, 2, answerInput{File: "data/iris.csv"})
		require.NoError(t, err)
		assert.Equal(t, []string{"iris.csv"}, b.uploaded)
		assert.Equal(t, answer.FileRef{Name: "iris.csv", URL: "uploads/iris.csv"}, b.submissions[0].Answer.File)
	})

	t.Run("Should reject files for other question types", func(t *testing.T) {
		b := &stubBackend{loaded: loaded(1, 0, question.Question{QuestionType: question.KindText})}
		_, err := submitOnce(ctx, b, signedIn(t), fs, "p1", 1, 0, answerInput{File: "data/iris.csv"})
		var verr *api.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "file", verr.Field)
	})

	t.Run("Should snap slider values to the step", func(t *testing.T) {
		b := &stubBackend{loaded: loaded(2, 0, question.Question{
			QuestionType: question.KindSlider,
			SliderConfig: &question.SliderConfig{Min: 50, Max: 95, Default: 80, Step: 5, LeftLabel: "Training", RightLabel: "Testing"},
		})}
		_, err := submitOnce(ctx, b, signedIn(t), fs, "p1", 2, 0, answerInput{Value: "73"})
		require.NoError(t, err)
		assert.Equal(t, 75.0, b.submissions[0].Answer.Slider)
	})
}

func TestParseList(t *testing.T) {
	t.Run("Should accept JSON arrays and comma lists", func(t *testing.T) {
		assert.Equal(t, []string{"a", "b c"}, parseList(`["a", "b c"]`))
		assert.Equal(t, []string{"a", "b c"}, parseList(" a , b c ,"))
		assert.Nil(t, parseList(""))
	})
}
