package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tinkerfai/tinkerfai/engine/answer"
	"github.com/tinkerfai/tinkerfai/engine/question"
)

type getQuestionResponse struct {
	Envelope
	Data question.Loaded `json:"data"`
}

// GetQuestion loads the question for a 0-based (task, subtask).
func (c *Client) GetQuestion(ctx context.Context, projectID string, taskIndex, subtaskIndex int) (*question.Loaded, error) {
	var out getQuestionResponse
	path := fmt.Sprintf("/projects/%s/questions/%d/%d", url.PathEscape(projectID), question.APITaskNumber(taskIndex), subtaskIndex)
	if err := c.do(ctx, call{op: "get question", method: http.MethodGet, path: path, auth: true, result: &out}); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

type submitAnswerResponse struct {
	Envelope
	Data struct {
		AnswerID string `json:"answerId,omitempty"`
	} `json:"data"`
}

// SubmitAnswer stores the answer, replacing any previous one for the same question.
func (c *Client) SubmitAnswer(ctx context.Context, sub answer.Submission) (string, error) {
	if err := sub.Validate(); err != nil {
		return "", &ValidationError{Field: "answer", Message: err.Error()}
	}
	var out submitAnswerResponse
	path := fmt.Sprintf("/projects/%s/answers", url.PathEscape(sub.ProjectID))
	if err := c.do(ctx, call{op: "submit answer", method: http.MethodPost, path: path, auth: true, body: sub, result: &out}); err != nil {
		return "", err
	}
	return out.Message, nil
}

type progressResponse struct {
	Envelope
	Data json.RawMessage `json:"data"`
}

// GetProgress returns the server's record of the caller's progress as reported.
func (c *Client) GetProgress(ctx context.Context, projectID string) (json.RawMessage, error) {
	var out progressResponse
	path := fmt.Sprintf("/projects/%s/progress", url.PathEscape(projectID))
	if err := c.do(ctx, call{op: "get progress", method: http.MethodGet, path: path, auth: true, result: &out}); err != nil {
		return nil, err
	}
	return out.Data, nil
}
