package answer

import (
	"encoding/json"
	"errors"
)

// Submission is the body posted to the answers endpoint.
type Submission struct {
	UserEmail    string
	ProjectID    string
	TaskIndex    int
	SubtaskIndex int
	QuestionID   string
	Answer       Payload
}

type submissionHeader struct {
	UserEmail    string `json:"userEmail"`
	ProjectID    string `json:"projectId"`
	TaskIndex    int    `json:"taskIndex"`
	SubtaskIndex int    `json:"subtaskIndex"`
	QuestionID   string `json:"questionId"`
}

// Validate checks the identifying fields are present.
func (s Submission) Validate() error {
	var errs []error
	if s.UserEmail == "" {
		errs = append(errs, errors.New("user email is required"))
	}
	if s.ProjectID == "" {
		errs = append(errs, errors.New("project id is required"))
	}
	if s.QuestionID == "" {
		errs = append(errs, errors.New("question id is required"))
	}
	if !s.Answer.Type.Valid() {
		errs = append(errs, ErrUnknownType)
	}
	return errors.Join(errs...)
}

// MarshalJSON flattens the identifying fields and the tagged answer into one object.
func (s Submission) MarshalJSON() ([]byte, error) {
	head, err := json.Marshal(submissionHeader{
		UserEmail:    s.UserEmail,
		ProjectID:    s.ProjectID,
		TaskIndex:    s.TaskIndex,
		SubtaskIndex: s.SubtaskIndex,
		QuestionID:   s.QuestionID,
	})
	if err != nil {
		return nil, err
	}
	body, err := s.Answer.MarshalJSON()
	if err != nil {
		return nil, err
	}
	// both are non-empty JSON objects: splice "{head}" and "{body}"
	out := make([]byte, 0, len(head)+len(body))
	out = append(out, head[:len(head)-1]...)
	out = append(out, ',')
	out = append(out, body[1:]...)
	return out, nil
}
