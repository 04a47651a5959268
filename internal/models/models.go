// Package models defines data structures used throughout the trivia API.
package models

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Question represents a row of the questions table. Every column except id is nullable.
type Question struct {
	ID         int            `json:"id" yaml:"id"`
	Question   sql.NullString `json:"question" yaml:"question"`
	Answer     sql.NullString `json:"answer" yaml:"answer"`
	Category   sql.NullInt64  `json:"category" yaml:"category"`
	Difficulty sql.NullInt64  `json:"difficulty" yaml:"difficulty"`
}

// MarshalJSON renders the formatted question shape, with SQL NULLs as JSON null
func (q Question) MarshalJSON() (result0 []byte, err error) {
	return json.Marshal(&struct {
		ID         int     `json:"id"`
		Question   *string `json:"question"`
		Answer     *string `json:"answer"`
		Category   *int64  `json:"category"`
		Difficulty *int64  `json:"difficulty"`
	}{
		ID:         q.ID,
		Question:   nullStringPtr(q.Question),
		Answer:     nullStringPtr(q.Answer),
		Category:   nullInt64Ptr(q.Category),
		Difficulty: nullInt64Ptr(q.Difficulty),
	})
}

// CategoryID returns the question's category id and whether it is set
func (q Question) CategoryID() (int, bool) {
	if !q.Category.Valid {
		return 0, false
	}
	return int(q.Category.Int64), true
}

// Category represents a row of the categories table
type Category struct {
	ID   int    `json:"id" yaml:"id"`
	Type string `json:"type" yaml:"type"`
}

// CategoryMap is an id to label mapping that keeps insertion order.
// It marshals to a JSON object keyed by the decimal id.
type CategoryMap struct {
	ids    []int
	labels map[int]string
}

// NewCategoryMap builds a CategoryMap from categories in the given order
func NewCategoryMap(categories []Category) CategoryMap {
	m := CategoryMap{labels: make(map[int]string, len(categories))}
	for _, c := range categories {
		m.Set(c.ID, c.Type)
	}
	return m
}

// Set adds or replaces a label; new ids are appended to the order
func (m *CategoryMap) Set(id int, label string) {
	if m.labels == nil {
		m.labels = make(map[int]string)
	}
	if _, exists := m.labels[id]; !exists {
		m.ids = append(m.ids, id)
	}
	m.labels[id] = label
}

// Get returns the label for id
func (m CategoryMap) Get(id int) (string, bool) {
	label, ok := m.labels[id]
	return label, ok
}

// Len returns the number of categories
func (m CategoryMap) Len() int {
	return len(m.ids)
}

// IDs returns the ids in order
func (m CategoryMap) IDs() []int {
	out := make([]int, len(m.ids))
	copy(out, m.ids)
	return out
}

// MarshalJSON emits {"<id>": "<type>", ...} in id order
func (m CategoryMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range m.ids {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(strconv.Itoa(id))
		buf.Write(key)
		buf.WriteByte(':')
		label, err := json.Marshal(m.labels[id])
		if err != nil {
			return nil, err
		}
		buf.Write(label)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts an object keyed by decimal ids. Keys are ordered numerically.
func (m *CategoryMap) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ids := make([]int, 0, len(raw))
	for key := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("category key %q is not an integer", key)
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	*m = CategoryMap{labels: make(map[int]string, len(ids))}
	for _, id := range ids {
		m.Set(id, raw[strconv.Itoa(id)])
	}
	return nil
}

// FlexibleInt is an integer that also accepts a JSON string holding an integer.
// The web client sends some ids as strings.
type FlexibleInt int

// UnmarshalJSON accepts 3, "3" and 3.0; null leaves the value unchanged
func (f *FlexibleInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		var unquoted string
		if err := json.Unmarshal(data, &unquoted); err != nil {
			return err
		}
		s = strings.TrimSpace(unquoted)
	}
	if n, err := strconv.Atoi(s); err == nil {
		*f = FlexibleInt(n)
		return nil
	}
	fl, err := strconv.ParseFloat(s, 64)
	if err != nil || fl != float64(int(fl)) {
		return fmt.Errorf("%s is not an integer", string(data))
	}
	*f = FlexibleInt(int(fl))
	return nil
}

// Int returns the value as an int
func (f FlexibleInt) Int() int {
	return int(f)
}

// QuestionRequest is the body of POST /questions. A non-empty SearchTerm selects search;
// otherwise the remaining fields describe a question to create.
type QuestionRequest struct {
	Question   *string      `json:"question"`
	Answer     *string      `json:"answer"`
	Difficulty *FlexibleInt `json:"difficulty"`
	Category   *FlexibleInt `json:"category"`
	SearchTerm *string      `json:"searchTerm"`
}

// IsSearch reports whether the request is a search
func (r QuestionRequest) IsSearch() bool {
	return r.SearchTerm != nil && *r.SearchTerm != ""
}

// ToQuestion converts the creation fields into a Question, keeping absent fields NULL
func (r QuestionRequest) ToQuestion() Question {
	var q Question
	if r.Question != nil {
		q.Question = sql.NullString{String: *r.Question, Valid: true}
	}
	if r.Answer != nil {
		q.Answer = sql.NullString{String: *r.Answer, Valid: true}
	}
	if r.Category != nil {
		q.Category = sql.NullInt64{Int64: int64(*r.Category), Valid: true}
	}
	if r.Difficulty != nil {
		q.Difficulty = sql.NullInt64{Int64: int64(*r.Difficulty), Valid: true}
	}
	return q
}

// QuizCategory identifies the category a quiz is restricted to
type QuizCategory struct {
	ID   FlexibleInt `json:"id"`
	Type string      `json:"type"`
}

// QuizRequest is the body of POST /quizzes
type QuizRequest struct {
	PreviousQuestions []int         `json:"previous_questions"`
	QuizCategory      *QuizCategory `json:"quiz_category"`
}

// CategoryFilter returns the requested category id, or allID when the quiz spans every category
func (r QuizRequest) CategoryFilter(allID int) int {
	if r.QuizCategory == nil {
		return allID
	}
	return r.QuizCategory.ID.Int()
}

// QuestionPage is one page of an ordered question listing
type QuestionPage struct {
	Questions []Question
	Total     int
	Page      int
}

// QuizResult is the outcome of a quiz round. Finished is set when the quiz length cap was reached.
type QuizResult struct {
	Question *Question
	Finished bool
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}

// NewNullString wraps s as a valid sql.NullString
func NewNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

// NewNullInt64 wraps n as a valid sql.NullInt64
func NewNullInt64(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: true}
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func nullInt64Ptr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	return &ni.Int64
}
