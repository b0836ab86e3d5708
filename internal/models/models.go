package models

import "time"

// Chapter is one free-form chapter the model writes for a memo.
type Chapter struct {
	Title   string `json:"chapter_title"`
	Content string `json:"content"`
}

// MemoResult is the structured memo returned by the model. Optional sections
// are pointers so an absent key can be told apart from an empty one.
type MemoResult struct {
	Title        *string   `json:"titill,omitempty"`
	Introduction *string   `json:"inngangur,omitempty"`
	Summary      *string   `json:"samantekt,omitempty"`
	Plan         *string   `json:"aaetlun,omitempty"`
	Objective    *string   `json:"markmid,omitempty"`
	Chapters     []Chapter `json:"kaflar,omitempty"`
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single entry of a chat transcript.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	ThreadID  string `json:"thread_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

type ChatResponse struct {
	Content   string `json:"content"`
	ThreadID  string `json:"thread_id"`
	SessionID string `json:"session_id"`
	History   []Turn `json:"history"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Generation is one journaled pipeline run.
type Generation struct {
	ID         string `gorm:"primaryKey;size:36"`
	Route      string `gorm:"size:64;index"`
	Filename   string `gorm:"size:255"`
	WordCount  int
	Chapters   string `gorm:"size:255"`
	Outcome    string `gorm:"size:16;index"`
	Detail     string `gorm:"type:text"`
	DurationMS int64
	CreatedAt  time.Time
}
