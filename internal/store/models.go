package store

import (
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Layouts used for everything persisted to SQLite. Calendar days are plain
// dates, timestamps are RFC 3339.
const DateLayout = "2006-01-02"

// Status is a todo's lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Rank orders statuses for display: completed items first, then in-progress,
// then pending.
func (s Status) Rank() int {
	switch s {
	case StatusCompleted:
		return 0
	case StatusInProgress:
		return 1
	default:
		return 2
	}
}

func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	}
	return string(s)
}

// Priority is a todo's importance level.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities: high < medium < low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	default:
		return 3
	}
}

func (p Priority) Label() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	}
	return string(p)
}

const maxContentLen = 100

var (
	ErrEmptyContent   = errors.New("todo content must not be empty")
	ErrContentTooLong = errors.New("todo content must be 100 characters or less")
)

type Todo struct {
	ID           int64
	UserID       int64
	Content      string
	Status       Status
	Priority     Priority
	TimerSeconds int
	CompletedAt  *time.Time
	CreatedDate  time.Time // calendar day, midnight local
	CreatedAt    time.Time
}

// NormalizeContent trims content and enforces the 1-100 character rule.
func NormalizeContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return "", ErrContentTooLong
	}
	return content, nil
}

// NewTodo builds a pending todo for today. Content is trimmed and must be
// 1-100 characters.
func NewTodo(userID int64, content string, priority Priority) (*Todo, error) {
	content, err := NormalizeContent(content)
	if err != nil {
		return nil, err
	}
	if priority == "" {
		priority = PriorityMedium
	}

	now := time.Now()
	return &Todo{
		UserID:      userID,
		Content:     content,
		Status:      StatusPending,
		Priority:    priority,
		CreatedDate: DateOf(now),
		CreatedAt:   now,
	}, nil
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

type User struct {
	ID             int64
	Username       string
	PasswordHash   string
	AutoLoginToken string
	TokenExpiresAt *time.Time
	CreatedAt      time.Time
}

const (
	usernameMin = 4
	usernameMax = 20
)

var (
	ErrUsernameLength = errors.New("username must be 4-20 characters")
	ErrUsernameFormat = errors.New("username must contain only letters and digits")
)

// ValidateUsername enforces the 4-20 character alphanumeric rule.
func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < usernameMin || n > usernameMax {
		return ErrUsernameLength
	}
	for _, r := range username {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return ErrUsernameFormat
		}
	}
	return nil
}

// StudyRecord is a per-user per-day aggregate of todo activity.
type StudyRecord struct {
	ID                 int64
	UserID             int64
	StudyDate          time.Time
	TotalStudySeconds  int
	CompletedTodoCount int
	TotalTodoCount     int
}
