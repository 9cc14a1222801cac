package models

import "time"

const (
	StatusOpen       = "Open"
	StatusInProgress = "In Progress"
	StatusHold       = "Hold"
	StatusResolved   = "Resolved"
	StatusClosed     = "Closed"

	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

var (
	Statuses   = []string{StatusOpen, StatusInProgress, StatusHold, StatusResolved, StatusClosed}
	Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh}
)

type Ticket struct {
	Code        string    `json:"ticketCode"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Employee    string    `json:"employee"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	Date        string    `json:"date"` // YYYY-MM-DD
	CreatedBy   string    `json:"createdBy"`
	Assignee    string    `json:"assignee"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Comment struct {
	ID          int64     `json:"commentId"`
	TicketCode  string    `json:"ticketCode"`
	Text        string    `json:"commentText"`
	CommentedBy string    `json:"commentedBy"`
	CommentDate time.Time `json:"commentDate"`
}
