package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/NotAnonymousUser/Ticket-System/internal/models"
	"github.com/NotAnonymousUser/Ticket-System/internal/notify"
	"github.com/NotAnonymousUser/Ticket-System/internal/repository"

	"github.com/rs/zerolog"
)

// DefaultCreatedBy is recorded for tickets submitted without a session.
const DefaultCreatedBy = "Admin"

const maxCodeAttempts = 5

// Notifier receives lifecycle events after the write has committed.
// Implementations must not block.
type Notifier interface {
	Notify(n notify.Notification)
}

// Caller identifies who is making a request. The zero value is an
// anonymous caller.
type Caller struct {
	UserID   string
	Username string
	Role     string
}

func (c Caller) IsAdmin() bool { return c.Role == models.RoleAdmin }

type TicketService struct {
	tickets  repository.TicketRepository
	comments repository.CommentRepository
	users    repository.UserRepository
	notifier Notifier
	log      zerolog.Logger

	// emptyNotFound keeps the legacy "empty list is 404" contract.
	emptyNotFound bool
	newCode       func() string
	now           func() time.Time
}

type TicketOption func(*TicketService)

func WithEmptyListNotFound(v bool) TicketOption {
	return func(s *TicketService) { s.emptyNotFound = v }
}

func WithCodeGenerator(f func() string) TicketOption {
	return func(s *TicketService) { s.newCode = f }
}

func NewTicketService(
	tickets repository.TicketRepository,
	comments repository.CommentRepository,
	users repository.UserRepository,
	notifier Notifier,
	log zerolog.Logger,
	opts ...TicketOption,
) *TicketService {
	s := &TicketService{
		tickets:  tickets,
		comments: comments,
		users:    users,
		notifier: notifier,
		log:      log,
		newCode:  NewTicketCode,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// -----------------------------------------------------------------------------
// Reads
// -----------------------------------------------------------------------------

func (s *TicketService) List(ctx context.Context, f repository.TicketFilter) ([]models.Ticket, error) {
	items, err := s.tickets.List(ctx, f)
	if err != nil {
		return nil, persistence("list tickets", err)
	}
	if len(items) == 0 && s.emptyNotFound {
		return nil, notFound("tickets")
	}
	return items, nil
}

func (s *TicketService) Get(ctx context.Context, code string) (*models.Ticket, error) {
	t, err := s.tickets.Get(ctx, code)
	if err != nil {
		return nil, persistence("get ticket", err)
	}
	if t == nil {
		return nil, notFound("ticket")
	}
	return t, nil
}

// ListComments returns the comments of an existing ticket, oldest first.
func (s *TicketService) ListComments(ctx context.Context, code string) ([]models.Comment, error) {
	if _, err := s.Get(ctx, code); err != nil {
		return nil, err
	}
	items, err := s.comments.List(ctx, code)
	if err != nil {
		return nil, persistence("list comments", err)
	}
	if len(items) == 0 && s.emptyNotFound {
		return nil, notFound("comments")
	}
	return items, nil
}

func (s *TicketService) Summary(ctx context.Context) (repository.TicketSummary, error) {
	sum, err := s.tickets.Summary(ctx, s.now().Add(-7*24*time.Hour))
	if err != nil {
		return sum, persistence("ticket summary", err)
	}
	return sum, nil
}

// -----------------------------------------------------------------------------
// Create
// -----------------------------------------------------------------------------

type CreateTicketInput struct {
	Title       string
	Employee    string
	Date        string
	Description string
	Status      string
	Priority    string
}

func (s *TicketService) Create(ctx context.Context, caller Caller, in CreateTicketInput) (*models.Ticket, error) {
	// Free text is stored as submitted; blank means missing.
	t := &models.Ticket{
		Title:       in.Title,
		Employee:    in.Employee,
		Description: in.Description,
		Status:      strings.TrimSpace(in.Status),
		Priority:    strings.TrimSpace(in.Priority),
		CreatedBy:   caller.Username,
	}
	if isBlank(t.Title, t.Employee, in.Date, t.Description) {
		return nil, invalid("Please fill in all fields")
	}
	date, err := parseDate(in.Date)
	if err != nil {
		return nil, err
	}
	t.Date = date
	if t.Status == "" {
		t.Status = models.StatusOpen
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	if err := validateEnums(t.Status, t.Priority); err != nil {
		return nil, err
	}
	if t.CreatedBy == "" {
		t.CreatedBy = DefaultCreatedBy
	}

	for attempt := 1; ; attempt++ {
		t.Code = s.newCode()
		err := s.tickets.Create(ctx, t)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrDuplicate) && attempt < maxCodeAttempts {
			s.log.Debug().Str("code", t.Code).Msg("ticket code clash, retrying")
			continue
		}
		return nil, persistence("create ticket", err)
	}

	s.notify(notify.Notification{
		Event:      notify.TicketCreated,
		Ticket:     *t,
		Actor:      s.actor(ctx, t.CreatedBy),
		Recipients: []string{s.emailOf(ctx, t.CreatedBy)},
	})
	return t, nil
}

// -----------------------------------------------------------------------------
// Update / delete (admin)
// -----------------------------------------------------------------------------

// UpdateTicketInput carries the mutable fields. A nil field keeps the
// stored value; a provided one replaces it.
type UpdateTicketInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	Assignee    *string
}

func (s *TicketService) Update(ctx context.Context, caller Caller, code string, in UpdateTicketInput) (*models.Ticket, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	cur, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	prev := *cur

	if in.Title != nil {
		if isBlank(*in.Title) {
			return nil, invalid("title cannot be empty")
		}
		cur.Title = *in.Title
	}
	if in.Description != nil {
		if isBlank(*in.Description) {
			return nil, invalid("description cannot be empty")
		}
		cur.Description = *in.Description
	}
	if in.Status != nil {
		cur.Status = strings.TrimSpace(*in.Status)
	}
	if in.Priority != nil {
		cur.Priority = strings.TrimSpace(*in.Priority)
	}
	if in.Assignee != nil {
		cur.Assignee = strings.TrimSpace(*in.Assignee)
	}
	if err := validateEnums(cur.Status, cur.Priority); err != nil {
		return nil, err
	}

	if err := s.tickets.Update(ctx, cur); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("ticket")
		}
		return nil, persistence("update ticket", err)
	}

	// Fetch the stored row so the response reflects what was persisted.
	updated, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	s.notifyUpdate(ctx, caller, prev, *updated)
	return updated, nil
}

func (s *TicketService) Delete(ctx context.Context, caller Caller, code string) error {
	if !caller.IsAdmin() {
		return ErrForbidden
	}
	if err := s.tickets.Delete(ctx, code); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("ticket")
		}
		return persistence("delete ticket", err)
	}
	s.log.Info().Str("ticket", code).Str("by", caller.Username).Msg("ticket deleted")
	return nil
}

// -----------------------------------------------------------------------------
// Comments
// -----------------------------------------------------------------------------

func (s *TicketService) AddComment(ctx context.Context, caller Caller, code, text, commentedBy string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("commentText is required")
	}
	commentedBy = strings.TrimSpace(commentedBy)
	if caller.Username != "" {
		commentedBy = caller.Username
	}
	if commentedBy == "" {
		return nil, invalid("commentedBy is required")
	}

	t, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	c := &models.Comment{TicketCode: code, Text: text, CommentedBy: commentedBy}
	if err := s.comments.Add(ctx, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("ticket")
		}
		return nil, persistence("add comment", err)
	}

	actor := s.actor(ctx, commentedBy)
	var recipients []string
	for _, r := range notify.Recipients(s.emailOf(ctx, t.CreatedBy), s.emailOf(ctx, t.Assignee)) {
		if !strings.EqualFold(r, actor.Email) {
			recipients = append(recipients, r)
		}
	}
	s.notify(notify.Notification{
		Event:      notify.NewComment,
		Ticket:     *t,
		Actor:      actor,
		Comment:    c,
		Recipients: recipients,
	})
	return c, nil
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func (s *TicketService) notifyUpdate(ctx context.Context, caller Caller, prev, cur models.Ticket) {
	if cur.Assignee != "" && cur.Assignee != prev.Assignee {
		assignee := s.actor(ctx, cur.Assignee)
		s.notify(notify.Notification{
			Event:      notify.TicketAssigned,
			Ticket:     cur,
			Actor:      assignee,
			Recipients: []string{assignee.Email},
		})
	}
	if cur.Status == prev.Status {
		return
	}
	var ev notify.Event
	switch cur.Status {
	case models.StatusResolved:
		ev = notify.TicketResolved
	case models.StatusClosed:
		ev = notify.TicketClosed
	default:
		return
	}
	support := s.actor(ctx, caller.Username)
	s.notify(notify.Notification{
		Event:      ev,
		Ticket:     cur,
		Actor:      support,
		Recipients: []string{s.emailOf(ctx, cur.CreatedBy), support.Email},
	})
}

func (s *TicketService) notify(n notify.Notification) {
	if s.notifier == nil {
		return
	}
	n.At = s.now()
	s.notifier.Notify(n)
}

func (s *TicketService) actor(ctx context.Context, username string) notify.Actor {
	return notify.Actor{Username: username, Email: s.emailOf(ctx, username)}
}

// emailOf resolves a username to an address. Unknown users, and lookup
// failures, yield "" so the recipient is skipped.
func (s *TicketService) emailOf(ctx context.Context, username string) string {
	if username == "" || s.users == nil {
		return ""
	}
	u, _, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("recipient lookup failed")
		return ""
	}
	if u == nil {
		return ""
	}
	return u.Email
}

// isBlank reports whether any of vs is empty after trimming.
func isBlank(vs ...string) bool {
	for _, v := range vs {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

func validateEnums(status, priority string) error {
	if !slices.Contains(models.Statuses, status) {
		return invalid("status must be one of %s", strings.Join(models.Statuses, ", "))
	}
	if !slices.Contains(models.Priorities, priority) {
		return invalid("priority must be one of %s", strings.Join(models.Priorities, ", "))
	}
	return nil
}

// parseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the
// calendar date in the timestamp's own offset. The column is a DATE, so
// the time of day is not kept.
func parseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(time.DateOnly, s); err == nil {
		return d.Format(time.DateOnly), nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.Format(time.DateOnly), nil
	}
	return "", invalid("date must be YYYY-MM-DD")
}
