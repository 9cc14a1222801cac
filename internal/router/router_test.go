package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/NotAnonymousUser/Ticket-System/internal/config"
	"github.com/NotAnonymousUser/Ticket-System/internal/models"
	"github.com/NotAnonymousUser/Ticket-System/internal/repository/memory"
	"github.com/NotAnonymousUser/Ticket-System/internal/service"
	"github.com/NotAnonymousUser/Ticket-System/internal/utils"

	"github.com/rs/zerolog"
)

func init() { utils.BcryptCost = 4 }

type env struct {
	t    *testing.T
	h    http.Handler
	auth *service.AuthService
}

func newEnv(t *testing.T, opts ...service.TicketOption) *env {
	t.Helper()
	store := memory.New()
	cfg := config.Config{Origin: "http://localhost:3000", SessionSecret: "test-secret"}
	auth := service.NewAuthService(store.Users(), cfg.SessionSecret, time.Hour)
	tickets := service.NewTicketService(store.Tickets(), store.Comments(), store.Users(), nil, zerolog.Nop(), opts...)
	return &env{
		t:    t,
		auth: auth,
		h:    New(zerolog.Nop(), cfg, Deps{Auth: auth, Tickets: tickets, Users: store.Users()}),
	}
}

// do sends a JSON request and decodes a JSON response into out when non-nil.
func (e *env) do(method, path, token string, body any, out any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			e.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	if out != nil && rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			e.t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec
}

// login creates an account with the given role and returns its token.
func (e *env) login(username, role string) string {
	e.t.Helper()
	_, err := e.auth.CreateWithRole(context.Background(), service.SignupInput{
		Fullname: username, Email: username + "@example.com", Username: username, Password: "password1",
	}, role)
	if err != nil && !errors.Is(err, service.ErrConflict) {
		e.t.Fatal(err)
	}
	var out struct {
		Role  string `json:"role"`
		Token string `json:"token"`
	}
	rec := e.do(http.MethodPost, "/api/login", "", map[string]string{"username": username, "password": "password1"}, &out)
	if rec.Code != http.StatusOK || out.Role != role || out.Token == "" {
		e.t.Fatalf("login %s: %d %s", username, rec.Code, rec.Body.String())
	}
	return out.Token
}

func ticketBody() map[string]string {
	return map[string]string{
		"title":       "Printer jam",
		"employee":    "Jane Doe",
		"date":        "2026-10-18",
		"description": "Tray 2 jams on every job",
		"priority":    "High",
	}
}

func TestHealthz(t *testing.T) {
	e := newEnv(t)
	var out map[string]string
	if rec := e.do(http.MethodGet, "/healthz", "", nil, &out); rec.Code != http.StatusOK || out["status"] != "ok" {
		t.Fatalf("healthz = %d %v", rec.Code, out)
	}
}

func TestSignupAndLogin(t *testing.T) {
	e := newEnv(t)
	body := map[string]string{"fullname": "Jane Doe", "email": "jane@example.com", "username": "jane", "password": "password1"}

	var created struct {
		Message string      `json:"message"`
		User    models.User `json:"user"`
	}
	if rec := e.do(http.MethodPost, "/api/signup", "", body, &created); rec.Code != http.StatusCreated {
		t.Fatalf("signup = %d %s", rec.Code, rec.Body.String())
	}
	if created.User.Username != "jane" || created.User.Role != models.RoleUser {
		t.Fatalf("signup user = %+v", created.User)
	}
	if strings.Contains(e.do(http.MethodGet, "/api/users/"+created.User.ID, e.login("root", models.RoleAdmin), nil, nil).Body.String(), "password") {
		t.Fatal("profile leaks password material")
	}

	if rec := e.do(http.MethodPost, "/api/signup", "", body, nil); rec.Code != http.StatusConflict {
		t.Errorf("duplicate signup = %d", rec.Code)
	}
	if rec := e.do(http.MethodPost, "/api/signup", "", map[string]string{"username": "x"}, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("incomplete signup = %d", rec.Code)
	}
	if rec := e.do(http.MethodPost, "/api/signup", "", "{not json", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("malformed signup = %d", rec.Code)
	}

	rec := e.do(http.MethodPost, "/api/login", "", map[string]string{"username": "jane", "password": "password1"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login = %d", rec.Code)
	}
	if c := rec.Header().Get("Set-Cookie"); !strings.HasPrefix(c, "session=") || !strings.Contains(c, "HttpOnly") {
		t.Errorf("Set-Cookie = %q", c)
	}

	var fail map[string]string
	if rec := e.do(http.MethodPost, "/api/login", "", map[string]string{"username": "jane", "password": "nope"}, &fail); rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password = %d", rec.Code)
	}
	var unknown map[string]string
	e.do(http.MethodPost, "/api/login", "", map[string]string{"username": "ghost", "password": "nope"}, &unknown)
	if fail["error"] == "" || fail["error"] != unknown["error"] {
		t.Errorf("login failures differ: %q vs %q", fail["error"], unknown["error"])
	}

	for _, creds := range []map[string]string{
		{"username": "jane", "password": ""},
		{"username": "", "password": "password1"},
		{},
	} {
		var out map[string]string
		if rec := e.do(http.MethodPost, "/api/login", "", creds, &out); rec.Code != http.StatusUnauthorized || out["error"] != fail["error"] {
			t.Errorf("login %v = %d %v, want 401 with the same message", creds, rec.Code, out)
		}
	}
}

func TestMeAndLogout(t *testing.T) {
	e := newEnv(t)
	if rec := e.do(http.MethodGet, "/api/me", "", nil, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous /me = %d", rec.Code)
	}
	var me models.User
	if rec := e.do(http.MethodGet, "/api/me", e.login("jane", models.RoleUser), nil, &me); rec.Code != http.StatusOK || me.Username != "jane" {
		t.Errorf("/me = %d %+v", rec.Code, me)
	}
	if rec := e.do(http.MethodPost, "/api/logout", "", nil, nil); rec.Code != http.StatusNoContent {
		t.Errorf("logout = %d", rec.Code)
	}
}

func TestTicketLifecycle(t *testing.T) {
	e := newEnv(t)
	admin := e.login("root", models.RoleAdmin)
	user := e.login("jane", models.RoleUser)

	var empty []models.Ticket
	if rec := e.do(http.MethodGet, "/api/tickets", "", nil, &empty); rec.Code != http.StatusOK || len(empty) != 0 {
		t.Fatalf("empty list = %d %s", rec.Code, rec.Body.String())
	}

	var created models.Ticket
	if rec := e.do(http.MethodPost, "/api/ticket", user, ticketBody(), &created); rec.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", rec.Code, rec.Body.String())
	}
	if created.Code == "" || created.Status != models.StatusOpen || created.CreatedBy != "jane" {
		t.Fatalf("created = %+v", created)
	}
	var anon models.Ticket
	if rec := e.do(http.MethodPost, "/api/tickets", "", ticketBody(), &anon); rec.Code != http.StatusCreated || anon.CreatedBy != service.DefaultCreatedBy {
		t.Fatalf("anonymous create = %d %+v", rec.Code, anon)
	}
	if anon.Code == created.Code {
		t.Fatal("two tickets share a code")
	}

	path := "/api/tickets/" + created.Code
	var got models.Ticket
	if rec := e.do(http.MethodGet, path, "", nil, &got); rec.Code != http.StatusOK || got.Title != "Printer jam" || got.Date != "2026-10-18" {
		t.Fatalf("get = %d %+v", rec.Code, got)
	}

	var list []models.Ticket
	e.do(http.MethodGet, "/api/tickets?priority=High&limit=1", "", nil, &list)
	if len(list) != 1 {
		t.Errorf("filtered list len = %d", len(list))
	}

	// Comments
	var added struct {
		CommentID int64          `json:"commentId"`
		Comment   models.Comment `json:"comment"`
	}
	if rec := e.do(http.MethodPost, path+"/comments", user, map[string]string{"commentText": "any news?"}, &added); rec.Code != http.StatusCreated {
		t.Fatalf("add comment = %d %s", rec.Code, rec.Body.String())
	}
	if added.CommentID == 0 || added.Comment.CommentedBy != "jane" {
		t.Errorf("comment = %+v", added)
	}
	e.do(http.MethodPost, path+"/comments", "", map[string]string{"commentText": "on it", "commentedBy": "tech"}, nil)
	var comments []models.Comment
	if rec := e.do(http.MethodGet, path+"/comments", "", nil, &comments); rec.Code != http.StatusOK || len(comments) != 2 || comments[0].Text != "any news?" {
		t.Fatalf("comments = %d %+v", rec.Code, comments)
	}
	if rec := e.do(http.MethodPost, path+"/comments", "", map[string]string{"commentText": "", "commentedBy": "x"}, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("empty comment = %d", rec.Code)
	}
	if rec := e.do(http.MethodPost, "/api/tickets/NOPE0000/comments", "", map[string]string{"commentText": "hi", "commentedBy": "x"}, nil); rec.Code != http.StatusNotFound {
		t.Errorf("comment on missing ticket = %d", rec.Code)
	}

	// Update
	update := map[string]string{"status": "Resolved", "assignee": "root"}
	if rec := e.do(http.MethodPut, path, "", update, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous update = %d", rec.Code)
	}
	if rec := e.do(http.MethodPut, path, user, update, nil); rec.Code != http.StatusForbidden {
		t.Errorf("user update = %d", rec.Code)
	}
	var updated models.Ticket
	if rec := e.do(http.MethodPut, path, admin, update, &updated); rec.Code != http.StatusOK {
		t.Fatalf("admin update = %d %s", rec.Code, rec.Body.String())
	}
	if updated.Status != models.StatusResolved || updated.Assignee != "root" || updated.Title != "Printer jam" || updated.Priority != models.PriorityHigh {
		t.Errorf("updated = %+v", updated)
	}
	if rec := e.do(http.MethodPut, path, admin, map[string]string{"priority": "Urgent"}, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad priority = %d", rec.Code)
	}

	// Delete
	if rec := e.do(http.MethodDelete, path, user, nil, nil); rec.Code != http.StatusForbidden {
		t.Errorf("user delete = %d", rec.Code)
	}
	if rec := e.do(http.MethodDelete, path, admin, nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("admin delete = %d", rec.Code)
	}
	if rec := e.do(http.MethodGet, path, "", nil, nil); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d", rec.Code)
	}
	if rec := e.do(http.MethodGet, path+"/comments", "", nil, nil); rec.Code != http.StatusNotFound {
		t.Errorf("comments after delete = %d", rec.Code)
	}
	if rec := e.do(http.MethodDelete, path, admin, nil, nil); rec.Code != http.StatusNotFound {
		t.Errorf("second delete = %d", rec.Code)
	}
}

func TestCreateTicketValidation(t *testing.T) {
	e := newEnv(t)
	body := ticketBody()
	delete(body, "employee")
	var out map[string]string
	if rec := e.do(http.MethodPost, "/api/ticket", "", body, &out); rec.Code != http.StatusBadRequest || out["error"] != "Please fill in all fields" {
		t.Errorf("missing employee = %d %v", rec.Code, out)
	}
	body = ticketBody()
	body["status"] = "Pending"
	if rec := e.do(http.MethodPost, "/api/ticket", "", body, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad status = %d", rec.Code)
	}
}

func TestLegacyEmptyList404(t *testing.T) {
	e := newEnv(t, service.WithEmptyListNotFound(true))
	if rec := e.do(http.MethodGet, "/api/tickets", "", nil, nil); rec.Code != http.StatusNotFound {
		t.Errorf("legacy empty list = %d", rec.Code)
	}
}

func TestUsersAndReportsAccess(t *testing.T) {
	e := newEnv(t)
	admin := e.login("root", models.RoleAdmin)
	hr := e.login("people", models.RoleHR)
	user := e.login("jane", models.RoleUser)

	var page struct {
		Items []models.User `json:"items"`
		Total int           `json:"total"`
	}
	if rec := e.do(http.MethodGet, "/api/users", admin, nil, &page); rec.Code != http.StatusOK || page.Total != 3 {
		t.Errorf("admin list users = %d total=%d", rec.Code, page.Total)
	}
	if rec := e.do(http.MethodGet, "/api/users", user, nil, nil); rec.Code != http.StatusForbidden {
		t.Errorf("user list users = %d", rec.Code)
	}
	if rec := e.do(http.MethodGet, "/api/users", "", nil, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous list users = %d", rec.Code)
	}

	var me models.User
	e.do(http.MethodGet, "/api/me", user, nil, &me)
	if rec := e.do(http.MethodGet, "/api/users/"+me.ID, user, nil, nil); rec.Code != http.StatusOK {
		t.Errorf("self get = %d", rec.Code)
	}
	if rec := e.do(http.MethodGet, "/api/users/"+me.ID, hr, nil, nil); rec.Code != http.StatusForbidden {
		t.Errorf("hr get other = %d", rec.Code)
	}
	if rec := e.do(http.MethodGet, "/api/users/missing", admin, nil, nil); rec.Code != http.StatusNotFound {
		t.Errorf("admin get missing = %d", rec.Code)
	}

	e.do(http.MethodPost, "/api/ticket", "", ticketBody(), nil)
	var sum map[string]int
	if rec := e.do(http.MethodGet, "/api/reports/summary", hr, nil, &sum); rec.Code != http.StatusOK || sum["open"] != 1 || sum["highOpen"] != 1 {
		t.Errorf("hr summary = %d %v", rec.Code, sum)
	}
	if rec := e.do(http.MethodGet, "/api/reports/summary", user, nil, nil); rec.Code != http.StatusForbidden {
		t.Errorf("user summary = %d", rec.Code)
	}
}
