package postgres

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/NotAnonymousUser/Ticket-System/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
)

var placeholderRE = regexp.MustCompile(`\$(\d+)`)

// placeholders returns the distinct $n numbers in order of first use.
func placeholders(sql string) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range placeholderRE.FindAllStringSubmatch(sql, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}

// assertBound checks that placeholders run $1..$len(args) with no gaps
// and that no string argument leaked into the SQL text.
func assertBound(t *testing.T, sql string, args []any) {
	t.Helper()
	got := placeholders(sql)
	if len(got) != len(args) {
		t.Fatalf("placeholders %v for %d args in %q", got, len(args), sql)
	}
	for i, p := range got {
		if p != fmt.Sprint(i+1) {
			t.Fatalf("placeholder #%d is $%s in %q", i+1, p, sql)
		}
	}
	for _, a := range args {
		s, ok := a.(string)
		if !ok {
			continue
		}
		if raw := strings.Trim(s, "%"); raw != "" && strings.Contains(sql, raw) {
			t.Fatalf("value %q inlined into %q", raw, sql)
		}
	}
}

func TestBuildTicketWhere(t *testing.T) {
	inject := `x'; DROP TABLE tickets; --`
	cases := []struct {
		name     string
		f        repository.TicketFilter
		wantArgs []any
		contains []string
	}{
		{"no filters", repository.TicketFilter{}, []any{}, []string{"WHERE 1=1"}},
		{
			"search only",
			repository.TicketFilter{Q: "  printer "},
			[]any{"%printer%"},
			[]string{"t.title ILIKE $1 OR t.description ILIKE $1 OR t.employee ILIKE $1"},
		},
		{
			"all filters",
			repository.TicketFilter{Q: "vpn", Status: "Open", Priority: "High", Assignee: "tech"},
			[]any{"%vpn%", "Open", "High", "tech"},
			[]string{"t.status = $2", "t.priority = $3", "t.assignee = $4"},
		},
		{
			"skips blanks",
			repository.TicketFilter{Status: " ", Assignee: "tech"},
			[]any{"tech"},
			[]string{"t.assignee = $1"},
		},
		{
			"hostile value",
			repository.TicketFilter{Q: inject, Status: inject},
			[]any{"%" + inject + "%", inject},
			[]string{"t.status = $2"},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			sql, args := buildTicketWhere(c.f)
			assertBound(t, sql, args)
			if fmt.Sprint(args) != fmt.Sprint(c.wantArgs) {
				t.Errorf("args = %v, want %v", args, c.wantArgs)
			}
			for _, s := range c.contains {
				if !strings.Contains(sql, s) {
					t.Errorf("sql %q missing %q", sql, s)
				}
			}
		})
	}
}

func TestBuildTicketList(t *testing.T) {
	sql, args := buildTicketList(repository.TicketFilter{Status: "Open"})
	assertBound(t, sql, args)
	if !strings.Contains(sql, "LIMIT $2 OFFSET $3") {
		t.Fatalf("sql = %q", sql)
	}
	// Zero limit binds NULL (LIMIT ALL).
	if args[1] != nil || args[2] != 0 {
		t.Fatalf("args = %#v, want [Open <nil> 0]", args)
	}

	sql, args = buildTicketList(repository.TicketFilter{Q: "jam", Priority: "Low", Limit: 25, Offset: 50})
	assertBound(t, sql, args)
	if !strings.Contains(sql, "LIMIT $3 OFFSET $4") || args[2] != 25 || args[3] != 50 {
		t.Fatalf("sql = %q args = %#v", sql, args)
	}
	if !strings.Contains(sql, "ORDER BY t.created_at DESC, t.id DESC") {
		t.Errorf("newest-first ordering missing: %q", sql)
	}
}

func TestBuildUserWhere(t *testing.T) {
	sql, args := buildUserWhere(" jane ", "admin")
	assertBound(t, sql, args)
	if !strings.Contains(sql, "email ILIKE $1") || !strings.Contains(sql, "role = $2") {
		t.Fatalf("sql = %q", sql)
	}
	if sql, args := buildUserWhere("", ""); sql != "WHERE 1=1" || len(args) != 0 {
		t.Fatalf("empty filters = %q %v", sql, args)
	}
}

func TestErrorMapping(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "tickets_ticket_code_key"}
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "comments_ticket_code_fkey"}
	other := &pgconn.PgError{Code: "23502"}
	plain := errors.New("conn reset")

	if !isUniqueViolation(unique) || !isUniqueViolation(fmt.Errorf("insert: %w", unique)) {
		t.Error("unique violation not detected")
	}
	if isUniqueViolation(fk) || isUniqueViolation(plain) || isUniqueViolation(nil) {
		t.Error("false unique violation")
	}
	if !isForeignKeyViolation(fk) || isForeignKeyViolation(unique) {
		t.Error("foreign key detection wrong")
	}

	if err := createErr(unique); !errors.Is(err, repository.ErrDuplicate) {
		t.Errorf("createErr(23505) = %v", err)
	}
	if err := createErr(other); err != other {
		t.Errorf("createErr(23502) = %v", err)
	}
	if err := createErr(nil); err != nil {
		t.Errorf("createErr(nil) = %v", err)
	}

	if err := commentAddErr(fmt.Errorf("scan: %w", fk)); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("commentAddErr(23503) = %v", err)
	}
	if err := commentAddErr(plain); err != plain {
		t.Errorf("commentAddErr(plain) = %v", err)
	}
	if err := commentAddErr(nil); err != nil {
		t.Errorf("commentAddErr(nil) = %v", err)
	}
}
