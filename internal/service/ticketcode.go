package service

import (
	"strings"

	"github.com/google/uuid"
)

const ticketCodeLen = 8

// NewTicketCode returns a short human-facing code: the first eight hex
// digits of a random UUID, upper-cased. Uniqueness is enforced by the
// store; callers retry on a clash.
func NewTicketCode() string {
	s := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(s[:ticketCodeLen])
}
