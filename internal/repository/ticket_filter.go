package repository

type TicketFilter struct {
	Q        string
	Status   string
	Priority string
	Assignee string
	Limit    int // 0 = no limit
	Offset   int
}

const MaxPageSize = 1000

// Normalize clamps paging to the limits the stores accept.
func (f TicketFilter) Normalize() TicketFilter {
	if f.Limit < 0 {
		f.Limit = 0
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
