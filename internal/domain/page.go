package domain

// PageCursor tracks offset-based pagination of the technician ticket list.
type PageCursor struct {
	Limit   int
	Offset  int
	Total   int
	HasMore bool
}

// IncidentPage is one page of the technician-scoped ticket list.
type IncidentPage struct {
	Incidents []Incident
	Total     int
	Limit     int
	Offset    int
	HasMore   bool
}

// SearchKind selects which one-shot lookup a search dispatches to.
type SearchKind string

const (
	SearchKindUser   SearchKind = "user"
	SearchKindDevice SearchKind = "device"
	SearchKindTicket SearchKind = "ticket"
)
