package ticket

type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Origin captures where a note came from: the address replies are
// routed back to, plus display-only metadata about the submitter.
type Origin struct {
	Address    string
	SenderID   string
	SenderName string
	GroupID    string
	Platform   string
	GroupName  string
}

// Ticket is one entry of the mapping file. OriginAddress is the only
// field delivery depends on; the rest is shown to operators.
type Ticket struct {
	ID            string `json:"-"`
	OriginAddress string `json:"umo"`
	SenderID      string `json:"sender_id"`
	SenderName    string `json:"sender_name"`
	GroupID       string `json:"group_id"`
	Platform      string `json:"platform"`
	GroupName     string `json:"group_name,omitempty"`
	Status        Status `json:"status"`
	CreatedAt     int64  `json:"created_at"`
	ClosedAt      int64  `json:"closed_at,omitempty"`
	LastReply     string `json:"last_reply,omitempty"`
}
