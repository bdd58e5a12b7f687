package model

import "time"

type Actor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Admin bool   `json:"admin"`
}

// Ref is a denormalized pointer to another record, carried with its display name so
// list views never need a join.
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ActorRef identifies the actor holding a lifecycle slot (claimant).
type ActorRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type PostType struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// ContentTask is a schedulable unit of marketing work for one brand.
//
// The lifecycle fields are independent and optional; the task's status is never stored
// (see statusutil.Derive).
type ContentTask struct {
	ID          int64  `json:"id"`
	Brand       Ref    `json:"brand"`
	PostType    Ref    `json:"postType"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	AssetURL    string `json:"assetUrl,omitempty"`
	Due         Date   `json:"due"`

	Claimant    *ActorRef  `json:"claimant,omitempty"`
	ReadiedAt   *time.Time `json:"readiedAt,omitempty"`
	ConfirmerID *string    `json:"confirmerId,omitempty"`
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
	PosterID    *string    `json:"posterId,omitempty"`
	PostedAt    *time.Time `json:"postedAt,omitempty"`

	// Extra holds grouped extended properties (campaign, channel, ...).
	Extra map[string]string `json:"extra,omitempty"`

	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Service struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Brand struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Active      bool      `json:"active"`
	ContactName string    `json:"contactName,omitempty"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Services    []Service `json:"services"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type EnquiryStatus string

const (
	EnquiryJustConnected   EnquiryStatus = "Just Connected"
	EnquiryInProgress      EnquiryStatus = "In Progress"
	EnquiryAdvancedPayment EnquiryStatus = "Advanced Payment"
	EnquiryCompleted       EnquiryStatus = "Completed"
	EnquiryClosed          EnquiryStatus = "Closed"
)

// EnquiryStatuses lists the enquiry pipeline in order.
var EnquiryStatuses = []EnquiryStatus{
	EnquiryJustConnected,
	EnquiryInProgress,
	EnquiryAdvancedPayment,
	EnquiryCompleted,
	EnquiryClosed,
}

type ConversationLogEntry struct {
	Title  string `json:"title"`
	Date   Date   `json:"date"`
	Body   string `json:"body,omitempty"`
	Author string `json:"author"`
}

// Enquiry is a prospective client contact and its conversation history.
type Enquiry struct {
	ID        int64                  `json:"id"`
	Name      string                 `json:"name"`
	Company   string                 `json:"company,omitempty"`
	Service   string                 `json:"service,omitempty"`
	Status    EnquiryStatus          `json:"status"`
	Log       []ConversationLogEntry `json:"log"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

type Event struct {
	ID       string    `json:"id"`
	TS       time.Time `json:"ts"`
	ActorID  string    `json:"actorId"`
	Type     string    `json:"type"`
	EntityID string    `json:"entityId"`
	Payload  any       `json:"payload"`
}
