package database

import (
	"database/sql"
	"encoding/json"
	"time"
)

// User represents a record in the 'users' table. The password hash is NULL
// for OAuth-only accounts.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	PasswordHash sql.NullString `json:"-"` // Omit from JSON responses for security
	IsAdmin      bool           `json:"isAdmin"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// Profile represents a record in the 'profiles' table. There is at most one
// per authenticated identity; it is created lazily after first login, so a
// missing profile row is a normal state for a new user, not an error.
type Profile struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	FullName  string         `json:"fullName"`
	Username  string         `json:"username"`
	AvatarURL sql.NullString `json:"avatarUrl"`
	Phone     sql.NullString `json:"phone"`
	Location  sql.NullString `json:"location"`
	IsActive  bool           `json:"isActive"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Project categories form a closed set. The source data was inconsistent about
// this; here unknown categories are rejected on ingress.
const (
	CategoryResidential = "residential"
	CategoryCommercial  = "commercial"
	CategoryCustom      = "custom"
	CategoryIndustrial  = "industrial"
)

// Categories lists every valid project/gallery category.
var Categories = []string{CategoryResidential, CategoryCommercial, CategoryCustom, CategoryIndustrial}

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Project represents a record in the 'projects' table. The same shape backs
// the 'gallery' table: both are titled, categorized image collections.
type Project struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Images      []string       `json:"images"` // Stored as a JSON array in one column
	UserID      sql.NullString `json:"userId"`
	Status      string         `json:"status"`
	Featured    bool           `json:"featured"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// Review represents a record in the 'reviews' table. IsApproved is tri-state:
// true/false are moderation decisions, NULL means the review is still pending.
type Review struct {
	ID         string         `json:"id"`
	UserID     sql.NullString `json:"userId"`
	ProjectID  sql.NullString `json:"projectId"`
	Rating     int            `json:"rating"`
	Comment    string         `json:"comment"`
	IsApproved sql.NullBool   `json:"isApproved"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// ApprovalState derives the moderation status from the tri-state column.
func (r *Review) ApprovalState() string {
	switch {
	case !r.IsApproved.Valid:
		return "pending"
	case r.IsApproved.Bool:
		return "approved"
	default:
		return "rejected"
	}
}

// RatingSummary holds the aggregate rating for one project, fetched in a
// single IN(...) query over a page of project ids.
type RatingSummary struct {
	ProjectID string  `json:"projectId"`
	Average   float64 `json:"average"`
	Count     int     `json:"count"`
}

// Meeting represents a record in the 'meetings' table. There is no stored
// "remaining spots" column; it is derived by counting approved registrations.
type Meeting struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Date        string         `json:"date"` // YYYY-MM-DD
	Time        string         `json:"time"` // HH:MM
	Location    string         `json:"location"`
	Address     sql.NullString `json:"address"`
	Spots       int            `json:"spots"`
	Description sql.NullString `json:"description"`
	CreatedAt   time.Time      `json:"createdAt"`

	// Populated by a JOIN against approved registrations, not a table column.
	ApprovedCount int `json:"approvedCount"`
}

// Registration statuses.
const (
	RegistrationPending  = "pending"
	RegistrationApproved = "approved"
	RegistrationRejected = "rejected"
)

// Registration represents a record in the 'meeting_registrations' table.
// It belongs to either a meeting or a project consultation request: exactly
// one of MeetingID / ProjectID is set.
type Registration struct {
	ID        string         `json:"id"`
	MeetingID sql.NullString `json:"meetingId"`
	ProjectID sql.NullString `json:"projectId"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Phone     sql.NullString `json:"phone"`
	Company   sql.NullString `json:"company"`
	Message   sql.NullString `json:"message"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Contact message statuses form a simple mailbox state machine. Transitions
// are idempotent: archiving an archived message is a no-op, not an error.
const (
	ContactNew      = "new"
	ContactRead     = "read"
	ContactReplied  = "replied"
	ContactArchived = "archived"
)

// ValidContactStatus reports whether s is a known mailbox status.
func ValidContactStatus(s string) bool {
	switch s {
	case ContactNew, ContactRead, ContactReplied, ContactArchived:
		return true
	}
	return false
}

// ContactMessage represents a record in the 'contact_messages' table.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notification represents a record in the 'notifications' table, the
// persistent half of the admin notification stream.
type Notification struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// marshalImages encodes an image URL list for storage. A nil slice is stored
// as an empty array so the column never holds NULL.
func marshalImages(images []string) (string, error) {
	if images == nil {
		images = []string{}
	}
	b, err := json.Marshal(images)
	if err != nil {
		return "", &FormatError{Field: "images", Err: err}
	}
	return string(b), nil
}

// unmarshalImages decodes the stored image list. Malformed stored data is a
// FormatError so callers can distinguish it from transport failures.
func unmarshalImages(raw string) ([]string, error) {
	var images []string
	if err := json.Unmarshal([]byte(raw), &images); err != nil {
		return nil, &FormatError{Field: "images", Err: err}
	}
	return images, nil
}
