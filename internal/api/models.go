package api

import (
	"time"

	"github.com/vitraforge/atelier/internal/database"
)

// DTOs convert internal database rows into clean JSON shapes: nullable
// columns become pointers (rendered as `null`), derived values like the
// remaining meeting spots or the review moderation status are computed here,
// and nothing sensitive leaks out.

// ProfileResponse is the DTO for a user's profile.
type ProfileResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	FullName  string    `json:"fullName"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatarUrl"`
	Phone     *string   `json:"phone"`
	Location  *string   `json:"location"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

func toProfileResponse(p *database.Profile) ProfileResponse {
	resp := ProfileResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		FullName:  p.FullName,
		Username:  p.Username,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
	}
	if p.AvatarURL.Valid {
		resp.AvatarURL = &p.AvatarURL.String
	}
	if p.Phone.Valid {
		resp.Phone = &p.Phone.String
	}
	if p.Location.Valid {
		resp.Location = &p.Location.String
	}
	return resp
}

func toProfileResponseList(profiles []*database.Profile) []ProfileResponse {
	responseList := make([]ProfileResponse, len(profiles))
	for i, p := range profiles {
		responseList[i] = toProfileResponse(p)
	}
	return responseList
}

// CollectionItemResponse is the DTO for a project or gallery item. Rating is
// only populated on project pages, where the page's summaries are fetched in
// one batched query.
type CollectionItemResponse struct {
	ID          string                  `json:"id"`
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Category    string                  `json:"category"`
	Images      []string                `json:"images"`
	UserID      *string                 `json:"userId"`
	Status      string                  `json:"status"`
	Featured    bool                    `json:"featured"`
	CreatedAt   time.Time               `json:"createdAt"`
	Rating      *database.RatingSummary `json:"rating,omitempty"`
}

func toCollectionItemResponse(item *database.Project) CollectionItemResponse {
	resp := CollectionItemResponse{
		ID:          item.ID,
		Title:       item.Title,
		Description: item.Description,
		Category:    item.Category,
		Images:      item.Images,
		Status:      item.Status,
		Featured:    item.Featured,
		CreatedAt:   item.CreatedAt,
	}
	if item.UserID.Valid {
		resp.UserID = &item.UserID.String
	}
	return resp
}

// toCollectionItemResponseList converts a page of items, attaching rating
// summaries where provided.
func toCollectionItemResponseList(items []*database.Project, ratings map[string]database.RatingSummary) []CollectionItemResponse {
	responseList := make([]CollectionItemResponse, len(items))
	for i, item := range items {
		resp := toCollectionItemResponse(item)
		if ratings != nil {
			if sum, ok := ratings[item.ID]; ok {
				s := sum
				resp.Rating = &s
			}
		}
		responseList[i] = resp
	}
	return responseList
}

// ReviewResponse is the DTO for a review. The tri-state approval column is
// exposed both raw (for parity with existing data) and as a derived status.
type ReviewResponse struct {
	ID         string    `json:"id"`
	UserID     *string   `json:"userId"`
	ProjectID  *string   `json:"projectId"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	IsApproved *bool     `json:"isApproved"`
	Status     string    `json:"status"` // pending | approved | rejected
	CreatedAt  time.Time `json:"createdAt"`
}

func toReviewResponse(r *database.Review) ReviewResponse {
	resp := ReviewResponse{
		ID:        r.ID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		Status:    r.ApprovalState(),
		CreatedAt: r.CreatedAt,
	}
	if r.UserID.Valid {
		resp.UserID = &r.UserID.String
	}
	if r.ProjectID.Valid {
		resp.ProjectID = &r.ProjectID.String
	}
	if r.IsApproved.Valid {
		resp.IsApproved = &r.IsApproved.Bool
	}
	return resp
}

func toReviewResponseList(reviews []*database.Review) []ReviewResponse {
	responseList := make([]ReviewResponse, len(reviews))
	for i, r := range reviews {
		responseList[i] = toReviewResponse(r)
	}
	return responseList
}

// MeetingResponse is the DTO for a meeting; RemainingSpots is derived from
// the approved registration count, never stored.
type MeetingResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	Location       string    `json:"location"`
	Address        *string   `json:"address"`
	Spots          int       `json:"spots"`
	RemainingSpots int       `json:"remainingSpots"`
	Description    *string   `json:"description"`
	CreatedAt      time.Time `json:"createdAt"`
}

func toMeetingResponse(m *database.Meeting) MeetingResponse {
	remaining := m.Spots - m.ApprovedCount
	if remaining < 0 {
		remaining = 0
	}
	resp := MeetingResponse{
		ID:             m.ID,
		Title:          m.Title,
		Date:           m.Date,
		Time:           m.Time,
		Location:       m.Location,
		Spots:          m.Spots,
		RemainingSpots: remaining,
		CreatedAt:      m.CreatedAt,
	}
	if m.Address.Valid {
		resp.Address = &m.Address.String
	}
	if m.Description.Valid {
		resp.Description = &m.Description.String
	}
	return resp
}

func toMeetingResponseList(meetings []*database.Meeting) []MeetingResponse {
	responseList := make([]MeetingResponse, len(meetings))
	for i, m := range meetings {
		responseList[i] = toMeetingResponse(m)
	}
	return responseList
}

// RegistrationResponse is the DTO for a meeting registration or project
// consultation request.
type RegistrationResponse struct {
	ID        string    `json:"id"`
	MeetingID *string   `json:"meetingId"`
	ProjectID *string   `json:"projectId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	Company   *string   `json:"company"`
	Message   *string   `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func toRegistrationResponse(r *database.Registration) RegistrationResponse {
	resp := RegistrationResponse{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
	}
	if r.MeetingID.Valid {
		resp.MeetingID = &r.MeetingID.String
	}
	if r.ProjectID.Valid {
		resp.ProjectID = &r.ProjectID.String
	}
	if r.Phone.Valid {
		resp.Phone = &r.Phone.String
	}
	if r.Company.Valid {
		resp.Company = &r.Company.String
	}
	if r.Message.Valid {
		resp.Message = &r.Message.String
	}
	return resp
}

func toRegistrationResponseList(regs []*database.Registration) []RegistrationResponse {
	responseList := make([]RegistrationResponse, len(regs))
	for i, r := range regs {
		responseList[i] = toRegistrationResponse(r)
	}
	return responseList
}
