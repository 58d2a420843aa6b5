package database

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// --- Meeting & Registration Queries ---
//
// Meetings have a fixed capacity ('spots') but no stored "remaining" column:
// remaining capacity is always derived by counting approved registrations.

func (s *Service) CreateMeeting(ctx context.Context, db DBorTx, m *Meeting) (*Meeting, error) {
	if m.Spots < 1 {
		return nil, &ValidationError{Field: "spots", Reason: "must be at least 1"}
	}
	if _, err := time.Parse("2006-01-02", m.Date); err != nil {
		return nil, &ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}

	id := uuid.NewString()
	query := `INSERT INTO meetings (id, title, date, time, location, address, spots, description)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?);`
	if _, err := db.ExecContext(ctx, query,
		id, m.Title, m.Date, m.Time, m.Location, m.Address, m.Spots, m.Description); err != nil {
		return nil, classify(err)
	}
	return s.GetMeetingByID(ctx, db, id)
}

func (s *Service) GetMeetingByID(ctx context.Context, db DBorTx, id string) (*Meeting, error) {
	if err := ValidateID("meeting id", id); err != nil {
		return nil, err
	}
	query := `SELECT m.id, m.title, m.date, m.time, m.location, m.address, m.spots, m.description, m.created_at,
				(SELECT COUNT(*) FROM meeting_registrations r WHERE r.meeting_id = m.id AND r.status = 'approved')
			  FROM meetings m WHERE m.id = ?;`
	m := &Meeting{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.Title, &m.Date, &m.Time, &m.Location, &m.Address,
		&m.Spots, &m.Description, &m.CreatedAt, &m.ApprovedCount)
	if err != nil {
		return nil, classify(err)
	}
	return m, nil
}

// ListUpcomingMeetings returns meetings from today onward, soonest first.
// This is the one list in the system that does not order newest-created first.
func (s *Service) ListUpcomingMeetings(ctx context.Context, db DBorTx, limit, offset int) ([]*Meeting, int, error) {
	today := time.Now().Format("2006-01-02")
	return s.listMeetings(ctx, db, " WHERE m.date >= ?", "m.date ASC, m.time ASC", []interface{}{today}, limit, offset)
}

// ListMeetings returns every meeting, newest first, for the admin back-office.
func (s *Service) ListMeetings(ctx context.Context, db DBorTx, limit, offset int) ([]*Meeting, int, error) {
	return s.listMeetings(ctx, db, "", "m.created_at DESC", nil, limit, offset)
}

func (s *Service) listMeetings(ctx context.Context, db DBorTx, where, order string, args []interface{}, limit, offset int) ([]*Meeting, int, error) {
	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM meetings m`+where+`;`, args...).Scan(&total); err != nil {
		return nil, 0, classify(err)
	}

	query := `SELECT m.id, m.title, m.date, m.time, m.location, m.address, m.spots, m.description, m.created_at,
				(SELECT COUNT(*) FROM meeting_registrations r WHERE r.meeting_id = m.id AND r.status = 'approved')
			  FROM meetings m` + where + ` ORDER BY ` + order + ` LIMIT ? OFFSET ?;`
	rows, err := db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, classify(err)
	}
	defer rows.Close()

	var meetings []*Meeting
	for rows.Next() {
		m := &Meeting{}
		if err := rows.Scan(&m.ID, &m.Title, &m.Date, &m.Time, &m.Location, &m.Address,
			&m.Spots, &m.Description, &m.CreatedAt, &m.ApprovedCount); err != nil {
			return nil, 0, classify(err)
		}
		meetings = append(meetings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, classify(err)
	}
	return meetings, total, nil
}

func (s *Service) DeleteMeeting(ctx context.Context, db DBorTx, id string) error {
	if err := ValidateID("meeting id", id); err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM meetings WHERE id = ?;`, id)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateRegistration inserts a registration for either a meeting or a project
// consultation: exactly one of MeetingID / ProjectID must be set. For meeting
// registrations the capacity check runs in the same transaction as the
// insert, so two concurrent signups cannot both take the last spot.
func (s *Service) CreateRegistration(ctx context.Context, db DBorTx, reg *Registration) (*Registration, error) {
	hasMeeting := reg.MeetingID.Valid && reg.MeetingID.String != ""
	hasProject := reg.ProjectID.Valid && reg.ProjectID.String != ""
	if hasMeeting == hasProject {
		return nil, &ValidationError{Field: "meeting id / project id", Reason: "exactly one must be set"}
	}
	if hasMeeting {
		if err := ValidateID("meeting id", reg.MeetingID.String); err != nil {
			return nil, err
		}
		meeting, err := s.GetMeetingByID(ctx, db, reg.MeetingID.String)
		if err != nil {
			return nil, err
		}
		if meeting.ApprovedCount >= meeting.Spots {
			return nil, &CapacityError{MeetingID: meeting.ID, Spots: meeting.Spots}
		}
	} else {
		if err := ValidateID("project id", reg.ProjectID.String); err != nil {
			return nil, err
		}
	}
	if reg.Name == "" || reg.Email == "" {
		return nil, &ValidationError{Field: "name/email", Reason: "required"}
	}

	id := uuid.NewString()
	query := `INSERT INTO meeting_registrations (id, meeting_id, project_id, name, email, phone, company, message)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?);`
	if _, err := db.ExecContext(ctx, query,
		id, reg.MeetingID, reg.ProjectID, reg.Name, reg.Email, reg.Phone, reg.Company, reg.Message); err != nil {
		return nil, classify(err)
	}
	return s.GetRegistrationByID(ctx, db, id)
}

func (s *Service) GetRegistrationByID(ctx context.Context, db DBorTx, id string) (*Registration, error) {
	if err := ValidateID("registration id", id); err != nil {
		return nil, err
	}
	query := `SELECT id, meeting_id, project_id, name, email, phone, company, message, status, created_at
			  FROM meeting_registrations WHERE id = ?;`
	r := &Registration{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&r.ID, &r.MeetingID, &r.ProjectID, &r.Name, &r.Email,
		&r.Phone, &r.Company, &r.Message, &r.Status, &r.CreatedAt)
	if err != nil {
		return nil, classify(err)
	}
	return r, nil
}

// ListRegistrations returns one page of registrations, newest first,
// optionally narrowed by status and/or meeting.
func (s *Service) ListRegistrations(ctx context.Context, db DBorTx, status, meetingID string, limit, offset int) ([]*Registration, int, error) {
	var conds []string
	var args []interface{}

	switch status {
	case "", "all":
	case RegistrationPending, RegistrationApproved, RegistrationRejected:
		conds = append(conds, "status = ?")
		args = append(args, status)
	default:
		return nil, 0, &ValidationError{Field: "status", Reason: "unknown registration status " + status}
	}
	if meetingID != "" {
		if err := ValidateID("meeting id", meetingID); err != nil {
			return nil, 0, err
		}
		conds = append(conds, "meeting_id = ?")
		args = append(args, meetingID)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM meeting_registrations`+where+`;`, args...).Scan(&total); err != nil {
		return nil, 0, classify(err)
	}

	query := `SELECT id, meeting_id, project_id, name, email, phone, company, message, status, created_at
			  FROM meeting_registrations` + where + ` ORDER BY created_at DESC LIMIT ? OFFSET ?;`
	rows, err := db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, classify(err)
	}
	defer rows.Close()

	var regs []*Registration
	for rows.Next() {
		r := &Registration{}
		if err := rows.Scan(&r.ID, &r.MeetingID, &r.ProjectID, &r.Name, &r.Email,
			&r.Phone, &r.Company, &r.Message, &r.Status, &r.CreatedAt); err != nil {
			return nil, 0, classify(err)
		}
		regs = append(regs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, classify(err)
	}
	return regs, total, nil
}

// SetRegistrationStatus records an admin decision. Setting the same status
// twice is a repeatable no-op.
func (s *Service) SetRegistrationStatus(ctx context.Context, db DBorTx, id, status string) error {
	if err := ValidateID("registration id", id); err != nil {
		return err
	}
	switch status {
	case RegistrationPending, RegistrationApproved, RegistrationRejected:
	default:
		return &ValidationError{Field: "status", Reason: "unknown registration status " + status}
	}
	res, err := db.ExecContext(ctx, `UPDATE meeting_registrations SET status = ? WHERE id = ?;`, status, id)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
