package database

import (
	"context"

	"github.com/google/uuid"
)

// --- Contact Message Queries ---

func (s *Service) CreateContactMessage(ctx context.Context, db DBorTx, name, email, message string) (*ContactMessage, error) {
	if name == "" || email == "" || message == "" {
		return nil, &ValidationError{Field: "name/email/message", Reason: "required"}
	}
	id := uuid.NewString()
	query := `INSERT INTO contact_messages (id, name, email, message) VALUES (?, ?, ?, ?);`
	if _, err := db.ExecContext(ctx, query, id, name, email, message); err != nil {
		return nil, classify(err)
	}
	return s.GetContactMessageByID(ctx, db, id)
}

func (s *Service) GetContactMessageByID(ctx context.Context, db DBorTx, id string) (*ContactMessage, error) {
	if err := ValidateID("message id", id); err != nil {
		return nil, err
	}
	query := `SELECT id, name, email, message, status, created_at FROM contact_messages WHERE id = ?;`
	m := &ContactMessage{}
	err := db.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.Status, &m.CreatedAt)
	if err != nil {
		return nil, classify(err)
	}
	return m, nil
}

// ListContactMessages returns one page of the mailbox, newest first,
// optionally narrowed to one status.
func (s *Service) ListContactMessages(ctx context.Context, db DBorTx, status string, limit, offset int) ([]*ContactMessage, int, error) {
	where := ""
	var args []interface{}
	if status != "" && status != "all" {
		if !ValidContactStatus(status) {
			return nil, 0, &ValidationError{Field: "status", Reason: "unknown message status " + status}
		}
		where = " WHERE status = ?"
		args = append(args, status)
	}

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contact_messages`+where+`;`, args...).Scan(&total); err != nil {
		return nil, 0, classify(err)
	}

	query := `SELECT id, name, email, message, status, created_at
			  FROM contact_messages` + where + ` ORDER BY created_at DESC LIMIT ? OFFSET ?;`
	rows, err := db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, classify(err)
	}
	defer rows.Close()

	var messages []*ContactMessage
	for rows.Next() {
		m := &ContactMessage{}
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.Status, &m.CreatedAt); err != nil {
			return nil, 0, classify(err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, classify(err)
	}
	return messages, total, nil
}

// SetContactMessageStatus moves a message through the mailbox state machine.
// Every transition is repeatable: setting 'archived' on an archived message
// succeeds and leaves it archived.
func (s *Service) SetContactMessageStatus(ctx context.Context, db DBorTx, id, status string) error {
	if err := ValidateID("message id", id); err != nil {
		return err
	}
	if !ValidContactStatus(status) {
		return &ValidationError{Field: "status", Reason: "unknown message status " + status}
	}
	res, err := db.ExecContext(ctx, `UPDATE contact_messages SET status = ? WHERE id = ?;`, status, id)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
