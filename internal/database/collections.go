package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// The 'projects' and 'gallery' tables share one shape: a titled, categorized,
// owned image collection. The queries below run against either table, with the
// table name checked against a closed set so nothing caller-controlled is ever
// spliced into SQL.

const (
	TableProjects = "projects"
	TableGallery  = "gallery"
)

func checkCollectionTable(table string) error {
	if table != TableProjects && table != TableGallery {
		return &ValidationError{Field: "table", Reason: "unknown collection table " + table}
	}
	return nil
}

// CollectionFilter narrows a collection list. Zero values mean "no filter";
// the conventional "all" category from the UI is treated the same as unset.
type CollectionFilter struct {
	Category     string
	Status       string
	OwnerID      string
	FeaturedOnly bool
	Search       string // case-insensitive substring across title, description, category
}

func (f CollectionFilter) where() (string, []interface{}, error) {
	var conds []string
	var args []interface{}

	if f.Category != "" && f.Category != "all" {
		if !ValidCategory(f.Category) {
			return "", nil, &ValidationError{Field: "category", Reason: "unknown category " + f.Category}
		}
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	if f.Status != "" && f.Status != "all" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	if f.OwnerID != "" {
		if err := ValidateID("owner id", f.OwnerID); err != nil {
			return "", nil, err
		}
		conds = append(conds, "user_id = ?")
		args = append(args, f.OwnerID)
	}
	if f.FeaturedOnly {
		conds = append(conds, "featured = 1")
	}
	if f.Search != "" {
		// Substring match combined with OR; no ranking, no typo tolerance.
		conds = append(conds, "(title LIKE ? OR description LIKE ? OR category LIKE ?)")
		needle := "%" + f.Search + "%"
		args = append(args, needle, needle, needle)
	}

	if len(conds) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

// ListCollection returns one page of rows from the given collection table,
// newest first, along with the exact total count for the filter so callers can
// derive total pages without a second round trip.
func (s *Service) ListCollection(ctx context.Context, db DBorTx, table string, filter CollectionFilter, limit, offset int) ([]*Project, int, error) {
	if err := checkCollectionTable(table); err != nil {
		return nil, 0, err
	}
	where, args, err := filter.where()
	if err != nil {
		return nil, 0, err
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s%s;`, table, where)
	if err := db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, classify(err)
	}

	query := fmt.Sprintf(`SELECT id, title, description, category, images, user_id, status, featured, created_at
		FROM %s%s ORDER BY created_at DESC LIMIT ? OFFSET ?;`, table, where)
	rows, err := db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, classify(err)
	}
	defer rows.Close()

	var items []*Project
	for rows.Next() {
		item, err := scanCollectionRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, classify(err)
	}
	return items, total, nil
}

func (s *Service) GetCollectionItem(ctx context.Context, db DBorTx, table, id string) (*Project, error) {
	if err := checkCollectionTable(table); err != nil {
		return nil, err
	}
	if err := ValidateID("id", id); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT id, title, description, category, images, user_id, status, featured, created_at
		FROM %s WHERE id = ?;`, table)
	rows, err := db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, classify(err)
		}
		return nil, ErrNotFound
	}
	return scanCollectionRow(rows)
}

func (s *Service) CreateCollectionItem(ctx context.Context, db DBorTx, table string, item *Project) (*Project, error) {
	if err := checkCollectionTable(table); err != nil {
		return nil, err
	}
	if !ValidCategory(item.Category) {
		return nil, &ValidationError{Field: "category", Reason: "unknown category " + item.Category}
	}
	if err := ValidateOptionalID("user id", item.UserID.String); err != nil {
		return nil, err
	}
	images, err := marshalImages(item.Images)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	status := item.Status
	if status == "" {
		status = "active"
	}
	query := fmt.Sprintf(`INSERT INTO %s (id, title, description, category, images, user_id, status, featured)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?);`, table)
	if _, err := db.ExecContext(ctx, query,
		id, item.Title, item.Description, item.Category, images, item.UserID, status, item.Featured); err != nil {
		return nil, classify(err)
	}
	return s.GetCollectionItem(ctx, db, table, id)
}

// CollectionUpdate carries the mutable fields of a collection item. Nil
// pointers mean "leave unchanged".
type CollectionUpdate struct {
	Title       *string
	Description *string
	Category    *string
	Images      []string // nil leaves the stored list unchanged
	Status      *string
}

func (s *Service) UpdateCollectionItem(ctx context.Context, db DBorTx, table, id string, upd CollectionUpdate) error {
	if err := checkCollectionTable(table); err != nil {
		return err
	}
	if err := ValidateID("id", id); err != nil {
		return err
	}
	if upd.Category != nil && !ValidCategory(*upd.Category) {
		return &ValidationError{Field: "category", Reason: "unknown category " + *upd.Category}
	}

	var images interface{} // nil keeps the stored value via COALESCE
	if upd.Images != nil {
		encoded, err := marshalImages(upd.Images)
		if err != nil {
			return err
		}
		images = encoded
	}

	query := fmt.Sprintf(`UPDATE %s SET
			title       = COALESCE(?, title),
			description = COALESCE(?, description),
			category    = COALESCE(?, category),
			images      = COALESCE(?, images),
			status      = COALESCE(?, status)
		WHERE id = ?;`, table)
	res, err := db.ExecContext(ctx, query, upd.Title, upd.Description, upd.Category, images, upd.Status, id)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetCollectionFeatured flips the featured flag on one item.
func (s *Service) SetCollectionFeatured(ctx context.Context, db DBorTx, table, id string, featured bool) error {
	if err := checkCollectionTable(table); err != nil {
		return err
	}
	if err := ValidateID("id", id); err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE %s SET featured = ? WHERE id = ?;`, table)
	res, err := db.ExecContext(ctx, query, featured, id)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCollectionItem removes one item outright. Admin only; public flows
// prefer flipping the status flag.
func (s *Service) DeleteCollectionItem(ctx context.Context, db DBorTx, table, id string) error {
	if err := checkCollectionTable(table); err != nil {
		return err
	}
	if err := ValidateID("id", id); err != nil {
		return err
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?;`, table)
	res, err := db.ExecContext(ctx, query, id)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// rowScanner covers *sql.Row and *sql.Rows for the shared scan helper.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCollectionRow(row rowScanner) (*Project, error) {
	item := &Project{}
	var rawImages string
	if err := row.Scan(&item.ID, &item.Title, &item.Description, &item.Category,
		&rawImages, &item.UserID, &item.Status, &item.Featured, &item.CreatedAt); err != nil {
		return nil, classify(err)
	}
	images, err := unmarshalImages(rawImages)
	if err != nil {
		return nil, err
	}
	item.Images = images
	return item, nil
}
