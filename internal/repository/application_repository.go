package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"purchase-desk/internal/model"
)

// ApplicationRepo provides CRUD operations for purchase requests. Every
// statement uses bound parameters; status values are validated against
// the vocabulary before any write. Rows are never deleted: terminal
// statuses move an application into the archive partition instead.
type ApplicationRepo struct {
	db *sql.DB
}

// NewApplicationRepo returns an ApplicationRepo bound to the given database.
func NewApplicationRepo(db *sql.DB) *ApplicationRepo { return &ApplicationRepo{db: db} }

// CreateInput carries the user-supplied fields of a new application.
// Everything else (owner, status, creation timestamp) is set by the
// repository.
type CreateInput struct {
	ProductName string
	Quantity    int
	Price       float64
	Link        string
	DesiredDate time.Time
}

// Validate rejects input the store should never see. Link is optional.
func (in CreateInput) Validate() error {
	if strings.TrimSpace(in.ProductName) == "" {
		return ErrValidation
	}
	if in.Quantity <= 0 {
		return ErrValidation
	}
	if in.Price < 0 {
		return ErrValidation
	}
	if in.DesiredDate.IsZero() {
		return ErrValidation
	}
	return nil
}

const applicationColumns = "id, user_id, product_name, quantity, price, link, desired_date, creation_date, expected_delivery, status, manager_comment"

// archiveClause builds a status placeholder list ("?,?") plus the bound
// archive values, in vocabulary order.
func archiveClause() (string, []interface{}) {
	arch := model.ArchivedStatuses()
	marks := make([]string, len(arch))
	args := make([]interface{}, len(arch))
	for i, s := range arch {
		marks[i] = "?"
		args[i] = string(s)
	}
	return strings.Join(marks, ","), args
}

// scanApplication reads one row in applicationColumns order and attaches
// the formatted date fields.
func scanApplication(sc interface{ Scan(...interface{}) error }) (model.Application, error) {
	var (
		a        model.Application
		link     sql.NullString
		expected sql.NullTime
		comment  sql.NullString
	)
	err := sc.Scan(&a.ID, &a.UserID, &a.ProductName, &a.Quantity, &a.Price,
		&link, &a.DesiredDate, &a.CreationDate, &expected, &a.Status, &comment)
	if err != nil {
		return model.Application{}, err
	}
	a.Link = link.String
	a.ManagerComment = comment.String
	if expected.Valid {
		t := expected.Time
		a.ExpectedDelivery = &t
	}
	a.Format()
	return a, nil
}

// ListForUser returns the caller's active applications, newest first.
// Archived rows (received, rejected) never appear here.
func (r *ApplicationRepo) ListForUser(ctx context.Context, userID uint64) ([]model.Application, error) {
	marks, archArgs := archiveClause()
	q := "SELECT " + applicationColumns + " FROM applications" +
		" WHERE user_id = ? AND status NOT IN (" + marks + ") ORDER BY id DESC"
	args := append([]interface{}{userID}, archArgs...)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := make([]model.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return apps, nil
}

// Create inserts a new application for userID and returns the generated
// id. Status starts at the pending value and creation_date is the insert
// time; callers cannot override either.
func (r *ApplicationRepo) Create(ctx context.Context, userID uint64, in CreateInput) (uint64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO applications (user_id, product_name, quantity, price, link, desired_date, creation_date, status) VALUES (?,?,?,?,?,?,NOW(),?)",
		userID, strings.TrimSpace(in.ProductName), in.Quantity, in.Price,
		nullString(in.Link), in.DesiredDate, string(model.StatusPending))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Cancel moves the caller's own application to the rejected status with
// the fixed system comment. The WHERE clause enforces ownership and
// skips archived rows, so cancelling an already-terminal application
// matches zero rows and leaves the first cancellation's comment intact.
func (r *ApplicationRepo) Cancel(ctx context.Context, id, callerUserID uint64) (int64, error) {
	marks, archArgs := archiveClause()
	q := "UPDATE applications SET status = ?, manager_comment = ?" +
		" WHERE id = ? AND user_id = ? AND status NOT IN (" + marks + ")"
	args := append([]interface{}{string(model.StatusRejected), model.CancelComment, id, callerUserID}, archArgs...)

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListForAdmin returns active applications joined with the owning
// username for the review screen. filter is either model.FilterAll or
// one member of the vocabulary; anything else is ErrInvalidStatus.
func (r *ApplicationRepo) ListForAdmin(ctx context.Context, filter string) ([]model.AdminApplication, error) {
	q := "SELECT a." + strings.ReplaceAll(applicationColumns, ", ", ", a.") + ", u.username" +
		" FROM applications a JOIN users u ON u.id = a.user_id"
	var args []interface{}
	if filter == model.FilterAll || filter == "" {
		marks, archArgs := archiveClause()
		q += " WHERE a.status NOT IN (" + marks + ")"
		args = archArgs
	} else {
		if !model.ValidStatus(model.Status(filter)) {
			return nil, ErrInvalidStatus
		}
		q += " WHERE a.status = ?"
		args = []interface{}{filter}
	}
	q += " ORDER BY a.id DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := make([]model.AdminApplication, 0)
	for rows.Next() {
		var (
			a        model.AdminApplication
			link     sql.NullString
			expected sql.NullTime
			comment  sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.ProductName, &a.Quantity, &a.Price,
			&link, &a.DesiredDate, &a.CreationDate, &expected, &a.Status, &comment,
			&a.Username); err != nil {
			return nil, err
		}
		a.Link = link.String
		a.ManagerComment = comment.String
		if expected.Valid {
			t := expected.Time
			a.ExpectedDelivery = &t
		}
		a.Format()
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return apps, nil
}

// Update overwrites status, manager comment and the expected delivery
// date of an application. Last writer wins; there is no transition
// guard, only vocabulary membership. A nil expected clears the column.
func (r *ApplicationRepo) Update(ctx context.Context, id uint64, status model.Status, comment string, expected *time.Time) (int64, error) {
	if !model.ValidStatus(status) {
		return 0, ErrInvalidStatus
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE applications SET status = ?, manager_comment = ?, expected_delivery = ? WHERE id = ?",
		string(status), nullString(comment), expected, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListArchive returns applications in the terminal partition with the
// owner's username and the derived total cost (quantity × price).
func (r *ApplicationRepo) ListArchive(ctx context.Context) ([]model.ArchivedApplication, error) {
	marks, archArgs := archiveClause()
	q := "SELECT a." + strings.ReplaceAll(applicationColumns, ", ", ", a.") +
		", u.username, a.quantity * a.price AS total_cost" +
		" FROM applications a JOIN users u ON u.id = a.user_id" +
		" WHERE a.status IN (" + marks + ") ORDER BY a.id DESC"

	rows, err := r.db.QueryContext(ctx, q, archArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := make([]model.ArchivedApplication, 0)
	for rows.Next() {
		var (
			a        model.ArchivedApplication
			link     sql.NullString
			expected sql.NullTime
			comment  sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.ProductName, &a.Quantity, &a.Price,
			&link, &a.DesiredDate, &a.CreationDate, &expected, &a.Status, &comment,
			&a.Username, &a.TotalCost); err != nil {
			return nil, err
		}
		a.Link = link.String
		a.ManagerComment = comment.String
		if expected.Valid {
			t := expected.Time
			a.ExpectedDelivery = &t
		}
		a.Format()
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return apps, nil
}

// Clone duplicates an application the caller owns: same product fields,
// fresh pending status and creation timestamp. The read locks the source
// row so a concurrent update cannot slip between the select and the
// insert. Returns ErrNotFound when the caller owns no such application.
func (r *ApplicationRepo) Clone(ctx context.Context, id, callerUserID uint64) (uint64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var (
		productName string
		quantity    int
		price       float64
		link        sql.NullString
		desired     time.Time
	)
	err = tx.QueryRowContext(ctx,
		"SELECT product_name, quantity, price, link, desired_date FROM applications WHERE id = ? AND user_id = ? FOR UPDATE",
		id, callerUserID).Scan(&productName, &quantity, &price, &link, &desired)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO applications (user_id, product_name, quantity, price, link, desired_date, creation_date, status) VALUES (?,?,?,?,?,?,NOW(),?)",
		callerUserID, productName, quantity, price, link, desired, string(model.StatusPending))
	if err != nil {
		return 0, err
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return uint64(newID), nil
}

// nullString maps "" to NULL for optional text columns.
func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
