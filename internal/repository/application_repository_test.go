package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"purchase-desk/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

const appSelectForUser = "SELECT id, user_id, product_name, quantity, price, link, desired_date, creation_date, expected_delivery, status, manager_comment FROM applications WHERE user_id = ? AND status NOT IN (?,?) ORDER BY id DESC"

const appInsert = "INSERT INTO applications (user_id, product_name, quantity, price, link, desired_date, creation_date, status) VALUES (?,?,?,?,?,?,NOW(),?)"

func appColumns() []string {
	return []string{"id", "user_id", "product_name", "quantity", "price", "link",
		"desired_date", "creation_date", "expected_delivery", "status", "manager_comment"}
}

func TestListForUserExcludesArchiveAndFormatsDates(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepo(db)

	desired := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, 12, 30, 10, 30, 0, 0, time.UTC)

	rows := sqlmock.NewRows(appColumns()).
		AddRow(7, 42, "Widget", 3, 10.50, "http://x", desired, created, nil, string(model.StatusPending), nil).
		AddRow(4, 42, "Cable", 1, 2.00, nil, desired, created, nil, string(model.StatusPurchasing), nil)

	mock.ExpectQuery(appSelectForUser).
		WithArgs(uint64(42), string(model.StatusReceived), string(model.StatusRejected)).
		WillReturnRows(rows)

	apps, err := repo.ListForUser(context.Background(), 42)
	if err != nil {
		t.Fatalf("list for user: %v", err)
	}
	if len(apps) != 2 {
		t.Fatalf("expected 2 applications, got %d", len(apps))
	}
	if apps[0].ID != 7 || apps[1].ID != 4 {
		t.Fatalf("expected newest-first order, got %d then %d", apps[0].ID, apps[1].ID)
	}
	if apps[0].DesiredDateFmt != "01.01.2025" {
		t.Fatalf("desired date format: got %q", apps[0].DesiredDateFmt)
	}
	if apps[0].CreationDateFmt != "30.12.2024" {
		t.Fatalf("creation date format: got %q", apps[0].CreationDateFmt)
	}
	if apps[0].ExpectedDeliveryFmt != "" {
		t.Fatalf("expected empty delivery format, got %q", apps[0].ExpectedDeliveryFmt)
	}
	if apps[1].Link != "" {
		t.Fatalf("null link should scan to empty string, got %q", apps[1].Link)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateInsertsPendingStatus(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepo(db)

	desired := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(appInsert).
		WithArgs(uint64(42), "Widget", 3, 10.50, "http://x", desired, string(model.StatusPending)).
		WillReturnResult(sqlmock.NewResult(11, 1))

	id, err := repo.Create(context.Background(), 42, CreateInput{
		ProductName: "Widget",
		Quantity:    3,
		Price:       10.50,
		Link:        "http://x",
		DesiredDate: desired,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != 11 {
		t.Fatalf("expected inserted id 11, got %d", id)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	db, _ := newMock(t)
	repo := NewApplicationRepo(db)
	desired := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	cases := []CreateInput{
		{ProductName: "", Quantity: 1, Price: 1, DesiredDate: desired},
		{ProductName: "Widget", Quantity: 0, Price: 1, DesiredDate: desired},
		{ProductName: "Widget", Quantity: 1, Price: -0.01, DesiredDate: desired},
		{ProductName: "Widget", Quantity: 1, Price: 1},
	}
	for i, in := range cases {
		if _, err := repo.Create(context.Background(), 42, in); !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d: expected ErrValidation, got %v", i, err)
		}
	}
}

func TestCancelGuardedByOwnerAndActiveStatus(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepo(db)

	const cancelStmt = "UPDATE applications SET status = ?, manager_comment = ? WHERE id = ? AND user_id = ? AND status NOT IN (?,?)"

	mock.ExpectExec(cancelStmt).
		WithArgs(string(model.StatusRejected), model.CancelComment, uint64(7), uint64(42),
			string(model.StatusReceived), string(model.StatusRejected)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Second cancel: the row is already rejected, the guard matches nothing
	// and the first cancellation's comment stays in place.
	mock.ExpectExec(cancelStmt).
		WithArgs(string(model.StatusRejected), model.CancelComment, uint64(7), uint64(42),
			string(model.StatusReceived), string(model.StatusRejected)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := repo.Cancel(context.Background(), 7, 42)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if affected != 1 {
		t.Fatalf("first cancel should affect 1 row, got %d", affected)
	}

	affected, err = repo.Cancel(context.Background(), 7, 42)
	if err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if affected != 0 {
		t.Fatalf("second cancel should affect 0 rows, got %d", affected)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListForAdminFilters(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepo(db)

	adminCols := append(appColumns(), "username")
	desired := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT a.id, a.user_id, a.product_name, a.quantity, a.price, a.link, a.desired_date, a.creation_date, a.expected_delivery, a.status, a.manager_comment, u.username FROM applications a JOIN users u ON u.id = a.user_id WHERE a.status NOT IN (?,?) ORDER BY a.id DESC").
		WithArgs(string(model.StatusReceived), string(model.StatusRejected)).
		WillReturnRows(sqlmock.NewRows(adminCols).
			AddRow(7, 42, "Widget", 3, 10.50, nil, desired, created, nil, string(model.StatusPending), nil, "ivan"))

	apps, err := repo.ListForAdmin(context.Background(), model.FilterAll)
	if err != nil {
		t.Fatalf("list for admin: %v", err)
	}
	if len(apps) != 1 || apps[0].Username != "ivan" {
		t.Fatalf("unexpected admin listing: %+v", apps)
	}

	mock.ExpectQuery("SELECT a.id, a.user_id, a.product_name, a.quantity, a.price, a.link, a.desired_date, a.creation_date, a.expected_delivery, a.status, a.manager_comment, u.username FROM applications a JOIN users u ON u.id = a.user_id WHERE a.status = ? ORDER BY a.id DESC").
		WithArgs(string(model.StatusPaused)).
		WillReturnRows(sqlmock.NewRows(adminCols))

	if _, err := repo.ListForAdmin(context.Background(), string(model.StatusPaused)); err != nil {
		t.Fatalf("filtered admin listing: %v", err)
	}

	if _, err := repo.ListForAdmin(context.Background(), "Несуществующий"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus for unknown filter, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateRejectsUnknownStatusWithoutTouchingStore(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepo(db)

	if _, err := repo.Update(context.Background(), 7, "Завершен", "", nil); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	// No expectations were registered: any statement would fail the test.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("store was touched: %v", err)
	}
}

func TestUpdateWritesStatusCommentAndDelivery(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepo(db)

	expected := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE applications SET status = ?, manager_comment = ?, expected_delivery = ? WHERE id = ?").
		WithArgs(string(model.StatusReceived), "Выдано", expected, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.Update(context.Background(), 7, model.StatusReceived, "Выдано", &expected)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 affected row, got %d", affected)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListArchiveComputesTotalCost(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepo(db)

	cols := append(appColumns(), "username", "total_cost")
	desired := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)
	delivered := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT a.id, a.user_id, a.product_name, a.quantity, a.price, a.link, a.desired_date, a.creation_date, a.expected_delivery, a.status, a.manager_comment, u.username, a.quantity * a.price AS total_cost FROM applications a JOIN users u ON u.id = a.user_id WHERE a.status IN (?,?) ORDER BY a.id DESC").
		WithArgs(string(model.StatusReceived), string(model.StatusRejected)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(7, 42, "Widget", 3, 10.50, nil, desired, created, delivered, string(model.StatusReceived), "Выдано", "ivan", 31.50))

	apps, err := repo.ListArchive(context.Background())
	if err != nil {
		t.Fatalf("list archive: %v", err)
	}
	if len(apps) != 1 {
		t.Fatalf("expected 1 archive row, got %d", len(apps))
	}
	a := apps[0]
	if a.TotalCost != float64(a.Quantity)*a.Price {
		t.Fatalf("total cost %v != quantity*price %v", a.TotalCost, float64(a.Quantity)*a.Price)
	}
	if a.ExpectedDeliveryFmt != "01.02.2025" {
		t.Fatalf("expected delivery format: got %q", a.ExpectedDeliveryFmt)
	}
	if !model.IsArchived(a.Status) {
		t.Fatalf("archive listing returned active status %q", a.Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCloneCopiesOwnedApplication(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepo(db)

	desired := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT product_name, quantity, price, link, desired_date FROM applications WHERE id = ? AND user_id = ? FOR UPDATE").
		WithArgs(uint64(7), uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"product_name", "quantity", "price", "link", "desired_date"}).
			AddRow("Widget", 3, 10.50, "http://x", desired))
	mock.ExpectExec(appInsert).
		WithArgs(uint64(42), "Widget", 3, 10.50, "http://x", desired, string(model.StatusPending)).
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectCommit()

	id, err := repo.Clone(context.Background(), 7, 42)
	if err != nil {
		t.Fatalf("clone: %v", err)
	}
	if id != 12 {
		t.Fatalf("expected cloned id 12, got %d", id)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCloneForeignApplicationInsertsNothing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT product_name, quantity, price, link, desired_date FROM applications WHERE id = ? AND user_id = ? FOR UPDATE").
		WithArgs(uint64(7), uint64(99)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	if _, err := repo.Clone(context.Background(), 7, 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign application, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
