package model

import "time"

// DateLayout is the presentation format for date columns. Stored
// values keep the database's native types; formatting happens when
// rows are read.
const DateLayout = "02.01.2006"

// Application represents a row of the `applications` table: one
// purchase request submitted by a user and tracked through the
// status lifecycle. Rows are never physically deleted; terminal
// statuses move them into the archive instead.
//
// Fields:
//  ID               – primary key, auto-assigned.
//  UserID           – owning user (users.id).
//  ProductName      – what is being requested.
//  Quantity         – positive unit count.
//  Price            – non-negative price per unit.
//  Link             – optional URL or free-form reference.
//  DesiredDate      – when the user wants the product.
//  CreationDate     – set by the insert, never updated.
//  ExpectedDelivery – set by an admin, nullable.
//  Status           – current lifecycle state.
//  ManagerComment   – set by an admin or by cancellation, nullable.
type Application struct {
	ID               uint64
	UserID           uint64
	ProductName      string
	Quantity         int
	Price            float64
	Link             string
	DesiredDate      time.Time
	CreationDate     time.Time
	ExpectedDelivery *time.Time
	Status           Status
	ManagerComment   string

	// Formatted dd.mm.yyyy counterparts attached on read for
	// presentation. ExpectedDeliveryFmt is empty while the column
	// is null.
	DesiredDateFmt      string
	CreationDateFmt     string
	ExpectedDeliveryFmt string
}

// AdminApplication extends Application with the owner's username for
// the admin review listing.
type AdminApplication struct {
	Application
	Username string
}

// ArchivedApplication is an archive row together with its derived
// total cost (quantity × price, computed at read time).
type ArchivedApplication struct {
	Application
	Username  string
	TotalCost float64
}

// Format fills the presentation date fields from the stored values.
func (a *Application) Format() {
	a.DesiredDateFmt = a.DesiredDate.Format(DateLayout)
	a.CreationDateFmt = a.CreationDate.Format(DateLayout)
	if a.ExpectedDelivery != nil {
		a.ExpectedDeliveryFmt = a.ExpectedDelivery.Format(DateLayout)
	} else {
		a.ExpectedDeliveryFmt = ""
	}
}
