// Package policy holds the whole permission model as one pure function so it
// can be tested without any HTTP layer.
package policy

// Caller is the identity extracted from the request credential. The zero
// value is an anonymous caller.
type Caller struct {
	ID            int64
	IsStaff       bool
	Authenticated bool
}

type Op int

const (
	CatalogRead Op = iota
	CatalogWrite
	BorrowingRead
	BorrowingWrite
	PaymentRead
	ProfileRead
	ProfileWrite
)

// Allow reports whether the caller may perform op: catalog reads are open to
// everyone, catalog writes need a staff caller, everything else needs any
// authenticated caller. Row-level ownership is enforced by the services, not
// here.
func Allow(op Op, c Caller) bool {
	switch op {
	case CatalogRead:
		return true
	case CatalogWrite:
		return c.Authenticated && c.IsStaff
	default:
		return c.Authenticated
	}
}
