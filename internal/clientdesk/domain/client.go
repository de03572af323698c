package domain

import "time"

// Client is a single contact record in the clients table.
type Client struct {
	ID        int64
	Name      string
	Email     string
	Phone     *string // nil when no phone is on record
	CreatedAt time.Time
}

// ClientFields holds the validated fields used to create a client.
type ClientFields struct {
	Name  string
	Email string
	Phone *string
}

// ClientPatch holds the validated fields of a partial update. A nil pointer
// means the field was not supplied. A non-nil empty Phone clears the phone.
type ClientPatch struct {
	Name  *string
	Email *string
	Phone *string
}

// IsEmpty reports whether no field was supplied.
func (p ClientPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil
}
