package domain

import "time"

// User represents a paying user. Contact fields prefill the hosted checkout.
type User struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
}
