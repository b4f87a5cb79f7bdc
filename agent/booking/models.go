package booking

import (
	"time"

	"github.com/uptrace/bun"
)

// MembershipAccount is the points ledger row backing check_membership_points
// and the deduction made by book_lounge.
type MembershipAccount struct {
	bun.BaseModel `bun:"table:membership_accounts"`

	UserID            string    `bun:"user_id,pk"`
	Points            int       `bun:"points,notnull"`
	FirstName         string    `bun:"first_name"`
	LastName          string    `bun:"last_name"`
	PreferredLanguage string    `bun:"preferred_language"`
	UpdatedAt         time.Time `bun:"updated_at,notnull"`
}

// LoungeBooking is one confirmed reservation.
type LoungeBooking struct {
	bun.BaseModel `bun:"table:lounge_bookings"`

	BookingID    string    `bun:"booking_id,pk"`
	UserID       string    `bun:"user_id,notnull"`
	LoungeID     string    `bun:"lounge_id,notnull"`
	FlightNumber string    `bun:"flight_number,notnull"`
	ArrivalTime  time.Time `bun:"arrival_time,notnull"`
	PointsSpent  int       `bun:"points_spent,notnull"`
	BookedAt     time.Time `bun:"booked_at,notnull"`
}
