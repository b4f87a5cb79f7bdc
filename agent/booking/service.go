package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	catalogx "github.com/travel-buddy/lounge-agent/agent/catalog"
	contractx "github.com/travel-buddy/lounge-agent/agent/contract"
)

const bookingIDPrefix = "BK_"

// NewBookingID mints a reservation id like BK_1a2b3c4d5e6f.
func NewBookingID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return bookingIDPrefix + raw[:12]
}

// Service books lounges against the membership ledger. The point check and
// deduction run in one transaction so a failed booking never leaves a
// partial deduction behind.
type Service struct {
	db      *bun.DB
	catalog *catalogx.Catalog
	now     func() time.Time
}

func NewService(db *bun.DB, cat *catalogx.Catalog) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: database handle is required", contractx.ErrValidation)
	}
	if cat == nil {
		return nil, fmt.Errorf("%w: lounge catalog is required", contractx.ErrValidation)
	}
	return &Service{db: db, catalog: cat, now: time.Now}, nil
}

func (s *Service) Book(ctx context.Context, req contractx.BookingRequest) (contractx.BookingConfirmation, error) {
	cost, ok := s.catalog.PointCost(req.LoungeID)
	if !ok {
		return contractx.BookingConfirmation{}, fmt.Errorf("%w: lounge id=%s", contractx.ErrNotFound, req.LoungeID)
	}

	booking := LoungeBooking{
		BookingID:    NewBookingID(),
		UserID:       req.UserID,
		LoungeID:     req.LoungeID,
		FlightNumber: req.FlightNumber,
		ArrivalTime:  req.ArrivalTime.UTC(),
		PointsSpent:  cost,
		BookedAt:     s.now().UTC(),
	}

	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var account MembershipAccount
		err := tx.NewSelect().
			Model(&account).
			Where("user_id = ?", req.UserID).
			For("UPDATE").
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: member %s", contractx.ErrNotFound, req.UserID)
		}
		if err != nil {
			return fmt.Errorf("%w: load membership account: %v", contractx.ErrExternal, err)
		}

		if account.Points < cost {
			return fmt.Errorf("%w: have %d points, lounge costs %d", contractx.ErrInsufficientPoints, account.Points, cost)
		}

		res, err := tx.NewUpdate().
			Model((*MembershipAccount)(nil)).
			Set("points = points - ?", cost).
			Set("updated_at = ?", booking.BookedAt).
			Where("user_id = ? AND points >= ?", req.UserID, cost).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("%w: deduct points: %v", contractx.ErrExternal, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("%w: balance changed concurrently", contractx.ErrInsufficientPoints)
		}

		if _, err := tx.NewInsert().Model(&booking).Exec(ctx); err != nil {
			return fmt.Errorf("%w: insert booking: %v", contractx.ErrExternal, err)
		}
		return nil
	})
	if err != nil {
		return contractx.BookingConfirmation{}, err
	}

	log.Info().
		Str("booking_id", booking.BookingID).
		Str("user_id", booking.UserID).
		Str("lounge_id", booking.LoungeID).
		Int("points_spent", cost).
		Msg("lounge booked")

	return contractx.BookingConfirmation{
		BookingID:      booking.BookingID,
		PointsDeducted: cost,
		BookedAt:       booking.BookedAt,
	}, nil
}

// Membership serves profile reads for check_membership_points.
type Membership struct {
	db *bun.DB
}

func NewMembership(db *bun.DB) (*Membership, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: database handle is required", contractx.ErrValidation)
	}
	return &Membership{db: db}, nil
}

func (m *Membership) Profile(ctx context.Context, userID string) (contractx.MemberProfile, error) {
	var account MembershipAccount
	err := m.db.NewSelect().
		Model(&account).
		Where("user_id = ?", userID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return contractx.MemberProfile{}, fmt.Errorf("%w: member %s", contractx.ErrNotFound, userID)
	}
	if err != nil {
		return contractx.MemberProfile{}, fmt.Errorf("%w: load membership account: %v", contractx.ErrExternal, err)
	}
	return contractx.MemberProfile{
		Points:            account.Points,
		FirstName:         account.FirstName,
		LastName:          account.LastName,
		PreferredLanguage: account.PreferredLanguage,
	}, nil
}
