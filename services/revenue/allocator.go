// Package revenue splits a service's revenue between its primary practitioner
// and any co-practitioners.
package revenue

import (
	"errors"
	"fmt"

	"estuary/models"
)

const Total = 100

var (
	ErrShareExceeded       = errors.New("revenue shares exceed 100%")
	ErrInvalidShare        = errors.New("revenue share must be between 0 and 100")
	ErrParticipantExists   = errors.New("practitioner already shares revenue on this service")
	ErrParticipantNotFound = errors.New("practitioner is not a revenue participant")
	ErrPrimaryParticipant  = errors.New("the primary practitioner cannot be added as a co-practitioner")
)

// Allocator edits the co-practitioner list in place.
// The primary practitioner is never part of the list.
type Allocator struct {
	primaryID string
	shares    []models.RevenueShare
}

func NewAllocator(primaryID string, shares []models.RevenueShare) *Allocator {
	return &Allocator{primaryID: primaryID, shares: shares}
}

// Shares returns the current co-practitioner list.
func (a *Allocator) Shares() []models.RevenueShare {
	return a.shares
}

// Others is the sum of every co-practitioner share.
func (a *Allocator) Others() int {
	return a.othersExcept("")
}

func (a *Allocator) othersExcept(practitionerID string) int {
	sum := 0
	for _, s := range a.shares {
		if s.PractitionerID != practitionerID {
			sum += s.RevenueSharePercentage
		}
	}
	return sum
}

// PrimaryShare is what remains of 100 for the primary practitioner, floored at 0.
func (a *Allocator) PrimaryShare() int {
	if rest := Total - a.Others(); rest > 0 {
		return rest
	}
	return 0
}

func (a *Allocator) index(practitionerID string) int {
	for i, s := range a.shares {
		if s.PractitionerID == practitionerID {
			return i
		}
	}
	return -1
}

// Add appends a co-practitioner with a zero share.
func (a *Allocator) Add(p models.PractitionerSummary, role string) error {
	if p.ID == a.primaryID {
		return ErrPrimaryParticipant
	}
	if a.index(p.ID) >= 0 {
		return ErrParticipantExists
	}
	if role == "" {
		role = models.DefaultCoPractitionerRole
	}
	a.shares = append(a.shares, models.RevenueShare{
		PractitionerID: p.ID,
		DisplayName:    p.DisplayName,
		Role:           role,
	})
	return nil
}

func (a *Allocator) Remove(practitionerID string) error {
	i := a.index(practitionerID)
	if i < 0 {
		return ErrParticipantNotFound
	}
	a.shares = append(a.shares[:i], a.shares[i+1:]...)
	return nil
}

// Set updates one participant's share. A value that would push the total of
// co-practitioner shares past 100 is capped and ErrShareExceeded is returned;
// other participants are never adjusted.
func (a *Allocator) Set(practitionerID string, value int) error {
	i := a.index(practitionerID)
	if i < 0 {
		return ErrParticipantNotFound
	}
	if value < 0 {
		return ErrInvalidShare
	}
	limit := Total - a.othersExcept(practitionerID)
	if limit < 0 {
		limit = 0
	}
	if value > limit {
		a.shares[i].RevenueSharePercentage = limit
		return fmt.Errorf("%w: at most %d%% available for %s", ErrShareExceeded, limit, a.shares[i].DisplayName)
	}
	a.shares[i].RevenueSharePercentage = value
	return nil
}

// DistributeEvenly gives every participant, primary included, floor(100/n).
// The remainder goes to the first co-practitioner.
func (a *Allocator) DistributeEvenly() {
	if len(a.shares) == 0 {
		return
	}
	n := len(a.shares) + 1
	share := Total / n
	remainder := Total - share*n
	for i := range a.shares {
		a.shares[i].RevenueSharePercentage = share
	}
	a.shares[0].RevenueSharePercentage += remainder
}

// Validate reports per-participant problems keyed for the wizard's error map.
func (a *Allocator) Validate() map[string]string {
	errs := map[string]string{}
	for _, s := range a.shares {
		if s.RevenueSharePercentage < 0 || s.RevenueSharePercentage > Total {
			errs["revenueShares."+s.PractitionerID] = ErrInvalidShare.Error()
		}
	}
	if a.Others() > Total {
		errs["revenueShares"] = ErrShareExceeded.Error()
	}
	return errs
}
