package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"parkdeck/internal/entities"
	"parkdeck/internal/session"
	"parkdeck/internal/store"
)

// JobService runs the scheduled maintenance work: refreshing the collections
// and completing reservations whose window has elapsed.
type JobService struct {
	Store   *store.Store
	Session *session.Session
}

func NewJobService(st *store.Store, sess *session.Session) *JobService {
	return &JobService{Store: st, Session: sess}
}

// RefreshCollections re-runs the role-appropriate loads for the console
// identity. A logged-out console is not an error, just nothing to do.
func (s *JobService) RefreshCollections(ctx context.Context) error {
	user, ok := s.Session.Current()
	if !ok {
		logrus.Info("refresh job: no active session, skipping")
		return nil
	}
	if err := s.Store.LoadAll(ctx, user.Role, user.ID); err != nil {
		return fmt.Errorf("refresh job: %w", err)
	}
	return nil
}

// CompleteElapsedReservations transitions active reservations past their end
// time to completed, one backend update per reservation.
func (s *JobService) CompleteElapsedReservations(ctx context.Context) error {
	now := time.Now().UTC()

	var elapsed []entities.Reservation
	for _, reservation := range s.Store.Reservations() {
		if reservation.Status == entities.ReservationActive && reservation.EndTime.Before(now) {
			elapsed = append(elapsed, reservation)
		}
	}
	if len(elapsed) == 0 {
		return nil
	}

	logrus.Infof("reservation job: completing %d elapsed reservations", len(elapsed))
	for _, reservation := range elapsed {
		err := s.Store.UpdateReservation(ctx, reservation.ID, store.ReservationUpdate{
			Status: entities.ReservationCompleted,
		})
		if err != nil {
			return fmt.Errorf("reservation job: completing reservation %d: %w", reservation.ID, err)
		}
	}
	return nil
}
