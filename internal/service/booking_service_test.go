package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"pizzeria-agent/internal/domain"
)

type mockBookingRepo struct {
	mu       sync.Mutex
	bookings []domain.Booking
	err      error
}

func (m *mockBookingRepo) Create(_ context.Context, booking domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.bookings = append(m.bookings, booking)
	return nil
}

func (m *mockBookingRepo) ListByUserID(_ context.Context, userID string) ([]domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Booking
	for _, b := range m.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func TestBookingServiceBookTable(t *testing.T) {
	repo := &mockBookingRepo{}
	users := newMockUserRepo()
	svc := NewBookingService(repo, users, nil, zap.NewNop())

	booking, err := svc.BookTable(context.Background(), "u1", " tomorrow 19:30 ", " Ana ")
	if err != nil {
		t.Fatalf("book table: %v", err)
	}
	if booking.ID == "" {
		t.Fatalf("expected booking id")
	}
	if booking.Time != "tomorrow 19:30" || booking.Name != "Ana" {
		t.Fatalf("expected trimmed fields, got %+v", booking)
	}
	if len(repo.bookings) != 1 {
		t.Fatalf("expected one booking persisted, got %d", len(repo.bookings))
	}
}

func TestBookingServiceBookTable_InvalidInput(t *testing.T) {
	svc := NewBookingService(&mockBookingRepo{}, newMockUserRepo(), nil, zap.NewNop())

	cases := []struct{ userID, bookedFor, name string }{
		{"", "19:30", "Ana"},
		{"u1", "  ", "Ana"},
		{"u1", "19:30", ""},
	}
	for _, tc := range cases {
		if _, err := svc.BookTable(context.Background(), tc.userID, tc.bookedFor, tc.name); !errors.Is(err, ErrBookingInvalidInput) {
			t.Fatalf("expected ErrBookingInvalidInput for %+v, got %v", tc, err)
		}
	}
}

func TestBookingServiceBookTable_RepoFailure(t *testing.T) {
	repo := &mockBookingRepo{err: errors.New("db down")}
	svc := NewBookingService(repo, newMockUserRepo(), nil, zap.NewNop())

	if _, err := svc.BookTable(context.Background(), "u1", "19:30", "Ana"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestBookingServiceBookTable_EmailFailureDoesNotBlock(t *testing.T) {
	repo := &mockBookingRepo{}
	users := newMockUserRepo()
	user := domain.User{ID: "u1", Email: "user@example.com", CreatedAt: time.Now().UTC()}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	sender := &mockEmailSender{err: errors.New("smtp down")}
	svc := NewBookingService(repo, users, sender, zap.NewNop())

	if _, err := svc.BookTable(context.Background(), "u1", "19:30", "Ana"); err != nil {
		t.Fatalf("expected booking to succeed despite email failure, got %v", err)
	}
	if len(repo.bookings) != 1 {
		t.Fatalf("expected booking persisted")
	}
}

func TestBookingServiceListByUser(t *testing.T) {
	repo := &mockBookingRepo{bookings: []domain.Booking{
		{ID: "b1", UserID: "u1"},
		{ID: "b2", UserID: "u2"},
	}}
	svc := NewBookingService(repo, newMockUserRepo(), nil, zap.NewNop())

	bookings, err := svc.ListByUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bookings) != 1 || bookings[0].ID != "b1" {
		t.Fatalf("unexpected bookings: %+v", bookings)
	}
}
