package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pizzeria-agent/internal/domain"
	"pizzeria-agent/internal/email"
	"pizzeria-agent/internal/repository"
)

// BookingService registra reservas de mesa y envia la confirmacion por correo
// cuando hay sender configurado.
type BookingService struct {
	repo        repository.BookingRepository
	users       repository.UserRepository
	emailSender email.Sender
	logger      *zap.Logger
}

var (
	ErrBookingServiceNotConfigured = errors.New("booking service not configured")
	ErrBookingInvalidInput         = errors.New("booking invalid input")
)

func NewBookingService(repo repository.BookingRepository, users repository.UserRepository, emailSender email.Sender, logger *zap.Logger) *BookingService {
	return &BookingService{
		repo:        repo,
		users:       users,
		emailSender: emailSender,
		logger:      logger,
	}
}

func (s *BookingService) BookTable(ctx context.Context, userID, bookedFor, guestName string) (domain.Booking, error) {
	if s == nil || s.repo == nil {
		return domain.Booking{}, ErrBookingServiceNotConfigured
	}

	userID = strings.TrimSpace(userID)
	bookedFor = strings.TrimSpace(bookedFor)
	guestName = strings.TrimSpace(guestName)
	if userID == "" || bookedFor == "" || guestName == "" {
		return domain.Booking{}, ErrBookingInvalidInput
	}

	booking := domain.Booking{
		ID:        uuid.NewString(),
		UserID:    userID,
		Time:      bookedFor,
		Name:      guestName,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		return domain.Booking{}, fmt.Errorf("persist booking: %w", err)
	}

	// La confirmacion por correo no bloquea la reserva; un fallo solo se loguea.
	if s.emailSender != nil && s.users != nil {
		go s.sendConfirmation(booking)
	}

	return booking, nil
}

func (s *BookingService) sendConfirmation(booking domain.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := s.users.GetByID(ctx, booking.UserID)
	if err != nil || user.Email == "" {
		return
	}
	if err := s.emailSender.SendBookingConfirmation(ctx, user.Email, booking.Name, booking.Time, booking.ID); err != nil {
		if s.logger != nil {
			s.logger.Warn("booking confirmation email failed",
				zap.Error(err),
				zap.String("booking_id", booking.ID),
			)
		}
	}
}

func (s *BookingService) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	if s == nil || s.repo == nil {
		return nil, ErrBookingServiceNotConfigured
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return []domain.Booking{}, nil
	}
	return s.repo.ListByUserID(ctx, userID)
}
