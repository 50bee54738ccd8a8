package service

import (
	"context"
	"fmt"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
	"carrental-backend/internal/utils"
)

type carService struct {
	carRepo  repository.CarRepository
	userRepo repository.UserRepository
	emailSvc EmailService
	noteRepo repository.NotificationRepository
}

func NewCarService(
	carRepo repository.CarRepository,
	userRepo repository.UserRepository,
	emailSvc EmailService,
	noteRepo repository.NotificationRepository,
) CarService {
	return &carService{
		carRepo:  carRepo,
		userRepo: userRepo,
		emailSvc: emailSvc,
		noteRepo: noteRepo,
	}
}

func (s *carService) CreateCar(ctx context.Context, car *domain.Car) error {
	if car.Make == "" || car.Model == "" {
		return fmt.Errorf("%w: make and model are required", domain.ErrInvalidInput)
	}
	if car.PricePerDay.IsNegative() || car.PricePerDay.IsZero() {
		return fmt.Errorf("%w: price per day must be positive", domain.ErrInvalidInput)
	}
	if car.Currency == "" {
		car.Currency = "NGN"
	}
	return s.carRepo.Create(ctx, car)
}

func (s *carService) GetCar(ctx context.Context, id int64) (*domain.Car, error) {
	return s.carRepo.GetByID(ctx, id)
}

func (s *carService) UpdateCar(ctx context.Context, car *domain.Car) error {
	if _, err := s.carRepo.GetByID(ctx, car.ID); err != nil {
		return err
	}
	return s.carRepo.Update(ctx, car)
}

func (s *carService) DeleteCar(ctx context.Context, id int64) error {
	car, err := s.carRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if car.Occupancy == domain.CarOccupancyRented {
		return fmt.Errorf("%w: cannot delete a rented car", domain.ErrInvalidInput)
	}
	return s.carRepo.Delete(ctx, id)
}

func (s *carService) ListCars(ctx context.Context, onlyAvailable bool, page, pageSize int32) ([]domain.Car, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.carRepo.List(ctx, onlyAvailable, page, pageSize)
}

// RentCarManually assigns a car outside the hosted-payment flow. The same
// conditional occupation guards it: if another booking got the car first, the
// assignment fails instead of double-booking.
func (s *carService) RentCarManually(ctx context.Context, renterID, carID int64, start, end time.Time) (*domain.Car, error) {
	car, err := s.carRepo.GetByID(ctx, carID)
	if err != nil {
		return nil, err
	}

	cost, err := utils.RentalCost(car.PricePerDay, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	occupied, err := s.carRepo.TryOccupy(ctx, nil, carID, renterID, start, end, cost)
	if err != nil {
		return nil, err
	}
	if !occupied {
		return nil, domain.ErrCarUnavailable
	}

	car, err = s.carRepo.GetByID(ctx, carID)
	if err != nil {
		return nil, err
	}

	// Confirmation is best-effort; the rental stands either way.
	if renter, uerr := s.userRepo.GetByID(ctx, renterID); uerr == nil {
		msg := RenderReceipt(ReceiptData{
			Name:         renter.Name,
			TxRef:        fmt.Sprintf("manual-%d-%d", carID, start.Unix()),
			CarSummaries: []string{car.Summary()},
			Amount:       cost,
			Currency:     car.Currency,
			RentalStart:  start,
			RentalEnd:    end,
		})
		event := &domain.NotificationEvent{
			UserID:    &renter.ID,
			Channel:   domain.NotificationChannelEmail,
			Recipient: renter.Email,
			Subject:   "Manual Rental Confirmation",
			Body:      msg.HTML,
			Status:    domain.NotificationStatusSent,
			SentOn:    time.Now(),
		}
		if err := s.emailSvc.Send(ctx, renter.Email, "Manual Rental Confirmation", msg.HTML); err != nil {
			logger.Error("Manual rental confirmation failed", "car_id", carID, "renter_id", renterID, "error", err)
			event.Status = domain.NotificationStatusFailed
			event.Detail = err.Error()
		}
		_ = s.noteRepo.Create(ctx, event)
	}

	return car, nil
}

func (s *carService) ReturnCar(ctx context.Context, carID int64) error {
	car, err := s.carRepo.GetByID(ctx, carID)
	if err != nil {
		return err
	}
	if car.Occupancy != domain.CarOccupancyRented {
		return fmt.Errorf("%w: car is not rented", domain.ErrInvalidInput)
	}
	return s.carRepo.Release(ctx, carID)
}
