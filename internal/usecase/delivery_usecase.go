package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"ecomart/internal/domain/model"
	"ecomart/internal/geo"
	repo "ecomart/internal/repository"
)

// 配送先住所の管理。保存前にジオコーダで実在確認する。
type DeliveryUsecase struct {
	deliveryRepo repo.DeliveryInfoRepository
	geocoder     geo.Geocoder
}

// DI
func NewDeliveryUsecase(deliveryRepo repo.DeliveryInfoRepository, geocoder geo.Geocoder) *DeliveryUsecase {
	return &DeliveryUsecase{
		deliveryRepo: deliveryRepo,
		geocoder:     geocoder,
	}
}

type DeliveryInfoInput struct {
	Name        string
	PhoneNumber string
	Address     string
}

func (u *DeliveryUsecase) CreateDeliveryInfo(ctx context.Context, userID int64, in DeliveryInfoInput) (model.DeliveryInformation, error) {
	if userID <= 0 {
		return model.DeliveryInformation{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := u.validateInput(ctx, in); err != nil {
		return model.DeliveryInformation{}, err
	}

	created, err := u.deliveryRepo.Create(ctx, model.DeliveryInformation{
		UserID:      userID,
		Name:        strings.TrimSpace(in.Name),
		PhoneNumber: in.PhoneNumber,
		Address:     strings.TrimSpace(in.Address),
	})
	if err != nil {
		return model.DeliveryInformation{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return created, nil
}

func (u *DeliveryUsecase) ListMyDeliveryInfo(ctx context.Context, userID int64) ([]model.DeliveryInformation, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	addrs, err := u.deliveryRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return addrs, nil
}

func (u *DeliveryUsecase) UpdateDeliveryInfo(ctx context.Context, userID int64, id int64, in DeliveryInfoInput) (model.DeliveryInformation, error) {
	d, err := u.findOwn(ctx, userID, id)
	if err != nil {
		return model.DeliveryInformation{}, err
	}
	if err := u.validateInput(ctx, in); err != nil {
		return model.DeliveryInformation{}, err
	}

	d.Name = strings.TrimSpace(in.Name)
	d.PhoneNumber = in.PhoneNumber
	d.Address = strings.TrimSpace(in.Address)

	if err := u.deliveryRepo.Update(ctx, d); err != nil {
		return model.DeliveryInformation{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return d, nil
}

func (u *DeliveryUsecase) DeleteDeliveryInfo(ctx context.Context, userID int64, id int64) error {
	if _, err := u.findOwn(ctx, userID, id); err != nil {
		return err
	}
	if err := u.deliveryRepo.Delete(ctx, id); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *DeliveryUsecase) validateInput(ctx context.Context, in DeliveryInfoInput) error {
	if strings.TrimSpace(in.Name) == "" || len(in.Name) > 45 {
		return NewHTTPError(http.StatusBadRequest, "invalid name")
	}
	if !phonePattern.MatchString(in.PhoneNumber) {
		return NewHTTPError(http.StatusBadRequest, "invalid phone number")
	}
	if strings.TrimSpace(in.Address) == "" || len(in.Address) > 100 {
		return NewHTTPError(http.StatusBadRequest, "invalid address")
	}

	ok, err := u.geocoder.IsValidAddress(ctx, strings.TrimSpace(in.Address))
	if err != nil {
		return NewHTTPError(http.StatusBadGateway, "address verification unavailable")
	}
	if !ok {
		return NewHTTPError(http.StatusBadRequest, "invalid address")
	}
	return nil
}

func (u *DeliveryUsecase) findOwn(ctx context.Context, userID int64, id int64) (model.DeliveryInformation, error) {
	if userID <= 0 {
		return model.DeliveryInformation{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if id <= 0 {
		return model.DeliveryInformation{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	d, err := u.deliveryRepo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.DeliveryInformation{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.DeliveryInformation{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if d.OwnerID() != userID {
		return model.DeliveryInformation{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return d, nil
}
