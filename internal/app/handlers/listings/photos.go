package listings

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"tourhub/internal/app/commands"
	"tourhub/internal/app/dto"
	"tourhub/internal/app/handlers/support"
	"tourhub/internal/app/policies"
	"tourhub/internal/app/uow"
	"tourhub/internal/domain/authz"
	domainlistings "tourhub/internal/domain/listings"
	"tourhub/internal/domain/shared/apperr"
)

const uploadListingPhotoKey = "listings.photos.upload"

type ListingKind string

const (
	KindHotel   ListingKind = "hotel"
	KindVehicle ListingKind = "vehicle"
)

type UploadListingPhotoCommand struct {
	Kind        ListingKind `validate:"required,oneof=hotel vehicle"`
	ListingID   string      `validate:"required"`
	FileName    string
	ContentType string
	Reader      io.Reader `validate:"required"`
	Actor       authz.Actor
}

func (c UploadListingPhotoCommand) Key() string { return uploadListingPhotoKey }

// UploadListingPhotoHandler stores the file first and appends its public URL
// to the listing afterwards.
type UploadListingPhotoHandler struct {
	UoWFactory uow.UoWFactory
	Uploader   policies.Uploader
	Logger     *slog.Logger
	Now        func() time.Time
	NewID      func() string
}

func (h *UploadListingPhotoHandler) Handle(ctx context.Context, cmd UploadListingPhotoCommand) (dto.PhotoUploadResult, error) {
	if h.Uploader == nil {
		return dto.PhotoUploadResult{}, apperr.ExternalProvider("photo storage is not configured", nil)
	}
	unit, ctx, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PhotoUploadResult{}, err
	}
	defer unit.Close(ctx)

	now := support.Now(h.Now)
	var (
		save   func(url string) ([]string, error)
		owner  domainlistings.ProviderID
		prefix = "hotels"
	)
	switch cmd.Kind {
	case KindHotel:
		hotel, err := loadHotel(ctx, unit, cmd.ListingID)
		if err != nil {
			return dto.PhotoUploadResult{}, err
		}
		owner = hotel.ProviderID
		save = func(url string) ([]string, error) {
			hotel.AddPhoto(url, now)
			return hotel.Photos, unit.Hotels().Save(ctx, hotel)
		}
	case KindVehicle:
		vehicle, err := loadVehicle(ctx, unit, cmd.ListingID)
		if err != nil {
			return dto.PhotoUploadResult{}, err
		}
		owner, prefix = vehicle.ProviderID, "vehicles"
		save = func(url string) ([]string, error) {
			vehicle.AddPhoto(url, now)
			return vehicle.Photos, unit.Vehicles().Save(ctx, vehicle)
		}
	default:
		return dto.PhotoUploadResult{}, apperr.Validation("unknown listing kind")
	}
	if err := authorize(cmd.Actor, owner); err != nil {
		return dto.PhotoUploadResult{}, err
	}

	key := objectKey(prefix, cmd.ListingID, support.NewID(h.NewID), cmd.FileName)
	url, err := h.Uploader.Upload(ctx, key, cmd.Reader, cmd.ContentType)
	if err != nil {
		if _, ok := apperr.KindOf(err); ok {
			return dto.PhotoUploadResult{}, err
		}
		return dto.PhotoUploadResult{}, apperr.ExternalProvider("photo upload failed", err)
	}
	photos, err := save(url)
	if err != nil {
		return dto.PhotoUploadResult{}, err
	}
	if err := unit.Commit(ctx); err != nil {
		return dto.PhotoUploadResult{}, err
	}

	if h.Logger != nil {
		h.Logger.Info("listing photo uploaded", "listing_id", cmd.ListingID, "kind", cmd.Kind, "key", key)
	}
	return dto.PhotoUploadResult{ListingID: cmd.ListingID, Photos: append([]string{}, photos...)}, nil
}

func objectKey(prefix, listingID, id, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("%s/%s/%s%s", prefix, listingID, id, ext)
}

var _ commands.Handler[UploadListingPhotoCommand, dto.PhotoUploadResult] = (*UploadListingPhotoHandler)(nil)
