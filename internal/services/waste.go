package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"recycle-backend/internal/apperror"
	"recycle-backend/internal/geo"
	"recycle-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// WasteStore reads waste types and centers and records collections
type WasteStore interface {
	ListWasteTypes(ctx context.Context) ([]*models.WasteType, error)
	GetWasteTypeByName(ctx context.Context, name string) (*models.WasteType, error)
	CreateCollection(ctx context.Context, c *models.WasteCollection) error
	ListCenters(ctx context.Context) ([]*models.RecyclingCenter, error)
}

// Classifier labels an image with a waste-type name
type Classifier interface {
	Classify(ctx context.Context, image []byte) (string, error)
}

// CollectionInput is the payload of a recorded collection
type CollectionInput struct {
	WasteType         string     `json:"waste_type"`
	Quantity          float64    `json:"quantity"`
	CollectionDate    *time.Time `json:"collection_date"`
	LocationLatitude  float64    `json:"location_latitude"`
	LocationLongitude float64    `json:"location_longitude"`
}

// WasteService handles waste types, classification, collections and centers
type WasteService struct {
	waste      WasteStore
	classifier Classifier
	radiusKM   float64
	now        func() time.Time
}

// NewWasteService creates a new waste service. classifier may be nil.
func NewWasteService(waste WasteStore, classifier Classifier, radiusKM float64) *WasteService {
	return &WasteService{waste: waste, classifier: classifier, radiusKM: radiusKM, now: time.Now}
}

// WasteTypeNames returns the names of every waste type
func (s *WasteService) WasteTypeNames(ctx context.Context) ([]string, error) {
	types, err := s.waste.ListWasteTypes(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, t.Name)
	}
	return names, nil
}

// Detect asks the classifier for the waste type shown in an image
func (s *WasteService) Detect(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", apperror.Invalid("image is empty")
	}
	if s.classifier == nil {
		return "", apperror.Upstream("classify image", errors.New("classifier is not configured"))
	}
	label, err := s.classifier.Classify(ctx, image)
	if err != nil {
		return "", apperror.Upstream("classify image", err)
	}
	return label, nil
}

// RecordCollection stores a collected batch of a named waste type
func (s *WasteService) RecordCollection(ctx context.Context, userID int64, in CollectionInput) (*models.WasteCollection, error) {
	name := strings.TrimSpace(in.WasteType)
	if name == "" {
		return nil, apperror.Invalid("waste_type is required")
	}
	if in.Quantity <= 0 {
		return nil, apperror.Invalid("quantity must be positive")
	}
	if !geo.ValidCoordinates(in.LocationLatitude, in.LocationLongitude) {
		return nil, apperror.Invalid("location is out of range")
	}

	wt, err := s.waste.GetWasteTypeByName(ctx, name)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.Invalid("unknown waste type %q", name)
	}
	if err != nil {
		return nil, err
	}

	date := s.now().UTC()
	if in.CollectionDate != nil {
		date = in.CollectionDate.UTC()
	}

	c := &models.WasteCollection{
		UserID:            userID,
		WasteTypeID:       wt.ID,
		WasteType:         wt.Name,
		Quantity:          in.Quantity,
		CollectionDate:    date,
		LocationLatitude:  in.LocationLatitude,
		LocationLongitude: in.LocationLongitude,
	}
	if err := s.waste.CreateCollection(ctx, c); err != nil {
		return nil, err
	}

	log.Info().Int64("user_id", userID).Str("waste_type", wt.Name).Float64("quantity", in.Quantity).Msg("Waste collection recorded")
	return c, nil
}

// NearbyCenters returns the recycling centers within the configured radius, nearest first
func (s *WasteService) NearbyCenters(ctx context.Context, lat, lon float64) ([]*models.RecyclingCenter, error) {
	if !geo.ValidCoordinates(lat, lon) {
		return nil, apperror.Invalid("coordinates are out of range")
	}
	centers, err := s.waste.ListCenters(ctx)
	if err != nil {
		return nil, err
	}
	return geo.Nearby(centers, lat, lon, s.radiusKM), nil
}

// RewardFor returns the points granted for a waste type, or 0 when it is unknown
func (s *WasteService) RewardFor(ctx context.Context, name string) (int64, error) {
	wt, err := s.waste.GetWasteTypeByName(ctx, strings.TrimSpace(name))
	if errors.Is(err, apperror.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return wt.RewardPoints, nil
}
