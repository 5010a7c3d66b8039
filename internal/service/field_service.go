package service

import (
	"context"
	"strings"

	"weedx-backend/internal/model"
)

const (
	weedLogDetections = 50
	DefaultListLimit  = 50
	maxListLimit      = 200
)

type detectionStore interface {
	Summary(ctx context.Context) ([]model.WeedCount, error)
	Recent(ctx context.Context, limit int) ([]model.Detection, error)
	List(ctx context.Context, f model.DetectionFilter) ([]model.Detection, error)
	FindByID(ctx context.Context, id int64) (model.Detection, error)
	Delete(ctx context.Context, id int64) error
}

type robotStore interface {
	Latest(ctx context.Context) (model.RobotStatus, bool, error)
}

// FieldService reads what the robot reports from the field: its own status
// and the weeds it detected.
type FieldService struct {
	detections detectionStore
	robot      robotStore
}

func NewFieldService(detections detectionStore, robot robotStore) *FieldService {
	return &FieldService{detections: detections, robot: robot}
}

func (s *FieldService) RobotStatus(ctx context.Context) (model.RobotStatus, error) {
	status, ok, err := s.robot.Latest(ctx)
	if err != nil {
		return model.RobotStatus{}, err
	}
	if !ok {
		return model.OfflineRobot(), nil
	}
	return status, nil
}

func (s *FieldService) WeedLog(ctx context.Context) (model.WeedLog, error) {
	summary, err := s.detections.Summary(ctx)
	if err != nil {
		return model.WeedLog{}, err
	}

	detections, err := s.detections.Recent(ctx, weedLogDetections)
	if err != nil {
		return model.WeedLog{}, err
	}

	// The log view lists detections without their crop.
	for i := range detections {
		detections[i].CropType = nil
	}

	return model.WeedLog{Summary: summary, Detections: detections}, nil
}

func (s *FieldService) WeedSummary(ctx context.Context) ([]model.WeedCount, error) {
	return s.detections.Summary(ctx)
}

// Detections lists detections newest first, optionally of one weed type.
// Stored image paths are resolved against baseURL.
func (s *FieldService) Detections(ctx context.Context, f model.DetectionFilter, baseURL string) ([]model.Detection, error) {
	f.UserID = nil
	f.From, f.To = nil, nil
	f.Limit = clampList(f.Limit)

	detections, err := s.detections.List(ctx, f)
	if err != nil {
		return nil, err
	}

	for i := range detections {
		if detections[i].ImagePath != nil {
			url := resolveImageURL(baseURL, *detections[i].ImagePath)
			detections[i].ImagePath = &url
		}
	}
	return detections, nil
}

// Gallery lists userID's detections as gallery items. An inline image wins
// over a stored path.
func (s *FieldService) Gallery(ctx context.Context, userID int64, f model.DetectionFilter, baseURL string) ([]model.GalleryItem, error) {
	f.UserID = &userID
	f.WeedType = ""
	f.Limit = clampList(f.Limit)

	detections, err := s.detections.List(ctx, f)
	if err != nil {
		return nil, err
	}

	items := make([]model.GalleryItem, 0, len(detections))
	for _, d := range detections {
		url := imageURL(baseURL, d)
		items = append(items, model.GalleryItem{
			ID:           d.ID,
			URL:          url,
			ThumbnailURL: url,
			ImageURL:     url,
			HasImage:     url != nil,
			WeedType:     d.WeedType,
			CropType:     d.CropType,
			Confidence:   d.Confidence,
			Location:     d.Location,
			CapturedAt:   d.DetectedAt,
		})
	}
	return items, nil
}

func (s *FieldService) Image(ctx context.Context, id int64) (model.GalleryImage, error) {
	d, err := s.detections.FindByID(ctx, id)
	if err != nil {
		return model.GalleryImage{}, err
	}

	return model.GalleryImage{
		ID:         d.ID,
		URL:        d.ImagePath,
		WeedType:   d.WeedType,
		Confidence: d.Confidence,
		Location:   d.Location,
		CropType:   d.CropType,
		CapturedAt: d.DetectedAt,
	}, nil
}

func (s *FieldService) DeleteImage(ctx context.Context, id int64) error {
	if _, err := s.detections.FindByID(ctx, id); err != nil {
		return err
	}
	return s.detections.Delete(ctx, id)
}

func clampList(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func imageURL(baseURL string, d model.Detection) *string {
	if d.ImageData != nil && *d.ImageData != "" {
		mime := "image/jpeg"
		if d.ImageMimeType != nil && *d.ImageMimeType != "" {
			mime = *d.ImageMimeType
		}
		url := "data:" + mime + ";base64," + *d.ImageData
		return &url
	}
	if d.ImagePath != nil && *d.ImagePath != "" {
		url := resolveImageURL(baseURL, *d.ImagePath)
		return &url
	}
	return nil
}

// resolveImageURL turns a stored relative image path into an absolute URL.
// Absolute and data URLs pass through.
func resolveImageURL(baseURL, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "data:") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(baseURL, "/") + path
}
