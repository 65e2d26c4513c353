package service

import (
	"context"
	"fmt"

	"github.com/rongwang/railway-server/internal/cache"
	"github.com/rongwang/railway-server/internal/models"
)

// Station operations
func (s *DefaultService) AddStation(ctx context.Context, req models.AddStationRequest) (*models.Station, error) {
	if req.Name == "" || req.Location == "" {
		return nil, fmt.Errorf("name and location are required: %w", models.ErrValidation)
	}

	station := &models.Station{Name: req.Name, Location: req.Location}
	if err := s.repo.CreateStation(ctx, station); err != nil {
		return nil, fmt.Errorf("error creating station: %w", err)
	}

	s.invalidateCatalog(ctx)
	return station, nil
}

func (s *DefaultService) UpdateStation(ctx context.Context, id int64, patch models.StationPatch) error {
	if patch.IsEmpty() {
		return models.ErrNoFieldsProvided
	}

	if err := s.repo.UpdateStation(ctx, id, patch); err != nil {
		return fmt.Errorf("error updating station: %w", err)
	}

	s.invalidateCatalog(ctx)
	return nil
}

func (s *DefaultService) DeleteStation(ctx context.Context, id int64) error {
	if err := s.repo.DeleteStation(ctx, id); err != nil {
		return fmt.Errorf("error deleting station: %w", err)
	}

	s.invalidateCatalog(ctx)
	return nil
}

func (s *DefaultService) ListStations(ctx context.Context) ([]models.Station, error) {
	var stations []models.Station
	hit, gen := s.loadCached(ctx, cache.StationsKey, &stations)
	if hit {
		return stations, nil
	}

	stations, err := s.repo.ListStations(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing stations: %w", err)
	}

	if gen >= 0 {
		s.storeCached(ctx, cache.StationsKey, gen, stations)
	}
	return stations, nil
}

// Train operations
func (s *DefaultService) CreateTrain(ctx context.Context, req models.CreateTrainRequest) (*models.Train, error) {
	if req.Name == "" || len(req.Stops) == 0 {
		return nil, fmt.Errorf("name and at least one stop are required: %w", models.ErrValidation)
	}

	train := &models.Train{Name: req.Name, Description: req.Description}
	stops := make([]models.TrainStop, len(req.Stops))
	for i, stop := range req.Stops {
		stops[i] = models.TrainStop{
			StationID:     stop.StationID,
			ArrivalTime:   stop.ArrivalTime,
			DepartureTime: stop.DepartureTime,
		}
	}

	if err := s.repo.CreateTrain(ctx, train, stops); err != nil {
		return nil, fmt.Errorf("error creating train: %w", err)
	}

	s.invalidateCatalog(ctx)
	s.logger.Info("train created", "train_id", train.ID, "stops", len(stops))
	return train, nil
}

func (s *DefaultService) UpdateTrainStop(ctx context.Context, trainID, stopID int64, patch models.StopPatch) error {
	if patch.IsEmpty() {
		return models.ErrNoFieldsProvided
	}

	if err := s.repo.UpdateTrainStop(ctx, trainID, stopID, patch); err != nil {
		return fmt.Errorf("error updating train stop: %w", err)
	}

	s.invalidateCatalog(ctx)
	return nil
}

func (s *DefaultService) DeleteTrain(ctx context.Context, id int64) error {
	if err := s.repo.DeleteTrain(ctx, id); err != nil {
		return fmt.Errorf("error deleting train: %w", err)
	}

	s.invalidateCatalog(ctx)
	return nil
}

func (s *DefaultService) ListTrains(ctx context.Context) ([]models.TrainSchedule, error) {
	var schedules []models.TrainSchedule
	hit, gen := s.loadCached(ctx, cache.TrainsKey, &schedules)
	if hit {
		return schedules, nil
	}

	schedules, err := s.repo.ListTrainSchedules(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing trains: %w", err)
	}

	if gen >= 0 {
		s.storeCached(ctx, cache.TrainsKey, gen, schedules)
	}
	return schedules, nil
}

// Cache helpers. Cache failures are logged and never fail the request.
// loadCached returns generation -1 when the listing must not be stored.
func (s *DefaultService) loadCached(ctx context.Context, key string, dst interface{}) (bool, int64) {
	if s.cache == nil {
		return false, -1
	}

	hit, gen, err := s.cache.Load(ctx, key, dst)
	if err != nil {
		s.logger.Warn("catalog cache read failed", "key", key, "error", err)
		return false, -1
	}
	return hit, gen
}

func (s *DefaultService) storeCached(ctx context.Context, key string, gen int64, v interface{}) {
	if err := s.cache.Store(ctx, key, gen, v); err != nil {
		s.logger.Warn("catalog cache write failed", "key", key, "error", err)
	}
}

func (s *DefaultService) invalidateCatalog(ctx context.Context) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("catalog cache invalidation failed", "error", err)
	}
}
