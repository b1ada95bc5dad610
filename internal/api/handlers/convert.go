package handlers

import (
	"fmt"
	"meeting-point-service/internal/api/dto"
	"meeting-point-service/internal/domain"
	"meeting-point-service/internal/services"
	"strings"
)

func originInput(in dto.OriginRequest) (services.OriginInput, error) {
	out := services.OriginInput{
		Address: strings.TrimSpace(in.Address),
		PlaceID: strings.TrimSpace(in.PlaceID),
	}

	switch {
	case in.Lat != nil && in.Lng != nil:
		c := domain.Coordinates{Lat: *in.Lat, Lon: *in.Lng}
		if err := c.Validate(); err != nil {
			return services.OriginInput{}, err
		}
		out.Coordinates = &c
	case in.Lat != nil || in.Lng != nil:
		return services.OriginInput{}, fmt.Errorf("lat and lng must be given together: %w", domain.ErrInvalidRequest)
	}

	if out.Coordinates == nil && out.PlaceID == "" && out.Address == "" {
		return services.OriginInput{}, fmt.Errorf("address, place_id or lat/lng is required: %w", domain.ErrInvalidRequest)
	}
	return out, nil
}

func originInputs(a, b dto.OriginRequest) (services.OriginInput, services.OriginInput, error) {
	ia, err := originInput(a)
	if err != nil {
		return ia, ia, fmt.Errorf("origin_a: %w", err)
	}
	ib, err := originInput(b)
	if err != nil {
		return ia, ib, fmt.Errorf("origin_b: %w", err)
	}
	return ia, ib, nil
}

func candidate(p dto.PlaceRequest) (domain.Candidate, error) {
	id := strings.TrimSpace(p.PlaceID)
	if id == "" {
		return domain.Candidate{}, fmt.Errorf("candidate place_id is required: %w", domain.ErrInvalidRequest)
	}
	if p.Location == nil {
		return domain.Candidate{}, fmt.Errorf("candidate %s: location is required: %w", id, domain.ErrInvalidRequest)
	}
	c := domain.Coordinates{Lat: p.Location.Lat, Lon: p.Location.Lng}
	if err := c.Validate(); err != nil {
		return domain.Candidate{}, fmt.Errorf("candidate %s: %w", id, err)
	}
	return domain.Candidate{
		PlaceID:     id,
		Name:        p.Name,
		Coordinates: c,
		Rating:      p.Rating,
		Vicinity:    p.Vicinity,
	}, nil
}
