// Package api contains API contract definitions for BikePulse.
// Version v1 represents the current stable API version.
package api

import (
	"fmt"
	"time"

	"bikepulse/pkg/contracts/domain"
)

// Common request parameters

// SelectionRequest is the wire form of a filter selection. A nil Seasons or
// WorkingDays list leaves that constraint inactive; an empty list selects nothing.
type SelectionRequest struct {
	Year        *int     `json:"year,omitempty" mapstructure:"year" validate:"omitempty,min=1900,max=2100"`
	Start       string   `json:"start,omitempty" mapstructure:"start" validate:"omitempty,civildate"`
	End         string   `json:"end,omitempty" mapstructure:"end" validate:"omitempty,civildate"`
	Seasons     []string `json:"season" mapstructure:"-" validate:"omitempty,dive,season"`
	WorkingDays []string `json:"workingday" mapstructure:"-" validate:"omitempty,dive,daytype"`
}

// ToSelection converts the request into a domain selection. An open-ended date
// range is bounded by the zero time or the end of year 9999.
func (r SelectionRequest) ToSelection() (domain.FilterSelection, error) {
	sel := domain.NewSelection()
	if r.Year != nil {
		sel = sel.WithYear(*r.Year)
	}

	if r.Seasons != nil {
		seasons := make([]domain.Season, 0, len(r.Seasons))
		for _, s := range r.Seasons {
			season, err := domain.ParseSeason(s)
			if err != nil {
				return sel, fmt.Errorf("%w: %v", domain.ErrInvalidSelection, err)
			}
			seasons = append(seasons, season)
		}
		sel = sel.WithSeasons(seasons...)
	}

	if r.WorkingDays != nil {
		dayTypes := make([]domain.DayType, 0, len(r.WorkingDays))
		for _, s := range r.WorkingDays {
			dt, err := domain.ParseDayType(s)
			if err != nil {
				return sel, fmt.Errorf("%w: %v", domain.ErrInvalidSelection, err)
			}
			dayTypes = append(dayTypes, dt)
		}
		sel = sel.WithDayTypes(dayTypes...)
	}

	if r.Start == "" && r.End == "" {
		return sel, nil
	}
	start, end := time.Time{}, time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	var err error
	if r.Start != "" {
		if start, err = time.Parse(domain.DateLayout, r.Start); err != nil {
			return sel, fmt.Errorf("%w: start %q is not a YYYY-MM-DD date", domain.ErrInvalidSelection, r.Start)
		}
	}
	if r.End != "" {
		if end, err = time.Parse(domain.DateLayout, r.End); err != nil {
			return sel, fmt.Errorf("%w: end %q is not a YYYY-MM-DD date", domain.ErrInvalidSelection, r.End)
		}
	}
	if end.Before(start) {
		return sel, fmt.Errorf("%w: start %s is after end %s", domain.ErrInvalidSelection, r.Start, r.End)
	}
	return sel.WithDateRange(start, end), nil
}

// Dashboard API Requests

// ClusteringRequest carries the k-means knobs shared by the cluster, elbow and exploration endpoints
type ClusteringRequest struct {
	K        int      `json:"k,omitempty" mapstructure:"k" validate:"omitempty,min=2,max=6"`
	Seed     *int64   `json:"seed,omitempty" mapstructure:"seed"`
	Features []string `json:"features,omitempty" mapstructure:"features" validate:"omitempty,min=1,dive,field"`
}

// FeatureFields parses Features; nil means the default feature set.
func (r ClusteringRequest) FeatureFields() ([]domain.Field, error) {
	return parseFields(r.Features)
}

// ExplorationRequest is GET /api/dashboard/exploration
type ExplorationRequest struct {
	SelectionRequest  `mapstructure:",squash"`
	ClusteringRequest `mapstructure:",squash"`
	Top               int `json:"top,omitempty" mapstructure:"top" validate:"omitempty,min=1,max=100"`
}

// ClusterRequest is the JSON body of POST /api/dashboard/cluster
type ClusterRequest struct {
	SelectionRequest
	ClusteringRequest
}

// ElbowRequest is GET /api/dashboard/elbow
type ElbowRequest struct {
	SelectionRequest  `mapstructure:",squash"`
	ClusteringRequest `mapstructure:",squash"`
	KMin              int `json:"kmin,omitempty" mapstructure:"kmin" validate:"omitempty,min=1,max=10"`
	KMax              int `json:"kmax,omitempty" mapstructure:"kmax" validate:"omitempty,min=1,max=10"`
}

// TopRequest is GET /api/dashboard/top
type TopRequest struct {
	SelectionRequest `mapstructure:",squash"`
	N                int    `json:"n,omitempty" mapstructure:"n" validate:"omitempty,min=1,max=1000"`
	Field            string `json:"field,omitempty" mapstructure:"field" validate:"omitempty,field"`
}

// CorrelationRequest is GET /api/dashboard/correlation
type CorrelationRequest struct {
	SelectionRequest `mapstructure:",squash"`
	Features         []string `json:"features,omitempty" mapstructure:"features" validate:"omitempty,min=2,dive,field"`
}

// FeatureFields parses Features; nil means the default feature set.
func (r CorrelationRequest) FeatureFields() ([]domain.Field, error) {
	return parseFields(r.Features)
}

// Client API Requests

// ClientLogRequest is a log entry relayed from the dashboard frontend
type ClientLogRequest struct {
	Level   string                 `json:"level" validate:"omitempty,oneof=debug info warn error"`
	Message string                 `json:"message" validate:"required,max=2000"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Source  string                 `json:"source,omitempty" validate:"max=200"`
}

func parseFields(names []string) ([]domain.Field, error) {
	if len(names) == 0 {
		return nil, nil
	}
	fields := make([]domain.Field, 0, len(names))
	for _, name := range names {
		f, err := domain.ParseField(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSelection, err)
		}
		fields = append(fields, f)
	}
	return fields, nil
}
