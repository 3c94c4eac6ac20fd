package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/samijaber1/alcometer/internal/bac"
	"github.com/samijaber1/alcometer/internal/level"
)

// WeightText is the weight as typed by the user. JSON numbers are accepted and
// kept as their literal text, so 72.5 is coerced the same way "72.5" is.
type WeightText string

// UnmarshalJSON accepts a string, a number or null
func (w *WeightText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*w = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*w = WeightText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("weight must be a string or a number")
	}
	*w = WeightText(n.String())
	return nil
}

// EstimateRequest represents an estimation request. Missing selections take the
// defaults of a fresh form.
type EstimateRequest struct {
	Sex     string     `json:"sex,omitempty"`
	Weight  WeightText `json:"weight"`
	Bottles *int       `json:"bottles,omitempty"`
	Hours   *int       `json:"hours,omitempty"`
}

// Form converts the request into a form
func (r EstimateRequest) Form() bac.Form {
	form := bac.DefaultForm()
	form.WeightText = string(r.Weight)
	if r.Sex != "" {
		if sex, err := bac.ParseSex(r.Sex); err == nil {
			form.Sex = sex
		} else {
			form.Sex = bac.Sex(r.Sex)
		}
	}
	if r.Bottles != nil {
		form.Bottles = *r.Bottles
	}
	if r.Hours != nil {
		form.Hours = *r.Hours
	}
	return form
}

// EstimateResponse represents an estimation response. BAC is null when the
// estimate is not a finite number; Display always carries the raw value.
type EstimateResponse struct {
	ID        string      `json:"id,omitempty"`
	BAC       *float64    `json:"bac"`
	Display   string      `json:"display"`
	Outcome   bac.Outcome `json:"outcome"`
	Level     level.Level `json:"level"`
	Threshold float64     `json:"threshold,omitempty"`
	Reasons   []string    `json:"reasons"`
	Input     bac.Input   `json:"input"`
}

// BatchRequest represents a batch estimation request
type BatchRequest struct {
	Items []EstimateRequest `json:"items"`
}

// BatchResponse keeps results in request order
type BatchResponse struct {
	Results []EstimateResponse `json:"results"`
}

// OptionsResponse lists the selectable values and the defaults of a fresh form
type OptionsResponse struct {
	Sexes      []bac.Sex        `json:"sexes"`
	Bottles    []int            `json:"bottles"`
	Hours      []int            `json:"hours"`
	Defaults   DefaultsInfo     `json:"defaults"`
	Thresholds level.Thresholds `json:"thresholds"`
}

// DefaultsInfo contains the initial form values
type DefaultsInfo struct {
	Sex     bac.Sex `json:"sex"`
	Weight  string  `json:"weight"`
	Bottles int     `json:"bottles"`
	Hours   int     `json:"hours"`
}

// HistoryRecordResponse represents a stored estimation
type HistoryRecordResponse struct {
	ID        string      `json:"id"`
	Source    string      `json:"source"`
	Input     bac.Input   `json:"input"`
	BAC       *float64    `json:"bac"`
	Display   string      `json:"display"`
	Outcome   bac.Outcome `json:"outcome"`
	Level     level.Level `json:"level"`
	Reasons   []string    `json:"reasons"`
	CreatedAt time.Time   `json:"createdAt"`
}

// HistoryResponse represents a page of history
type HistoryResponse struct {
	Records []HistoryRecordResponse `json:"records"`
	Total   int                     `json:"total"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse represents readiness check response
type ReadyResponse struct {
	Ready          bool     `json:"ready"`
	HistoryEnabled bool     `json:"historyEnabled"`
	Reasons        []string `json:"reasons,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}
