package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/moothz/ravena-go/internal/constants"
	"github.com/moothz/ravena-go/internal/service/cache"
	"github.com/moothz/ravena-go/pkg/errors"
	"go.uber.org/zap"
)

const (
	geocodingBaseURL = "https://geocoding-api.open-meteo.com/v1/search"
	forecastBaseURL  = "https://api.open-meteo.com/v1/forecast"
)

// Report is the digested current-conditions answer for one location.
type Report struct {
	Location    string  `json:"location"`
	Country     string  `json:"country"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
	Code        int     `json:"code"`
}

// Service answers weather lookups, caching responses in redis so repeated
// queries for the same place inside the TTL cost nothing.
type Service struct {
	httpClient *http.Client
	cache      *cache.CacheService
	logger     *zap.Logger
}

func NewService(cacheSvc *cache.CacheService, logger *zap.Logger) *Service {
	return &Service{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      cacheSvc,
		logger:     logger,
	}
}

func cacheKey(location string) string {
	return "weather:" + strings.ToLower(strings.TrimSpace(location))
}

func (s *Service) Current(ctx context.Context, location string) (*Report, error) {
	key := cacheKey(location)

	if s.cache != nil {
		var cached Report
		if err := s.cache.Get(ctx, key, &cached); err == nil && cached.Location != "" {
			s.logger.Debug("Weather cache hit", zap.String("location", location))
			return &cached, nil
		}
	}

	lat, lon, name, country, err := s.geocode(ctx, location)
	if err != nil {
		return nil, err
	}

	report, err := s.forecast(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	report.Location = name
	report.Country = country

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, report, constants.CacheTTL.Weather); err != nil {
			s.logger.Warn("Failed to cache weather report", zap.Error(err))
		}
	}

	return report, nil
}

func (s *Service) geocode(ctx context.Context, location string) (lat, lon float64, name, country string, err error) {
	endpoint := fmt.Sprintf("%s?name=%s&count=1&language=pt&format=json",
		geocodingBaseURL, url.QueryEscape(location))

	var payload struct {
		Results []struct {
			Name      string  `json:"name"`
			Country   string  `json:"country"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}

	if err := s.getJSON(ctx, endpoint, &payload); err != nil {
		return 0, 0, "", "", err
	}

	if len(payload.Results) == 0 {
		return 0, 0, "", "", errors.NewServiceError("location not found", "weather", "geocode", nil)
	}

	r := payload.Results[0]
	return r.Latitude, r.Longitude, r.Name, r.Country, nil
}

func (s *Service) forecast(ctx context.Context, lat, lon float64) (*Report, error) {
	endpoint := fmt.Sprintf(
		"%s?latitude=%.4f&longitude=%.4f&current=temperature_2m,relative_humidity_2m,weather_code,wind_speed_10m",
		forecastBaseURL, lat, lon)

	var payload struct {
		Current struct {
			Temperature float64 `json:"temperature_2m"`
			Humidity    float64 `json:"relative_humidity_2m"`
			WeatherCode int     `json:"weather_code"`
			WindSpeed   float64 `json:"wind_speed_10m"`
		} `json:"current"`
	}

	if err := s.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	return &Report{
		Temperature: payload.Current.Temperature,
		Humidity:    payload.Current.Humidity,
		WindSpeed:   payload.Current.WindSpeed,
		Code:        payload.Current.WeatherCode,
	}, nil
}

func (s *Service) getJSON(ctx context.Context, endpoint string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.NewServiceError("failed to build request", "weather", "get", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return errors.NewServiceError("request failed", "weather", "get", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.NewServiceError(
			fmt.Sprintf("weather API returned %s", resp.Status), "weather", "get", nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return errors.NewServiceError("failed to decode response", "weather", "get", err)
	}

	return nil
}

// Describe renders a weather code as a short human label.
func Describe(code int) string {
	switch {
	case code == 0:
		return "céu limpo"
	case code <= 3:
		return "parcialmente nublado"
	case code <= 48:
		return "neblina"
	case code <= 67:
		return "chuva"
	case code <= 77:
		return "neve"
	case code <= 82:
		return "pancadas de chuva"
	default:
		return "tempestade"
	}
}
