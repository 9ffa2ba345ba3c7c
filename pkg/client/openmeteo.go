package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/freeride-assistant/internal/models"
)

var ErrMissingField = errors.New("forecast response is missing a field")

const hourlyFields = "temperature_2m,windspeed_10m,snowfall,weathercode"

type OpenMeteoClient struct {
	*BaseClient
	baseURL string
}

type OpenMeteoHourlyResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
	Hourly    *struct {
		Time          []string    `json:"time"`
		Temperature2M *[]*float64 `json:"temperature_2m"`
		WindSpeed10M  *[]*float64 `json:"windspeed_10m"`
		Snowfall      *[]*float64 `json:"snowfall"`
		WeatherCode   *[]*int     `json:"weathercode"`
	} `json:"hourly"`
	HourlyUnits struct {
		Temperature2M string `json:"temperature_2m"`
		WindSpeed10M  string `json:"windspeed_10m"`
		Snowfall      string `json:"snowfall"`
	} `json:"hourly_units"`
}

func NewOpenMeteoClient(baseURL string, config ClientConfig, logger *zap.Logger) *OpenMeteoClient {
	if baseURL == "" {
		baseURL = "https://api.open-meteo.com/v1"
	}
	return &OpenMeteoClient{
		BaseClient: NewBaseClient("openmeteo", config, logger),
		baseURL:    baseURL,
	}
}

// FetchHourly returns the hourly temperature, wind, snowfall and weather code
// samples for a resort over the window, in the resort's local time zone.
func (c *OpenMeteoClient) FetchHourly(ctx context.Context, resort models.Resort, window models.Window) (models.HourlySeries, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(resort.Latitude, 'f', 4, 64))
	params.Set("longitude", strconv.FormatFloat(resort.Longitude, 'f', 4, 64))
	params.Set("start_date", window.StartDate())
	params.Set("end_date", window.EndDate())
	params.Set("hourly", hourlyFields)
	params.Set("timezone", "auto")

	data, err := c.Get(ctx, c.baseURL+"/forecast?"+params.Encode())
	if err != nil {
		return models.HourlySeries{}, fmt.Errorf("failed to fetch forecast for %s: %w", resort.Name, err)
	}

	series, err := ParseHourly(data)
	if err != nil {
		return models.HourlySeries{}, fmt.Errorf("failed to parse forecast for %s: %w", resort.Name, err)
	}
	series.Resort = resort.Name
	series.Window = window

	c.logger.Debug("Hourly forecast fetched",
		zap.String("resort", resort.Name),
		zap.String("window", window.String()),
		zap.Int("samples", series.Len()))

	return series, nil
}

// ParseHourly decodes an Open-Meteo hourly response. Absent arrays and null
// samples are errors; arrays of different length are passed through as-is
// for the aggregator to reject.
func ParseHourly(data []byte) (models.HourlySeries, error) {
	var response OpenMeteoHourlyResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return models.HourlySeries{}, fmt.Errorf("decode response: %w", err)
	}
	if response.Hourly == nil {
		return models.HourlySeries{}, fmt.Errorf("%w: hourly", ErrMissingField)
	}

	h := response.Hourly
	temp, err := floatSamples("temperature_2m", h.Temperature2M)
	if err != nil {
		return models.HourlySeries{}, err
	}
	wind, err := floatSamples("windspeed_10m", h.WindSpeed10M)
	if err != nil {
		return models.HourlySeries{}, err
	}
	snow, err := floatSamples("snowfall", h.Snowfall)
	if err != nil {
		return models.HourlySeries{}, err
	}
	codes, err := intSamples("weathercode", h.WeatherCode)
	if err != nil {
		return models.HourlySeries{}, err
	}

	return models.HourlySeries{
		Temperature: temp,
		WindSpeed:   wind,
		Snowfall:    snow,
		WeatherCode: codes,
	}, nil
}

func floatSamples(field string, raw *[]*float64) ([]float64, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: hourly.%s", ErrMissingField, field)
	}
	out := make([]float64, len(*raw))
	for i, v := range *raw {
		if v == nil {
			return nil, fmt.Errorf("%w: hourly.%s[%d] is null", ErrMissingField, field, i)
		}
		out[i] = *v
	}
	return out, nil
}

func intSamples(field string, raw *[]*int) ([]int, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: hourly.%s", ErrMissingField, field)
	}
	out := make([]int, len(*raw))
	for i, v := range *raw {
		if v == nil {
			return nil, fmt.Errorf("%w: hourly.%s[%d] is null", ErrMissingField, field, i)
		}
		out[i] = *v
	}
	return out, nil
}

var weatherCodes = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Foggy",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	56: "Light freezing drizzle",
	57: "Dense freezing drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	66: "Light freezing rain",
	67: "Heavy freezing rain",
	71: "Slight snow fall",
	73: "Moderate snow fall",
	75: "Heavy snow fall",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// WeatherCodeDescription returns the WMO description of a weather code.
func WeatherCodeDescription(code int) string {
	if desc, ok := weatherCodes[code]; ok {
		return desc
	}
	return "Unknown"
}
