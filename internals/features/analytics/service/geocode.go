package service

import (
	"log"
	"net/url"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
)

const nominatimSearchURL = "https://nominatim.openstreetmap.org/search"

// GeocodeFunc resolves a city name to coordinates. ok is false when the
// lookup failed or returned nothing; callers must treat that as non-fatal.
type GeocodeFunc func(cityName string) (latitude, longitude float64, ok bool)

type nominatimPlace struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// NominatimGeocode asks the OpenStreetMap Nominatim service for the
// coordinates of a city. Only called once per installation, on its first
// enthusiast report, so no caching is needed.
func NominatimGeocode(cityName string) (float64, float64, bool) {
	agent := fiber.Get(nominatimSearchURL)
	agent.QueryString("format=json&city=" + url.QueryEscape(cityName))
	agent.UserAgent("olga-backend")
	agent.Timeout(5 * time.Second)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		log.Printf("[GEO] Nominatim request failed for city %q: %v", cityName, errs[0])
		return 0, 0, false
	}
	if code != fiber.StatusOK {
		log.Printf("[GEO] Nominatim status %d for city %q", code, cityName)
		return 0, 0, false
	}

	var places []nominatimPlace
	if err := sonic.Unmarshal(body, &places); err != nil || len(places) == 0 {
		log.Printf("[GEO] no result for city %q", cityName)
		return 0, 0, false
	}

	lat, errLat := strconv.ParseFloat(places[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(places[0].Lon, 64)
	if errLat != nil || errLon != nil {
		return 0, 0, false
	}
	return lat, lon, true
}
