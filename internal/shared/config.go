package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"flex_reviews/internal/domain"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	HostawayBase   string
	HostawayID     string
	HostawaySecret string

	GoogleKey    string
	PlaceMap     []domain.PlaceMapping
	PlaceWorkers int

	CacheTTL time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		HTTPAddr:       env("HTTP_ADDR", ":4000"),
		MetricsAddr:    env("METRICS_ADDR", ""),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/flex_reviews?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:      env("REDIS_ADDR", "localhost:6379"),
		RedisDB:        atoi("REDIS_DB", 0),
		RedisPass:      env("REDIS_PASSWORD", ""),
		HostawayBase:   env("HOSTAWAY_API_BASE_URL", "https://api.hostaway.com/v1"),
		HostawayID:     env("HOSTAWAY_CLIENT_ID", ""),
		HostawaySecret: env("HOSTAWAY_CLIENT_SECRET", ""),
		GoogleKey:      env("GOOGLE_PLACES_API_KEY", ""),
		PlaceMap:       parsePlaceMap(env("GOOGLE_PLACE_IDS", "")),
		PlaceWorkers:   atoi("PLACE_WORKERS", 4),
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
	}
	if c.HostawayID == "" || c.HostawaySecret == "" {
		log.Warn().Msg("Hostaway credentials missing; provider will serve fallback data")
	}
	if c.GoogleKey == "" {
		log.Warn().Msg("GOOGLE_PLACES_API_KEY is empty; Google source disabled")
	}
	return c
}

// parsePlaceMap reads "Listing Name=place_id,Other Listing=place_id2".
// Entry order is preserved so fan-out output stays deterministic.
func parsePlaceMap(s string) []domain.PlaceMapping {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []domain.PlaceMapping
	for _, pair := range strings.Split(s, ",") {
		name, id, ok := strings.Cut(pair, "=")
		name, id = strings.TrimSpace(name), strings.TrimSpace(id)
		if !ok || name == "" || id == "" {
			log.Warn().Str("entry", pair).Msg("skipping malformed GOOGLE_PLACE_IDS entry")
			continue
		}
		out = append(out, domain.PlaceMapping{ListingName: name, PlaceID: id})
	}
	return out
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
