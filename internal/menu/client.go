package menu

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wcrave/wellesley-crave/internal/apperror"
	"github.com/wcrave/wellesley-crave/internal/model"
)

// DefaultBaseURL is the vendor's production API root.
const DefaultBaseURL = "https://dish.avifoodsystems.com/api"

// Fetcher is the read surface the rest of the app programs against. The
// favorites matcher and the menu handler take a Fetcher, not a *Client, so
// tests can substitute canned menus and simulated outages.
type Fetcher interface {
	// FetchDay returns the normalized menu for one (date, hall, meal)
	// combination. An empty slice means "no menu published for that day";
	// apperror.ErrUnavailable means the vendor call itself failed.
	FetchDay(ctx context.Context, date time.Time, combo Combo) ([]model.MenuItem, error)
}

// Client fetches menus from the vendor's REST API.
//
// The vendor exposes two endpoints with inconsistent parameter casing, and
// both shapes are load-bearing:
//
//	GET /menu-items?date=&locationID=&mealID=       one day's menu
//	GET /menu-items/week?date=&locationId=&mealId=  the surrounding week
//
// Responses from /week cover seven days; callers pick a single day by
// comparing the item's date string against ISO date + "T00:00:00". That
// suffix match is the vendor's actual contract, brittle as it looks.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *ttlCache
	logger  *slog.Logger
}

// NewClient builds a Client with an explicit request timeout and a bounded
// response cache. The timeout matters: the menu pages fan out to up to 12
// vendor calls, and one hung connection must not stall the whole page.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		cache:   newTTLCache(time.Hour),
		logger:  logger,
	}
}

var _ Fetcher = (*Client)(nil)

// FetchDay returns the menu for one (date, hall, meal) triple, consulting
// the cache first. A cache miss behaves exactly like a cold fetch; the
// cache only exists so twelve-combo fan-outs don't hammer the vendor.
func (c *Client) FetchDay(ctx context.Context, date time.Time, combo Combo) ([]model.MenuItem, error) {
	key := cacheKey(date, combo)
	if items, ok := c.cache.get(key); ok {
		return items, nil
	}

	// The day endpoint takes the date as MM-DD-YYYY with upper-case ID
	// params. Do not "fix" the casing — the vendor ignores unknown params
	// and returns the whole week.
	params := url.Values{}
	params.Set("date", date.Format("01-02-2006"))
	params.Set("locationID", strconv.Itoa(combo.LocationID))
	params.Set("mealID", strconv.Itoa(combo.MealID))

	raw, err := c.getJSON(ctx, c.baseURL+"/menu-items", params)
	if err != nil {
		return nil, err
	}

	items := normalizeAll(raw, combo, date)
	c.cache.put(key, items)
	return items, nil
}

// FetchWeek returns the vendor's full week of items around date for one
// (hall, meal) combination, filtered down to the requested day. The week
// endpoint uses lower-camel ID params and ISO dates.
func (c *Client) FetchWeek(ctx context.Context, date time.Time, combo Combo) ([]model.MenuItem, error) {
	key := cacheKey(date, combo)
	if items, ok := c.cache.get(key); ok {
		return items, nil
	}

	params := url.Values{}
	params.Set("date", date.Format("2006-01-02"))
	params.Set("locationId", strconv.Itoa(combo.LocationID))
	params.Set("mealId", strconv.Itoa(combo.MealID))

	raw, err := c.getJSON(ctx, c.baseURL+"/menu-items/week", params)
	if err != nil {
		return nil, err
	}

	// Keep only the requested day. The vendor stamps every item with
	// "YYYY-MM-DDT00:00:00"; exact string equality is the documented way
	// to match (the time part is always midnight).
	wantDate := date.Format("2006-01-02") + "T00:00:00"
	day := make([]vendorItem, 0, len(raw))
	for _, item := range raw {
		if item.Date == wantDate {
			day = append(day, item)
		}
	}

	items := normalizeAll(day, combo, date)
	c.cache.put(key, items)
	return items, nil
}

// getJSON performs one GET and decodes the JSON array. Any transport
// failure, non-2xx status, or undecodable body becomes ErrUnavailable —
// callers show "no menu available", they never crash.
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values) ([]vendorItem, error) {
	reqURL := endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("menu: building request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("menu fetch failed", slog.String("url", reqURL), slog.String("error", err.Error()))
		return nil, apperror.Unavailable("menu provider unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("menu fetch returned non-2xx",
			slog.String("url", reqURL),
			slog.Int("status", resp.StatusCode),
		)
		return nil, apperror.Unavailable(fmt.Sprintf("menu provider returned status %d", resp.StatusCode))
	}

	var items []vendorItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		c.logger.Warn("menu fetch returned malformed JSON", slog.String("url", reqURL), slog.String("error", err.Error()))
		return nil, apperror.Unavailable("menu provider returned malformed JSON")
	}

	return items, nil
}

// vendorItem mirrors the slice of the vendor's wire format we keep. The
// response carries more (internal row id, corporateProductId, a derived
// caloriesFromSatFat field inside nutritionals) — those are dropped simply
// by not declaring them.
type vendorItem struct {
	Name        string      `json:"name"`
	StationName string      `json:"stationName"`
	Date        string      `json:"date"` // "YYYY-MM-DDT00:00:00"
	Allergens   []taggedRef `json:"allergens"`
	Preferences []taggedRef `json:"preferences"`
	Nutrition   nutritional `json:"nutritionals"`
}

// taggedRef is the vendor's {"name": "..."} wrapper object.
type taggedRef struct {
	Name string `json:"name"`
}

// nutritional is the nested nutrition object. The vendor serializes the
// numbers inconsistently — sometimes JSON numbers, sometimes quoted strings
// — so every field goes through flexFloat.
type nutritional struct {
	Calories      flexFloat `json:"calories"`
	Protein       flexFloat `json:"protein"`
	Carbohydrates flexFloat `json:"carbohydrates"`
	Fat           flexFloat `json:"fat"`
}

// flexFloat decodes a float that may arrive quoted. Unparseable values
// decode to zero rather than failing the whole menu.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}

// normalizeAll flattens vendor items into model.MenuItems, stamping each
// with the hall/meal/date of the request (the wire items only carry the
// vendor's location code, which is not the display name).
func normalizeAll(raw []vendorItem, combo Combo, date time.Time) []model.MenuItem {
	items := make([]model.MenuItem, 0, len(raw))
	for _, v := range raw {
		items = append(items, normalize(v, combo, date))
	}
	return items
}

func normalize(v vendorItem, combo Combo, date time.Time) model.MenuItem {
	return model.MenuItem{
		Name:        v.Name,
		Station:     v.StationName,
		DiningHall:  combo.Hall,
		Meal:        combo.Meal,
		Date:        date.Format("2006-01-02"),
		Allergens:   names(v.Allergens),
		Preferences: names(v.Preferences),
		Calories:    float64(v.Nutrition.Calories),
		ProteinG:    float64(v.Nutrition.Protein),
		CarbsG:      float64(v.Nutrition.Carbohydrates),
		FatG:        float64(v.Nutrition.Fat),
	}
}

// names collapses the vendor's list of tagged objects into plain strings.
func names(refs []taggedRef) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		if r.Name != "" {
			out = append(out, r.Name)
		}
	}
	return out
}

func cacheKey(date time.Time, combo Combo) string {
	return fmt.Sprintf("%s|%d|%d", date.Format("2006-01-02"), combo.LocationID, combo.MealID)
}
