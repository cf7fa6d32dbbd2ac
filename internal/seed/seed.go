// Package seed loads the starter catalog: waste items, challenges, badges and cities.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aimd54/swachhta-hub/internal/models"
	"github.com/aimd54/swachhta-hub/internal/repository"
	"github.com/aimd54/swachhta-hub/pkg/logger"
)

//go:embed seed.yaml
var defaultCatalog []byte

// Catalog is the seed file layout.
type Catalog struct {
	WasteItems []WasteItem `yaml:"waste_items"`
	Challenges []Challenge `yaml:"challenges"`
	Badges     []Badge     `yaml:"badges"`
	Cities     []City      `yaml:"cities"`
}

// WasteItem is a seeded catalog item.
type WasteItem struct {
	Name        string `yaml:"name"`
	Category    string `yaml:"category"`
	DisposalTip string `yaml:"disposal_tip"`
	Warning     string `yaml:"warning"`
	Points      int    `yaml:"points"`
}

// Challenge is a seeded challenge. Seeded challenges are active.
type Challenge struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Points      int    `yaml:"points"`
	Frequency   string `yaml:"frequency"`
	Category    string `yaml:"category"`
}

// Badge is a seeded badge; Criteria uses the "kind:threshold" form.
type Badge struct {
	Name           string `yaml:"name"`
	Description    string `yaml:"description"`
	Icon           string `yaml:"icon"`
	Criteria       string `yaml:"criteria"`
	PointsRequired int    `yaml:"points_required"`
}

// City is a seeded city aggregate.
type City struct {
	Name             string  `yaml:"name"`
	State            string  `yaml:"state"`
	Latitude         float64 `yaml:"latitude"`
	Longitude        float64 `yaml:"longitude"`
	CleanlinessScore int     `yaml:"cleanliness_score"`
	ActiveUsers      int     `yaml:"active_users"`
	TotalReports     int     `yaml:"total_reports"`
}

// Load reads a catalog from path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
		}
	}
	return Parse(data)
}

// Parse decodes and validates a catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse seed catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects entries that would break the rules engine.
func (c *Catalog) Validate() error {
	for _, item := range c.WasteItems {
		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("waste item without name")
		}
		if item.Points < 0 {
			return fmt.Errorf("waste item %q: negative points", item.Name)
		}
	}
	for _, ch := range c.Challenges {
		if !models.Frequency(ch.Frequency).Valid() {
			return fmt.Errorf("challenge %q: unknown frequency %q", ch.Name, ch.Frequency)
		}
		if ch.Points < 0 {
			return fmt.Errorf("challenge %q: negative points", ch.Name)
		}
	}
	for _, b := range c.Badges {
		if _, err := models.ParseBadgeCriterion(b.Criteria); err != nil {
			return fmt.Errorf("badge %q: %w", b.Name, err)
		}
	}
	for _, city := range c.Cities {
		if city.CleanlinessScore < 0 || city.CleanlinessScore > 100 {
			return fmt.Errorf("city %q: score out of range", city.Name)
		}
	}
	return nil
}

// Seeder writes a catalog into empty tables.
type Seeder struct {
	repos *repository.Repositories
	now   func() time.Time
	log   *logger.Logger
}

// NewSeeder creates a seeder.
func NewSeeder(repos *repository.Repositories, log *logger.Logger) *Seeder {
	return &Seeder{repos: repos, now: time.Now, log: log}
}

// Result counts the rows inserted per table.
type Result struct {
	WasteItems int
	Challenges int
	Badges     int
	Cities     int
}

// Apply seeds each table that is still empty, all in one transaction.
func (s *Seeder) Apply(ctx context.Context, c *Catalog) (*Result, error) {
	res := &Result{}
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		if res.WasteItems, err = seedWaste(tx, c.WasteItems); err != nil {
			return err
		}
		if res.Challenges, err = seedChallenges(tx, c.Challenges); err != nil {
			return err
		}
		if res.Badges, err = seedBadges(tx, c.Badges); err != nil {
			return err
		}
		res.Cities, err = seedCities(tx, c.Cities, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int("waste_items", res.WasteItems).
		Int("challenges", res.Challenges).
		Int("badges", res.Badges).
		Int("cities", res.Cities).
		Msg("Catalog seeded")

	return res, nil
}

func seedWaste(tx *repository.Repositories, items []WasteItem) (int, error) {
	if n, err := tx.Waste.Count(); err != nil || n > 0 {
		return 0, err
	}
	for _, item := range items {
		err := tx.Waste.Create(&models.WasteItem{
			Name:        strings.ToLower(strings.TrimSpace(item.Name)),
			Category:    item.Category,
			DisposalTip: item.DisposalTip,
			Warning:     item.Warning,
			PointsValue: item.Points,
		})
		if err != nil {
			return 0, err
		}
	}
	return len(items), nil
}

func seedChallenges(tx *repository.Repositories, challenges []Challenge) (int, error) {
	if n, err := tx.Challenges.Count(); err != nil || n > 0 {
		return 0, err
	}
	for _, ch := range challenges {
		err := tx.Challenges.Create(&models.Challenge{
			Name:        ch.Name,
			Description: ch.Description,
			Points:      ch.Points,
			Frequency:   models.Frequency(ch.Frequency),
			Category:    ch.Category,
			Active:      true,
		})
		if err != nil {
			return 0, err
		}
	}
	return len(challenges), nil
}

func seedBadges(tx *repository.Repositories, badges []Badge) (int, error) {
	if n, err := tx.Badges.Count(); err != nil || n > 0 {
		return 0, err
	}
	for _, b := range badges {
		criterion, err := models.ParseBadgeCriterion(b.Criteria)
		if err != nil {
			return 0, fmt.Errorf("badge %q: %w", b.Name, err)
		}
		err = tx.Badges.Create(&models.Badge{
			Name:           b.Name,
			Description:    b.Description,
			Icon:           b.Icon,
			Criteria:       criterion,
			PointsRequired: b.PointsRequired,
		})
		if err != nil {
			return 0, err
		}
	}
	return len(badges), nil
}

func seedCities(tx *repository.Repositories, cities []City, now time.Time) (int, error) {
	if n, err := tx.Cities.Count(); err != nil || n > 0 {
		return 0, err
	}
	for _, city := range cities {
		err := tx.Cities.Create(&models.CityData{
			Name:             city.Name,
			State:            city.State,
			Latitude:         city.Latitude,
			Longitude:        city.Longitude,
			CleanlinessScore: city.CleanlinessScore,
			ActiveUsers:      city.ActiveUsers,
			TotalReports:     city.TotalReports,
			LastUpdated:      now,
		})
		if err != nil {
			return 0, err
		}
	}
	return len(cities), nil
}
