// Package seed loads catalog, delivery options and profiles from a YAML file
// into the stores.
package seed

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type File struct {
	Categories      []Category       `yaml:"categories"`
	Products        []Product        `yaml:"products"`
	DeliveryOptions []DeliveryOption `yaml:"delivery_options"`
	Profiles        []Profile        `yaml:"profiles"`
}

type Category struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
}

type Product struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	Currency    string `yaml:"currency"`
	Image       string `yaml:"image"`
	Category    string `yaml:"category"`
	OutOfStock  bool   `yaml:"out_of_stock"`
}

type DeliveryOption struct {
	Value       string   `yaml:"value"`
	Name        string   `yaml:"name"`
	Price       string   `yaml:"price"`
	Description string   `yaml:"description"`
	Triggers    []string `yaml:"custom_city_triggers"`
	Carrier     string   `yaml:"carrier"`
	State       string   `yaml:"state"`
}

type Profile struct {
	UserID    string `yaml:"user_id"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Email     string `yaml:"email"`
	Admin     bool   `yaml:"admin"`
}

type CatalogWriter interface {
	UpsertCategory(ctx context.Context, c *domain.Category) error
	UpsertProduct(ctx context.Context, p *domain.Product) error
	UpsertDeliveryOption(ctx context.Context, o domain.DeliveryOption) error
}

type ProfileWriter interface {
	UpsertProfile(ctx context.Context, p *domain.Profile) error
}

type Counts struct {
	Categories      int
	Products        int
	DeliveryOptions int
	Profiles        int
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed YAML: %w", err)
	}
	return &f, nil
}

// Apply upserts everything in the file. Delivery options keep their file
// order through SortOrder. profiles may be nil to skip profiles.
func Apply(ctx context.Context, f *File, catalog CatalogWriter, profiles ProfileWriter, now time.Time) (Counts, error) {
	var counts Counts

	for _, c := range f.Categories {
		if err := catalog.UpsertCategory(ctx, &domain.Category{
			ID:          c.ID,
			Name:        c.Name,
			Slug:        c.Slug,
			Description: c.Description,
		}); err != nil {
			return counts, fmt.Errorf("category %s: %w", c.ID, err)
		}
		counts.Categories++
	}

	for _, p := range f.Products {
		price, err := domain.ParseMoney(p.Price)
		if err != nil {
			return counts, fmt.Errorf("product %s: %w", p.ID, err)
		}
		currency := p.Currency
		if currency == "" {
			currency = domain.DefaultCurrency
		}
		if err := catalog.UpsertProduct(ctx, &domain.Product{
			ID:          p.ID,
			Name:        p.Name,
			Slug:        p.Slug,
			Description: p.Description,
			Price:       price,
			Currency:    currency,
			ImageURL:    p.Image,
			CategoryID:  p.Category,
			InStock:     !p.OutOfStock,
			CreatedAt:   now,
		}); err != nil {
			return counts, fmt.Errorf("product %s: %w", p.ID, err)
		}
		counts.Products++
	}

	for i, o := range f.DeliveryOptions {
		if o.Value == domain.CustomDeliveryValue {
			return counts, fmt.Errorf("delivery option value %q is reserved", o.Value)
		}
		price, err := domain.ParseMoney(o.Price)
		if err != nil {
			return counts, fmt.Errorf("delivery option %s: %w", o.Value, err)
		}
		if err := catalog.UpsertDeliveryOption(ctx, domain.DeliveryOption{
			Value:              o.Value,
			Name:               o.Name,
			Price:              price,
			Description:        o.Description,
			CustomCityTriggers: o.Triggers,
			Carrier:            o.Carrier,
			State:              o.State,
			SortOrder:          i,
		}); err != nil {
			return counts, fmt.Errorf("delivery option %s: %w", o.Value, err)
		}
		counts.DeliveryOptions++
	}

	if profiles == nil {
		return counts, nil
	}
	for _, p := range f.Profiles {
		if err := profiles.UpsertProfile(ctx, &domain.Profile{
			UserID:    p.UserID,
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Email:     p.Email,
			IsAdmin:   p.Admin,
		}); err != nil {
			return counts, fmt.Errorf("profile %s: %w", p.UserID, err)
		}
		counts.Profiles++
	}
	return counts, nil
}
