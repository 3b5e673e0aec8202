package domain

import "strings"

// CustomDeliveryValue is the delivery location chosen when the customer
// types a city instead of picking a listed option.
const CustomDeliveryValue = "custom"

type DeliveryOption struct {
	Value              string   `bson:"value" json:"value"`
	Name               string   `bson:"name" json:"name"`
	Price              Money    `bson:"price" json:"price"`
	Description        string   `bson:"description,omitempty" json:"description,omitempty"`
	CustomCityTriggers []string `bson:"custom_city_triggers,omitempty" json:"customCityTriggers,omitempty"`
	Carrier            string   `bson:"carrier,omitempty" json:"carrier,omitempty"`
	State              string   `bson:"state,omitempty" json:"state,omitempty"`
	SortOrder          int      `bson:"sort_order" json:"-"`
}

// MatchesCity reports whether any trigger is contained in the city text.
// Both sides are compared lowercased.
func (o DeliveryOption) MatchesCity(city string) bool {
	city = strings.ToLower(strings.TrimSpace(city))
	if city == "" {
		return false
	}
	for _, trigger := range o.CustomCityTriggers {
		trigger = strings.ToLower(strings.TrimSpace(trigger))
		if trigger != "" && strings.Contains(city, trigger) {
			return true
		}
	}
	return false
}

// AvailableIn reports whether the option is offered for a state. Options
// without a state scope are offered everywhere.
func (o DeliveryOption) AvailableIn(state string) bool {
	return o.State == "" || strings.EqualFold(o.State, state)
}
