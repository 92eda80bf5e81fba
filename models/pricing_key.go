// Package models contains domain entities and business models for the freight rate catalog
package models

import (
	"fmt"
	"strings"
)

// TransportMode identifies how a shipment travels
type TransportMode string

const (
	TransportModeAir TransportMode = "AIR"
	TransportModeSea TransportMode = "SEA"
)

// IsValid checks whether the transport mode is one of the supported values
func (m TransportMode) IsValid() bool {
	return m == TransportModeAir || m == TransportModeSea
}

// PricingKey identifies the scope a rate version applies to: either a single
// catalog location, or an origin/destination route for a given transport mode.
// A key is immutable once a RateVersion references it.
type PricingKey struct {
	LocationCode    string        `json:"location_code,omitempty"`
	OriginCode      string        `json:"origin_code,omitempty"`
	DestinationCode string        `json:"destination_code,omitempty"`
	Mode            TransportMode `json:"mode,omitempty"`
}

// LocationPricingKey builds a key scoped to a single catalog location
func LocationPricingKey(locationCode string) PricingKey {
	return PricingKey{LocationCode: strings.ToUpper(strings.TrimSpace(locationCode))}
}

// RoutePricingKey builds a key scoped to an origin/destination route
func RoutePricingKey(originCode, destinationCode string, mode TransportMode) PricingKey {
	return PricingKey{
		OriginCode:      strings.ToUpper(strings.TrimSpace(originCode)),
		DestinationCode: strings.ToUpper(strings.TrimSpace(destinationCode)),
		Mode:            mode,
	}
}

// IsRoute reports whether the key is route-scoped
func (k PricingKey) IsRoute() bool {
	return k.LocationCode == ""
}

// Validate checks that exactly one scope is populated
func (k PricingKey) Validate() error {
	if k.LocationCode != "" {
		if k.OriginCode != "" || k.DestinationCode != "" || k.Mode != "" {
			return fmt.Errorf("pricing key cannot mix location and route scopes")
		}
		return nil
	}
	if k.OriginCode == "" || k.DestinationCode == "" {
		return fmt.Errorf("pricing key requires a location code or an origin/destination pair")
	}
	if !k.Mode.IsValid() {
		return fmt.Errorf("pricing key requires a valid transport mode, got %q", k.Mode)
	}
	return nil
}

// String returns the canonical form stored in rate_versions.pricing_key and
// used as the administrative lock key. Route keys embed the transport mode so
// AIR and SEA catalogs for the same city pair stay independent.
func (k PricingKey) String() string {
	if !k.IsRoute() {
		return "LOC:" + k.LocationCode
	}
	return fmt.Sprintf("RTE:%s->%s:%s", k.OriginCode, k.DestinationCode, k.Mode)
}
