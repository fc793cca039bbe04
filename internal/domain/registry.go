// Package domain defines core business entities and value objects for hactl.
//
// This file contains the locally cached mirror of the hub registry: entities,
// services, areas, devices, and labels. The domain layer is independent of
// infrastructure concerns and represents pure data structures.
package domain

import "time"

// Category identifies one registry collection.
type Category string

const (
	CategoryEntities Category = "entities"
	CategoryServices Category = "services"
	CategoryAreas    Category = "areas"
	CategoryDevices  Category = "devices"
	CategoryLabels   Category = "labels"
)

// Categories lists every registry category in refresh order.
func Categories() []Category {
	return []Category{
		CategoryEntities,
		CategoryServices,
		CategoryAreas,
		CategoryDevices,
		CategoryLabels,
	}
}

// Entity is one addressable unit on the hub (light, sensor, lock, ...).
// The identifier is domain-qualified: "light.kitchen_main".
type Entity struct {
	EntityID     string         `json:"entity_id"`
	Domain       string         `json:"domain"`
	ObjectID     string         `json:"object_id"`
	State        string         `json:"state"`
	FriendlyName string         `json:"friendly_name,omitempty"`
	AreaID       string         `json:"area_id,omitempty"`
	Attributes   map[string]any `json:"attributes,omitempty"`
}

// Service is one callable hub service, e.g. light.turn_on.
type Service struct {
	Domain      string `json:"domain"`
	Service     string `json:"service"`
	FullName    string `json:"full_name"`
	Description string `json:"description,omitempty"`
}

// Area groups entities by physical location.
type Area struct {
	AreaID  string   `json:"area_id"`
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
}

// Device is a physical device owning one or more entities.
type Device struct {
	ID           string `json:"id"`
	Name         string `json:"name,omitempty"`
	NameByUser   string `json:"name_by_user,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty"`
	AreaID       string `json:"area_id,omitempty"`
}

// Label is a user-defined tag attachable to entities and devices.
type Label struct {
	LabelID string `json:"label_id"`
	Name    string `json:"name"`
	Color   string `json:"color,omitempty"`
}

// Snapshot is an immutable point-in-time capture of one registry category.
// A snapshot is either fully populated or absent; partial categories are
// never persisted.
type Snapshot[T any] struct {
	FetchedAt time.Time     `json:"fetched_at"`
	TTL       time.Duration `json:"ttl"`
	ServerURL string        `json:"server_url"`
	Items     []T           `json:"items"`
}

// NewSnapshot stamps items with the current time.
func NewSnapshot[T any](items []T, ttl time.Duration, serverURL string) Snapshot[T] {
	return Snapshot[T]{
		FetchedAt: time.Now().UTC(),
		TTL:       ttl,
		ServerURL: serverURL,
		Items:     items,
	}
}

// Stale reports whether the snapshot's TTL has elapsed.
func (s Snapshot[T]) Stale(now time.Time) bool {
	return now.Sub(s.FetchedAt) > s.TTL
}

// Valid reports whether the snapshot is usable for the given server. A
// snapshot captured from a different server is never valid, regardless of
// age.
func (s Snapshot[T]) Valid(serverURL string) bool {
	return s.ServerURL == serverURL
}

// Age returns how long ago the snapshot was fetched.
func (s Snapshot[T]) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}

// CategoryStatus describes one cached category for `cache status`.
type CategoryStatus struct {
	Category  Category      `json:"category"`
	Present   bool          `json:"present"`
	Count     int           `json:"count"`
	FetchedAt time.Time     `json:"fetched_at,omitempty"`
	Age       time.Duration `json:"age,omitempty"`
	TTL       time.Duration `json:"ttl,omitempty"`
	Stale     bool          `json:"stale"`
	SizeBytes int64         `json:"size_bytes"`
}
