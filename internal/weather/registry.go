package weather

import "agriinsight/internal/domain"

// Registry is the static set of locations with representative coordinates.
type Registry struct {
	locations []domain.Location
	byName    map[string]domain.Location
}

// NewRegistry builds a registry from locations, keeping their order.
func NewRegistry(locations []domain.Location) *Registry {
	r := &Registry{byName: make(map[string]domain.Location, len(locations))}
	for _, loc := range locations {
		if _, dup := r.byName[loc.Name]; dup {
			continue
		}
		r.locations = append(r.locations, loc)
		r.byName[loc.Name] = loc
	}
	return r
}

// DefaultRegistry returns the built-in states and city.
func DefaultRegistry() *Registry {
	return NewRegistry([]domain.Location{
		{Name: "Maharashtra", Latitude: 19.7515, Longitude: 75.7139},
		{Name: "Karnataka", Latitude: 15.3173, Longitude: 75.7139},
		{Name: "Kerala", Latitude: 10.8505, Longitude: 76.2711},
		{Name: "Gujarat", Latitude: 22.2587, Longitude: 71.1924},
		{Name: "Tamil Nadu", Latitude: 11.1271, Longitude: 78.6569},
		{Name: "Punjab", Latitude: 31.1471, Longitude: 75.3412},
		{Name: "Pune", Latitude: 18.5204, Longitude: 73.8567},
	})
}

// Lookup resolves an exact, case-sensitive name.
func (r *Registry) Lookup(name string) (domain.Location, bool) {
	loc, ok := r.byName[name]
	return loc, ok
}

// Names lists supported location names in registry order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.locations))
	for i, loc := range r.locations {
		out[i] = loc.Name
	}
	return out
}
