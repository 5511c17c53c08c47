// Package solar holds the reference solar system the client renders and the
// summary figures derived from it.
package solar

import (
	"strconv"
	"strings"

	"cosmic/fallback"
)

type Moon struct {
	Name         string  `json:"name"`
	Size         float64 `json:"size"`
	Distance     float64 `json:"distance"`
	OrbitalSpeed float64 `json:"orbitalSpeed"`
}

// Planet sizes, distances and speeds are relative to Earth and scaled for
// display, not physical units.
type Planet struct {
	Name          string  `json:"name"`
	Color         string  `json:"color"`
	Size          float64 `json:"size"`
	Distance      float64 `json:"distance"`
	OrbitalSpeed  float64 `json:"orbitalSpeed"`
	RotationSpeed float64 `json:"rotationSpeed"`
	Moons         []Moon  `json:"moons"`
}

type Sun struct {
	Color     string  `json:"color"`
	Size      float64 `json:"size"`
	Intensity float64 `json:"intensity"`
}

type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type Settings struct {
	AnimationSpeed float64 `json:"animationSpeed"`
	ShowOrbits     bool    `json:"showOrbits"`
	ShowLabels     bool    `json:"showLabels"`
	CameraPosition Vector  `json:"cameraPosition"`
}

type System struct {
	Sun      Sun      `json:"sun"`
	Planets  []Planet `json:"planets"`
	Settings Settings `json:"settings"`
	Version  int      `json:"version"`
}

// Default returns a fresh copy of the reference system, planets ordered
// outward from the Sun.
func Default() System {
	return System{
		Sun: Sun{Color: "#ffff00", Size: 15, Intensity: 1.5},
		Planets: []Planet{
			{Name: "Mercury", Color: "#b1b1b1", Size: 0.38, Distance: 12, OrbitalSpeed: 1.5, RotationSpeed: 1.2, Moons: []Moon{}},
			{Name: "Venus", Color: "#e5c27b", Size: 0.95, Distance: 18, OrbitalSpeed: 1.2, RotationSpeed: 0.8, Moons: []Moon{}},
			{Name: "Earth", Color: "#2d5f9b", Size: 1.0, Distance: 25, OrbitalSpeed: 1.0, RotationSpeed: 1.0, Moons: []Moon{}},
			{Name: "Mars", Color: "#d14e28", Size: 0.53, Distance: 32, OrbitalSpeed: 0.8, RotationSpeed: 1.1, Moons: []Moon{}},
			{Name: "Jupiter", Color: "#d9a066", Size: 11.2, Distance: 52, OrbitalSpeed: 0.4, RotationSpeed: 2.4, Moons: []Moon{}},
			{Name: "Saturn", Color: "#d9c39a", Size: 9.45, Distance: 72, OrbitalSpeed: 0.3, RotationSpeed: 2.2, Moons: []Moon{}},
			{Name: "Uranus", Color: "#91c7d9", Size: 4.0, Distance: 92, OrbitalSpeed: 0.2, RotationSpeed: 1.4, Moons: []Moon{}},
			{Name: "Neptune", Color: "#4062b6", Size: 3.9, Distance: 110, OrbitalSpeed: 0.15, RotationSpeed: 1.6, Moons: []Moon{}},
		},
		Settings: Settings{
			AnimationSpeed: 1,
			ShowOrbits:     true,
			ShowLabels:     true,
			CameraPosition: Vector{X: 0, Y: 40, Z: 120},
		},
		Version: 1,
	}
}

// Find looks a planet up by name, ignoring case and surrounding space.
func (s System) Find(name string) (Planet, bool) {
	name = strings.TrimSpace(name)
	for _, p := range s.Planets {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Planet{}, false
}

// PlanetDetail is a planet with readable facts and a short description.
type PlanetDetail struct {
	Planet
	Description string   `json:"description"`
	Facts       []string `json:"facts"`
}

func Detail(p Planet) PlanetDetail {
	return PlanetDetail{
		Planet:      p,
		Description: fallback.PlanetFact(p.Name),
		Facts: []string{
			p.Name + " is " + num(p.Size) + " times the size of Earth",
			"It orbits at a distance of " + num(p.Distance) + " astronomical units",
			"Orbital speed: " + num(p.OrbitalSpeed) + "x Earth's speed",
			"Rotation speed: " + num(p.RotationSpeed) + "x Earth's speed",
		},
	}
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

type Stats struct {
	TotalPlanets    int     `json:"totalPlanets"`
	TotalMoons      int     `json:"totalMoons"`
	AverageDistance float64 `json:"averageDistance"`
	LargestPlanet   *Planet `json:"largestPlanet"`
	SmallestPlanet  *Planet `json:"smallestPlanet"`
	SunInfo         Sun     `json:"sunInfo"`
}

// Overview summarizes the system. Ties for largest or smallest go to the
// planet nearer the Sun. Without planets the averages are zero and the
// extremes nil.
func (s System) Overview() Stats {
	stats := Stats{TotalPlanets: len(s.Planets), SunInfo: s.Sun}
	if len(s.Planets) == 0 {
		return stats
	}

	var total float64
	largest, smallest := s.Planets[0], s.Planets[0]
	for _, p := range s.Planets {
		stats.TotalMoons += len(p.Moons)
		total += p.Distance
		if p.Size > largest.Size {
			largest = p
		}
		if p.Size < smallest.Size {
			smallest = p
		}
	}
	stats.AverageDistance = total / float64(len(s.Planets))
	stats.LargestPlanet = &largest
	stats.SmallestPlanet = &smallest
	return stats
}
