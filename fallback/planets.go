package fallback

import "strings"

var planetFacts = map[string]string{
	"mercury": "Mercury is the smallest planet and closest to the Sun. Despite being so close, it's not the hottest planet - that honor goes to Venus!",
	"venus":   "Venus is the hottest planet in our solar system due to its thick atmosphere trapping heat. It's often called Earth's twin!",
	"earth":   "Earth is our home planet, the only known place with life. It's the perfect distance from the Sun for liquid water to exist!",
	"mars":    "Mars is known as the Red Planet due to iron oxide on its surface. It has the largest volcano in the solar system - Olympus Mons!",
	"jupiter": "Jupiter is the largest planet and acts as a cosmic vacuum cleaner, protecting inner planets from asteroids and comets!",
	"saturn":  "Saturn is famous for its beautiful rings made of ice and rock. It's less dense than water - it would float if you could find a big enough ocean!",
	"uranus":  "Uranus rotates on its side, making it unique among planets. It's an ice giant with a faint ring system!",
	"neptune": "Neptune is the windiest planet with speeds up to 1,200 mph! It's the most distant planet from the Sun.",
}

// PlanetFact returns a short description of the named planet, or an
// invitation to explore it when the name is not one of the eight planets.
func PlanetFact(name string) string {
	if fact, ok := planetFacts[strings.ToLower(strings.TrimSpace(name))]; ok {
		return fact
	}
	return "Learn more about " + name + " by exploring it in our solar system!"
}
