package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cosmic/solar"
)

func (s *Server) solarDefault(c *gin.Context) {
	writeData(c, http.StatusOK, solar.Default())
}

type planetSummary struct {
	Name          string  `json:"name"`
	Color         string  `json:"color"`
	Size          float64 `json:"size"`
	Distance      float64 `json:"distance"`
	OrbitalSpeed  float64 `json:"orbitalSpeed"`
	RotationSpeed float64 `json:"rotationSpeed"`
}

func (s *Server) solarPlanets(c *gin.Context) {
	planets := solar.Default().Planets
	list := make([]planetSummary, len(planets))
	for i, p := range planets {
		list[i] = planetSummary{
			Name:          p.Name,
			Color:         p.Color,
			Size:          p.Size,
			Distance:      p.Distance,
			OrbitalSpeed:  p.OrbitalSpeed,
			RotationSpeed: p.RotationSpeed,
		}
	}
	writeData(c, http.StatusOK, gin.H{"planets": list})
}

func (s *Server) solarPlanet(c *gin.Context) {
	planet, ok := solar.Default().Find(c.Param("planetName"))
	if !ok {
		writeError(c, http.StatusNotFound, "Planet not found")
		return
	}
	writeData(c, http.StatusOK, solar.Detail(planet))
}

func (s *Server) solarStats(c *gin.Context) {
	writeData(c, http.StatusOK, solar.Default().Overview())
}
