package handlers

import (
	"net/http"
	"sort"

	"fes-bids/internal/api/models"
	"fes-bids/internal/config"

	"github.com/gin-gonic/gin"
)

// UnitHandler serves the configured units and the vendor facility table
type UnitHandler struct {
	cfg *config.Config
}

// NewUnitHandler creates a new unit handler
func NewUnitHandler(cfg *config.Config) *UnitHandler {
	return &UnitHandler{cfg: cfg}
}

// ListUnits handles GET /api/v1/units
func (h *UnitHandler) ListUnits(c *gin.Context) {
	units := make([]models.UnitInfo, 0, len(h.cfg.Units))
	for _, u := range h.cfg.Units {
		prices := u.Prices
		units = append(units, models.UnitInfo{
			ID:          u.ID,
			Name:        u.Name,
			Kind:        string(u.Kind),
			TablePrefix: u.TablePrefix,
			Source:      string(u.Source),
			Prices:      prices[:],
		})
	}
	c.JSON(http.StatusOK, gin.H{"units": units})
}

// ListFacilities handles GET /api/v1/facilities
func (h *UnitHandler) ListFacilities(c *gin.Context) {
	facilities := make([]models.FacilityInfo, 0, len(h.cfg.Facilities))
	for _, f := range h.cfg.Facilities {
		facilities = append(facilities, models.FacilityInfo{ID: f.ID, Source: string(f.Source)})
	}
	sort.Slice(facilities, func(i, j int) bool { return facilities[i].ID < facilities[j].ID })
	c.JSON(http.StatusOK, gin.H{"facilities": facilities})
}
