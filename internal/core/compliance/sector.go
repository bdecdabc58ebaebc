package compliance

import (
	"strings"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
)

// SectorRisk classifies a sector against the high, medium and low tables in
// that order. A table entry matches when either string contains the other.
// Unknown or empty sectors are medium.
func (e *Engine) SectorRisk(sector string) domain.SectorRisk {
	s := strings.ToLower(strings.TrimSpace(sector))
	if s == "" {
		return domain.SectorRisk{Level: domain.RiskMedium, Score: 50}
	}
	switch {
	case sectorIn(s, e.tables.HighRiskSectors):
		return domain.SectorRisk{Level: domain.RiskHigh, Score: 85}
	case sectorIn(s, e.tables.MediumRiskSectors):
		return domain.SectorRisk{Level: domain.RiskMedium, Score: 55}
	case sectorIn(s, e.tables.LowRiskSectors):
		return domain.SectorRisk{Level: domain.RiskLow, Score: 20}
	default:
		return domain.SectorRisk{Level: domain.RiskMedium, Score: 50}
	}
}

func sectorIn(sector string, table []string) bool {
	for _, entry := range table {
		e := strings.ToLower(entry)
		if strings.Contains(sector, e) || strings.Contains(e, sector) {
			return true
		}
	}
	return false
}
