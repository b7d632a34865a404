package handler

import (
	"net/http"
	"sort"
	"strings"

	"circuit-service/internal/apierrors"
	"circuit-service/internal/middleware"
	"circuit-service/internal/model"
	"circuit-service/pkg/database"
	"circuit-service/pkg/logger"
	"circuit-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// PropertyMatch is one hit in a circuit property search.
type PropertyMatch struct {
	CircuitID       uint   `json:"circuit_id"`
	PropertyValue   string `json:"property_value"`
	Reference       string `json:"reference"`
	ReferenceNumber int    `json:"reference_number"`
}

// SearchCircuitProperties handles a substring search over the property
// values of the caller's visible, non-decommissioned circuits
func SearchCircuitProperties(c echo.Context) error {
	log := logger.FromEcho(c)

	claims, ok := middleware.GetUserClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": apierrors.CodeAuthenticationRequired})
	}

	term := strings.ToLower(c.Param("term"))

	addresses, err := callerAddressScope(c, claims)
	if err != nil {
		log.Error("Failed to resolve caller address scope", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to search circuit properties"})
	}

	db := database.GetDB()
	var circuits []model.Circuit
	err = scopeCircuits(db.Model(&model.Circuit{}), addresses).
		Where("decommission_date IS NULL").
		Find(&circuits).Error
	if err != nil {
		log.Error("Failed to load circuits for property search", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to search circuit properties"})
	}

	// Values are matched on their string form, so a numeric 100 is found
	// by the term "100".
	matches := make([]PropertyMatch, 0)
	for i := range circuits {
		for _, value := range circuits[i].Properties {
			if value == nil {
				continue
			}
			s := stringValue(value)
			if s == "" || !strings.Contains(strings.ToLower(s), term) {
				continue
			}
			matches = append(matches, PropertyMatch{
				CircuitID:       circuits[i].ID,
				PropertyValue:   s,
				Reference:       circuits[i].Reference,
				ReferenceNumber: circuits[i].ReferenceNumber,
			})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].PropertyValue != matches[j].PropertyValue {
			return matches[i].PropertyValue < matches[j].PropertyValue
		}
		return matches[i].CircuitID < matches[j].CircuitID
	})

	log.Info("Circuit property search completed",
		zap.String("term", term),
		zap.Int("matches", len(matches)))
	prometheus.RecordPropertySearch()
	return c.JSON(http.StatusOK, echo.Map{"content": matches})
}
