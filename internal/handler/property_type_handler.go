package handler

import (
	"net/http"

	"circuit-service/internal/listfilter"
	"circuit-service/internal/model"
	"circuit-service/pkg/database"
	"circuit-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var propertyTypeFilters = listfilter.Allowed{
	Fields: map[string]listfilter.Field{
		"id":      {Column: "id", Kind: listfilter.Number},
		"name":    {Column: "name", Kind: listfilter.String},
		"created": {Column: "created_at", Kind: listfilter.String},
		"updated": {Column: "updated_at", Kind: listfilter.String},
	},
	Ordering:     []string{"id", "name"},
	DefaultOrder: "name",
}

// ListPropertyTypes handles retrieving the read-only property type
// reference data
func ListPropertyTypes(c echo.Context) error {
	log := logger.FromEcho(c)

	filters := listfilter.Parse(c.QueryParams(), propertyTypeFilters)

	query := filters.Apply(database.GetDB().Model(&model.PropertyType{}))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Error("Failed to count property types", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve property types"})
	}

	var types []model.PropertyType
	if err := filters.ApplyPage(query).Find(&types).Error; err != nil {
		log.Error("Failed to list property types", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve property types"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"content":   types,
		"_metadata": filters.MetadataFor(total),
	})
}
