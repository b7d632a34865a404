package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"circuit-service/internal/apierrors"
	"circuit-service/internal/listfilter"
	"circuit-service/internal/middleware"
	"circuit-service/internal/model"
	"circuit-service/internal/propschema"
	"circuit-service/pkg/database"
	"circuit-service/pkg/logger"
	"circuit-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxNameLength = 250

var circuitClassFilters = listfilter.Allowed{
	Fields: map[string]listfilter.Field{
		"id":      {Column: "id", Kind: listfilter.Number},
		"name":    {Column: "name", Kind: listfilter.String},
		"created": {Column: "created_at", Kind: listfilter.String},
		"updated": {Column: "updated_at", Kind: listfilter.String},
	},
	Ordering:     []string{"name", "created", "id", "updated"},
	DefaultOrder: "name",
}

// preloadSchema loads the current schema in submission order along with
// the property type rows.
func preloadSchema(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Properties", func(db *gorm.DB) *gorm.DB {
			return db.Order("properties.id")
		}).
		Preload("Properties.PropertyType")
}

// definitionsFromProperties converts stored schema rows to validator
// definitions.
func definitionsFromProperties(props []model.Property) []propschema.Definition {
	defs := make([]propschema.Definition, 0, len(props))
	for _, p := range props {
		kind, ok := propschema.KindFromID(p.PropertyTypeID)
		if !ok {
			// Rows are written through the definition engine, so an
			// unknown id means corrupted reference data.
			continue
		}
		defs = append(defs, propschema.Definition{Kind: kind, Key: p.Key, Required: p.Required})
	}
	return defs
}

// liveCircuitCount counts the non-deleted circuits referencing a class.
func liveCircuitCount(db *gorm.DB, classID uint) (int64, error) {
	var count int64
	err := db.Model(&model.Circuit{}).Where("circuit_class_id = ?", classID).Count(&count).Error
	return count, err
}

// attachClassCounts fills the derived total_circuits / total_properties
// attributes.
func attachClassCounts(db *gorm.DB, class *model.CircuitClass) error {
	circuits, err := liveCircuitCount(db, class.ID)
	if err != nil {
		return err
	}
	var props int64
	if err := db.Model(&model.Property{}).Where("circuit_class_id = ?", class.ID).Count(&props).Error; err != nil {
		return err
	}
	class.TotalCircuits = circuits
	class.TotalProperties = props
	return nil
}

// validateClassName checks the tenant-scoped name rules. The cleaned name
// and a validation code (empty on success) are returned; excludeID skips
// the record being updated in the uniqueness check. A non-nil error means
// the uniqueness check itself failed, not that the name is invalid.
func validateClassName(db *gorm.DB, memberID uint, raw any, excludeID uint) (string, string, error) {
	name := ""
	switch v := raw.(type) {
	case nil:
	case string:
		name = v
	default:
		name = fmt.Sprintf("%v", v)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apierrors.CodeNameRequired, nil
	}
	if len(name) > maxNameLength {
		return "", apierrors.CodeNameTooLong, nil
	}

	query := db.Model(&model.CircuitClass{}).Where("name = ? AND member_id = ?", name, memberID)
	if excludeID != 0 {
		query = query.Where("id != ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return "", "", err
	}
	if count > 0 {
		return "", apierrors.CodeNameInUse, nil
	}
	return name, "", nil
}

// ListCircuitClasses handles retrieving the member's circuit classes
func ListCircuitClasses(c echo.Context) error {
	log := logger.FromEcho(c)

	claims, ok := middleware.GetUserClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": apierrors.CodeAuthenticationRequired})
	}

	filters := listfilter.Parse(c.QueryParams(), circuitClassFilters)

	defer prometheus.TrackDBOperation("query")(time.Now())

	db := database.GetDB()
	query := filters.Apply(db.Model(&model.CircuitClass{}).Where("member_id = ?", claims.MemberID))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Error("Failed to count circuit classes", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve circuit classes"})
	}

	var classes []model.CircuitClass
	if err := preloadSchema(filters.ApplyPage(query)).Find(&classes).Error; err != nil {
		log.Error("Failed to list circuit classes", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve circuit classes"})
	}

	for i := range classes {
		if err := attachClassCounts(db, &classes[i]); err != nil {
			log.Error("Failed to compute circuit class counts", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve circuit classes"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"content":   classes,
		"_metadata": filters.MetadataFor(total),
	})
}

// GetCircuitClass handles reading a single circuit class by ID
func GetCircuitClass(c echo.Context) error {
	log := logger.FromEcho(c)

	claims, ok := middleware.GetUserClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": apierrors.CodeAuthenticationRequired})
	}

	id := c.Param("id")
	db := database.GetDB()

	var class model.CircuitClass
	result := preloadSchema(db).Where("member_id = ?", claims.MemberID).First(&class, id)
	if result.Error != nil {
		log.Warn("Circuit class not found", zap.String("circuit_class_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": apierrors.CodeCircuitClassNotFound})
	}

	if err := attachClassCounts(db, &class); err != nil {
		log.Error("Failed to compute circuit class counts", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve circuit class"})
	}

	return c.JSON(http.StatusOK, echo.Map{"content": class})
}

// CreateCircuitClass handles creating a circuit class together with its
// property schema
func CreateCircuitClass(c echo.Context) error {
	log := logger.FromEcho(c)

	claims, ok := middleware.GetUserClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": apierrors.CodeAuthenticationRequired})
	}

	// Permission checks happen before any validation
	if !claims.SelfManaged {
		log.Warn("Create circuit class denied, member is not self-managed",
			zap.Uint("member_id", claims.MemberID))
		return c.JSON(http.StatusForbidden, echo.Map{
			"error":   apierrors.CodeMemberNotSelfManaged,
			"message": apierrors.Message(apierrors.CodeMemberNotSelfManaged),
		})
	}

	var body map[string]any
	if err := c.Bind(&body); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": apierrors.CodeInvalidRequestBody})
	}

	db := database.GetDB()
	fieldErrs := apierrors.FieldErrors{}

	name, code, err := validateClassName(db, claims.MemberID, body["name"], 0)
	if err != nil {
		log.Error("Failed to check circuit class name", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create circuit class"})
	}
	if code != "" {
		fieldErrs.Add("name", code)
	}

	defs, code := propschema.ParseDefinitions(body["properties"])
	if code != "" {
		fieldErrs.Add("properties", code)
	}

	if fieldErrs.Any() {
		log.Warn("Circuit class creation rejected", zap.Any("errors", fieldErrs))
		prometheus.RecordValidationFailure("circuit_class")
		return c.JSON(fieldErrs.Status(), echo.Map{"errors": fieldErrs.Details()})
	}

	class := model.CircuitClass{
		MemberID: claims.MemberID,
		Name:     name,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	// The class row and its schema rows are written in one transaction
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&class).Error; err != nil {
			return err
		}
		for _, def := range defs {
			property := model.Property{
				CircuitClassID: class.ID,
				PropertyTypeID: uint(def.Kind),
				Key:            def.Key,
				Required:       def.Required,
			}
			if err := tx.Create(&property).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error("Failed to create circuit class", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create circuit class"})
	}

	if err := preloadSchema(db).First(&class, class.ID).Error; err != nil {
		log.Error("Failed to reload circuit class", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create circuit class"})
	}
	if err := attachClassCounts(db, &class); err != nil {
		log.Error("Failed to compute circuit class counts", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create circuit class"})
	}

	log.Info("Circuit class created",
		zap.String("circuit_class_id", strconv.FormatUint(uint64(class.ID), 10)),
		zap.String("name", class.Name),
		zap.Int("properties", len(defs)))
	prometheus.RecordCircuitClassOperation("create")
	return c.JSON(http.StatusCreated, echo.Map{"content": class})
}

// UpdateCircuitClass handles a full schema replacement
func UpdateCircuitClass(c echo.Context) error {
	return updateCircuitClass(c, false)
}

// PatchCircuitClass handles a partial update; absent fields keep their
// stored values
func PatchCircuitClass(c echo.Context) error {
	return updateCircuitClass(c, true)
}

func updateCircuitClass(c echo.Context, partial bool) error {
	log := logger.FromEcho(c)

	claims, ok := middleware.GetUserClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": apierrors.CodeAuthenticationRequired})
	}

	id := c.Param("id")
	db := database.GetDB()

	var class model.CircuitClass
	if err := preloadSchema(db).Where("member_id = ?", claims.MemberID).First(&class, id).Error; err != nil {
		log.Warn("Circuit class not found for update", zap.String("circuit_class_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": apierrors.CodeCircuitClassNotFound})
	}

	var body map[string]any
	if err := c.Bind(&body); err != nil {
		log.Error("Invalid request data", zap.String("circuit_class_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": apierrors.CodeInvalidRequestBody})
	}

	fieldErrs := apierrors.FieldErrors{}

	name := class.Name
	if _, sent := body["name"]; sent || !partial {
		cleaned, code, err := validateClassName(db, claims.MemberID, body["name"], class.ID)
		if err != nil {
			log.Error("Failed to check circuit class name", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update circuit class"})
		}
		if code != "" {
			fieldErrs.Add("name", code)
		} else {
			name = cleaned
		}
	}

	var defs []propschema.Definition
	replaceSchema := false
	if _, sent := body["properties"]; sent || !partial {
		replaceSchema = true
		parsed, code := propschema.ParseDefinitions(body["properties"])
		if code != "" {
			fieldErrs.Add("properties", code)
		} else {
			defs = parsed

			// With live circuits the schema may only grow: every current
			// key must survive into the new schema.
			live, err := liveCircuitCount(db, class.ID)
			if err != nil {
				log.Error("Failed to count live circuits", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update circuit class"})
			}
			if live > 0 {
				if missing, ok := propschema.CheckEvolution(class.PropertyKeys(), defs); !ok {
					log.Warn("Schema shrink rejected",
						zap.String("circuit_class_id", id),
						zap.String("missing_key", missing),
						zap.Int64("live_circuits", live))
					fieldErrs.Add("properties", propschema.CodeSchemaShrink)
				}
			}
		}
	}

	if fieldErrs.Any() {
		log.Warn("Circuit class update rejected", zap.Any("errors", fieldErrs))
		prometheus.RecordValidationFailure("circuit_class")
		return c.JSON(fieldErrs.Status(), echo.Map{"errors": fieldErrs.Details()})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	// Tombstoning the old schema and writing the new one happen in one
	// transaction so no intermediate state is observable
	err := db.Transaction(func(tx *gorm.DB) error {
		class.Name = name
		if err := tx.Model(&model.CircuitClass{}).Where("id = ?", class.ID).
			Update("name", name).Error; err != nil {
			return err
		}
		if !replaceSchema {
			return nil
		}
		if err := tx.Where("circuit_class_id = ?", class.ID).Delete(&model.Property{}).Error; err != nil {
			return err
		}
		for _, def := range defs {
			property := model.Property{
				CircuitClassID: class.ID,
				PropertyTypeID: uint(def.Kind),
				Key:            def.Key,
				Required:       def.Required,
			}
			if err := tx.Create(&property).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error("Failed to update circuit class", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update circuit class"})
	}

	class.Properties = nil
	if err := preloadSchema(db).First(&class, class.ID).Error; err != nil {
		log.Error("Failed to reload circuit class", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update circuit class"})
	}
	if err := attachClassCounts(db, &class); err != nil {
		log.Error("Failed to compute circuit class counts", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update circuit class"})
	}

	log.Info("Circuit class updated",
		zap.String("circuit_class_id", id),
		zap.String("name", class.Name),
		zap.Bool("schema_replaced", replaceSchema))
	prometheus.RecordCircuitClassOperation("update")
	return c.JSON(http.StatusOK, echo.Map{"content": class})
}

// DeleteCircuitClass handles a guarded soft delete with schema cascade
func DeleteCircuitClass(c echo.Context) error {
	log := logger.FromEcho(c)

	claims, ok := middleware.GetUserClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": apierrors.CodeAuthenticationRequired})
	}

	id := c.Param("id")
	db := database.GetDB()

	var class model.CircuitClass
	if err := db.Where("member_id = ?", claims.MemberID).First(&class, id).Error; err != nil {
		log.Warn("Circuit class not found for deletion", zap.String("circuit_class_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": apierrors.CodeCircuitClassNotFound})
	}

	live, err := liveCircuitCount(db, class.ID)
	if err != nil {
		log.Error("Failed to count live circuits", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete circuit class"})
	}
	if live > 0 {
		log.Warn("Circuit class deletion denied, live circuits exist",
			zap.String("circuit_class_id", id),
			zap.Int64("live_circuits", live))
		return c.JSON(http.StatusForbidden, echo.Map{
			"error":   apierrors.CodeCircuitClassHasCircuits,
			"message": apierrors.Message(apierrors.CodeCircuitClassHasCircuits),
		})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	// Cascade: the schema rows are tombstoned with the class
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("circuit_class_id = ?", class.ID).Delete(&model.Property{}).Error; err != nil {
			return err
		}
		return tx.Delete(&class).Error
	})
	if err != nil {
		log.Error("Failed to delete circuit class", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete circuit class"})
	}

	log.Info("Circuit class deleted", zap.String("circuit_class_id", id))
	prometheus.RecordCircuitClassOperation("delete")
	return c.NoContent(http.StatusNoContent)
}
