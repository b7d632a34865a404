package handler

import (
	"encoding/json"
	"errors"
	"math"
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
	"circuit-service/pkg/jwtutil"
	"circuit-service/pkg/logger"
	"circuit-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	maxGroupNameLength    = 250
	maxHandOffPointLength = 20
	maxReferenceLength    = 100

	// Attempts before giving up when concurrent creates race for the same
	// reference number.
	referenceNumberRetries = 3
)

var circuitFilters = listfilter.Allowed{
	Fields: map[string]listfilter.Field{
		"address_id":                  {Column: "address_id", Kind: listfilter.Number},
		"circuit_class_id":            {Column: "circuit_class_id", Kind: listfilter.Number},
		"circuit_class__name":         {Column: `"CircuitClass".name`, Kind: listfilter.String},
		"created":                     {Column: "created_at", Kind: listfilter.String},
		"customer_address_id":         {Column: "customer_address_id", Kind: listfilter.Number},
		"decommission_date":           {Column: "decommission_date", Kind: listfilter.String},
		"description":                 {Column: "description", Kind: listfilter.String},
		"group_name":                  {Column: "group_name", Kind: listfilter.String},
		"id":                          {Column: "id", Kind: listfilter.Number},
		"install_date":                {Column: "install_date", Kind: listfilter.String},
		"reference":                   {Column: "reference", Kind: listfilter.String},
		"reference_number":            {Column: "reference_number", Kind: listfilter.Number},
		"service_provider_address_id": {Column: "service_provider_address_id", Kind: listfilter.Number},
		"updated":                     {Column: "updated_at", Kind: listfilter.String},
	},
	Ordering: []string{
		"circuit_class__name", "created", "group_name", "id",
		"install_date", "reference", "reference_number", "updated",
	},
	DefaultOrder: "reference_number",
}

var installDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// circuitValidation runs the per-field checks for circuit create and
// update payloads, collecting every failure rather than stopping at the
// first. Dependent fields skip their cross-checks when the field they
// depend on already failed.
type circuitValidation struct {
	c        echo.Context
	db       *gorm.DB
	claims   *jwtutil.UserClaims
	body     map[string]any
	existing *model.Circuit
	partial  bool

	errs  apierrors.FieldErrors
	out   model.Circuit
	class *model.CircuitClass
	fatal error
}

func newCircuitValidation(c echo.Context, db *gorm.DB, claims *jwtutil.UserClaims, body map[string]any, existing *model.Circuit, partial bool) *circuitValidation {
	v := &circuitValidation{
		c:        c,
		db:       db,
		claims:   claims,
		body:     body,
		existing: existing,
		partial:  partial,
		errs:     apierrors.FieldErrors{},
	}
	if existing != nil {
		v.out = *existing
	} else {
		v.out.AddressID = claims.AddressID
		v.out.Properties = datatypes.JSONMap{}
	}
	return v
}

// submitted returns the raw value for a field and whether validation
// should run for it. Partial updates skip absent fields; full writes
// treat absence as an explicit null.
func (v *circuitValidation) submitted(field string) (any, bool) {
	raw, ok := v.body[field]
	if !ok && v.partial {
		return nil, false
	}
	return raw, true
}

func (v *circuitValidation) run() {
	v.validateBandwidth()
	v.validateCircuitClass()
	v.validateCustomerAddress()
	v.validateDescription()
	v.validateGroupName()
	v.validateHandOffPoint()
	v.validateInstallDate()
	v.validateDecommissionDate()
	v.validateProperties()
	v.validateReference()
	v.validateProviderAddress()
}

func (v *circuitValidation) validateBandwidth() {
	raw, ok := v.submitted("bandwidth")
	if !ok {
		return
	}
	// Only null clears the field; 0 is a real bandwidth.
	if raw == nil {
		v.out.Bandwidth = nil
		return
	}
	n, good := asInt(raw)
	if !good {
		v.errs.Add("bandwidth", apierrors.CodeBandwidthNotInteger)
		return
	}
	v.out.Bandwidth = &n
}

func (v *circuitValidation) validateCircuitClass() {
	// The class is fixed at creation. Updates keep the stored class, whose
	// schema is still needed for the properties check; a submitted
	// circuit_class_id is ignored, since reassignment would leave the
	// stored property map unvalidated against the new class's schema.
	if v.existing != nil {
		v.loadClass(v.out.CircuitClassID)
		return
	}
	raw := v.body["circuit_class_id"]
	if raw == nil {
		v.errs.Add("circuit_class_id", apierrors.CodeCircuitClassIDRequired)
		return
	}
	id, good := asInt(raw)
	if !good || id <= 0 {
		v.errs.Add("circuit_class_id", apierrors.CodeCircuitClassIDInvalid)
		return
	}
	v.loadClass(uint(id))
}

func (v *circuitValidation) loadClass(id uint) {
	var class model.CircuitClass
	err := preloadSchema(v.db).Where("member_id = ?", v.claims.MemberID).First(&class, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		v.errs.Add("circuit_class_id", apierrors.CodeCircuitClassUnknown)
		return
	}
	if err != nil {
		v.fatal = err
		return
	}
	v.class = &class
	v.out.CircuitClassID = class.ID
}

func (v *circuitValidation) validateCustomerAddress() {
	v.validateLinkedAddress("customer_address_id", &v.out.CustomerAddressID,
		apierrors.CodeCustomerAddressNotInteger, apierrors.CodeCustomerAddressNotLinked)
}

func (v *circuitValidation) validateProviderAddress() {
	v.validateLinkedAddress("service_provider_address_id", &v.out.ServiceProviderAddressID,
		apierrors.CodeProviderAddressNotInteger, apierrors.CodeProviderAddressNotLinked)
}

// validateLinkedAddress checks an optional counterparty address: it must
// be an integer and, unless it is the caller's own address, resolvable
// through the membership directory.
func (v *circuitValidation) validateLinkedAddress(field string, dst **uint, notIntCode, notLinkedCode string) {
	raw, ok := v.submitted(field)
	if !ok {
		return
	}
	if isFalsy(raw) {
		*dst = nil
		return
	}
	n, good := asInt(raw)
	if !good || n <= 0 {
		v.errs.Add(field, notIntCode)
		return
	}
	id := uint(n)
	if id != v.claims.AddressID && directory != nil {
		linked, err := directory.AddressExists(v.c.Request().Context(), middleware.GetToken(v.c), id)
		if err != nil {
			logger.FromEcho(v.c).Warn("Membership address lookup failed",
				zap.String("field", field), zap.Uint("address_id", id), zap.Error(err))
			v.errs.Add(field, notLinkedCode)
			return
		}
		if !linked {
			v.errs.Add(field, notLinkedCode)
			return
		}
	}
	*dst = &id
}

func (v *circuitValidation) validateDescription() {
	raw, ok := v.submitted("description")
	if !ok {
		return
	}
	if raw == nil {
		v.out.Description = ""
		return
	}
	v.out.Description = stringValue(raw)
}

func (v *circuitValidation) validateGroupName() {
	raw, ok := v.submitted("group_name")
	if !ok {
		return
	}
	name := ""
	if raw != nil {
		name = stringValue(raw)
	}
	if len(name) > maxGroupNameLength {
		v.errs.Add("group_name", apierrors.CodeGroupNameTooLong)
		return
	}
	v.out.GroupName = name
}

func (v *circuitValidation) validateHandOffPoint() {
	raw, ok := v.submitted("hand_off_point")
	if !ok {
		return
	}
	point := ""
	if raw != nil {
		point = stringValue(raw)
	}
	if len(point) > maxHandOffPointLength {
		v.errs.Add("hand_off_point", apierrors.CodeHandOffPointTooLong)
		return
	}
	v.out.HandOffPoint = point
}

func (v *circuitValidation) validateInstallDate() {
	raw, ok := v.submitted("install_date")
	if !ok {
		return
	}
	if isFalsy(raw) {
		v.errs.Add("install_date", apierrors.CodeInstallDateRequired)
		return
	}
	t, good := parseDate(raw)
	if !good {
		v.errs.Add("install_date", apierrors.CodeInstallDateInvalid)
		return
	}
	v.out.InstallDate = t
}

func (v *circuitValidation) validateDecommissionDate() {
	raw, ok := v.submitted("decommission_date")
	if !ok {
		return
	}
	if isFalsy(raw) {
		v.out.DecommissionDate = nil
		return
	}
	t, good := parseDate(raw)
	if !good {
		v.errs.Add("decommission_date", apierrors.CodeDecommissionDateInvalid)
		return
	}
	// The ordering check is skipped when install_date itself failed; the
	// request is rejected either way.
	if !v.errs.Has("install_date") && t.Before(v.out.InstallDate) {
		v.errs.Add("decommission_date", apierrors.CodeDecommissionBeforeInstall)
		return
	}
	v.out.DecommissionDate = &t
}

func (v *circuitValidation) validateProperties() {
	// Without a resolved class there is no schema to validate against.
	if v.errs.Has("circuit_class_id") || v.class == nil {
		return
	}
	raw, ok := v.submitted("properties")
	if !ok {
		return
	}

	defs := definitionsFromProperties(v.class.Properties)

	var input map[string]any
	switch {
	case raw == nil:
		// A full rewrite of an existing circuit must resubmit the map when
		// the schema has keys; a fresh create starts from an empty map.
		if v.existing != nil && !v.partial && len(defs) > 0 {
			v.errs.Add("properties", propschema.CodeValuesNotObject)
			return
		}
	default:
		m, good := raw.(map[string]any)
		if !good {
			v.errs.Add("properties", propschema.CodeValuesNotObject)
			return
		}
		input = m
	}

	cleaned, code := propschema.ValidateValues(defs, input)
	if code != "" {
		v.errs.Add("properties", code)
		return
	}
	v.out.Properties = datatypes.JSONMap(cleaned)
}

func (v *circuitValidation) validateReference() {
	raw, ok := v.submitted("reference")
	if !ok {
		return
	}
	ref := ""
	if raw != nil {
		ref = stringValue(raw)
	}
	if len(ref) > maxReferenceLength {
		v.errs.Add("reference", apierrors.CodeReferenceTooLong)
		return
	}
	v.out.Reference = ref
}

// asInt accepts JSON numbers without a fractional part and numeric
// strings.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	}
	return 0, false
}

// isFalsy reports the values the optional address fields and date fields
// treat as "not provided".
func isFalsy(v any) bool {
	switch n := v.(type) {
	case nil:
		return true
	case string:
		return n == ""
	case bool:
		return !n
	case float64:
		return n == 0
	case int:
		return n == 0
	}
	return false
}

func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return coerceAny(v)
}

func coerceAny(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return strings.Trim(string(b), `"`)
}

func parseDate(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range installDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// createWithReferenceNumber allocates the next per-address reference
// number and inserts the circuit in one transaction. The partial unique
// index on (address_id, reference_number) turns a concurrent allocation
// of the same number into a duplicate key error, which is retried with a
// fresh number.
func createWithReferenceNumber(db *gorm.DB, circuit *model.Circuit) error {
	var err error
	for attempt := 0; attempt < referenceNumberRetries; attempt++ {
		err = db.Transaction(func(tx *gorm.DB) error {
			var next int
			if err := tx.Model(&model.Circuit{}).
				Where("address_id = ?", circuit.AddressID).
				Select("COALESCE(MAX(reference_number), 0) + 1").
				Scan(&next).Error; err != nil {
				return err
			}
			circuit.ReferenceNumber = next
			return tx.Create(circuit).Error
		})
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		circuit.ID = 0
	}
	return err
}

// ListCircuits handles retrieving the circuits visible to the caller
func ListCircuits(c echo.Context) error {
	log := logger.FromEcho(c)

	claims, ok := middleware.GetUserClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": apierrors.CodeAuthenticationRequired})
	}

	addresses, err := callerAddressScope(c, claims)
	if err != nil {
		log.Error("Failed to resolve caller address scope", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve circuits"})
	}

	filters := listfilter.Parse(c.QueryParams(), circuitFilters)

	defer prometheus.TrackDBOperation("query")(time.Now())

	// The class is joined so circuit_class__name can be filtered and
	// ordered on alongside the circuit's own columns.
	db := database.GetDB()
	query := filters.Apply(scopeCircuits(db.Model(&model.Circuit{}).Joins("CircuitClass"), addresses))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Error("Failed to count circuits", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve circuits"})
	}

	var circuits []model.Circuit
	if err := filters.ApplyPage(query).Find(&circuits).Error; err != nil {
		log.Error("Failed to list circuits", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve circuits"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"content":   circuits,
		"_metadata": filters.MetadataFor(total),
	})
}

// GetCircuit handles reading a single circuit by ID
func GetCircuit(c echo.Context) error {
	log := logger.FromEcho(c)

	claims, ok := middleware.GetUserClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": apierrors.CodeAuthenticationRequired})
	}

	id := c.Param("id")
	db := database.GetDB()

	var circuit model.Circuit
	if err := db.Preload("CircuitClass").First(&circuit, id).Error; err != nil {
		log.Warn("Circuit not found", zap.String("circuit_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": apierrors.CodeCircuitNotFound})
	}

	addresses, err := callerAddressScope(c, claims)
	if err != nil {
		log.Error("Failed to resolve caller address scope", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve circuit"})
	}
	if !circuitVisible(&circuit, addresses) {
		log.Warn("Circuit not visible to caller",
			zap.String("circuit_id", id),
			zap.Uint("address_id", claims.AddressID))
		return c.JSON(http.StatusForbidden, echo.Map{
			"error":   apierrors.CodeCircuitNotVisible,
			"message": apierrors.Message(apierrors.CodeCircuitNotVisible),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"content": circuit})
}

// CreateCircuit handles creating a circuit owned by the caller's address
func CreateCircuit(c echo.Context) error {
	log := logger.FromEcho(c)

	claims, ok := middleware.GetUserClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": apierrors.CodeAuthenticationRequired})
	}

	var body map[string]any
	if err := c.Bind(&body); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": apierrors.CodeInvalidRequestBody})
	}

	db := database.GetDB()
	v := newCircuitValidation(c, db, claims, body, nil, false)
	v.run()
	if v.fatal != nil {
		log.Error("Circuit validation failed", zap.Error(v.fatal))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create circuit"})
	}
	if v.errs.Any() {
		log.Warn("Circuit creation rejected", zap.Any("errors", v.errs))
		prometheus.RecordValidationFailure("circuit")
		return c.JSON(v.errs.Status(), echo.Map{"errors": v.errs.Details()})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	circuit := v.out
	if err := createWithReferenceNumber(db, &circuit); err != nil {
		log.Error("Failed to create circuit", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create circuit"})
	}

	if err := db.Preload("CircuitClass").First(&circuit, circuit.ID).Error; err != nil {
		log.Error("Failed to reload circuit", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create circuit"})
	}

	log.Info("Circuit created",
		zap.Uint("circuit_id", circuit.ID),
		zap.Uint("address_id", circuit.AddressID),
		zap.Int("reference_number", circuit.ReferenceNumber))
	prometheus.RecordCircuitOperation("create")
	return c.JSON(http.StatusCreated, echo.Map{"content": circuit})
}

// UpdateCircuit handles a full rewrite of an owned circuit
func UpdateCircuit(c echo.Context) error {
	return updateCircuit(c, false)
}

// PatchCircuit handles a partial update; absent fields keep their stored
// values
func PatchCircuit(c echo.Context) error {
	return updateCircuit(c, true)
}

func updateCircuit(c echo.Context, partial bool) error {
	log := logger.FromEcho(c)

	claims, ok := middleware.GetUserClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": apierrors.CodeAuthenticationRequired})
	}

	id := c.Param("id")
	db := database.GetDB()

	// Only the owning address may modify a circuit; for counterparties the
	// record simply does not exist.
	var existing model.Circuit
	if err := db.Where("address_id = ?", claims.AddressID).First(&existing, id).Error; err != nil {
		log.Warn("Circuit not found for update", zap.String("circuit_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": apierrors.CodeCircuitNotFound})
	}

	var body map[string]any
	if err := c.Bind(&body); err != nil {
		log.Error("Invalid request data", zap.String("circuit_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": apierrors.CodeInvalidRequestBody})
	}

	v := newCircuitValidation(c, db, claims, body, &existing, partial)
	v.run()
	if v.fatal != nil {
		log.Error("Circuit validation failed", zap.Error(v.fatal))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update circuit"})
	}
	if v.errs.Any() {
		log.Warn("Circuit update rejected", zap.String("circuit_id", id), zap.Any("errors", v.errs))
		prometheus.RecordValidationFailure("circuit")
		return c.JSON(v.errs.Status(), echo.Map{"errors": v.errs.Details()})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	circuit := v.out
	if err := db.Save(&circuit).Error; err != nil {
		log.Error("Failed to update circuit", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update circuit"})
	}

	if err := db.Preload("CircuitClass").First(&circuit, circuit.ID).Error; err != nil {
		log.Error("Failed to reload circuit", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update circuit"})
	}

	log.Info("Circuit updated", zap.String("circuit_id", id))
	prometheus.RecordCircuitOperation("update")
	return c.JSON(http.StatusOK, echo.Map{"content": circuit})
}

// DeleteCircuit handles soft deleting an owned circuit
func DeleteCircuit(c echo.Context) error {
	log := logger.FromEcho(c)

	claims, ok := middleware.GetUserClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": apierrors.CodeAuthenticationRequired})
	}

	id := c.Param("id")
	db := database.GetDB()

	var circuit model.Circuit
	if err := db.Where("address_id = ?", claims.AddressID).First(&circuit, id).Error; err != nil {
		log.Warn("Circuit not found for deletion", zap.String("circuit_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": apierrors.CodeCircuitNotFound})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	if err := db.Delete(&circuit).Error; err != nil {
		log.Error("Failed to delete circuit", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete circuit"})
	}

	log.Info("Circuit deleted", zap.String("circuit_id", id))
	prometheus.RecordCircuitOperation("delete")
	return c.NoContent(http.StatusNoContent)
}
