package handler

import (
	"net/http"
	"strings"
	"testing"

	"circuit-service/internal/apierrors"
	"circuit-service/internal/propschema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCircuitAssignsSequentialReferenceNumbers(t *testing.T) {
	setupTest(t)
	claims := testClaims(1, 10)
	classID := createClass(t, claims, "Fibre", fibreProperties())

	body := func() map[string]any {
		return map[string]any{
			"circuit_class_id": classID,
			"install_date":     "2024-01-15",
			"properties":       map[string]any{"speed-mbps": 100},
		}
	}

	_, rec := createCircuit(t, claims, body())
	assert.Equal(t, float64(1), content(t, rec)["reference_number"])

	_, rec = createCircuit(t, claims, body())
	assert.Equal(t, float64(2), content(t, rec)["reference_number"])

	_, rec = createCircuit(t, claims, body())
	assert.Equal(t, float64(3), content(t, rec)["reference_number"])

	// The sequence is per owning address.
	other := testClaims(1, 11)
	_, rec = createCircuit(t, other, body())
	assert.Equal(t, float64(1), content(t, rec)["reference_number"])
}

func TestCreateCircuitEnforcesSchema(t *testing.T) {
	setupTest(t)
	claims := testClaims(1, 10)
	classID := createClass(t, claims, "Fibre", fibreProperties())

	// The required property must be present.
	c, rec := newRequest(t, http.MethodPost, "/api/circuits", map[string]any{
		"circuit_class_id": classID,
		"install_date":     "2024-01-15",
		"properties":       map[string]any{},
	}, claims)
	require.NoError(t, CreateCircuit(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, propschema.CodeRequiredKeyMissing, fieldCode(t, rec, "properties"))

	// Absent properties behave like an empty map on create.
	c, rec = newRequest(t, http.MethodPost, "/api/circuits", map[string]any{
		"circuit_class_id": classID,
		"install_date":     "2024-01-15",
	}, claims)
	require.NoError(t, CreateCircuit(c))
	assert.Equal(t, propschema.CodeRequiredKeyMissing, fieldCode(t, rec, "properties"))

	// A conforming map is stored; the optional key is padded with null.
	_, created := createCircuit(t, claims, map[string]any{
		"circuit_class_id": classID,
		"install_date":     "2024-01-15",
		"properties":       map[string]any{"speed-mbps": 100, "stray": "dropped"},
	})
	props := content(t, created)["properties"].(map[string]any)
	assert.Equal(t, float64(100), props["speed-mbps"])
	assert.Contains(t, props, "poles")
	assert.Nil(t, props["poles"])
	assert.NotContains(t, props, "stray")
}

func TestCreateCircuitPropertyTypeRejections(t *testing.T) {
	setupTest(t)
	claims := testClaims(1, 10)
	classID := createClass(t, claims, "Managed", []map[string]any{
		{"property_type_id": 2, "key": "speed-mbps", "required": true},
		{"property_type_id": 3, "key": "redundant", "required": false},
		{"property_type_id": 4, "key": "portal", "required": false},
		{"property_type_id": 5, "key": "allocation", "required": false},
	})

	base := func(overrides map[string]any) map[string]any {
		props := map[string]any{"speed-mbps": 100}
		for k, v := range overrides {
			props[k] = v
		}
		return map[string]any{
			"circuit_class_id": classID,
			"install_date":     "2024-01-15",
			"properties":       props,
		}
	}

	tests := []struct {
		name string
		body map[string]any
		code string
	}{
		{"boolean value on numeric", base(map[string]any{"speed-mbps": true}), propschema.CodeNotNumeric},
		{"string on boolean", base(map[string]any{"redundant": "yes"}), propschema.CodeNotBoolean},
		{"relative url", base(map[string]any{"portal": "NOT_A_URL"}), propschema.CodeNotURL},
		{"bad network", base(map[string]any{"allocation": "999.1.1.1"}), propschema.CodeNotNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newRequest(t, http.MethodPost, "/api/circuits", tt.body, claims)
			require.NoError(t, CreateCircuit(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, fieldCode(t, rec, "properties"))
		})
	}

	// Numeric strings and decimals pass; so do real URLs and networks.
	createCircuit(t, claims, base(map[string]any{
		"speed-mbps": "19.99",
		"redundant":  true,
		"portal":     "https://portal.example.com/status",
		"allocation": "10.0.0.0/8",
	}))
}

func TestCreateCircuitFieldValidation(t *testing.T) {
	setupTest(t)
	claims := testClaims(1, 10)
	classID := createClass(t, claims, "Fibre", fibreProperties())

	valid := func() map[string]any {
		return map[string]any{
			"circuit_class_id": classID,
			"install_date":     "2024-01-15",
			"properties":       map[string]any{"speed-mbps": 100},
		}
	}

	tests := []struct {
		name  string
		tweak func(map[string]any)
		field string
		code  string
	}{
		{"missing class", func(b map[string]any) { delete(b, "circuit_class_id") },
			"circuit_class_id", apierrors.CodeCircuitClassIDRequired},
		{"class not integer", func(b map[string]any) { b["circuit_class_id"] = "fibre" },
			"circuit_class_id", apierrors.CodeCircuitClassIDInvalid},
		{"class unknown", func(b map[string]any) { b["circuit_class_id"] = 9999 },
			"circuit_class_id", apierrors.CodeCircuitClassUnknown},
		{"missing install date", func(b map[string]any) { delete(b, "install_date") },
			"install_date", apierrors.CodeInstallDateRequired},
		{"bad install date", func(b map[string]any) { b["install_date"] = "not-a-date" },
			"install_date", apierrors.CodeInstallDateInvalid},
		{"bad decommission date", func(b map[string]any) { b["decommission_date"] = "never" },
			"decommission_date", apierrors.CodeDecommissionDateInvalid},
		{"decommission before install", func(b map[string]any) { b["decommission_date"] = "2023-12-31" },
			"decommission_date", apierrors.CodeDecommissionBeforeInstall},
		{"bandwidth not integer", func(b map[string]any) { b["bandwidth"] = "fast" },
			"bandwidth", apierrors.CodeBandwidthNotInteger},
		{"bandwidth fractional", func(b map[string]any) { b["bandwidth"] = 10.5 },
			"bandwidth", apierrors.CodeBandwidthNotInteger},
		{"group name too long", func(b map[string]any) { b["group_name"] = strings.Repeat("g", 251) },
			"group_name", apierrors.CodeGroupNameTooLong},
		{"hand off point too long", func(b map[string]any) { b["hand_off_point"] = strings.Repeat("h", 21) },
			"hand_off_point", apierrors.CodeHandOffPointTooLong},
		{"reference too long", func(b map[string]any) { b["reference"] = strings.Repeat("r", 101) },
			"reference", apierrors.CodeReferenceTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := valid()
			tt.tweak(body)
			c, rec := newRequest(t, http.MethodPost, "/api/circuits", body, claims)
			require.NoError(t, CreateCircuit(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, fieldCode(t, rec, tt.field))
		})
	}

	// A decommission date equal to the install date is the boundary case
	// and is accepted.
	body := valid()
	body["decommission_date"] = "2024-01-15"
	createCircuit(t, claims, body)
}

func TestCircuitBandwidthZeroIsStored(t *testing.T) {
	setupTest(t)
	claims := testClaims(1, 10)
	classID := createClass(t, claims, "Fibre", fibreProperties())

	// Zero is a real bandwidth, not an absent one.
	circuitID, rec := createCircuit(t, claims, map[string]any{
		"circuit_class_id": classID,
		"install_date":     "2024-01-15",
		"bandwidth":        0,
		"properties":       map[string]any{"speed-mbps": 100},
	})
	assert.Equal(t, float64(0), content(t, rec)["bandwidth"])

	// Patching from a non-zero value back down to zero keeps the zero.
	c, rec2 := newRequest(t, http.MethodPatch, "/api/circuits/1",
		map[string]any{"bandwidth": 100}, claims)
	withID(c, circuitID)
	require.NoError(t, PatchCircuit(c))
	require.Equal(t, http.StatusOK, rec2.Code, rec2.Body.String())

	c, rec2 = newRequest(t, http.MethodPatch, "/api/circuits/1",
		map[string]any{"bandwidth": 0}, claims)
	withID(c, circuitID)
	require.NoError(t, PatchCircuit(c))
	require.Equal(t, http.StatusOK, rec2.Code, rec2.Body.String())
	assert.Equal(t, float64(0), content(t, rec2)["bandwidth"])

	// Null still clears the field.
	c, rec2 = newRequest(t, http.MethodPatch, "/api/circuits/1",
		map[string]any{"bandwidth": nil}, claims)
	withID(c, circuitID)
	require.NoError(t, PatchCircuit(c))
	require.Equal(t, http.StatusOK, rec2.Code, rec2.Body.String())
	assert.Nil(t, content(t, rec2)["bandwidth"])
}

func TestCreateCircuitValidationCollectsAllFailures(t *testing.T) {
	setupTest(t)
	claims := testClaims(1, 10)
	classID := createClass(t, claims, "Fibre", fibreProperties())

	c, rec := newRequest(t, http.MethodPost, "/api/circuits", map[string]any{
		"circuit_class_id": classID,
		"bandwidth":        "fast",
		"install_date":     "not-a-date",
		"properties":       map[string]any{},
	}, claims)
	require.NoError(t, CreateCircuit(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, apierrors.CodeBandwidthNotInteger, fieldCode(t, rec, "bandwidth"))
	assert.Equal(t, apierrors.CodeInstallDateInvalid, fieldCode(t, rec, "install_date"))
	assert.Equal(t, propschema.CodeRequiredKeyMissing, fieldCode(t, rec, "properties"))
}

func TestCreateCircuitClassOfAnotherMemberIsUnknown(t *testing.T) {
	setupTest(t)
	owner := testClaims(1, 10)
	classID := createClass(t, owner, "Fibre", fibreProperties())

	stranger := testClaims(2, 20)
	c, rec := newRequest(t, http.MethodPost, "/api/circuits", map[string]any{
		"circuit_class_id": classID,
		"install_date":     "2024-01-15",
		"properties":       map[string]any{"speed-mbps": 100},
	}, stranger)
	require.NoError(t, CreateCircuit(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apierrors.CodeCircuitClassUnknown, fieldCode(t, rec, "circuit_class_id"))
}

func TestCreateCircuitCounterpartyAddresses(t *testing.T) {
	_, dir := setupTest(t)
	dir.addresses[77] = true
	claims := testClaims(1, 10)
	classID := createClass(t, claims, "Fibre", fibreProperties())

	base := func() map[string]any {
		return map[string]any{
			"circuit_class_id": classID,
			"install_date":     "2024-01-15",
			"properties":       map[string]any{"speed-mbps": 100},
		}
	}

	// A linked address resolves through the membership directory.
	body := base()
	body["customer_address_id"] = 77
	_, rec := createCircuit(t, claims, body)
	assert.Equal(t, float64(77), content(t, rec)["customer_address_id"])

	// The caller's own address needs no directory lookup.
	body = base()
	body["service_provider_address_id"] = 10
	createCircuit(t, claims, body)

	// Unknown addresses are rejected.
	body = base()
	body["customer_address_id"] = 404
	c, rec := newRequest(t, http.MethodPost, "/api/circuits", body, claims)
	require.NoError(t, CreateCircuit(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apierrors.CodeCustomerAddressNotLinked, fieldCode(t, rec, "customer_address_id"))

	body = base()
	body["service_provider_address_id"] = "head-end"
	c, rec = newRequest(t, http.MethodPost, "/api/circuits", body, claims)
	require.NoError(t, CreateCircuit(c))
	assert.Equal(t, apierrors.CodeProviderAddressNotInteger, fieldCode(t, rec, "service_provider_address_id"))
}

func TestGetCircuitVisibility(t *testing.T) {
	_, dir := setupTest(t)
	dir.addresses[20] = true
	owner := testClaims(1, 10)
	classID := createClass(t, owner, "Fibre", fibreProperties())

	circuitID, _ := createCircuit(t, owner, map[string]any{
		"circuit_class_id":    classID,
		"install_date":        "2024-01-15",
		"customer_address_id": 20,
		"properties":          map[string]any{"speed-mbps": 100},
	})

	// Owner reads it.
	c, rec := newRequest(t, http.MethodGet, "/api/circuits/1", nil, owner)
	withID(c, circuitID)
	require.NoError(t, GetCircuit(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// The customer counterparty reads it too, from another member.
	customer := testClaims(2, 20)
	c, rec = newRequest(t, http.MethodGet, "/api/circuits/1", nil, customer)
	withID(c, circuitID)
	require.NoError(t, GetCircuit(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// An unrelated caller is refused.
	stranger := testClaims(3, 30)
	c, rec = newRequest(t, http.MethodGet, "/api/circuits/1", nil, stranger)
	withID(c, circuitID)
	require.NoError(t, GetCircuit(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, apierrors.CodeCircuitNotVisible, decodeBody(t, rec)["error"])

	// A global-active user sees circuits of every address in the member.
	dir.member[1] = []uint{10, 11}
	global := testClaims(1, 11)
	global.IsGlobal = true
	global.GlobalActive = true
	c, rec = newRequest(t, http.MethodGet, "/api/circuits/1", nil, global)
	withID(c, circuitID)
	require.NoError(t, GetCircuit(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListCircuitsScopedToCaller(t *testing.T) {
	_, dir := setupTest(t)
	dir.addresses[20] = true
	owner := testClaims(1, 10)
	classID := createClass(t, owner, "Fibre", fibreProperties())

	createCircuit(t, owner, map[string]any{
		"circuit_class_id":    classID,
		"install_date":        "2024-01-15",
		"customer_address_id": 20,
		"group_name":          "core",
		"properties":          map[string]any{"speed-mbps": 100},
	})
	createCircuit(t, owner, map[string]any{
		"circuit_class_id": classID,
		"install_date":     "2024-02-01",
		"group_name":       "edge",
		"properties":       map[string]any{"speed-mbps": 40},
	})

	c, rec := newRequest(t, http.MethodGet, "/api/circuits", nil, owner)
	require.NoError(t, ListCircuits(c))
	assert.Len(t, contentList(t, rec), 2)

	// The customer sees only the circuit naming their address.
	customer := testClaims(2, 20)
	c, rec = newRequest(t, http.MethodGet, "/api/circuits", nil, customer)
	require.NoError(t, ListCircuits(c))
	list := contentList(t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "core", list[0].(map[string]any)["group_name"])

	// A stranger sees nothing.
	stranger := testClaims(3, 30)
	c, rec = newRequest(t, http.MethodGet, "/api/circuits", nil, stranger)
	require.NoError(t, ListCircuits(c))
	assert.Empty(t, contentList(t, rec))
}

func TestListCircuitsFiltersAndOrder(t *testing.T) {
	setupTest(t)
	claims := testClaims(1, 10)
	classID := createClass(t, claims, "Fibre", fibreProperties())

	for _, group := range []string{"core", "core", "edge"} {
		createCircuit(t, claims, map[string]any{
			"circuit_class_id": classID,
			"install_date":     "2024-01-15",
			"group_name":       group,
			"properties":       map[string]any{"speed-mbps": 100},
		})
	}

	c, rec := newRequest(t, http.MethodGet,
		"/api/circuits?search[group_name__icontains]=COR", nil, claims)
	require.NoError(t, ListCircuits(c))
	assert.Len(t, contentList(t, rec), 2)

	c, rec = newRequest(t, http.MethodGet, "/api/circuits?order=-reference_number", nil, claims)
	require.NoError(t, ListCircuits(c))
	list := contentList(t, rec)
	require.Len(t, list, 3)
	assert.Equal(t, float64(3), list[0].(map[string]any)["reference_number"])

	c, rec = newRequest(t, http.MethodGet, "/api/circuits?search[bogus]=1", nil, claims)
	require.NoError(t, ListCircuits(c))
	meta := decodeBody(t, rec)["_metadata"].(map[string]any)
	warnings := meta["warnings"].([]any)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "bogus")
}

func TestListCircuitsFilterByClassName(t *testing.T) {
	setupTest(t)
	claims := testClaims(1, 10)
	fibreID := createClass(t, claims, "Fibre", fibreProperties())
	copperID := createClass(t, claims, "Copper", []map[string]any{
		{"property_type_id": 1, "key": "pair-count", "required": true},
	})

	createCircuit(t, claims, map[string]any{
		"circuit_class_id": fibreID,
		"install_date":     "2024-01-15",
		"group_name":       "glass",
		"properties":       map[string]any{"speed-mbps": 100},
	})
	createCircuit(t, claims, map[string]any{
		"circuit_class_id": copperID,
		"install_date":     "2024-01-15",
		"group_name":       "metal",
		"properties":       map[string]any{"pair-count": "50"},
	})

	c, rec := newRequest(t, http.MethodGet,
		"/api/circuits?search[circuit_class__name__icontains]=fib", nil, claims)
	require.NoError(t, ListCircuits(c))
	list := contentList(t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "glass", list[0].(map[string]any)["group_name"])

	c, rec = newRequest(t, http.MethodGet, "/api/circuits?order=circuit_class__name", nil, claims)
	require.NoError(t, ListCircuits(c))
	list = contentList(t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, "metal", list[0].(map[string]any)["group_name"])
	assert.Equal(t, "glass", list[1].(map[string]any)["group_name"])
}

func TestUpdateCircuitFullRewrite(t *testing.T) {
	setupTest(t)
	claims := testClaims(1, 10)
	classID := createClass(t, claims, "Fibre", fibreProperties())

	circuitID, _ := createCircuit(t, claims, map[string]any{
		"circuit_class_id": classID,
		"install_date":     "2024-01-15",
		"bandwidth":        100,
		"description":      "primary uplink",
		"properties":       map[string]any{"speed-mbps": 100},
	})

	// A full rewrite must restate every field except the class, which is
	// fixed at creation; omitted optionals reset.
	c, rec := newRequest(t, http.MethodPut, "/api/circuits/1", map[string]any{
		"install_date": "2024-01-15",
		"properties":   map[string]any{"speed-mbps": 400},
	}, claims)
	withID(c, circuitID)
	require.NoError(t, UpdateCircuit(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	updated := content(t, rec)
	assert.Equal(t, float64(classID), updated["circuit_class_id"])
	assert.Nil(t, updated["bandwidth"])
	assert.Equal(t, "", updated["description"])
	assert.Equal(t, float64(400), updated["properties"].(map[string]any)["speed-mbps"])

	// Omitting the property map entirely on a full rewrite is rejected.
	c, rec = newRequest(t, http.MethodPut, "/api/circuits/1", map[string]any{
		"install_date": "2024-01-15",
	}, claims)
	withID(c, circuitID)
	require.NoError(t, UpdateCircuit(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, propschema.CodeValuesNotObject, fieldCode(t, rec, "properties"))
}

func TestUpdateCircuitKeepsClass(t *testing.T) {
	setupTest(t)
	claims := testClaims(1, 10)
	fibreID := createClass(t, claims, "Fibre", fibreProperties())
	copperID := createClass(t, claims, "Copper", []map[string]any{
		{"property_type_id": 1, "key": "pair-count", "required": true},
	})

	circuitID, _ := createCircuit(t, claims, map[string]any{
		"circuit_class_id": fibreID,
		"install_date":     "2024-01-15",
		"properties":       map[string]any{"speed-mbps": 100},
	})

	// A submitted class id on update is ignored; the stored map would
	// otherwise no longer match the schema it was validated against.
	c, rec := newRequest(t, http.MethodPatch, "/api/circuits/1",
		map[string]any{"circuit_class_id": copperID}, claims)
	withID(c, circuitID)
	require.NoError(t, PatchCircuit(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	patched := content(t, rec)
	assert.Equal(t, float64(fibreID), patched["circuit_class_id"])
	assert.Equal(t, float64(100), patched["properties"].(map[string]any)["speed-mbps"])

	// Property updates keep validating against the original class's schema.
	c, rec = newRequest(t, http.MethodPatch, "/api/circuits/1", map[string]any{
		"circuit_class_id": copperID,
		"properties":       map[string]any{"pair-count": "50"},
	}, claims)
	withID(c, circuitID)
	require.NoError(t, PatchCircuit(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, propschema.CodeRequiredKeyMissing, fieldCode(t, rec, "properties"))
}

func TestPatchCircuitKeepsAbsentFields(t *testing.T) {
	setupTest(t)
	claims := testClaims(1, 10)
	classID := createClass(t, claims, "Fibre", fibreProperties())

	circuitID, _ := createCircuit(t, claims, map[string]any{
		"circuit_class_id": classID,
		"install_date":     "2024-01-15",
		"bandwidth":        100,
		"properties":       map[string]any{"speed-mbps": 100},
	})

	c, rec := newRequest(t, http.MethodPatch, "/api/circuits/1",
		map[string]any{"description": "secondary uplink"}, claims)
	withID(c, circuitID)
	require.NoError(t, PatchCircuit(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	patched := content(t, rec)
	assert.Equal(t, "secondary uplink", patched["description"])
	assert.Equal(t, float64(100), patched["bandwidth"])
	assert.Equal(t, float64(100), patched["properties"].(map[string]any)["speed-mbps"])

	// Decommissioning via patch checks the stored install date.
	c, rec = newRequest(t, http.MethodPatch, "/api/circuits/1",
		map[string]any{"decommission_date": "2023-01-01"}, claims)
	withID(c, circuitID)
	require.NoError(t, PatchCircuit(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apierrors.CodeDecommissionBeforeInstall, fieldCode(t, rec, "decommission_date"))

	c, rec = newRequest(t, http.MethodPatch, "/api/circuits/1",
		map[string]any{"decommission_date": "2025-06-30"}, claims)
	withID(c, circuitID)
	require.NoError(t, PatchCircuit(c))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestUpdateCircuitOnlyOwner(t *testing.T) {
	_, dir := setupTest(t)
	dir.addresses[20] = true
	owner := testClaims(1, 10)
	classID := createClass(t, owner, "Fibre", fibreProperties())

	circuitID, _ := createCircuit(t, owner, map[string]any{
		"circuit_class_id":    classID,
		"install_date":        "2024-01-15",
		"customer_address_id": 20,
		"properties":          map[string]any{"speed-mbps": 100},
	})

	// The customer can read the circuit but not change or delete it.
	customer := testClaims(2, 20)
	c, rec := newRequest(t, http.MethodPatch, "/api/circuits/1",
		map[string]any{"description": "mine now"}, customer)
	withID(c, circuitID)
	require.NoError(t, PatchCircuit(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = newRequest(t, http.MethodDelete, "/api/circuits/1", nil, customer)
	withID(c, circuitID)
	require.NoError(t, DeleteCircuit(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteCircuit(t *testing.T) {
	setupTest(t)
	claims := testClaims(1, 10)
	classID := createClass(t, claims, "Fibre", fibreProperties())

	circuitID, _ := createCircuit(t, claims, map[string]any{
		"circuit_class_id": classID,
		"install_date":     "2024-01-15",
		"properties":       map[string]any{"speed-mbps": 100},
	})

	c, rec := newRequest(t, http.MethodDelete, "/api/circuits/1", nil, claims)
	withID(c, circuitID)
	require.NoError(t, DeleteCircuit(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	c, rec = newRequest(t, http.MethodGet, "/api/circuits/1", nil, claims)
	withID(c, circuitID)
	require.NoError(t, GetCircuit(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
