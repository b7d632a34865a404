// Package apierrors defines the stable machine-readable error codes
// surfaced by the API and the field-keyed error map handlers collect
// validation failures into.
package apierrors

import (
	"net/http"

	"circuit-service/internal/propschema"
)

// Field validation codes outside the propschema package.
const (
	CodeBandwidthNotInteger        = "bandwidth_not_integer"
	CodeCircuitClassIDRequired     = "circuit_class_id_required"
	CodeCircuitClassIDInvalid      = "circuit_class_id_invalid"
	CodeCircuitClassUnknown        = "circuit_class_unknown"
	CodeCustomerAddressNotInteger  = "customer_address_id_not_integer"
	CodeCustomerAddressNotLinked   = "customer_address_not_linked"
	CodeGroupNameTooLong           = "group_name_too_long"
	CodeHandOffPointTooLong        = "hand_off_point_too_long"
	CodeInstallDateRequired        = "install_date_required"
	CodeInstallDateInvalid         = "install_date_invalid"
	CodeDecommissionDateInvalid    = "decommission_date_invalid"
	CodeDecommissionBeforeInstall  = "decommission_before_install"
	CodeReferenceTooLong           = "reference_too_long"
	CodeProviderAddressNotInteger  = "service_provider_address_id_not_integer"
	CodeProviderAddressNotLinked   = "service_provider_address_not_linked"
	CodeNameRequired               = "name_required"
	CodeNameTooLong                = "name_too_long"
	CodeNameInUse                  = "name_in_use"
	CodeMemberNotSelfManaged       = "member_not_self_managed"
	CodeCircuitNotVisible          = "circuit_not_visible"
	CodeCircuitNotFound            = "circuit_not_found"
	CodeCircuitClassNotFound       = "circuit_class_not_found"
	CodeCircuitClassHasCircuits    = "circuit_class_has_live_circuits"
	CodeInvalidListParams          = "invalid_list_params"
	CodeInvalidRequestBody         = "invalid_request_body"
	CodeAuthenticationRequired     = "authentication_required"
)

// conflictCodes are violations of uniqueness or the schema evolution
// ratchet; they map to 409 instead of 400.
var conflictCodes = map[string]struct{}{
	CodeNameInUse:               {},
	propschema.CodeSchemaShrink: {},
}

// FieldErrors maps an offending request field to a machine-readable code.
// Validators append to it so several failures can be reported together.
type FieldErrors map[string]string

// Add records a code for a field unless one is already present; the first
// failure for a field wins, matching the per-field short-circuit rules.
func (fe FieldErrors) Add(field, code string) {
	if _, ok := fe[field]; !ok {
		fe[field] = code
	}
}

// Any reports whether at least one failure was collected.
func (fe FieldErrors) Any() bool {
	return len(fe) > 0
}

// Has reports whether the given field failed validation.
func (fe FieldErrors) Has(field string) bool {
	_, ok := fe[field]
	return ok
}

// Detail is one field failure with its catalog message.
type Detail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Details expands the collected codes with their catalog messages for the
// response body.
func (fe FieldErrors) Details() map[string]Detail {
	out := make(map[string]Detail, len(fe))
	for field, code := range fe {
		out[field] = Detail{Code: code, Message: Message(code)}
	}
	return out
}

// Status returns the HTTP status the collected failures map to: 409 when
// any failure is a conflict, 400 otherwise.
func (fe FieldErrors) Status() int {
	for _, code := range fe {
		if _, ok := conflictCodes[code]; ok {
			return http.StatusConflict
		}
	}
	return http.StatusBadRequest
}
