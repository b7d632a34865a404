package apierrors

import "circuit-service/internal/propschema"

// messages is the human-readable catalog for every code the service can
// return. Codes without an entry fall back to the code itself.
var messages = map[string]string{
	CodeBandwidthNotInteger:       `The "bandwidth" parameter is invalid. "bandwidth" must be an integer.`,
	CodeCircuitClassIDRequired:    `The "circuit_class_id" parameter is invalid. "circuit_class_id" is required and must be an integer.`,
	CodeCircuitClassIDInvalid:     `The "circuit_class_id" parameter is invalid. "circuit_class_id" must be an integer.`,
	CodeCircuitClassUnknown:       `The "circuit_class_id" parameter is invalid. "circuit_class_id" does not belong to a valid CircuitClass record.`,
	CodeCustomerAddressNotInteger: `The "customer_address_id" parameter is invalid. "customer_address_id" must be an integer.`,
	CodeCustomerAddressNotLinked:  `The "customer_address_id" parameter is invalid. You must be linked to an Address to manage a Circuit for them as the customer.`,
	CodeGroupNameTooLong:          `The "group_name" parameter is invalid. "group_name" cannot be longer than 250 characters.`,
	CodeHandOffPointTooLong:       `The "hand_off_point" parameter is invalid. "hand_off_point" cannot be longer than 20 characters.`,
	CodeInstallDateRequired:       `The "install_date" parameter is invalid. "install_date" is required.`,
	CodeInstallDateInvalid:        `The "install_date" parameter is invalid. "install_date" must be a date string in ISO format.`,
	CodeDecommissionDateInvalid:   `The "decommission_date" parameter is invalid. "decommission_date" must be a date string in ISO format.`,
	CodeDecommissionBeforeInstall: `The "decommission_date" parameter is invalid. "decommission_date" cannot be before the specified "install_date".`,
	CodeReferenceTooLong:          `The "reference" parameter is invalid. "reference" cannot be longer than 100 characters.`,
	CodeProviderAddressNotInteger: `The "service_provider_address_id" parameter is invalid. "service_provider_address_id" must be an integer.`,
	CodeProviderAddressNotLinked:  `The "service_provider_address_id" parameter is invalid. You must be linked to an Address to manage a Circuit for them as the service provider.`,
	CodeNameRequired:              `The "name" parameter is invalid. "name" is required and must be a string.`,
	CodeNameTooLong:               `The "name" parameter is invalid. "name" cannot be longer than 250 characters.`,
	CodeNameInUse:                 `The "name" parameter is invalid. A CircuitClass with that name already exists for your Member.`,
	CodeMemberNotSelfManaged:      `You do not have permission to make this request. Your Member must be self-managed.`,
	CodeCircuitNotVisible:         `You do not have permission to make this request. You can only read a Circuit where either "address_id", "service_provider_address_id" or "customer_address_id" is an Address you can act for.`,
	CodeCircuitNotFound:           `The "id" path parameter is invalid. "id" must belong to a valid Circuit record.`,
	CodeCircuitClassNotFound:      `The "id" path parameter is invalid. "id" must belong to a valid CircuitClass record in your Member.`,
	CodeCircuitClassHasCircuits:   `You do not have permission to make this request. You cannot delete a CircuitClass that is associated with one or more Circuits.`,
	CodeInvalidListParams:         `One or more of the sent search fields contains invalid values. Please check the sent parameters and ensure they match the required patterns.`,
	CodeInvalidRequestBody:        `The request body could not be parsed.`,
	CodeAuthenticationRequired:    `Authentication is required for this request.`,

	propschema.CodeSchemaNotArray:         `The "properties" parameter is invalid. "properties" must be an array.`,
	propschema.CodeSchemaEmpty:            `The "properties" parameter is invalid. "properties" array cannot be empty.`,
	propschema.CodeItemNotObject:          `The "properties" parameter is invalid. Each item in the array must be an object.`,
	propschema.CodeTypeMissing:            `The "properties" parameter is invalid. "property_type_id" is required for each item in the array "properties".`,
	propschema.CodeTypeUnknown:            `The "properties" parameter is invalid. One of the sent values for "property_type_id" does not belong to a valid PropertyType record.`,
	propschema.CodeKeyMissing:             `The "properties" parameter is invalid. "key" is required for each item in the array "properties".`,
	propschema.CodeKeyTooLong:             `The "properties" parameter is invalid. "key" cannot be longer than 250 characters for each item in the array "properties".`,
	propschema.CodeKeyDuplicate:           `The "properties" parameter is invalid. "key" must be unique within the array of "properties".`,
	propschema.CodeRequiredFlagMissing:    `The "properties" parameter is invalid. "required" is required for each item in the array "properties".`,
	propschema.CodeRequiredFlagNotBoolean: `The "properties" parameter is invalid. "required" must be a boolean for each item in the array "properties".`,
	propschema.CodeSchemaShrink:           `The "properties" parameter is invalid. This CircuitClass has associated Circuits with the current properties. All keys for the current properties must be included as items in the array.`,
	propschema.CodeValuesNotObject:        `The "properties" parameter is invalid. "properties" must be an object.`,
	propschema.CodeRequiredKeyMissing:     `The "properties" parameter is invalid. A required key for the CircuitClass schema was not sent.`,
	propschema.CodeRequiredKeyNull:        `The "properties" parameter is invalid. A required key for the CircuitClass schema was sent with no value.`,
	propschema.CodeNotNumeric:             `The "properties" parameter is invalid. One of the sent values (numeric) must be an integer, float or decimal.`,
	propschema.CodeNotBoolean:             `The "properties" parameter is invalid. One of the sent values (boolean) must be a boolean.`,
	propschema.CodeNotURL:                 `The "properties" parameter is invalid. One of the sent values (link) must be an absolute URL.`,
	propschema.CodeNotNetwork:             `The "properties" parameter is invalid. One of the sent values (network) must be a valid IPv4 or IPv6 address or network.`,
}

// Message returns the catalog text for a code.
func Message(code string) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return code
}
