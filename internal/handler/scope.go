package handler

import (
	"circuit-service/internal/membership"
	"circuit-service/internal/middleware"
	"circuit-service/internal/model"
	"circuit-service/pkg/jwtutil"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

var directory membership.Directory

// SetDirectory wires the membership directory client used for address
// visibility checks. Called once at startup.
func SetDirectory(d membership.Directory) {
	directory = d
}

// callerAddressScope returns every address id the caller may act for: the
// caller's own address, or all addresses in the member for a global-active
// user.
func callerAddressScope(c echo.Context, claims *jwtutil.UserClaims) ([]uint, error) {
	if claims.IsGlobal && claims.GlobalActive && directory != nil {
		return directory.ListAddressesInMember(c.Request().Context(), middleware.GetToken(c), claims.MemberID)
	}
	return []uint{claims.AddressID}, nil
}

// scopeCircuits narrows a circuit query to records where one of the given
// addresses appears as owner, customer or service provider.
func scopeCircuits(db *gorm.DB, addresses []uint) *gorm.DB {
	return db.Where(
		"address_id IN ? OR customer_address_id IN ? OR service_provider_address_id IN ?",
		addresses, addresses, addresses,
	)
}

// circuitVisible reports whether any of the circuit's addresses is in the
// caller's scope.
func circuitVisible(circuit *model.Circuit, addresses []uint) bool {
	for _, id := range addresses {
		if circuit.AddressID == id {
			return true
		}
		if circuit.CustomerAddressID != nil && *circuit.CustomerAddressID == id {
			return true
		}
		if circuit.ServiceProviderAddressID != nil && *circuit.ServiceProviderAddressID == id {
			return true
		}
	}
	return false
}
