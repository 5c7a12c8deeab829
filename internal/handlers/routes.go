package handlers

import (
	"github.com/fasthttp/router"
)

// RegisterDispatcherRoutes wires the full dispatcher panel surface onto a
// route group (auth, shipments, drivers, messaging). Every route behind
// Require carries the resolved principal on the request ctx.
func RegisterDispatcherRoutes(e *router.Group, auth *AuthHandler, shipments *ShipmentHandler, messages *MessageHandler) {
	e.POST("/login", auth.Login)
	e.POST("/logout", auth.Require(auth.Logout))
	e.GET("/me", auth.Require(auth.Me))

	e.GET("/shipments", auth.Require(shipments.ListShipments))
	e.GET("/shipments/{id}", auth.Require(shipments.GetShipment))
	e.POST("/shipments/{id}/assign", auth.Require(shipments.AssignDriver))
	e.POST("/shipments/{id}/status", auth.Require(shipments.UpdateStatus))

	e.GET("/drivers", auth.Require(shipments.ListDrivers))

	e.POST("/messages/send", auth.Require(messages.SendMessage))
	e.GET("/messages/sent", auth.Require(messages.ListSentMessages))
}

// RegisterDispatchRoutes wires the minimal legacy surface: auth plus the
// shipment command set, no messaging. Both surfaces call the same services
// so the business rules cannot drift between them.
func RegisterDispatchRoutes(e *router.Group, auth *AuthHandler, shipments *ShipmentHandler) {
	e.POST("/login", auth.Login)
	e.POST("/logout", auth.Require(auth.Logout))

	e.GET("/shipments", auth.Require(shipments.ListShipments))
	e.GET("/shipments/{id}", auth.Require(shipments.GetShipment))
	e.POST("/shipments/{id}/assign", auth.Require(shipments.AssignDriver))
	e.POST("/shipments/{id}/status", auth.Require(shipments.UpdateStatus))

	e.GET("/drivers", auth.Require(shipments.ListDrivers))
}
