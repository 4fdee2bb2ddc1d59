// Package shipping contains the Shipping bounded context.
// It turns an inventory shipment into a carrier shipment-creation request and turns the
// carrier's answer back into writes against the inventory system.
//
// Key concepts:
//   - Shipment: the inventory system's record of goods to ship, with ordered shipping containers
//   - Carrier / CarrierSetup: a configured carrier and the credentials stored in its data document
//   - CarrierProfile: service-code table and policies for one carrier variant
//   - Translator: pure mapping from Shipment to CarrierShipmentRequest
//   - Reconciler: pure mapping from CarrierResponse to a Reconciliation (the writes to perform)
//
// Design Pattern: Ports & Adapters
//   - InventoryClient and CarrierGateway are ports defined here
//   - HTTP adapters live in the infrastructure layer
package shipping
