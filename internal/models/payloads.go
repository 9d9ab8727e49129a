package models

import "encoding/json"

// The payload structs below hold the business fields of each collection.
// They are persisted locally as the JSON body of a store.Record and shipped
// remotely after the push engine substitutes foreign keys. Fields tagged
// with a "*Ref" name are local-only ParentRefs stripped from outgoing
// payloads; the matching "*Id" field is what the remote store sees.

// ExpenseType and FuelType are the two flat taxonomy lists. They have no
// owner and no parent.
type ExpenseType struct {
	Name string `json:"name"`
}

type FuelType struct {
	Name string `json:"name"`
}

// Driver is the owning subject's profile.
type Driver struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	License string `json:"license,omitempty"`
}

// Vehicle is owned and has no parent.
type Vehicle struct {
	Plate    string `json:"plate"`
	Make     string `json:"make,omitempty"`
	Model    string `json:"model,omitempty"`
	Year     int    `json:"year,omitempty"`
	Odometer int64  `json:"odometer,omitempty"`
}

// Trip is owned; its primary parent is a vehicle.
type Trip struct {
	Name      string `json:"name"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	Status    string `json:"status,omitempty"`
}

// Visit records a stop at a site during a trip.
type Visit struct {
	SiteName string `json:"siteName"`
	Address  string `json:"address,omitempty"`
	Notes    string `json:"notes,omitempty"`
	Date     string `json:"date,omitempty"`
}

// Expense is a trip expense, optionally carrying a receipt attachment.
type Expense struct {
	Description string  `json:"description"`
	Type        string  `json:"type,omitempty"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date,omitempty"`
}

// FuelPurchase records a refueling. Its primary parent is the trip; it also
// references the vehicle through a secondary link, resolved the same way.
type FuelPurchase struct {
	FuelType      string    `json:"fuelType,omitempty"`
	Liters        float64   `json:"liters"`
	PricePerLiter float64   `json:"pricePerLiter,omitempty"`
	Total         float64   `json:"total"`
	Odometer      int64     `json:"odometer,omitempty"`
	Date          string    `json:"date,omitempty"`
	VehicleRef    ParentRef `json:"vehicleRef,omitzero"`
	VehicleID     string    `json:"vehicleId,omitempty"`
}

// Marshal encodes a payload struct into the JSON body stored locally.
func Marshal(v any) (json.RawMessage, error) {
	return json.Marshal(v)
}

// Unmarshal decodes a stored JSON body into a payload struct.
func Unmarshal[T any](body json.RawMessage) (T, error) {
	var v T
	err := json.Unmarshal(body, &v)
	return v, err
}
