package models

import "encoding/json"

// Record is the unit of reconciliation: one row of a local collection,
// combining sync metadata, the primary parent reference, the business
// payload, and the attachment fields.
//
// The payload is kept as raw JSON so the store and the engine stay generic
// across collections; typed access goes through Marshal/Unmarshal.
type Record struct {
	Meta

	// Collection is the named collection the record belongs to.
	Collection string

	// Parent references the record's primary parent (a trip's vehicle, a
	// visit's trip, ...). Zero for root collections.
	Parent ParentRef

	// Payload is the entity's business fields.
	Payload json.RawMessage

	// Attachment is the record's binary attachment, if the collection
	// carries one.
	Attachment Attachment
}
