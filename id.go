package rewards

import "github.com/veritoken/rewards/id"

// ID is the identifier type for the engine's own durable records.
type ID = id.ID

// Prefix identifies the record type encoded in a TypeID.
type Prefix = id.Prefix
