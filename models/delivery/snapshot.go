package delivery

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// AddressSnapshot is the denormalized copy of the delivery address taken at
// materialization time. It is stored as a JSON column and treated as
// immutable: later edits to the source address row do not touch it.
type AddressSnapshot struct {
	AddressID     uint    `json:"address_id"`
	RecipientName string  `json:"recipient_name"`
	Phone         string  `json:"phone"`
	Line1         string  `json:"line1"`
	Line2         *string `json:"line2,omitempty"`
	Landmark      *string `json:"landmark,omitempty"`
	City          string  `json:"city"`
	State         string  `json:"state"`
	Pincode       string  `json:"pincode"`
}

// Scan implements the Scanner interface for database deserialization
func (as *AddressSnapshot) Scan(value interface{}) error {
	if value == nil {
		*as = AddressSnapshot{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		if s, sok := value.(string); sok {
			bytes = []byte(s)
		} else {
			return errors.New("type assertion to []byte failed")
		}
	}

	return json.Unmarshal(bytes, as)
}

// Value implements the driver Valuer interface for database serialization
func (as AddressSnapshot) Value() (driver.Value, error) {
	return json.Marshal(as)
}
