package fulfillment

import (
	"errors"

	addressModel "homely-khana/models/address"
	deliveryModel "homely-khana/models/delivery"
	"homely-khana/types"

	"gorm.io/gorm"
)

// ResolveAddressSnapshot fetches the address referenced by a booking and
// freezes it into the immutable record every generated delivery carries.
// A missing address is a hard NotFoundError: the snapshot is operationally
// required for delivery, so fulfillment must not silently proceed without it.
func ResolveAddressSnapshot(tx *gorm.DB, addressID uint) (deliveryModel.AddressSnapshot, error) {
	var addr addressModel.Address
	if err := tx.First(&addr, addressID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return deliveryModel.AddressSnapshot{}, &types.NotFoundError{Entity: "address", ID: addressID}
		}
		return deliveryModel.AddressSnapshot{}, err
	}

	return deliveryModel.AddressSnapshot{
		AddressID:     addr.ID,
		RecipientName: addr.RecipientName,
		Phone:         addr.Phone,
		Line1:         addr.Line1,
		Line2:         addr.Line2,
		Landmark:      addr.Landmark,
		City:          addr.City,
		State:         addr.State,
		Pincode:       addr.Pincode,
	}, nil
}
