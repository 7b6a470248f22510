package enums

// OrderStatus tracks the admin review lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
)

// Channel partitions orders into independent ledgers.
type Channel string

const (
	ChannelRegular  Channel = "regular"
	ChannelSeasonal Channel = "seasonal"
)

// Valid reports whether the channel is one of the known buckets.
func (c Channel) Valid() bool {
	return c == ChannelRegular || c == ChannelSeasonal
}
