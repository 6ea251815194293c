package events

// Topics emitted by the sales ledger.
const (
	// TopicSaleCommitted fires after the atomic sale commit succeeds.
	TopicSaleCommitted = "sale.committed"
	// TopicProductChanged fires when an owner edits the catalog.
	TopicProductChanged = "product.changed"
)

// ChannelFor returns the owner-scoped pub/sub channel name. Live feeds
// subscribe to this channel to observe new sales without polling.
func ChannelFor(ownerID string) string {
	return "sales:" + ownerID
}
