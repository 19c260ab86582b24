package shared

// EntryType defines the balance-affecting operations recorded in the
// transaction log
type EntryType string

const (
	EntryTypePurchase EntryType = "purchase"
	EntryTypeReturn   EntryType = "return"
)

// Valid reports whether the entry type is one of the known kinds
func (t EntryType) Valid() bool {
	return t == EntryTypePurchase || t == EntryTypeReturn
}

// OutboxStatus defines settlement-event publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
