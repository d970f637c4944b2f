package checkout

// Stage is how far a checkout attempt got. Every stage is a separate write.
type Stage int

const (
	Initiated Stage = iota
	PaymentVerified
	OrderPersisted
	ItemsPersisted
	PaymentPersisted
	CartCleared
	NotificationAttempted
)

var stageNames = [...]string{
	"initiated", "payment_verified", "order_persisted", "items_persisted",
	"payment_persisted", "cart_cleared", "notification_attempted",
}

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "unknown"
}
