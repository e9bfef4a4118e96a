package notify

import "time"

// Subscription is one browser push subscription registered by a portal
// user.
type Subscription struct {
	ID        string    `json:"id" yaml:"id"`
	Endpoint  string    `json:"endpoint" yaml:"endpoint"`
	P256dhKey string    `json:"p256dhKey" yaml:"p256dh_key"`
	AuthKey   string    `json:"authKey" yaml:"auth_key"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
}
