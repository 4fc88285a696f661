package entity

import "time"

// Subscriber is a party subscribed to a named channel. It is stored as a
// single document keyed by ID.
type Subscriber struct {
	ID                  string    `json:"id" boltholdKey:"ID"`
	Name                string    `json:"name"`
	SubscribedToChannel string    `json:"subscribedToChannel"`
	SubscribeDate       time.Time `json:"subscribeDate"`
}

// Patch carries a partial update. Nil fields are left unchanged.
type Patch struct {
	Name                *string `json:"name"`
	SubscribedToChannel *string `json:"subscribedToChannel"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.SubscribedToChannel == nil
}
