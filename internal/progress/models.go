// Package progress holds the phased journey updates a villager posts for
// their sponsors.
package progress

import "time"

// Phase is the journey stage an update belongs to.
type Phase string

const (
	PhaseTraining       Phase = "training"
	PhaseHousing        Phase = "housing"
	PhaseBikeDeployment Phase = "bike_deployment"
	PhaseActive         Phase = "active"
)

func (p Phase) Valid() bool {
	switch p {
	case PhaseTraining, PhaseHousing, PhaseBikeDeployment, PhaseActive:
		return true
	}
	return false
}

// Update is one progress entry on a slot's timeline.
type Update struct {
	ID          string    `json:"id"`
	SlotID      string    `json:"slotId"`
	Phase       Phase     `json:"phase"`
	Description string    `json:"description"`
	Progress    int       `json:"progress"`
	CreatedAt   time.Time `json:"createdAt"`
}
