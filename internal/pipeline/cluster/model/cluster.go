package model

import (
	"time"

	pickModel "github.com/Avi18971911/Locus/internal/pipeline/pick/model"
)

// Cluster is a growing group of mutually consistent picks supporting one origin estimate.
// The picks are shared with the pick buffer and may outlive their eviction from it.
type Cluster struct {
	Id    uint64
	Picks []*pickModel.Pick
}

func NewCluster(id uint64, picks ...*pickModel.Pick) *Cluster {
	return &Cluster{
		Id:    id,
		Picks: append(make([]*pickModel.Pick, 0, len(picks)), picks...),
	}
}

func (c *Cluster) Len() int {
	return len(c.Picks)
}

func (c *Cluster) TMin() time.Time {
	var tmin time.Time
	for i, pick := range c.Picks {
		if i == 0 || pick.Time.Before(tmin) {
			tmin = pick.Time
		}
	}
	return tmin
}

func (c *Cluster) TMax() time.Time {
	var tmax time.Time
	for i, pick := range c.Picks {
		if i == 0 || pick.Time.After(tmax) {
			tmax = pick.Time
		}
	}
	return tmax
}

// ReferencePick is the earliest pick. Picks sharing the earliest time are ordered by id.
func (c *Cluster) ReferencePick() *pickModel.Pick {
	var reference *pickModel.Pick
	for _, pick := range c.Picks {
		if reference == nil ||
			pick.Time.Before(reference.Time) ||
			(pick.Time.Equal(reference.Time) && pick.Id < reference.Id) {
			reference = pick
		}
	}
	return reference
}

func (c *Cluster) Contains(pick *pickModel.Pick) bool {
	for _, p := range c.Picks {
		if p == pick {
			return true
		}
	}
	return false
}

func (c *Cluster) IdentityKeys(opts pickModel.IdentityKeyOptions) []string {
	keys := make([]string, len(c.Picks))
	for i, pick := range c.Picks {
		keys[i] = pick.IdentityKey(opts)
	}
	return keys
}

func (c *Cluster) HasIdentityKey(key string, opts pickModel.IdentityKeyOptions) bool {
	for _, pick := range c.Picks {
		if pick.IdentityKey(opts) == key {
			return true
		}
	}
	return false
}

func (c *Cluster) PickIds() []string {
	ids := make([]string, len(c.Picks))
	for i, pick := range c.Picks {
		ids[i] = pick.Id
	}
	return ids
}
