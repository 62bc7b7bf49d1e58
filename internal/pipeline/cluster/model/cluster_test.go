package model

import (
	"testing"
	"time"

	pickModel "github.com/Avi18971911/Locus/internal/pipeline/pick/model"
	"github.com/stretchr/testify/assert"
)

func TestCluster(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	first := &pickModel.Pick{Id: "b", WaveformID: pickModel.WaveformID{NetworkCode: "XX", StationCode: "STA1"}, Time: base}
	second := &pickModel.Pick{Id: "a", WaveformID: pickModel.WaveformID{NetworkCode: "XX", StationCode: "STA2"}, Time: base}
	third := &pickModel.Pick{Id: "c", WaveformID: pickModel.WaveformID{NetworkCode: "XX", StationCode: "STA3"}, Time: base.Add(time.Minute)}

	t.Run("should derive time bounds from its picks", func(t *testing.T) {
		c := NewCluster(1, third, first)
		assert.Equal(t, 2, c.Len())
		assert.Equal(t, base, c.TMin())
		assert.Equal(t, base.Add(time.Minute), c.TMax())
	})

	t.Run("should break reference ties by pick id", func(t *testing.T) {
		c := NewCluster(1, first, second, third)
		assert.Same(t, second, c.ReferencePick())
	})

	t.Run("should compare membership by pick reference", func(t *testing.T) {
		c := NewCluster(1, first)
		copied := *first
		assert.True(t, c.Contains(first))
		assert.False(t, c.Contains(&copied))
	})

	t.Run("should report identity keys of its picks", func(t *testing.T) {
		c := NewCluster(1, first, third)
		opts := pickModel.IdentityKeyOptions{}
		assert.Equal(t, []string{"XX.STA1", "XX.STA3"}, c.IdentityKeys(opts))
		assert.True(t, c.HasIdentityKey("XX.STA3", opts))
		assert.False(t, c.HasIdentityKey("XX.STA2", opts))
		assert.Equal(t, []string{"b", "c"}, c.PickIds())
	})
}
