package swap

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordFactories(t *testing.T) {
	at := time.Now()

	t.Run("普通换电记录带归还侧快照", func(t *testing.T) {
		r := NewRecord("SWP1", 10, 1, 1, 101, 40, 201, 98, at)
		assert.False(t, r.IsFirstPickup())
		assert.Equal(t, uint(101), *r.BatteryInID)
		assert.Equal(t, 40, *r.SOHIn)
		assert.Equal(t, uint(201), r.BatteryOutID)
		assert.Equal(t, 98, r.SOHOut)
	})

	t.Run("首次领电记录无归还侧", func(t *testing.T) {
		r := NewFirstPickupRecord("SWP2", 10, 1, 1, 201, 98, at)
		assert.True(t, r.IsFirstPickup())
		assert.Nil(t, r.BatteryInID)
		assert.Nil(t, r.SOHIn)
	})
}

func TestGenerateRecordNo(t *testing.T) {
	no := GenerateRecordNo()
	assert.True(t, strings.HasPrefix(no, "SWP"))

	// 随机后缀,连续生成不应撞号
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		seen[GenerateRecordNo()] = true
	}
	assert.Greater(t, len(seen), 90)
}
