package backoff

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDelay_Exponential(t *testing.T) {
	cfg := Config{BaseDelay: time.Second, Base: 2.0}

	for n := 0; n <= 6; n++ {
		want := time.Duration(float64(time.Second) * math.Pow(2, float64(n)))
		assert.Equal(t, want, cfg.Delay(n), "attempt %d", n)
	}
}

func TestDelay_ClampedToMax(t *testing.T) {
	cfg := Config{BaseDelay: time.Second, Base: 2.0, MaxDelay: 30 * time.Second}

	assert.Equal(t, 16*time.Second, cfg.Delay(4))
	assert.Equal(t, 30*time.Second, cfg.Delay(5), "uncapped value would be 32s")
	assert.Equal(t, 30*time.Second, cfg.Delay(40))
}

func TestDelay_Overflow(t *testing.T) {
	cfg := Config{BaseDelay: time.Second, Base: 10}
	assert.Equal(t, time.Duration(math.MaxInt64), cfg.Delay(500))
}

func TestDelay_NegativeAttemptTreatedAsZero(t *testing.T) {
	cfg := Default()
	assert.Equal(t, time.Second, cfg.Delay(-3))
}

func TestDelay_Deterministic(t *testing.T) {
	cfg := Default()
	first := cfg.Delay(3)
	cfg.Delay(1)
	cfg.Delay(7)
	assert.Equal(t, first, cfg.Delay(3))
}
