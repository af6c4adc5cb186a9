package render

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBudget(t *testing.T) {
	assert.Equal(t, 5*time.Second, Budget(context.Background(), 5*time.Second))

	far, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()
	assert.Equal(t, 5*time.Second, Budget(far, 5*time.Second))

	near, cancel2 := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel2()
	got := Budget(near, 10*time.Second)
	assert.LessOrEqual(t, got, 2*time.Second)
	assert.Greater(t, got, time.Second)
}

func TestBudget_NeverZeroUnderDeadline(t *testing.T) {
	past, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	assert.Equal(t, MinBudget, Budget(past, 10*time.Second))
	assert.Equal(t, MinBudget, Budget(past, 0))

	tight, cancel2 := context.WithDeadline(context.Background(), time.Now().Add(300*time.Microsecond))
	defer cancel2()
	assert.GreaterOrEqual(t, Budget(tight, 10*time.Second), MinBudget)
}

func TestSleep(t *testing.T) {
	assert.NoError(t, Sleep(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
}
