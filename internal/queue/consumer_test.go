package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReleaser records the vehicles it was asked to release and can be
// forced to fail.
type fakeReleaser struct {
	released []string
	err      error
}

func (f *fakeReleaser) OnPaymentCompleted(_ context.Context, vehicleID string) error {
	if f.err != nil {
		return f.err
	}
	f.released = append(f.released, vehicleID)
	return nil
}

func TestHandleMessage(t *testing.T) {
	t.Run("releases the vehicle from a valid payload", func(t *testing.T) {
		r := &fakeReleaser{}
		body := []byte(`{"vehicle_id":"12가3456","paid_at":"2025-03-14T09:45:00Z","source":"pay-station"}`)

		err := handleMessage(body, r)
		require.NoError(t, err)
		assert.Equal(t, []string{"12가3456"}, r.released)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		r := &fakeReleaser{}
		err := handleMessage([]byte(`{"vehicle_id":`), r)
		assert.Error(t, err)
		assert.Empty(t, r.released)
	})

	t.Run("rejects a payload without a vehicle", func(t *testing.T) {
		r := &fakeReleaser{}
		err := handleMessage([]byte(`{"paid_at":"2025-03-14T09:45:00Z"}`), r)
		assert.Error(t, err)
		assert.Empty(t, r.released)
	})

	t.Run("propagates releaser failures for redelivery handling", func(t *testing.T) {
		r := &fakeReleaser{err: errors.New("database down")}
		body := []byte(`{"vehicle_id":"12가3456"}`)

		err := handleMessage(body, r)
		assert.Error(t, err)
	})
}
