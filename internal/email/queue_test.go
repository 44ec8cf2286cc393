package email

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) *EmailQueue {
	t.Helper()
	q := &EmailQueue{
		service:    NewService(&Config{}),
		queue:      make(chan *queuedEmail, 16),
		done:       make(chan bool),
		retryDelay: time.Millisecond,
	}
	go q.worker()
	t.Cleanup(q.Stop)
	return q
}

func TestEmailQueueDelivers(t *testing.T) {
	q := newTestQueue(t)

	var sent atomic.Int32
	q.enqueue(func() error {
		sent.Add(1)
		return nil
	})

	require.Eventually(t, func() bool {
		return sent.Load() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestEmailQueueRetriesFailedSends(t *testing.T) {
	q := newTestQueue(t)

	var attempts atomic.Int32
	q.enqueue(func() error {
		if attempts.Add(1) < 3 {
			return errors.New("smtp unavailable")
		}
		return nil
	})

	require.Eventually(t, func() bool {
		return attempts.Load() == 3
	}, time.Second, 5*time.Millisecond)

	// Succeeded on the third attempt, so no further retries
	time.Sleep(20 * time.Millisecond)
	assert.EqualValues(t, 3, attempts.Load())
}

func TestEmailQueueDropsAfterMaxRetries(t *testing.T) {
	q := newTestQueue(t)

	var attempts atomic.Int32
	q.enqueue(func() error {
		attempts.Add(1)
		return errors.New("smtp unavailable")
	})

	require.Eventually(t, func() bool {
		return attempts.Load() == 1+maxSendRetries
	}, time.Second, 5*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	assert.EqualValues(t, 1+maxSendRetries, attempts.Load())
}

func TestEmailQueueStop(t *testing.T) {
	q := &EmailQueue{
		service:    NewService(&Config{}),
		queue:      make(chan *queuedEmail, 16),
		done:       make(chan bool),
		retryDelay: time.Millisecond,
	}
	go q.worker()
	q.Stop()
	time.Sleep(10 * time.Millisecond)

	var sent atomic.Int32
	q.enqueue(func() error {
		sent.Add(1)
		return nil
	})

	time.Sleep(50 * time.Millisecond)
	assert.EqualValues(t, 0, sent.Load(), "stopped queue should not process jobs")
}
