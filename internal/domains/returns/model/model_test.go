package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"returns-backend/internal/shared"
)

func TestTransitionTable(t *testing.T) {
	legal := map[string][]string{
		StatusPending:        {StatusApproved, StatusRejected, StatusCancelled},
		StatusApproved:       {StatusAwaitingPickup, StatusPickupBooked, StatusCancelled},
		StatusAwaitingPickup: {StatusReceived},
		StatusPickupBooked:   {StatusReceived},
		StatusReceived:       {StatusRefunded},
	}

	for _, from := range AllStatuses() {
		for _, to := range AllStatuses() {
			want := false
			for _, allowed := range legal[from] {
				if allowed == to {
					want = true
				}
			}
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(StatusRefunded))
	assert.True(t, IsTerminal(StatusRejected))
	assert.True(t, IsTerminal(StatusCancelled))
	assert.False(t, IsTerminal(StatusReceived))
	assert.False(t, IsTerminal(StatusPending))
}

func TestTransitionErrorUnwrapsToKind(t *testing.T) {
	var err error = &TransitionError{From: StatusReceived, To: StatusReceived}
	assert.True(t, errors.Is(err, shared.ErrInvalidTransition))
	assert.Contains(t, err.Error(), `"received"`)
}

func TestSplitMedia(t *testing.T) {
	media := SplitMedia("https://cdn/a.jpg, https://cdn/b.png,", "https://cdn/c.mp4")

	assert.Equal(t, []MediaItem{
		{URL: "https://cdn/a.jpg", Kind: MediaKindImage},
		{URL: "https://cdn/b.png", Kind: MediaKindImage},
		{URL: "https://cdn/c.mp4", Kind: MediaKindVideo},
	}, media)

	assert.Empty(t, SplitMedia("", ""))
	assert.Equal(t, "a,b", JoinMedia([]string{" a ", "", "b"}))
}

func TestMethodDeadlinePassed(t *testing.T) {
	deadline := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	rr := &ReturnRequest{Status: StatusApproved, ChooseMethodDeadline: &deadline}

	assert.False(t, rr.MethodDeadlinePassed(deadline.Add(-time.Minute)))
	assert.True(t, rr.MethodDeadlinePassed(deadline.Add(time.Minute)))

	rr.Status = StatusPickupBooked
	assert.False(t, rr.MethodDeadlinePassed(deadline.Add(time.Hour)))
}

func TestUpdateStatusRequestValidate(t *testing.T) {
	assert.NoError(t, UpdateStatusRequest{Status: StatusApproved}.Validate())
	assert.Error(t, UpdateStatusRequest{Status: "shipped"}.Validate())
	assert.Error(t, UpdateStatusRequest{}.Validate())
}

func TestListReturnsQueryDefaults(t *testing.T) {
	q := &ListReturnsQuery{Page: 0, Limit: 500}
	assert.NoError(t, q.Validate())
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 20, q.Limit)

	from := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -1)
	q = &ListReturnsQuery{From: &from, To: &to}
	assert.Error(t, q.Validate())
}
