package archive

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func record(i int) Record {
	return Record{
		ID:      fmt.Sprintf("rec-%d", i),
		RoomID:  "R1",
		EndTime: time.Now(),
		Winner:  "black",
	}
}

func TestListRecentOrder(t *testing.T) {
	a := New()
	for i := 0; i < 5; i++ {
		a.Record(record(i))
	}

	recs := a.ListRecent(50)
	assert.Len(t, recs, 5)
	assert.Equal(t, "rec-4", recs[0].ID, "most recent first")
	assert.Equal(t, "rec-0", recs[4].ID)
}

func TestListRecentLimit(t *testing.T) {
	a := New()
	for i := 0; i < 60; i++ {
		a.Record(record(i))
	}

	recs := a.ListRecent(50)
	assert.Len(t, recs, 50)
	assert.Equal(t, "rec-59", recs[0].ID)
	assert.Equal(t, "rec-10", recs[49].ID)

	// Listing does not mutate the archive.
	assert.Equal(t, 60, a.Len())
}

func TestListRecentEmpty(t *testing.T) {
	a := New()
	assert.Empty(t, a.ListRecent(50))
}
