package activity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type crop struct {
	id   uuid.UUID
	name string
}

func (c crop) ActivityModel() string { return "PlantedProduct" }
func (c crop) ActivityID() string    { return c.id.String() }
func (c crop) String() string        { return c.name }

func TestModelTag(t *testing.T) {
	assert.Equal(t, "PlantedProduct", ModelTag("PlantedProduct"))
	assert.Equal(t, "Product", ModelTag("Product"))
	assert.Equal(t, "Region", ModelTag("region"))
	assert.Equal(t, "", ModelTag(""))
}

func TestActionDisplay(t *testing.T) {
	assert.Equal(t, "Created", ActionCreate.Display())
	assert.Equal(t, "Updated", ActionUpdate.Display())
	assert.Equal(t, "Deleted", ActionDelete.Display())
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		age  time.Duration
		want string
	}{
		{0, "Just now"},
		{60 * time.Second, "Just now"},
		{61 * time.Second, "1 minute ago"},
		{5 * time.Minute, "5 minutes ago"},
		{time.Hour, "60 minutes ago"},
		{time.Hour + time.Second, "1 hour ago"},
		{3 * time.Hour, "3 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{50 * time.Hour, "2 days ago"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			e := Entry{Timestamp: now.Add(-tt.age)}
			assert.Equal(t, tt.want, e.TimeAgo(now))
		})
	}
}

func TestLog_SoftCap(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	repo := NewInMemoryRepository()
	log := NewLog(repo, WithClock(func() time.Time {
		now = now.Add(time.Second)
		return now
	}))
	owner := uuid.New()

	for i := 0; i < DefaultLimit; i++ {
		require.NoError(t, log.Record(ctx, owner, ActionCreate, crop{id: uuid.New(), name: fmt.Sprintf("crop-%d", i)}))
	}
	n, err := repo.Count(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, n)

	require.NoError(t, log.Record(ctx, owner, ActionUpdate, crop{id: uuid.New(), name: "crop-new"}))
	n, err = repo.Count(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit-DefaultTrim+1, n)

	all, err := log.Recent(ctx, owner, DefaultLimit)
	require.NoError(t, err)
	assert.Equal(t, "crop-new", all[0].ObjectName)
	assert.Equal(t, "PlantedProduct", all[0].ModelName)
	assert.Equal(t, fmt.Sprintf("crop-%d", DefaultTrim), all[len(all)-1].ObjectName, "the ten oldest are gone")
}

func TestLog_RecentIsPerAccount(t *testing.T) {
	ctx := context.Background()
	log := NewLog(NewInMemoryRepository())
	a, b := uuid.New(), uuid.New()

	require.NoError(t, log.Record(ctx, a, ActionCreate, crop{id: uuid.New(), name: "wheat"}))
	require.NoError(t, log.Record(ctx, b, ActionDelete, crop{id: uuid.New(), name: "cotton"}))

	entries, err := log.Recent(ctx, a, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "wheat", entries[0].ObjectName)

	err = log.Record(ctx, a, Action("MOVE"), crop{})
	assert.Error(t, err)
}
