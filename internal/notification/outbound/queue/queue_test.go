package queue

import (
	"context"
	"testing"
	"time"

	"github.com/mxn2020/task-flow-sub000/internal/notification/entity"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/instrument"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newTestQueue(t *testing.T) (*Queue, *redis.Client) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	ctx := context.Background()

	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}

	uri, err := ctr.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("redis connection string: %v", err)
	}

	opts, err := redis.ParseURL(uri)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}

	client := redis.NewClient(opts)
	t.Cleanup(func() { client.Close() })

	return New(client, instrument.NewNoop()), client
}

func TestQueue(t *testing.T) {
	q, client := newTestQueue(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)

	flush := func(t *testing.T) {
		t.Helper()
		if err := client.FlushAll(ctx).Err(); err != nil {
			t.Fatalf("flush redis: %v", err)
		}
	}

	t.Run("DueBeforeReturnsOnlyRipeDeliveriesInOrder", func(t *testing.T) {
		flush(t)

		// Arrange
		later := entity.ScheduledDelivery{Key: "rule:1:7:later", UserID: 7, Title: "later", ScheduledFor: base.Add(2 * time.Hour)}
		soon := entity.ScheduledDelivery{Key: "rule:1:7:soon", UserID: 7, Title: "soon", ScheduledFor: base.Add(time.Minute)}
		future := entity.ScheduledDelivery{Key: "rule:1:7:future", UserID: 7, Title: "future", ScheduledFor: base.Add(24 * time.Hour)}
		for _, d := range []entity.ScheduledDelivery{later, soon, future} {
			if err := q.Enqueue(ctx, d); err != nil {
				t.Fatalf("Enqueue(%q): %v", d.Key, err)
			}
		}

		// Act
		due, err := q.DueBefore(ctx, base.Add(3*time.Hour))

		// Assert
		if err != nil {
			t.Fatalf("DueBefore: %v", err)
		}
		if len(due) != 2 {
			t.Fatalf("DueBefore returned %d deliveries, want 2", len(due))
		}
		if due[0].Key != soon.Key || due[1].Key != later.Key {
			t.Fatalf("DueBefore order = [%s %s], want [%s %s]", due[0].Key, due[1].Key, soon.Key, later.Key)
		}
		if !due[0].ScheduledFor.Equal(soon.ScheduledFor) {
			t.Fatalf("ScheduledFor = %v, want %v", due[0].ScheduledFor, soon.ScheduledFor)
		}
	})

	t.Run("ReEnqueueSameKeyOverwrites", func(t *testing.T) {
		flush(t)

		// Arrange
		d := entity.ScheduledDelivery{Key: "rule:2:7:shift", UserID: 7, Title: "before", ScheduledFor: base}
		if err := q.Enqueue(ctx, d); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
		d.Title = "after"
		d.ScheduledFor = base.Add(time.Hour)

		// Act
		if err := q.Enqueue(ctx, d); err != nil {
			t.Fatalf("re-Enqueue: %v", err)
		}

		// Assert
		due, err := q.DueBefore(ctx, base.Add(2*time.Hour))
		if err != nil {
			t.Fatalf("DueBefore: %v", err)
		}
		if len(due) != 1 {
			t.Fatalf("DueBefore returned %d deliveries, want 1", len(due))
		}
		if due[0].Title != "after" || !due[0].ScheduledFor.Equal(base.Add(time.Hour)) {
			t.Fatalf("delivery not overwritten: %+v", due[0])
		}
	})

	t.Run("NextAtReportsEarliestInstant", func(t *testing.T) {
		flush(t)

		// Arrange
		for i, at := range []time.Time{base.Add(3 * time.Hour), base.Add(time.Hour)} {
			d := entity.ScheduledDelivery{Key: "rule:3:7:" + string(rune('a'+i)), UserID: 7, ScheduledFor: at}
			if err := q.Enqueue(ctx, d); err != nil {
				t.Fatalf("Enqueue: %v", err)
			}
		}

		// Act
		at, ok, err := q.NextAt(ctx)

		// Assert
		if err != nil {
			t.Fatalf("NextAt: %v", err)
		}
		if !ok {
			t.Fatal("NextAt reported an empty queue")
		}
		if !at.Equal(base.Add(time.Hour)) {
			t.Fatalf("NextAt = %v, want %v", at, base.Add(time.Hour))
		}
	})

	t.Run("NextAtOnEmptyQueue", func(t *testing.T) {
		flush(t)

		// Act
		_, ok, err := q.NextAt(ctx)

		// Assert
		if err != nil {
			t.Fatalf("NextAt: %v", err)
		}
		if ok {
			t.Fatal("NextAt reported a delivery on an empty queue")
		}
	})

	t.Run("RemoveDropsIndexAndPayload", func(t *testing.T) {
		flush(t)

		// Arrange
		d := entity.ScheduledDelivery{Key: "rule:4:7:gone", UserID: 7, ScheduledFor: base}
		if err := q.Enqueue(ctx, d); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}

		// Act
		if err := q.Remove(ctx, d.Key); err != nil {
			t.Fatalf("Remove: %v", err)
		}

		// Assert
		due, err := q.DueBefore(ctx, base.Add(time.Hour))
		if err != nil {
			t.Fatalf("DueBefore: %v", err)
		}
		if len(due) != 0 {
			t.Fatalf("removed delivery still due: %+v", due)
		}
		if n, err := client.Exists(ctx, payloadKeyPrefix+d.Key).Result(); err != nil || n != 0 {
			t.Fatalf("payload still stored (exists=%d, err=%v)", n, err)
		}
	})

	t.Run("RemoveUnknownKeyIsNoOp", func(t *testing.T) {
		flush(t)

		// Act / Assert
		if err := q.Remove(ctx, "rule:5:7:never-queued"); err != nil {
			t.Fatalf("Remove: %v", err)
		}
	})

	t.Run("PrunesDanglingIndexEntries", func(t *testing.T) {
		flush(t)

		// Arrange
		kept := entity.ScheduledDelivery{Key: "rule:6:7:kept", UserID: 7, ScheduledFor: base}
		if err := q.Enqueue(ctx, kept); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
		// Index an entry whose payload never existed.
		if err := client.ZAdd(ctx, pendingIndexKey, redis.Z{
			Score:  float64(base.UnixMilli()),
			Member: "rule:6:7:dangling",
		}).Err(); err != nil {
			t.Fatalf("seed dangling entry: %v", err)
		}

		// Act
		due, err := q.DueBefore(ctx, base.Add(time.Hour))

		// Assert
		if err != nil {
			t.Fatalf("DueBefore: %v", err)
		}
		if len(due) != 1 || due[0].Key != kept.Key {
			t.Fatalf("DueBefore = %+v, want only %q", due, kept.Key)
		}
		if n, err := client.ZScore(ctx, pendingIndexKey, "rule:6:7:dangling").Result(); err != redis.Nil {
			t.Fatalf("dangling entry not pruned (score=%v, err=%v)", n, err)
		}
	})
}
