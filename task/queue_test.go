package task

import (
	"testing"
	"time"
)

func TestRetrieveDueOrdering(t *testing.T) {
	base := time.Unix(1000, 0)
	clock := base
	q := NewQueue(func() time.Time { return clock })

	t1 := base.Add(time.Second)
	t3 := base.Add(2 * time.Second)

	firstID := q.EnqueueAt(&Task{Kind: System, Action: SystemAction{Name: "a"}}, t1)
	secondID := q.EnqueueAt(&Task{Kind: System, Action: SystemAction{Name: "b"}}, t1) // t2 == t1
	thirdID := q.EnqueueAt(&Task{Kind: System, Action: SystemAction{Name: "c"}}, t3)

	clock = t3
	due := q.RetrieveDue(nil)
	if len(due) != 3 {
		t.Fatalf("expected 3 due tasks, got %d", len(due))
	}
	gotIDs := []uint64{due[0].ID, due[1].ID, due[2].ID}
	wantIDs := []uint64{firstID, secondID, thirdID}
	for i := range wantIDs {
		if gotIDs[i] != wantIDs[i] {
			t.Fatalf("task order mismatch at %d: got %v want %v", i, gotIDs, wantIDs)
		}
	}
}

func TestRetrieveDueRespectsDeadline(t *testing.T) {
	base := time.Unix(2000, 0)
	clock := base
	q := NewQueue(func() time.Time { return clock })

	q.EnqueueAt(&Task{Kind: System}, base)
	future := q.EnqueueAt(&Task{Kind: System}, base.Add(time.Hour))

	due := q.RetrieveDue(nil)
	if len(due) != 1 {
		t.Fatalf("expected only the immediately-due task, got %d", len(due))
	}
	if q.Len() != 1 {
		t.Fatalf("expected the future task to remain queued")
	}

	clock = base.Add(time.Hour)
	due = q.RetrieveDue(nil)
	if len(due) != 1 || due[0].ID != future {
		t.Fatalf("expected the future task to become due")
	}
}

func TestEnqueueDefaultsToNow(t *testing.T) {
	now := time.Unix(3000, 0)
	q := NewQueue(func() time.Time { return now })
	id := q.Enqueue(&Task{Kind: ModifyOverlay, Selector: BySelectorName("watch")})
	due := q.RetrieveDue(nil)
	if len(due) != 1 || due[0].ID != id {
		t.Fatalf("expected immediately-enqueued task to be due at its own instant")
	}
}

func TestCancelRemovesPendingTask(t *testing.T) {
	now := time.Unix(4000, 0)
	q := NewQueue(func() time.Time { return now })
	id := q.EnqueueAt(&Task{Kind: DropOverlay}, now.Add(time.Minute))
	if !q.Cancel(id) {
		t.Fatalf("expected Cancel to find the pending task")
	}
	if q.Cancel(id) {
		t.Fatalf("expected second Cancel of the same id to fail")
	}
}
