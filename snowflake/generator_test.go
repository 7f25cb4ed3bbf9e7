package snowflake

import (
	"sync"
	"testing"

	"github.com/skillsenselab/iam/errors"
)

func newTestGenerator(t *testing.T, nodeID int64) *Generator {
	t.Helper()
	g, err := New(Config{NodeID: nodeID})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func TestNewValidatesNodeID(t *testing.T) {
	tests := []struct {
		name    string
		nodeID  int64
		wantErr bool
	}{
		{"zero", 0, false},
		{"max", MaxNodeID, false},
		{"negative", -1, true},
		{"too large", MaxNodeID + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Config{NodeID: tt.nodeID})
			if (err != nil) != tt.wantErr {
				t.Errorf("New(nodeID=%d) error = %v, wantErr %v", tt.nodeID, err, tt.wantErr)
			}
			if err != nil && !errors.IsCode(err, errors.ErrCodeConfiguration) {
				t.Errorf("expected CONFIGURATION_ERROR, got %v", err)
			}
		})
	}
}

func TestNextStrictlyIncreasingSameMillisecond(t *testing.T) {
	g := newTestGenerator(t, 1)
	g.now = func() int64 { return Epoch + 1000 }

	var prev int64 = -1
	for i := 0; i < 4096; i++ {
		id, err := g.Next()
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if id <= prev {
			t.Fatalf("call %d: id %d not greater than previous %d", i, id, prev)
		}
		prev = id
	}
}

func TestNextBlocksUntilNextMillisecondOnOverflow(t *testing.T) {
	g := newTestGenerator(t, 1)

	// Frozen clock for the first 4096 IDs, then exhaustion forces a spin;
	// the clock advances after a few polls.
	ms := Epoch + 5000
	ids := make([]int64, 0, 5000)
	issued := 0
	g.now = func() int64 {
		issued++
		if issued <= 4096+3 {
			return ms
		}
		return ms + 1
	}

	var prev int64 = -1
	for i := 0; i < 5000; i++ {
		id, err := g.Next()
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if id <= prev {
			t.Fatalf("call %d: id %d not greater than previous %d", i, id, prev)
		}
		prev = id
		ids = append(ids, id)
	}

	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
}

func TestNextClockRegressionIsFatal(t *testing.T) {
	g := newTestGenerator(t, 1)

	ms := Epoch + 100
	g.now = func() int64 { return ms }
	if _, err := g.Next(); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ms = Epoch + 50
	_, err := g.Next()
	if err == nil {
		t.Fatal("expected error after clock regression")
	}
	if !errors.IsCode(err, errors.ErrCodeClockRegression) {
		t.Errorf("expected CLOCK_REGRESSION, got %v", err)
	}
}

func TestDistinctNodesNeverCollide(t *testing.T) {
	g1 := newTestGenerator(t, 1)
	g2 := newTestGenerator(t, 2)

	// Same frozen clock on both generators: only the node bits differ.
	ms := Epoch + 777
	g1.now = func() int64 { return ms }
	g2.now = func() int64 { return ms }

	seen := make(map[int64]string)
	for i := 0; i < 2000; i++ {
		id1, err := g1.Next()
		if err != nil {
			t.Fatalf("g1 call %d: %v", i, err)
		}
		id2, err := g2.Next()
		if err != nil {
			t.Fatalf("g2 call %d: %v", i, err)
		}
		if owner, dup := seen[id1]; dup {
			t.Fatalf("id %d already issued by %s", id1, owner)
		}
		seen[id1] = "g1"
		if owner, dup := seen[id2]; dup {
			t.Fatalf("id %d already issued by %s", id2, owner)
		}
		seen[id2] = "g2"
	}
}

func TestNextConcurrentCallersUnique(t *testing.T) {
	g := newTestGenerator(t, 3)

	const (
		goroutines = 8
		perWorker  = 500
	)

	results := make([][]int64, goroutines)
	var wg sync.WaitGroup
	for w := 0; w < goroutines; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			ids := make([]int64, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				id, err := g.Next()
				if err != nil {
					t.Errorf("worker %d call %d: %v", w, i, err)
					return
				}
				ids = append(ids, id)
			}
			results[w] = ids
		}(w)
	}
	wg.Wait()

	seen := make(map[int64]bool, goroutines*perWorker)
	total := 0
	for _, ids := range results {
		for _, id := range ids {
			if seen[id] {
				t.Fatalf("duplicate id %d under concurrency", id)
			}
			seen[id] = true
			total++
		}
	}
	if total != goroutines*perWorker {
		t.Fatalf("expected %d ids, got %d", goroutines*perWorker, total)
	}
}

func TestPackingLayout(t *testing.T) {
	g := newTestGenerator(t, 5)
	g.now = func() int64 { return Epoch + 1 }

	id, err := g.Next()
	if err != nil {
		t.Fatal(err)
	}

	wantTimestamp := int64(1)
	wantNode := int64(5)
	wantSeq := int64(0)

	if got := id >> 22; got != wantTimestamp {
		t.Errorf("timestamp bits: expected %d, got %d", wantTimestamp, got)
	}
	if got := (id >> 12) & MaxNodeID; got != wantNode {
		t.Errorf("node bits: expected %d, got %d", wantNode, got)
	}
	if got := id & maxSequence; got != wantSeq {
		t.Errorf("sequence bits: expected %d, got %d", wantSeq, got)
	}
}
