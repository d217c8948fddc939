package debugserver

import (
	"testing"

	"github.com/danthegoodman1/pgscan/coordinator"
)

func TestRegistryListScansReportsProgress(t *testing.T) {
	reg := NewRegistry()
	coord := coordinator.New(10000, 1000)
	unregister := reg.RegisterScan("scan-1", "public", "events", coord)
	defer unregister()

	coord.NextTask()

	summaries := reg.ListScans()
	if len(summaries) != 1 {
		t.Fatalf("got %d scans, want 1", len(summaries))
	}
	if summaries[0].ID != "scan-1" || summaries[0].ClaimedPages != 1000 {
		t.Fatalf("got %+v", summaries[0])
	}
}

func TestRegistryWorkersTracksActiveSet(t *testing.T) {
	reg := NewRegistry()
	coord := coordinator.New(10000, 1000)
	unregisterScan := reg.RegisterScan("scan-2", "public", "events", coord)
	defer unregisterScan()

	unregisterWorker := reg.RegisterWorker("scan-2", "worker-a")
	workers, ok := reg.Workers("scan-2")
	if !ok || len(workers) != 1 || workers[0].ID != "worker-a" {
		t.Fatalf("got (%v, %v)", workers, ok)
	}

	unregisterWorker()
	workers, ok = reg.Workers("scan-2")
	if !ok || len(workers) != 0 {
		t.Fatalf("got (%v, %v)", workers, ok)
	}
}

func TestRegistryWorkersUnknownScan(t *testing.T) {
	reg := NewRegistry()
	if _, ok := reg.Workers("missing"); ok {
		t.Fatal("expected ok=false for unregistered scan")
	}
}
