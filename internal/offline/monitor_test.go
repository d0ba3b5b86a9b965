package offline

import (
	"context"
	"syscall"
	"testing"
	"time"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(ctx context.Context) error {
	return f.err
}

func TestMonitorTransitionsNotifySubscribers(t *testing.T) {
	monitor := NewMonitor(nil, time.Minute)
	var events []bool
	monitor.Subscribe(func(online bool) {
		events = append(events, online)
	})

	if !monitor.Online() {
		t.Fatalf("monitor should start online")
	}

	monitor.ReportFailure(Classify("checkout", syscall.ECONNREFUSED))
	if monitor.Online() {
		t.Fatalf("monitor should be offline after network failure")
	}

	// 重复上报不再触发回调
	monitor.ReportFailure(Classify("checkout", syscall.ECONNRESET))

	monitor.ReportSuccess()
	if !monitor.Online() {
		t.Fatalf("monitor should be online after success report")
	}

	if len(events) != 2 {
		t.Fatalf("subscriber event count want 2 got %d", len(events))
	}
	if events[0] != false || events[1] != true {
		t.Fatalf("subscriber events want [false true] got %v", events)
	}
}

func TestMonitorIgnoresBusinessErrors(t *testing.T) {
	monitor := NewMonitor(nil, time.Minute)

	monitor.ReportFailure(context.Canceled)
	if !monitor.Online() {
		t.Fatalf("business error should not flip monitor offline")
	}
}

func TestMonitorProbeUsesPinger(t *testing.T) {
	pinger := &fakePinger{err: Classify("db_ping", syscall.ECONNREFUSED)}
	monitor := NewMonitor(pinger, time.Minute)

	monitor.probe(context.Background())
	if monitor.Online() {
		t.Fatalf("failed probe should flip monitor offline")
	}

	pinger.err = nil
	monitor.probe(context.Background())
	if !monitor.Online() {
		t.Fatalf("successful probe should flip monitor online")
	}
}
