package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeService Start 阻塞到上下文取消，可注入启动错误
type fakeService struct {
	name     string
	startErr error

	mu    *sync.Mutex
	stops *[]string
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	if s.startErr != nil {
		return s.startErr
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *fakeService) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	*s.stops = append(*s.stops, s.name)
	return nil
}

func TestRunnerPropagatesStartErrorAndStopsInReverseOrder(t *testing.T) {
	var mu sync.Mutex
	var stops []string
	a := &fakeService{name: "a", mu: &mu, stops: &stops}
	b := &fakeService{name: "b", mu: &mu, stops: &stops, startErr: errors.New("boom")}

	err := NewRunner(a, b).Run(context.Background(), time.Second, nil)
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected start error to propagate, got: %v", err)
	}
	if len(stops) != 2 || stops[0] != "b" || stops[1] != "a" {
		t.Fatalf("expected reverse-order stop, got: %v", stops)
	}
}

func TestRunnerTreatsCancellationAsCleanExit(t *testing.T) {
	var mu sync.Mutex
	var stops []string
	a := &fakeService{name: "a", mu: &mu, stops: &stops}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	if err := NewRunner(a).Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("expected clean exit on cancellation, got: %v", err)
	}
	if len(stops) != 1 || stops[0] != "a" {
		t.Fatalf("expected a to be stopped, got: %v", stops)
	}
}

func TestRunnerRejectsEmptyAndNilServices(t *testing.T) {
	if err := NewRunner().Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("expected error for empty runner")
	}
	if err := NewRunner(nil).Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("expected error for nil service")
	}
}
