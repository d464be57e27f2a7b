package service

import (
	"context"
	"testing"
	"time"
)

// waitForPendingSaves blocks until the background save queue drains.
func waitForPendingSaves(t *testing.T, svc *Service) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if svc.SaveStatus(context.Background()).Pending == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("save queue did not drain before deadline")
}
