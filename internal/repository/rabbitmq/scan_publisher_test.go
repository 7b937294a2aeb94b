package rabbitmq

import (
	"context"
	"testing"
	"time"

	"nfcExperience/business/experience"
)

func TestPublishScanWithoutChannel(t *testing.T) {
	p := &ScanPublisher{exchange: "nfc_experience.scans"}

	err := p.PublishScan(context.Background(), experience.ScanEvent{
		UID:        999001,
		Experience: experience.Unboxing,
		ScanCount:  1,
		ScannedAt:  time.Now(),
	})
	if err == nil {
		t.Fatal("expected an error when no channel is open")
	}
}

func TestCloseWithoutConnection(t *testing.T) {
	p := &ScanPublisher{}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !p.closed {
		t.Fatal("publisher should be marked closed")
	}
}
