package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNumberSequencerFirstOfMonth(t *testing.T) {
	docRepo := newMockDocumentRepo()
	seq := newNumberSequencer(docRepo)

	at := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	number, err := seq.Next(context.Background(), 1, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if number != "DOC-202608-0001" {
		t.Errorf("expected DOC-202608-0001, got %q", number)
	}
}

func TestNumberSequencerIncrements(t *testing.T) {
	docRepo := newMockDocumentRepo()
	docRepo.lastNumber = "DOC-202608-0099"
	seq := newNumberSequencer(docRepo)

	at := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	number, err := seq.Next(context.Background(), 1, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if number != "DOC-202608-0100" {
		t.Errorf("expected DOC-202608-0100, got %q", number)
	}
}

func TestNumberSequencerMonthRollover(t *testing.T) {
	docRepo := newMockDocumentRepo()
	seq := newNumberSequencer(docRepo)

	at := time.Date(2026, 9, 1, 0, 0, 1, 0, time.UTC)
	number, err := seq.Next(context.Background(), 1, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if number != "DOC-202609-0001" {
		t.Errorf("expected the sequence to restart each month, got %q", number)
	}
}

func TestNumberSequencerMalformedLastNumber(t *testing.T) {
	docRepo := newMockDocumentRepo()
	docRepo.lastNumber = "DOC-202608-"
	seq := newNumberSequencer(docRepo)

	at := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	number, err := seq.Next(context.Background(), 1, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if number != "DOC-202608-0001" {
		t.Errorf("expected fallback to sequence 1, got %q", number)
	}
}

func TestNumberSequencerLookupError(t *testing.T) {
	docRepo := newMockDocumentRepo()
	docRepo.lastErr = errors.New("db unavailable")
	seq := newNumberSequencer(docRepo)

	if _, err := seq.Next(context.Background(), 1, time.Now()); err == nil {
		t.Fatal("expected error to propagate")
	}
}

func TestNumberSequencerIsolatesTenants(t *testing.T) {
	docRepo := newMockDocumentRepo()
	seq := newNumberSequencer(docRepo)

	at := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)

	a, err := seq.Next(context.Background(), 1, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := seq.Next(context.Background(), 2, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Each company runs its own sequence.
	if a != "DOC-202608-0001" || b != "DOC-202608-0001" {
		t.Errorf("expected both tenants to start at 0001, got %q and %q", a, b)
	}
}
