package transfers

import (
	"testing"

	"github.com/foresttrail/trailops/pkg/enums"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to enums.TransferStatus
		want     bool
	}{
		{enums.TransferStatusPending, enums.TransferStatusInProgress, true},
		{enums.TransferStatusPending, enums.TransferStatusCompleted, true},
		{enums.TransferStatusPending, enums.TransferStatusCancelled, true},
		{enums.TransferStatusPending, enums.TransferStatusReturned, false},
		{enums.TransferStatusPending, enums.TransferStatusPending, false},
		{enums.TransferStatusInProgress, enums.TransferStatusCompleted, true},
		{enums.TransferStatusInProgress, enums.TransferStatusCancelled, true},
		{enums.TransferStatusInProgress, enums.TransferStatusReturned, true},
		{enums.TransferStatusInProgress, enums.TransferStatusPending, false},
		{enums.TransferStatusCompleted, enums.TransferStatusCancelled, true},
		{enums.TransferStatusCompleted, enums.TransferStatusReturned, true},
		{enums.TransferStatusCompleted, enums.TransferStatusCompleted, false},
		{enums.TransferStatusCompleted, enums.TransferStatusInProgress, false},
		{enums.TransferStatusCancelled, enums.TransferStatusCompleted, false},
		{enums.TransferStatusCancelled, enums.TransferStatusPending, false},
		{enums.TransferStatusReturned, enums.TransferStatusCompleted, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Fatalf("%s -> %s: expected %v got %v", tt.from, tt.to, tt.want, got)
		}
	}
}

func TestEffectOf(t *testing.T) {
	tests := []struct {
		from, to enums.TransferStatus
		want     effect
	}{
		{enums.TransferStatusPending, enums.TransferStatusCompleted, effectComplete},
		{enums.TransferStatusInProgress, enums.TransferStatusCompleted, effectComplete},
		{enums.TransferStatusCompleted, enums.TransferStatusCancelled, effectReverse},
		{enums.TransferStatusCompleted, enums.TransferStatusReturned, effectReverse},
		{enums.TransferStatusPending, enums.TransferStatusCancelled, effectNone},
		{enums.TransferStatusInProgress, enums.TransferStatusReturned, effectNone},
		{enums.TransferStatusPending, enums.TransferStatusInProgress, effectNone},
	}
	for _, tt := range tests {
		if got := effectOf(tt.from, tt.to); got != tt.want {
			t.Fatalf("%s -> %s: expected effect %d got %d", tt.from, tt.to, tt.want, got)
		}
	}
}

func TestAllowedTransitionsReturnsCopy(t *testing.T) {
	got := AllowedTransitions(enums.TransferStatusCompleted)
	if len(got) != 2 {
		t.Fatalf("expected 2 transitions, got %v", got)
	}
	got[0] = enums.TransferStatusPending
	if CanTransition(enums.TransferStatusCompleted, enums.TransferStatusPending) {
		t.Fatal("mutating the returned slice changed the table")
	}
	if len(AllowedTransitions(enums.TransferStatusReturned)) != 0 {
		t.Fatal("expected returned to be terminal")
	}
}

func TestIsEditable(t *testing.T) {
	for status, want := range map[enums.TransferStatus]bool{
		enums.TransferStatusPending:    true,
		enums.TransferStatusInProgress: true,
		enums.TransferStatusCompleted:  false,
		enums.TransferStatusCancelled:  false,
		enums.TransferStatusReturned:   false,
	} {
		if got := isEditable(status); got != want {
			t.Fatalf("%s: expected editable=%v", status, want)
		}
	}
}
