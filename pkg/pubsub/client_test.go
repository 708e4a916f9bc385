package pubsub

import (
	"context"
	"testing"

	"github.com/foresttrail/trailops/pkg/config"
)

func TestTopicResourceName(t *testing.T) {
	cases := []struct {
		project, name, want string
	}{
		{"trail-prod", "trailops-transfer-events", "projects/trail-prod/topics/trailops-transfer-events"},
		{"trail-prod", " projects/other/topics/events ", "projects/other/topics/events"},
		{"", "events", ""},
		{"trail-prod", "  ", ""},
	}
	for _, tc := range cases {
		if got := TopicResourceName(tc.project, tc.name); got != tc.want {
			t.Fatalf("TopicResourceName(%q, %q) = %q, want %q", tc.project, tc.name, got, tc.want)
		}
	}
}

func TestNewClientRequiresProject(t *testing.T) {
	if _, err := NewClient(context.Background(), config.GCPConfig{}, []string{"events"}, nil); err != errProjectIDRequired {
		t.Fatalf("expected project id error, got %v", err)
	}
}

func TestNilClient(t *testing.T) {
	var c *Client
	if c.Publisher("events") != nil {
		t.Fatal("expected nil publisher from nil client")
	}
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("expected ping on nil client to fail")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close on nil client should be a no-op, got %v", err)
	}
	if got := cleanNames([]string{" a ", "", "b"}); len(got) != 2 || got[0] != "a" {
		t.Fatalf("unexpected cleaned names %v", got)
	}
}
