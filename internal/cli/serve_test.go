package cli

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/matzehuels/sitegraph/pkg/errors"
)

func TestNewWatcher(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code errors.Code
	}{
		{"file", "graph.json", ""},
		{"url", "https://example.com/graph.json", errors.ErrCodeInvalidInput},
		{"empty", "", errors.ErrCodeInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := newWatcher(tt.src, 0, nil)
			if tt.code == "" {
				if err != nil || w == nil {
					t.Fatalf("newWatcher(%q) = %v, %v", tt.src, w, err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("newWatcher(%q) error = %v, want %s", tt.src, err, tt.code)
			}
		})
	}
}

func TestServeWatchURLFailsBeforeStarting(t *testing.T) {
	t.Setenv(envConfig, "")
	root := New(os.Stderr, LogInfo).RootCommand()
	root.SetArgs([]string{"serve", "https://example.com/graph.json",
		"--watch", "--addr", "127.0.0.1:0", "--no-metrics", "--no-cache"})

	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(context.Background()) }()

	select {
	case err := <-done:
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("serve --watch <url> = %v, want INVALID_INPUT", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve --watch <url> kept running")
	}
}
