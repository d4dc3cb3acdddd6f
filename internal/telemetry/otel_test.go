package telemetry

import (
	"context"
	"testing"
	"time"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{
			name: "disabled",
			opts: Options{Enabled: false},
		},
		{
			name: "enabled with default service name",
			opts: Options{Enabled: true, Endpoint: "localhost:4318", Insecure: true},
		},
		{
			name: "enabled with version",
			opts: Options{Enabled: true, ServiceName: "tasks-api", ServiceVersion: "1.2.3", Endpoint: "localhost:4318", Insecure: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			shutdown, err := Setup(ctx, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Setup() error = %v, wantErr %v", err, tt.wantErr)
			}
			if shutdown == nil {
				t.Fatal("expected shutdown func")
			}
			if err := shutdown(ctx); err != nil {
				t.Errorf("shutdown() error = %v", err)
			}
		})
	}
}

func TestShutdown(t *testing.T) {
	t.Run("shutdown with nil provider", func(t *testing.T) {
		if err := Shutdown(context.Background(), nil); err != nil {
			t.Errorf("Shutdown() with nil provider should not error, got: %v", err)
		}
	})
}
