package flume_test

import (
	"testing"

	"github.com/brickingsoft/flume"
)

func TestShutdownWithoutStartup(t *testing.T) {
	// the shared executors were never set up, shutdown builds the default
	// instance and closes it instead of tripping over a nil one
	if err := flume.ShutdownGracefully(); err != nil {
		t.Error(err)
	}
}

func TestStartup(t *testing.T) {
	err := flume.Startup()
	if err != nil {
		t.Fatal(err)
	}
	ctx := flume.Background()
	if ctx == nil {
		t.Error("background context is nil")
	}
	err = flume.Shutdown()
	if err != nil {
		t.Error(err)
	}
}
