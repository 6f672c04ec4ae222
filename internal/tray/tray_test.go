package tray

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestArgv_Darwin(t *testing.T) {
	if got := openArgv("darwin", "2"); !reflect.DeepEqual(got, []string{"drutil", "-drive", "2", "tray", "eject"}) {
		t.Fatalf("open argv=%v", got)
	}
	if got := closeArgv("darwin", "2"); !reflect.DeepEqual(got, []string{"drutil", "-drive", "2", "tray", "close"}) {
		t.Fatalf("close argv=%v", got)
	}
}

func TestArgv_Linux(t *testing.T) {
	if got := openArgv("linux", "/dev/sr0"); !reflect.DeepEqual(got, []string{"eject", "/dev/sr0"}) {
		t.Fatalf("open argv=%v", got)
	}
	if got := closeArgv("linux", "/dev/sr0"); !reflect.DeepEqual(got, []string{"eject", "-t", "/dev/sr0"}) {
		t.Fatalf("close argv=%v", got)
	}
}

func TestOpenTray_ErrorCarriesDrive(t *testing.T) {
	c := New("/dev/sr1")
	c.goos = "linux"
	c.run = func(_ context.Context, _ []string) error {
		return errors.New("exit status 1")
	}

	err := c.OpenTray(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "/dev/sr1") {
		t.Fatalf("error %q should name the drive", err)
	}
}

func TestCloseTray_RunsCloseCommand(t *testing.T) {
	var got []string

	c := New("1")
	c.goos = "darwin"
	c.run = func(_ context.Context, argv []string) error {
		got = argv
		return nil
	}

	if err := c.CloseTray(context.Background()); err != nil {
		t.Fatalf("CloseTray err=%v", err)
	}
	if !reflect.DeepEqual(got, []string{"drutil", "-drive", "1", "tray", "close"}) {
		t.Fatalf("ran %v", got)
	}
}
