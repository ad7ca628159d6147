package ratelimiter

import (
	"testing"
	"time"
)

func TestFixedWindow_AllowsUpToLimit(t *testing.T) {
	rl := NewFixedWindow(3, time.Minute)
	defer rl.Close()

	for i := 0; i < 3; i++ {
		if ok, _ := rl.Allow("10.0.0.1"); !ok {
			t.Fatalf("request %d denied under the limit", i+1)
		}
	}

	ok, retryAfter := rl.Allow("10.0.0.1")
	if ok {
		t.Fatal("request over the limit was allowed")
	}
	if retryAfter <= 0 {
		t.Errorf("retryAfter = %v, want positive", retryAfter)
	}
}

func TestFixedWindow_SourcesAreIndependent(t *testing.T) {
	rl := NewFixedWindow(1, time.Minute)
	defer rl.Close()

	if ok, _ := rl.Allow("10.0.0.1"); !ok {
		t.Fatal("first source denied")
	}
	if ok, _ := rl.Allow("10.0.0.2"); !ok {
		t.Fatal("second source should have its own window")
	}
}

func TestFixedWindow_ResetsAfterFrame(t *testing.T) {
	rl := NewFixedWindow(1, 20*time.Millisecond)
	defer rl.Close()

	rl.Allow("10.0.0.1")
	if ok, _ := rl.Allow("10.0.0.1"); ok {
		t.Fatal("second request in frame was allowed")
	}

	time.Sleep(30 * time.Millisecond)

	if ok, _ := rl.Allow("10.0.0.1"); !ok {
		t.Fatal("request after frame reset was denied")
	}
}
