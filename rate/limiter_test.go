package rate

import (
	"testing"
	"time"
)

func TestLimiter(t *testing.T) {
	interval := 10 * time.Millisecond
	l := New(Every(interval), 1, time.Minute)
	defer l.Stop()

	tooshort := 1 * time.Millisecond

	client := "10.0.0.1"
	expected := []bool{true, false, true, true, false, false}
	waits := []time.Duration{tooshort, interval, interval, tooshort, tooshort, tooshort}
	for i, exp := range expected {
		if got := l.Allow(client); got != exp {
			t.Fatalf("iteration %d: expected %v, but got %v", i, exp, got)
		}
		time.Sleep(waits[i])
	}
}

func TestLimiterWithBurst(t *testing.T) {
	client := "10.0.0.2"
	burst := 10

	interval := 100 * time.Millisecond
	tooshort := 10 * time.Millisecond
	shortest := 1 * time.Millisecond

	expected := []bool{true, true, true, true, true, true, true, true, true, true}
	waits := []time.Duration{0, 0, 0, 0, 0, 0, 0, 0, 0, 0}

	expected = append(expected, false, true, true, false, false, false)
	waits = append(waits, interval, interval, tooshort, tooshort, shortest, shortest)

	l := New(Every(interval), burst, time.Minute)
	defer l.Stop()

	for i, exp := range expected {
		if got := l.Allow(client); got != exp {
			t.Fatalf("iteration %d: expected %v, but got %v", i, exp, got)
		}
		time.Sleep(waits[i])
	}
}

func TestLimiterClientsAreIndependent(t *testing.T) {
	interval := 50 * time.Millisecond
	l := New(Every(interval), 1, time.Minute)
	defer l.Stop()

	if !l.Allow("a") {
		t.Fatal("first request for client a should pass")
	}
	if l.Allow("a") {
		t.Fatal("second immediate request for client a should be limited")
	}
	if !l.Allow("b") {
		t.Fatal("client b should not be affected by client a's bucket")
	}
}
