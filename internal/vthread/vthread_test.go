package vthread

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSwitchHandsOffControl(t *testing.T) {
	var trace []string

	self := NewRunning()
	var next *Context
	next = NewParked(func() {
		trace = append(trace, "b-start")
		Switch(next, self)
		trace = append(trace, "b-resumed")
		SwitchAway(self)
	})

	trace = append(trace, "a-start")
	Switch(self, next)
	trace = append(trace, "a-resumed")

	require.Equal(t, []string{"a-start", "b-start", "a-resumed"}, trace)

	done := make(chan struct{})
	go func() {
		Switch(self, next)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second switch never returned")
	}
	require.Equal(t, []string{"a-start", "b-start", "a-resumed", "b-resumed"}, trace)
}

func TestSwitchAwayDoesNotBlock(t *testing.T) {
	target := NewParked(func() {})
	done := make(chan struct{})
	go func() {
		SwitchAway(target)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("SwitchAway blocked")
	}
}
