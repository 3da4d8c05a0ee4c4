//go:build !linux

package main

const (
	sdReady    = "READY=1"
	sdStopping = "STOPPING=1"
)

func sdNotify(string) {}
