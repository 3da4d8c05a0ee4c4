//go:build linux

package main

import (
	"github.com/coreos/go-systemd/v22/daemon"
)

const (
	sdReady    = daemon.SdNotifyReady
	sdStopping = daemon.SdNotifyStopping
)

// sdNotify tells systemd about lifecycle transitions. Outside a
// systemd unit (no NOTIFY_SOCKET) this is a no-op.
func sdNotify(state string) {
	_, _ = daemon.SdNotify(false, state)
}
