package procfs

import (
	"github.com/tklauser/go-sysconf"
)

// userHZ is what USER_HZ is on every Go-supported Linux platform. It is only
// used when sysconf cannot answer.
const userHZ = 100

var sysconfClockTicks = func() (int64, error) {
	return sysconf.Sysconf(sysconf.SC_CLK_TCK)
}

// ClockTicks returns the number of clock ticks per second. Callers fetch it
// once at startup and pass it along.
func ClockTicks() uint64 {
	hz, err := sysconfClockTicks()
	if err != nil || hz <= 0 {
		return userHZ
	}
	return uint64(hz)
}
