package zigate

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// staleDeviceTTL is how long a device can go without a fresh
// DeviceAnnounce, DevicesList entry, or attribute report before
// Coordinator.GetDevices stops including it. ZigBee end devices and
// routers that drop off the network silently (battery death, reset)
// otherwise linger forever in the in-memory device map.
const staleDeviceTTL = 30 * time.Minute

const staleSweepInterval = 5 * time.Minute

// staleness tracks a last-seen timestamp per short address in a TTL
// cache, independent of the Device records themselves so a device's
// discovered endpoint/cluster state survives a brief network absence
// and only disappears from listings after it has actually expired.
type staleness struct {
	seen *cache.Cache
}

func newStaleness() *staleness {
	return &staleness{seen: cache.New(staleDeviceTTL, staleSweepInterval)}
}

// touch marks shortAddr as seen just now, resetting its TTL.
func (s *staleness) touch(shortAddr uint16) {
	s.seen.Set(keyFor(shortAddr), struct{}{}, cache.DefaultExpiration)
}

// isStale reports whether shortAddr has not been touched within the TTL
// window (or was never touched at all).
func (s *staleness) isStale(shortAddr uint16) bool {
	_, found := s.seen.Get(keyFor(shortAddr))
	return !found
}

func keyFor(shortAddr uint16) string {
	const hexDigits = "0123456789ABCDEF"
	b := [6]byte{'0', 'x', hexDigits[shortAddr>>12&0xF], hexDigits[shortAddr>>8&0xF], hexDigits[shortAddr>>4&0xF], hexDigits[shortAddr&0xF]}
	return string(b[:])
}
