package analytics

import "time"

// SetNowFunc replaces the clock and returns a func restoring it.
func SetNowFunc(f func() time.Time) (restore func()) {
	orig := nowFunc
	nowFunc = f
	return func() { nowFunc = orig }
}
