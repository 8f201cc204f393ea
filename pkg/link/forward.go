package link

import "github.com/itohio/gohe/pkg/axes"

// Forward drains frames until the channel is closed. Axes frames are stored
// as the slave buffer of a; every frame, axes included, is then passed to
// next when it is not nil.
func Forward(frames <-chan Frame, a *axes.Aggregator, next func(Frame)) {
	for f := range frames {
		if f.Kind == KindAxes && a != nil {
			a.SetFromSlave(f.Axes)
		}
		if next != nil {
			next(f)
		}
	}
}
