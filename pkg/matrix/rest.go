package matrix

// RestPeriod is the default quiet time before rest values are recaptured.
const RestPeriod uint32 = 300000

// RestPolicy selects when rest baselines are latched.
type RestPolicy uint8

const (
	// RestIdle latches only on the cycle where the quiet period ran out.
	RestIdle RestPolicy = iota
	// RestWindow latches on every cycle for a period after any key change,
	// then once more when the period runs out. Inside the window a baseline
	// may only move down.
	RestWindow
)

func (p RestPolicy) String() string {
	switch p {
	case RestWindow:
		return "window"
	case RestIdle:
		return "idle"
	}
	return "unknown"
}

// RestController decides on which scan cycles rest baselines are latched.
// The deadline starts at zero so the first cycle after boot latches.
type RestController struct {
	Period uint32
	Policy RestPolicy

	deadline uint32
	open     bool
	expired  bool
	latch    bool
}

// NewRestController creates a controller; a zero period means RestPeriod.
func NewRestController(policy RestPolicy, period uint32) *RestController {
	if period == 0 {
		period = RestPeriod
	}
	return &RestController{Period: period, Policy: policy}
}

// Begin starts a cycle at time now. It reports whether the deadline has
// elapsed, in which case the scanner sweeps all columns.
func (r *RestController) Begin(now uint32) bool {
	r.expired = int32(now-r.deadline) > 0
	r.latch = r.expired || (r.Policy == RestWindow && r.open)
	return r.expired
}

// Latching reports whether the current cycle stores new rest values.
func (r *RestController) Latching() bool {
	return r.latch
}

// Expired reports whether the current cycle is the one where the quiet
// period ran out.
func (r *RestController) Expired() bool {
	return r.expired
}

// Open reports whether a latch window is open.
func (r *RestController) Open() bool {
	return r.open
}

// Deadline returns the time of the next scheduled recapture.
func (r *RestController) Deadline() uint32 {
	return r.deadline
}

// End finishes a cycle. changed reports any actuation change in the cycle.
func (r *RestController) End(now uint32, changed bool) {
	switch {
	case changed:
		r.deadline = now + r.Period
		r.open = r.Policy == RestWindow
	case r.expired:
		r.deadline = now + r.Period
		r.open = false
	}
	r.expired = false
	r.latch = false
}
