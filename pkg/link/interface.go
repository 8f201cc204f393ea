package link

// Device defines the interface for link endpoints (real or simulated).
type Device interface {
	Connect() error
	Close() error
	Frames() <-chan Frame
	Send(f Frame) error
	IsConnected() bool
}

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)
