package axes

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testSources() []Source {
	return []Source{
		{
			Name: "joystick-left", Toggle: ToggleJoystick, Group: JoystickLeft,
			Coords: [Channels]Position{{2, 2}, {3, 1}, {3, 2}, {3, 3}},
		},
		{
			Name: "joystick-right", Toggle: ToggleJoystick, Group: JoystickRight,
			Coords: [Channels]Position{{7, 9}, {8, 8}, {8, 9}, {8, 10}},
		},
		{
			Name: "mouse-left", Toggle: ToggleMouse, Group: Mouse,
			Coords: [Channels]Position{{2, 2}, {3, 1}, {3, 2}, {3, 3}},
		},
		{
			Name: "scroll-left", Toggle: ToggleScroll, Group: Scroll,
			Coords: [Channels]Position{{1, 2}, {2, 1}, {2, 3}, {1, 4}},
		},
	}
}

func TestAdd_PublishAndReset(t *testing.T) {
	a := New(testSources())
	a.SetToggles(ToggleJoystick)

	a.Add(2, 2, 10)
	a.Add(2, 2, 15)
	a.Publish()

	got := a.FromSelf()
	assert.Equal(t, uint16(25), got[JoystickLeft][0])
	assert.Equal(t, Buffer{}, a.Pending())

	// Next cycle publishes without contributions
	a.Publish()
	assert.Equal(t, uint16(0), a.FromSelf()[JoystickLeft][0])
}

func TestAdd_Toggles(t *testing.T) {
	tests := []struct {
		name    string
		toggles uint8
		want    Buffer
	}{
		{name: "off", toggles: 0},
		{
			name:    "joystick",
			toggles: ToggleJoystick,
			want:    Buffer{JoystickLeft: {0, 0, 7, 0}},
		},
		{
			name:    "mouse",
			toggles: ToggleMouse,
			want:    Buffer{Mouse: {0, 0, 7, 0}},
		},
		{
			name:    "joystick and mouse",
			toggles: ToggleJoystick | ToggleMouse,
			want:    Buffer{JoystickLeft: {0, 0, 7, 0}, Mouse: {0, 0, 7, 0}},
		},
		{
			name:    "scroll only sees its own coordinates",
			toggles: ToggleScroll,
		},
		{
			name:    "left mouse only",
			toggles: ToggleMouseLeft,
			want:    Buffer{Mouse: {0, 0, 0, 7}},
		},
		{
			name:    "right mouse bit has no source here",
			toggles: ToggleMouseRight,
		},
	}

	sources := append(testSources(), Source{
		Name: "mouse-left-only", Toggle: ToggleMouseLeft, Group: Mouse,
		Coords: [Channels]Position{None, None, None, {3, 2}},
	})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(sources)
			a.SetToggles(tt.toggles)
			a.Add(3, 2, 7)
			a.Publish()
			assert.Equal(t, tt.want, a.FromSelf())
		})
	}
}

func TestToggleHelpers(t *testing.T) {
	a := New(testSources())
	assert.False(t, a.Active())

	a.Toggle(ToggleMouse)
	assert.True(t, a.Active())
	assert.Equal(t, ToggleMouse, a.Toggles())

	a.Enable(ToggleScroll)
	a.Disable(ToggleMouse)
	assert.Equal(t, ToggleScroll, a.Toggles())

	a.Toggle(ToggleScroll)
	assert.False(t, a.Active())
}

func TestCombined_Saturates(t *testing.T) {
	a := New(testSources())
	a.SetToggles(ToggleJoystick)
	a.Add(2, 2, 200)
	a.Publish()

	a.SetFromSlave(Buffer{JoystickLeft: {0xfff0, 5}})
	c := a.Combined()
	assert.Equal(t, uint16(0xffff), c[JoystickLeft][0])
	assert.Equal(t, uint16(5), c[JoystickLeft][1])
}

func TestFromSlave_Concurrent(t *testing.T) {
	a := New(testSources())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v uint16) {
			defer wg.Done()
			a.SetFromSlave(Buffer{Mouse: {v}})
			_ = a.FromSlave()
		}(uint16(i))
	}
	wg.Wait()

	assert.Less(t, a.FromSlave()[Mouse][0], uint16(8))
}
