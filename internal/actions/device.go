package actions

import (
	"context"
	"fmt"
	"sync"
)

// Device is the platform surface actions land on: telephony, media playback,
// alarms and settings. Real implementations are platform bindings; tests and
// the simulator use MockDevice.
type Device interface {
	PlaceCall(ctx context.Context, number, displayName string) error
	PlayMedia(ctx context.Context, query string) error
	SetAlarm(ctx context.Context, spec string) error
	UpdateSetting(ctx context.Context, key, value string) error
}

// MockDevice records every action for assertions.
type MockDevice struct {
	mu       sync.Mutex
	Calls    []string
	Media    []string
	Alarms   []string
	Settings []string
	fail     error
}

func NewMockDevice() *MockDevice { return &MockDevice{} }

func (d *MockDevice) Fail(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fail = err
}

func (d *MockDevice) PlaceCall(_ context.Context, number, displayName string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail != nil {
		return d.fail
	}
	d.Calls = append(d.Calls, fmt.Sprintf("%s|%s", displayName, number))
	return nil
}

func (d *MockDevice) PlayMedia(_ context.Context, query string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail != nil {
		return d.fail
	}
	d.Media = append(d.Media, query)
	return nil
}

func (d *MockDevice) SetAlarm(_ context.Context, spec string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail != nil {
		return d.fail
	}
	d.Alarms = append(d.Alarms, spec)
	return nil
}

func (d *MockDevice) UpdateSetting(_ context.Context, key, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail != nil {
		return d.fail
	}
	d.Settings = append(d.Settings, key+"="+value)
	return nil
}

func (d *MockDevice) Placed() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.Calls))
	copy(out, d.Calls)
	return out
}
