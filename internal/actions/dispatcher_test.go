package actions

import (
	"context"
	"errors"
	"testing"

	"github.com/atharv-dange/vaani/internal/intent"
)

func TestExecuteCallEndsSession(t *testing.T) {
	device := NewMockDevice()
	d := NewDispatcher(device)

	res, err := d.Execute(context.Background(), Action{
		Type:   intent.ActionCallContact,
		Params: map[string]string{"contact": "Harsh Singh", "number": "+911111111111"},
	}, "")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Kind != ResultEndSession {
		t.Fatalf("Kind = %q, want end_session", res.Kind)
	}
	if placed := device.Placed(); len(placed) != 1 || placed[0] != "Harsh Singh|+911111111111" {
		t.Fatalf("Placed() = %v", placed)
	}
}

func TestExecuteCallWithoutNumberAsksUser(t *testing.T) {
	d := NewDispatcher(NewMockDevice())
	res, err := d.Execute(context.Background(), Action{
		Type:   intent.ActionCallContact,
		Params: map[string]string{"contact": "Harsh Singh"},
	}, "")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Kind != ResultAskUser || res.Text == "" {
		t.Fatalf("result = %+v, want ask_user with question", res)
	}
}

func TestExecuteAlarmFeedbackKeepsSession(t *testing.T) {
	d := NewDispatcher(NewMockDevice())
	res, err := d.Execute(context.Background(), Action{
		Type:   intent.ActionSetAlarm,
		Params: map[string]string{"time": "7 am"},
	}, "")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Kind != ResultSuccessWithFeedback {
		t.Fatalf("Kind = %q, want success_feedback", res.Kind)
	}
}

func TestExecuteDeviceFailure(t *testing.T) {
	device := NewMockDevice()
	device.Fail(errors.New("telephony unavailable"))
	d := NewDispatcher(device)
	res, err := d.Execute(context.Background(), Action{
		Type:   intent.ActionCallContact,
		Params: map[string]string{"contact": "Harsh", "number": "+91"},
	}, "")
	if err == nil {
		t.Fatalf("expected device error")
	}
	if res.Kind != ResultFailure {
		t.Fatalf("Kind = %q, want failure", res.Kind)
	}
}

func TestTryInOrderFallsThrough(t *testing.T) {
	var order []string
	strategies := []LaunchStrategy{
		{Name: "primary", Launch: func(context.Context, string) error {
			order = append(order, "primary")
			return errors.New("boom")
		}},
		{Name: "fallback", Launch: func(context.Context, string) error {
			order = append(order, "fallback")
			return nil
		}},
	}
	name, err := TryInOrder(context.Background(), strategies, "q")
	if err != nil {
		t.Fatalf("TryInOrder() error = %v", err)
	}
	if name != "fallback" {
		t.Fatalf("winner = %q, want fallback", name)
	}
	if len(order) != 2 {
		t.Fatalf("order = %v, want both strategies tried", order)
	}
}

func TestTryInOrderAllFail(t *testing.T) {
	strategies := []LaunchStrategy{
		{Name: "only", Launch: func(context.Context, string) error { return errors.New("boom") }},
	}
	if _, err := TryInOrder(context.Background(), strategies, "q"); !errors.Is(err, ErrAllStrategiesFailed) {
		t.Fatalf("error = %v, want ErrAllStrategiesFailed", err)
	}
}
