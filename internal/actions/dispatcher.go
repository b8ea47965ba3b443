package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/atharv-dange/vaani/internal/intent"
)

// Dispatcher routes actions to the device. Media requests go through an
// ordered list of launch strategies so a broken preferred player degrades to
// the next option instead of failing the turn.
type Dispatcher struct {
	device          Device
	mediaStrategies []LaunchStrategy
}

func NewDispatcher(device Device, mediaStrategies ...LaunchStrategy) *Dispatcher {
	if len(mediaStrategies) == 0 {
		mediaStrategies = []LaunchStrategy{
			{
				Name: "device_player",
				Launch: func(ctx context.Context, query string) error {
					return device.PlayMedia(ctx, query)
				},
			},
		}
	}
	return &Dispatcher{device: device, mediaStrategies: mediaStrategies}
}

func (d *Dispatcher) Execute(ctx context.Context, action Action, _ string) (Result, error) {
	switch action.Type {
	case intent.ActionCallContact:
		return d.executeCall(ctx, action)
	case intent.ActionPlayMedia:
		return d.executePlay(ctx, action)
	case intent.ActionSetAlarm:
		return d.executeAlarm(ctx, action)
	case intent.ActionUpdateSetting:
		return d.executeSetting(ctx, action)
	default:
		return Result{}, fmt.Errorf("unsupported action type %q", action.Type)
	}
}

func (d *Dispatcher) executeCall(ctx context.Context, action Action) (Result, error) {
	number := strings.TrimSpace(action.Param("number"))
	name := strings.TrimSpace(action.Param("contact"))
	if number == "" {
		return Result{Kind: ResultAskUser, Text: "Which number should I call?"}, nil
	}
	if err := d.device.PlaceCall(ctx, number, name); err != nil {
		return Result{Kind: ResultFailure, Text: "I couldn't place that call."}, err
	}
	who := name
	if who == "" {
		who = number
	}
	// The dialer takes over the audio focus; the episode is done.
	return Result{Kind: ResultEndSession, Text: "Calling " + who + "."}, nil
}

func (d *Dispatcher) executePlay(ctx context.Context, action Action) (Result, error) {
	query := strings.TrimSpace(action.Param("query"))
	if query == "" {
		return Result{Kind: ResultAskUser, Text: "What should I play?"}, nil
	}
	launched, err := TryInOrder(ctx, d.mediaStrategies, query)
	if err != nil {
		return Result{Kind: ResultFailure, Text: "I couldn't start playback."}, err
	}
	_ = launched
	return Result{Kind: ResultEndSession, Text: "Playing " + query + "."}, nil
}

func (d *Dispatcher) executeAlarm(ctx context.Context, action Action) (Result, error) {
	spec := strings.TrimSpace(action.Param("time"))
	if spec == "" {
		return Result{Kind: ResultAskUser, Text: "When should the alarm go off?"}, nil
	}
	if err := d.device.SetAlarm(ctx, spec); err != nil {
		return Result{Kind: ResultFailure, Text: "I couldn't set that alarm."}, err
	}
	return Result{Kind: ResultSuccessWithFeedback, Text: "Alarm set for " + spec + "."}, nil
}

func (d *Dispatcher) executeSetting(ctx context.Context, action Action) (Result, error) {
	key := strings.TrimSpace(action.Param("setting"))
	value := strings.TrimSpace(action.Param("value"))
	if key == "" || value == "" {
		return Result{Kind: ResultAskUser, Text: "Which setting should I change?"}, nil
	}
	if err := d.device.UpdateSetting(ctx, key, value); err != nil {
		return Result{Kind: ResultFailure, Text: "I couldn't change " + key + "."}, err
	}
	return Result{Kind: ResultSuccessWithFeedback, Text: "Turned " + value + " " + key + "."}, nil
}
