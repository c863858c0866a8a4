package app

import (
	"context"
	"encoding/json"
	"fmt"
)

// SavePreferences stores the user's recommendation preference bag verbatim.
func (a *App) SavePreferences(userID string, prefs map[string]any) error {
	if len(prefs) == 0 {
		return fmt.Errorf("%w: preferences required", ErrInvalidArgument)
	}
	if err := a.store.SavePreferences(userID, prefs); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// Recommendations forwards the user's stored preferences to the ML service
// and returns its payload untouched. A user without preferences is rejected
// before the service is called.
func (a *App) Recommendations(ctx context.Context, userID string) (json.RawMessage, error) {
	if a.ml == nil {
		return nil, fmt.Errorf("recommendation service not configured")
	}
	prefs, ok, err := a.store.GetPreferences(userID)
	if err != nil {
		return nil, fmt.Errorf("fetch preferences: %w", err)
	}
	if !ok || len(prefs) == 0 {
		return nil, ErrPreferencesRequired
	}
	payload, err := a.ml.Recommend(ctx, prefs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return payload, nil
}

// TrainModel triggers a retraining run on the ML service.
func (a *App) TrainModel(ctx context.Context) (json.RawMessage, error) {
	if a.ml == nil {
		return nil, fmt.Errorf("recommendation service not configured")
	}
	payload, err := a.ml.Train(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return payload, nil
}
