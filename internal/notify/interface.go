package notify

import (
	"context"

	"wfip/internal/model"
)

// Notifier defines the interface for sending notifications.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyAnalysis(ctx context.Context, analysis model.UIAnalysis) error
}
