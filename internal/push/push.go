package push

import (
	"context"

	"github.com/rs/zerolog"
)

// LogPusher writes push deliveries to the log instead of an external
// provider. It stands in for a real delivery channel until one is wired up.
type LogPusher struct {
	log zerolog.Logger
}

func NewLogPusher(log zerolog.Logger) *LogPusher {
	return &LogPusher{log: log}
}

func (p *LogPusher) Push(ctx context.Context, userId int64, title, message string) error {
	p.log.Info().
		Int64("userId", userId).
		Str("title", title).
		Str("message", message).
		Msg("push notification")
	return nil
}
