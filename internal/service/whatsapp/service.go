package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	client "github.com/mamadbah2/silofeed/pkg/clients/whatsapp"
)

// ReportNotifier pushes text reports to a fixed WhatsApp recipient.
type ReportNotifier struct {
	client    client.Client
	recipient string
	timeout   time.Duration
	logger    *zap.Logger
}

// NewReportNotifier wires a notifier that delivers to recipient.
func NewReportNotifier(c client.Client, recipient string, logger *zap.Logger) *ReportNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportNotifier{
		client:    c,
		recipient: recipient,
		timeout:   10 * time.Second,
		logger:    logger,
	}
}

// Notify sends text, split into as many messages as the API limit requires.
// Chunks go out in order and the first failure stops the sequence.
func (n *ReportNotifier) Notify(ctx context.Context, text string) error {
	if n.recipient == "" {
		return errors.New("whatsapp notifier: recipient is not configured")
	}

	chunks := client.SplitText(text, client.MaxTextLength)
	if len(chunks) == 0 {
		return errors.New("whatsapp notifier: empty report")
	}

	for i, chunk := range chunks {
		ctxWithTimeout, cancel := context.WithTimeout(ctx, n.timeout)
		_, err := n.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
			To:   n.recipient,
			Body: chunk,
		})
		cancel()
		if err != nil {
			return fmt.Errorf("send report part %d/%d: %w", i+1, len(chunks), err)
		}
	}

	n.logger.Info("report delivered", zap.String("to", n.recipient), zap.Int("parts", len(chunks)))
	return nil
}
