package notifier

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/almaluz/backend/pkg/mailer"
)

// MarketingBlast renders an arbitrary template once and sends it to the
// whole recipient list in fixed-size batches with a pause between
// batches, a crude but sufficient control for provider throughput
// limits. Sends within a batch run in parallel; batches are strictly
// sequential. A failing recipient never skips or aborts anyone else's
// send attempt.
func (s *Service) MarketingBlast(ctx context.Context, templateID uuid.UUID, recipients []string) BatchResult {
	if len(recipients) == 0 {
		return BatchResult{Errors: []string{errNoRecipient}}
	}

	tpl, err := s.store.ByID(ctx, templateID)
	if err != nil {
		s.log.WarnContext(ctx, "marketing blast skipped, template unavailable",
			slog.String("template_id", templateID.String()),
			slog.String("error", err.Error()),
		)
		return BatchResult{Errors: []string{errNoTemplate}}
	}

	vars := s.defaultVars()
	subject := mailer.Render(tpl.Subject, vars)
	html := mailer.Render(tpl.Content, vars)
	text := mailer.HTMLToText(html)

	results := make([]mailer.SendResult, len(recipients))
	for start := 0; start < len(recipients); start += blastBatchSize {
		if start > 0 {
			select {
			case <-ctx.Done():
				for i := start; i < len(recipients); i++ {
					results[i] = mailer.SendResult{Success: false, Error: ctx.Err().Error()}
				}
				return aggregate(results)
			case <-time.After(blastPause):
			}
		}

		end := min(start+blastBatchSize, len(recipients))
		var g errgroup.Group
		for i := start; i < end; i++ {
			to := recipients[i]
			g.Go(func() error {
				results[i] = s.mail.Send(ctx, &mailer.Email{
					To:      []string{to},
					Subject: subject,
					HTML:    html,
					Text:    text,
				})
				return nil
			})
		}
		_ = g.Wait()
	}

	agg := aggregate(results)
	if agg.Success {
		s.store.IncrementUsage(ctx, tpl.ID)
	}
	s.log.InfoContext(ctx, "marketing blast finished",
		slog.String("template_id", templateID.String()),
		slog.Int("sent", agg.Sent),
		slog.Int("failed", agg.Failed),
	)
	return agg
}
