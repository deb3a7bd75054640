package notifier

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/almaluz/backend/internal/catalog"
	"github.com/almaluz/backend/internal/templates"
	"github.com/almaluz/backend/pkg/mailer"
)

// BatchResult aggregates a multi-recipient send. Success means at least
// one recipient got the email; Errors always lists every per-recipient
// failure so callers can report or retry on their side.
type BatchResult struct {
	Success bool                `json:"success"`
	Sent    int                 `json:"sent"`
	Failed  int                 `json:"failed"`
	Errors  []string            `json:"errors,omitempty"`
	Results []mailer.SendResult `json:"results"`
}

// aggregate folds per-recipient results into a BatchResult.
func aggregate(results []mailer.SendResult) BatchResult {
	agg := BatchResult{Results: results}
	for _, r := range results {
		if r.Success {
			agg.Sent++
		} else {
			agg.Failed++
			agg.Errors = append(agg.Errors, r.Error)
		}
	}
	agg.Success = agg.Sent > 0
	return agg
}

// LowStockAlert notifies every admin recipient about a product running
// low. Recipients are fanned out in parallel and isolated: one failing
// address never cancels the others.
func (s *Service) LowStockAlert(ctx context.Context, product catalog.Product, threshold int, recipients []string) BatchResult {
	if len(recipients) == 0 {
		recipients = s.cfg.AdminEmails
	}
	if len(recipients) == 0 {
		s.log.WarnContext(ctx, "low stock alert skipped, no admin recipients",
			slog.String("sku", product.SKU),
		)
		return BatchResult{Errors: []string{errNoRecipient}}
	}

	tpl := s.loadTemplate(ctx, templates.TypeLowStockAlert)
	if tpl == nil {
		return BatchResult{Errors: []string{errNoTemplate}}
	}

	vars := overlay(s.defaultVars(), mailer.Vars{
		"product_name": product.Name,
		"product_sku":  product.SKU,
		"stock":        product.Stock,
		"threshold":    threshold,
	})
	subject := mailer.Render(tpl.Subject, vars)
	html := mailer.Render(tpl.Content, vars)
	text := mailer.HTMLToText(html)

	results := make([]mailer.SendResult, len(recipients))
	var g errgroup.Group
	for i, to := range recipients {
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
	_ = g.Wait() // send errors live in results, never in the group

	agg := aggregate(results)
	if agg.Success {
		s.store.IncrementUsage(ctx, tpl.ID)
	}
	return agg
}
