package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ignite/listpilot/internal/domain"
	"github.com/ignite/listpilot/internal/pkg/logger"
	"github.com/ignite/listpilot/internal/service/template"
)

// Queue is the audience delivery queue. ClaimBatch must hand each pending
// row to exactly one caller even with several dispatcher instances
// running (the postgres implementation uses SKIP LOCKED).
type Queue interface {
	// RunningCampaignIDs returns campaigns with deliveries outstanding.
	RunningCampaignIDs(ctx context.Context) ([]string, error)

	// ClaimBatch moves up to limit pending rows to in-flight and returns
	// their subscriber IDs.
	ClaimBatch(ctx context.Context, campaignID string, limit int) ([]string, error)

	// MarkSent records a successful delivery for one audience row.
	MarkSent(ctx context.Context, campaignID, subscriberID string) error

	// MarkFailed records a permanent delivery failure for one audience row.
	MarkFailed(ctx context.Context, campaignID, subscriberID, reason string) error

	// ReclaimStale returns in-flight rows older than the cutoff to
	// pending. Rows stay in-flight forever if the dispatcher dies
	// between claim and outcome; without reclaim their campaign can
	// never finish.
	ReclaimStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

// CampaignSource supplies campaign state. Status is re-read through this
// before every batch.
type CampaignSource interface {
	Get(ctx context.Context, id string) (*domain.Campaign, error)
}

// TemplateSource supplies wrapper templates.
type TemplateSource interface {
	Get(ctx context.Context, id string) (*domain.Template, error)
}

// SubscriberSource batch-loads recipients.
type SubscriberSource interface {
	ByIDs(ctx context.Context, ids []string) ([]domain.Subscriber, error)
}

// Recorder folds delivery outcomes into campaign stats. Satisfied by
// stats.Aggregator.
type Recorder interface {
	Record(ctx context.Context, ev *domain.DeliveryEvent) error
}

// Config tunes a Dispatcher.
type Config struct {
	BatchSize    int
	PollInterval time.Duration

	// ReclaimAfter is how long a row may sit in-flight before it is
	// treated as abandoned by a dead dispatcher and requeued. It must
	// comfortably exceed the time one delivery can take.
	ReclaimAfter time.Duration
}

// Dispatcher drains running campaigns' audience queues.
type Dispatcher struct {
	queue       Queue
	campaigns   CampaignSource
	templates   TemplateSource
	subscribers SubscriberSource
	renderer    *template.Renderer
	sender      Sender
	recorder    Recorder
	cfg         Config
}

// NewDispatcher wires a dispatcher from its collaborators.
func NewDispatcher(queue Queue, campaigns CampaignSource, templates TemplateSource,
	subscribers SubscriberSource, renderer *template.Renderer, sender Sender,
	recorder Recorder, cfg Config) *Dispatcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.ReclaimAfter <= 0 {
		cfg.ReclaimAfter = 10 * time.Minute
	}
	return &Dispatcher{
		queue:       queue,
		campaigns:   campaigns,
		templates:   templates,
		subscribers: subscribers,
		renderer:    renderer,
		sender:      sender,
		recorder:    recorder,
		cfg:         cfg,
	}
}

// Run polls for work until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()
	logger.Info("dispatcher started", "batch_size", d.cfg.BatchSize,
		"poll_interval", d.cfg.PollInterval.String())
	for {
		select {
		case <-ctx.Done():
			logger.Info("dispatcher stopped")
			return
		case <-ticker.C:
			if err := d.RunOnce(ctx); err != nil {
				logger.Error("dispatch cycle", "error", err.Error())
			}
		}
	}
}

// RunOnce requeues abandoned in-flight rows, then processes batches for
// every running campaign.
func (d *Dispatcher) RunOnce(ctx context.Context) error {
	reclaimed, err := d.queue.ReclaimStale(ctx, d.cfg.ReclaimAfter)
	if err != nil {
		logger.Error("reclaim stale deliveries", "error", err.Error())
	} else if reclaimed > 0 {
		logger.Warn("requeued abandoned deliveries", "rows", reclaimed)
	}

	ids, err := d.queue.RunningCampaignIDs(ctx)
	if err != nil {
		return fmt.Errorf("list running campaigns: %w", err)
	}
	for _, id := range ids {
		if err := d.processCampaign(ctx, id); err != nil {
			logger.Error("process campaign", "campaign_id", id, "error", err.Error())
		}
	}
	return nil
}

func (d *Dispatcher) processCampaign(ctx context.Context, campaignID string) error {
	for {
		c, err := d.campaigns.Get(ctx, campaignID)
		if err != nil {
			return fmt.Errorf("load campaign: %w", err)
		}
		// Pause and cancel take effect here, between batches.
		if c.Status != domain.CampaignRunning {
			return nil
		}

		batch, err := d.queue.ClaimBatch(ctx, campaignID, d.cfg.BatchSize)
		if err != nil {
			return fmt.Errorf("claim batch: %w", err)
		}
		if len(batch) == 0 {
			return nil
		}

		tpl, err := d.loadTemplate(ctx, c)
		if err != nil {
			return err
		}

		subs, err := d.subscribers.ByIDs(ctx, batch)
		if err != nil {
			return fmt.Errorf("load recipients: %w", err)
		}
		for i := range subs {
			d.deliver(ctx, c, tpl, &subs[i])
		}
	}
}

func (d *Dispatcher) loadTemplate(ctx context.Context, c *domain.Campaign) (*domain.Template, error) {
	if c.TemplateID == nil {
		return nil, nil
	}
	tpl, err := d.templates.Get(ctx, *c.TemplateID)
	if errors.Is(err, template.ErrNotFound) {
		// A deleted template degrades to body-only rendering.
		logger.Warn("campaign template missing", "campaign_id", c.ID, "template_id", *c.TemplateID)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load template: %w", err)
	}
	return tpl, nil
}

// deliver renders and sends one message, marks the audience row and
// reports the outcome. Event IDs are derived from the (campaign,
// subscriber) pair so a crashed-and-retried delivery cannot double
// count.
func (d *Dispatcher) deliver(ctx context.Context, c *domain.Campaign, tpl *domain.Template, sub *domain.Subscriber) {
	fail := func(reason string) {
		if err := d.queue.MarkFailed(ctx, c.ID, sub.ID, reason); err != nil {
			logger.Error("mark failed", "campaign_id", c.ID, "subscriber_id", sub.ID, "error", err.Error())
		}
		d.report(ctx, c.ID, sub.ID, domain.EventFailed, reason)
	}

	body, err := d.renderer.RenderCampaign(c, tpl, sub)
	if err != nil {
		fail("render: " + err.Error())
		return
	}
	subject, err := d.renderer.RenderSubject(c, sub)
	if err != nil {
		fail("render subject: " + err.Error())
		return
	}

	msg := &Message{
		To:           sub.Email,
		FromEmail:    c.FromEmail,
		Subject:      subject,
		Body:         body,
		ContentType:  c.ContentType,
		CampaignID:   c.ID,
		SubscriberID: sub.ID,
	}
	if err := d.sender.Send(ctx, msg); err != nil {
		fail("send: " + err.Error())
		return
	}

	if err := d.queue.MarkSent(ctx, c.ID, sub.ID); err != nil {
		logger.Error("mark sent", "campaign_id", c.ID, "subscriber_id", sub.ID, "error", err.Error())
	}
	d.report(ctx, c.ID, sub.ID, domain.EventDispatched, "")
}

func (d *Dispatcher) report(ctx context.Context, campaignID, subscriberID string, typ domain.DeliveryEventType, errMsg string) {
	ev := &domain.DeliveryEvent{
		ID:           fmt.Sprintf("%s:%s:%s", typ, campaignID, subscriberID),
		Type:         typ,
		CampaignID:   campaignID,
		SubscriberID: subscriberID,
		Error:        errMsg,
		Timestamp:    time.Now().UTC(),
	}
	if err := d.recorder.Record(ctx, ev); err != nil {
		logger.Error("record delivery event", "event_id", ev.ID, "error", err.Error())
	}
}
