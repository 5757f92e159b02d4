package campaign

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/listpilot/internal/domain"
	"github.com/ignite/listpilot/internal/pkg/logger"
	"github.com/ignite/listpilot/internal/targeting"
)

// AudienceResolver computes the recipient set for a campaign. Satisfied
// by targeting.Resolver.
type AudienceResolver interface {
	Resolve(ctx context.Context, c *domain.Campaign) ([]string, error)
}

// Service implements campaign business logic: CRUD on drafts plus the
// lifecycle state machine. All public methods are safe for concurrent use
// if the underlying repository is concurrency-safe.
type Service struct {
	repo     Repository
	resolver AudienceResolver
	now      func() time.Time
}

// NewService creates a campaign service backed by the given repository
// and audience resolver.
func NewService(repo Repository, resolver AudienceResolver) *Service {
	return &Service{repo: repo, resolver: resolver, now: time.Now}
}

// CreateInput carries the fields accepted when creating a campaign.
type CreateInput struct {
	Name        string
	Subject     string
	FromEmail   string
	Body        string
	ContentType domain.ContentType
	Type        domain.CampaignType
	TemplateID  string
	ListIDs     []string
	Segment     *domain.Segment
}

// Create validates and persists a new campaign in draft status.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Campaign, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if input.Subject == "" {
		return nil, fmt.Errorf("subject is required")
	}
	if input.ContentType == "" {
		input.ContentType = domain.ContentHTML
	}
	switch input.ContentType {
	case domain.ContentHTML, domain.ContentPlain, domain.ContentMarkdown:
	default:
		return nil, fmt.Errorf("unknown content type %q", input.ContentType)
	}
	if input.Type == "" {
		input.Type = domain.CampaignRegular
	}
	if input.Segment != nil {
		if err := input.Segment.Validate(); err != nil {
			return nil, err
		}
	}

	c := &domain.Campaign{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Subject:     input.Subject,
		FromEmail:   input.FromEmail,
		Body:        input.Body,
		ContentType: input.ContentType,
		Type:        input.Type,
		Status:      domain.CampaignDraft,
		ListIDs:     input.ListIDs,
		Segment:     input.Segment,
		CreatedAt:   s.now().UTC(),
		UpdatedAt:   s.now().UTC(),
	}
	if input.TemplateID != "" {
		c.TemplateID = &input.TemplateID
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	logger.Info("campaign created", "campaign_id", c.ID, "name", c.Name)
	return c, nil
}

// Get returns a single campaign.
func (s *Service) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	return s.repo.Get(ctx, id)
}

// List returns campaigns matching the filter.
func (s *Service) List(ctx context.Context, f ListFilter) ([]domain.Campaign, int, error) {
	return s.repo.List(ctx, f)
}

// DueScheduled returns scheduled campaigns whose send time has arrived.
func (s *Service) DueScheduled(ctx context.Context, limit int) ([]domain.Campaign, error) {
	return s.repo.DueScheduled(ctx, s.now().UTC(), limit)
}

// Update modifies mutable campaign fields. Campaigns stay editable until
// they start running.
func (s *Service) Update(ctx context.Context, id string, u UpdateFields) error {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	switch c.Status {
	case domain.CampaignDraft, domain.CampaignScheduled:
	default:
		return ErrNotEditable
	}
	if u.Segment != nil {
		if err := u.Segment.Validate(); err != nil {
			return err
		}
	}
	return s.repo.Update(ctx, id, u)
}

// Delete removes a campaign. Running or paused campaigns must be
// cancelled first.
func (s *Service) Delete(ctx context.Context, id string) error {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	switch c.Status {
	case domain.CampaignRunning, domain.CampaignPaused:
		return ErrNotEditable
	}
	return s.repo.Delete(ctx, id)
}

// Schedule moves a draft campaign to scheduled with a send-at time. The
// campaign must target at least one list and send_at must not be in the
// past; a zero sendAt means send as soon as the scheduler next looks.
func (s *Service) Schedule(ctx context.Context, id string, sendAt time.Time) error {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !domain.CanTransition(c.Status, domain.CampaignScheduled) {
		return ErrInvalidTransition
	}
	if len(c.ListIDs) == 0 {
		return ErrNoTargetLists
	}
	now := s.now().UTC()
	if sendAt.IsZero() {
		sendAt = now
	} else if sendAt.Before(now.Add(-time.Minute)) {
		return ErrPastSendAt
	}
	if err := s.repo.SetSchedule(ctx, id, sendAt.UTC()); err != nil {
		return err
	}
	if err := s.repo.Transition(ctx, id, c.Status, domain.CampaignScheduled); err != nil {
		return err
	}
	logger.Info("campaign scheduled", "campaign_id", id, "send_at", sendAt.UTC().Format(time.RFC3339))
	return nil
}

// Start transitions a scheduled campaign to running. The audience is
// resolved exactly once here and frozen: the recipient set and the
// to_send counter never change afterwards, whatever happens to the
// underlying lists and subscriptions.
//
// An empty audience is not a transition: the campaign stays scheduled
// with the failure annotated on it, and the caller gets the resolver's
// error back.
func (s *Service) Start(ctx context.Context, id string) error {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !domain.CanTransition(c.Status, domain.CampaignRunning) || c.Status != domain.CampaignScheduled {
		return ErrInvalidTransition
	}

	ids, err := s.resolver.Resolve(ctx, c)
	if err != nil {
		if errors.Is(err, targeting.ErrEmptyAudience) || errors.Is(err, targeting.ErrNoTargetLists) {
			annotate := s.repo.AnnotateError(ctx, id, err.Error())
			if annotate != nil {
				logger.Error("annotate campaign error", "campaign_id", id, "error", annotate.Error())
			}
			logger.Warn("campaign start refused", "campaign_id", id, "reason", err.Error())
			return err
		}
		return fmt.Errorf("resolve audience: %w", err)
	}

	// Audience rows go in before the CAS to running. They are inert
	// until the dispatcher sees a running campaign, the insert is
	// idempotent, and the reverse order could strand a running campaign
	// with nothing to deliver if the insert failed.
	if err := s.repo.SaveAudience(ctx, id, ids); err != nil {
		return fmt.Errorf("persist audience: %w", err)
	}
	if err := s.repo.MarkRunning(ctx, id, s.now().UTC(), len(ids)); err != nil {
		return err
	}
	logger.Info("campaign started", "campaign_id", id, "to_send", len(ids))
	return nil
}

// Pause suspends a running campaign. Delivery workers observe the status
// before each batch, so in-flight batches drain but no new ones begin.
func (s *Service) Pause(ctx context.Context, id string) error {
	return s.transition(ctx, id, domain.CampaignRunning, domain.CampaignPaused)
}

// Resume moves a paused campaign back to running.
func (s *Service) Resume(ctx context.Context, id string) error {
	return s.transition(ctx, id, domain.CampaignPaused, domain.CampaignRunning)
}

// Cancel stops a campaign from any non-terminal state. Cancellation is
// itself terminal.
func (s *Service) Cancel(ctx context.Context, id string) error {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !domain.CanTransition(c.Status, domain.CampaignCancelled) {
		return ErrInvalidTransition
	}
	if err := s.repo.Transition(ctx, id, c.Status, domain.CampaignCancelled); err != nil {
		return err
	}
	logger.Info("campaign cancelled", "campaign_id", id, "from", string(c.Status))
	return nil
}

// TryFinish finishes a running campaign once every frozen recipient has a
// terminal delivery outcome. Called after each dispatched/failed event;
// a no-op when the campaign is not running or deliveries remain.
func (s *Service) TryFinish(ctx context.Context, id string) error {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if c.Status != domain.CampaignRunning {
		return nil
	}
	if c.Stats.ToSend == 0 || c.Stats.Sent+c.Stats.Failed < c.Stats.ToSend {
		return nil
	}
	if err := s.repo.MarkFinished(ctx, id, s.now().UTC()); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			// Someone else finished or cancelled it first.
			return nil
		}
		return err
	}
	logger.Info("campaign finished", "campaign_id", id,
		"sent", c.Stats.Sent, "failed", c.Stats.Failed)
	return nil
}

func (s *Service) transition(ctx context.Context, id string, from, to domain.CampaignStatus) error {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if c.Status != from || !domain.CanTransition(from, to) {
		return ErrInvalidTransition
	}
	return s.repo.Transition(ctx, id, from, to)
}
