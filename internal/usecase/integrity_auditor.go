package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/mikiasgoitom/Snapfeed/internal/domain/apperror"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/contract"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
	"github.com/mikiasgoitom/Snapfeed/internal/infrastructure/metrics"
	usecasecontract "github.com/mikiasgoitom/Snapfeed/internal/usecase/contract"
)

const (
	defaultAuditBatchSize = 200
	purgeChunkSize        = 500
)

type auditAction int

const (
	actionKeep auditAction = iota
	actionPending
	actionRewrite
	actionDelete
)

type auditPlan struct {
	post      *entity.Post
	action    auditAction
	canonical string
	reason    string
}

// IntegrityAuditor sweeps the post collection and restores the invariant
// that every media reference is canonical and resolves, or is pending.
type IntegrityAuditor struct {
	postRepo  contract.IPostRepository
	mediaRepo contract.IMediaRepository
	userRepo  contract.IUserRepository
	logger    usecasecontract.IAppLogger
	config    usecasecontract.IConfigProvider
	feedCache contract.IFeedCache
}

// NewIntegrityAuditor creates a new IntegrityAuditor instance.
func NewIntegrityAuditor(
	postRepo contract.IPostRepository,
	mediaRepo contract.IMediaRepository,
	userRepo contract.IUserRepository,
	logger usecasecontract.IAppLogger,
	cfg usecasecontract.IConfigProvider,
) *IntegrityAuditor {
	return &IntegrityAuditor{
		postRepo:  postRepo,
		mediaRepo: mediaRepo,
		userRepo:  userRepo,
		logger:    logger,
		config:    cfg,
	}
}

var _ usecasecontract.IIntegrityAuditor = (*IntegrityAuditor)(nil)

// SetFeedCache lets the auditor drop cached feed pages after it mutates posts.
func (a *IntegrityAuditor) SetFeedCache(cache contract.IFeedCache) {
	a.feedCache = cache
}

// Run performs one sweep. Per record failures are counted and the sweep
// continues; cancellation stops it with the corrections applied so far intact.
func (a *IntegrityAuditor) Run(ctx context.Context, opts usecasecontract.AuditOptions) (*entity.AuditReport, error) {
	batchSize := opts.BatchSize
	if batchSize <= 0 && a.config != nil {
		batchSize = a.config.GetAuditBatchSize()
	}
	if batchSize <= 0 {
		batchSize = defaultAuditBatchSize
	}

	report := &entity.AuditReport{DryRun: opts.DryRun}
	batch := make([]*entity.Post, 0, batchSize)

	err := a.postRepo.IteratePosts(ctx, func(p *entity.Post, decodeErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if decodeErr != nil {
			report.Examined++
			report.Failed++
			metrics.AddAuditRecords("failed", 1)
			a.logger.Errorf("audit: skipping unreadable post: %v", decodeErr)
			return nil
		}
		batch = append(batch, p)
		if len(batch) >= batchSize {
			a.processBatch(ctx, batch, opts.DryRun, report)
			batch = batch[:0]
		}
		return nil
	})
	if err == nil && len(batch) > 0 {
		a.processBatch(ctx, batch, opts.DryRun, report)
	}

	if !opts.DryRun && report.Changes() > 0 {
		a.invalidateFeed(ctx)
	}
	a.logger.Infof("audit finished: dry_run=%t examined=%d corrected=%d deleted=%d unchanged=%d pending=%d failed=%d",
		report.DryRun, report.Examined, report.Corrected, report.Deleted, report.Unchanged, report.Pending, report.Failed)

	if err != nil {
		return report, fmt.Errorf("audit interrupted after %d posts: %w", report.Examined, err)
	}
	return report, nil
}

// classify decides what to do with a post from its reference alone.
func classify(p *entity.Post) auditPlan {
	ref := p.MediaRef
	switch {
	case ref.IsPending() && p.NeedsNewImage:
		return auditPlan{post: p, action: actionPending}
	case ref.IsPending():
		return auditPlan{post: p, action: actionDelete, reason: "missing media reference"}
	case ref.IsMalformed():
		return auditPlan{post: p, action: actionDelete, reason: "malformed media reference"}
	case ref.NeedsRepair():
		canonical, _ := ref.Canonical()
		return auditPlan{post: p, action: actionRewrite, canonical: canonical, reason: ref.Defects().String()}
	default:
		return auditPlan{post: p, action: actionKeep}
	}
}

func (a *IntegrityAuditor) processBatch(ctx context.Context, posts []*entity.Post, dryRun bool, report *entity.AuditReport) {
	plans := make([]auditPlan, 0, len(posts))
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		plan := classify(p)
		plans = append(plans, plan)
		if plan.action == actionKeep || plan.action == actionRewrite {
			ids = append(ids, p.MediaRef.ID())
		}
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	var (
		existing  map[string]struct{}
		lookupErr error
	)
	if len(ids) > 0 {
		existing, lookupErr = a.mediaRepo.ExistingMediaIDs(ctx, ids)
		if lookupErr != nil {
			a.logger.Errorf("audit: media lookup failed for batch of %d posts: %v", len(posts), lookupErr)
		}
	}

	var corrected, deleted, unchanged, failed int
	for _, plan := range plans {
		report.Examined++
		if plan.action == actionPending {
			report.Pending++
			continue
		}
		if plan.action == actionKeep || plan.action == actionRewrite {
			if lookupErr != nil {
				failed++
				continue
			}
			if _, ok := existing[plan.post.MediaRef.ID()]; !ok {
				plan.action = actionDelete
				plan.reason = "referenced media does not exist"
			}
		}

		switch plan.action {
		case actionKeep:
			unchanged++
		case actionRewrite:
			if dryRun {
				corrected++
				continue
			}
			err := a.postRepo.ReplaceMediaRef(ctx, plan.post.ID, plan.post.MediaRef, plan.canonical)
			switch {
			case err == nil:
				corrected++
				a.logger.Infof("audit: post %s media reference rewritten to %s (%s)", plan.post.ExternalRef, plan.canonical, plan.reason)
			case errors.Is(err, contract.ErrMediaRefChanged), errors.Is(err, contract.ErrPostNotFound):
				unchanged++
			default:
				failed++
				a.logger.Errorf("audit: failed to rewrite post %s: %v", plan.post.ExternalRef, err)
			}
		case actionDelete:
			if dryRun {
				deleted++
				continue
			}
			err := a.postRepo.DeletePostIfMediaRef(ctx, plan.post.ID, plan.post.MediaRef)
			switch {
			case err == nil:
				deleted++
				a.logger.Infof("audit: post %s deleted (%s)", plan.post.ExternalRef, plan.reason)
			case errors.Is(err, contract.ErrMediaRefChanged), errors.Is(err, contract.ErrPostNotFound):
				unchanged++
			default:
				failed++
				a.logger.Errorf("audit: failed to delete post %s: %v", plan.post.ExternalRef, err)
			}
		}
	}

	report.Corrected += corrected
	report.Deleted += deleted
	report.Unchanged += unchanged
	report.Failed += failed
	if !dryRun {
		metrics.AddAuditRecords("corrected", corrected)
		metrics.AddAuditRecords("deleted", deleted)
	}
	metrics.AddAuditRecords("failed", failed)
}

// PurgeCategory removes every media record of a category. Posts that
// reference one of them are first marked pending so a later sweep treats them
// as waiting for a new image rather than as corrupt.
func (a *IntegrityAuditor) PurgeCategory(ctx context.Context, category entity.MediaCategory, dryRun bool) (*entity.PurgeReport, error) {
	if !category.Valid() {
		return nil, apperror.Validation(apperror.CodeMediaInvalidType, "type must be one of profile, post, feed")
	}
	report := &entity.PurgeReport{DryRun: dryRun, Category: category}

	ids, err := a.mediaRepo.ListMediaIDsByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s media: %w", category, err)
	}
	report.MediaMatched = len(ids)
	if len(ids) == 0 {
		return report, nil
	}
	affected := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		affected[id] = struct{}{}
	}

	var postIDs []string
	err = a.postRepo.IteratePosts(ctx, func(p *entity.Post, decodeErr error) error {
		if decodeErr != nil {
			a.logger.Warningf("purge: skipping unreadable post: %v", decodeErr)
			return nil
		}
		if !p.MediaRef.IsResolved() {
			return nil
		}
		if _, ok := affected[p.MediaRef.ID()]; ok {
			postIDs = append(postIDs, p.ID)
		}
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("failed to scan posts: %w", err)
	}

	if dryRun {
		report.PostsMarkedPending = len(postIDs)
		report.MediaDeleted = int64(len(ids))
		return report, nil
	}

	for chunk := range slices.Chunk(postIDs, purgeChunkSize) {
		n, err := a.postRepo.MarkPending(ctx, chunk)
		report.PostsMarkedPending += int(n)
		if err != nil {
			return report, fmt.Errorf("failed to mark posts pending: %w", err)
		}
	}
	if report.PostsMarkedPending > 0 {
		a.invalidateFeed(ctx)
	}

	for chunk := range slices.Chunk(ids, purgeChunkSize) {
		n, err := a.mediaRepo.DeleteMediaByIDs(ctx, chunk)
		report.MediaDeleted += n
		if err != nil {
			return report, fmt.Errorf("failed to delete %s media: %w", category, err)
		}
	}

	a.logger.Infof("purge finished: category=%s media_matched=%d posts_pending=%d media_deleted=%d",
		category, report.MediaMatched, report.PostsMarkedPending, report.MediaDeleted)
	return report, nil
}

// Stats summarises the three collections.
func (a *IntegrityAuditor) Stats(ctx context.Context) (*entity.StoreStats, error) {
	byCategory, err := a.mediaRepo.CountMediaByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count media: %w", err)
	}
	bytes, err := a.mediaRepo.TotalPayloadBytes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum media payloads: %w", err)
	}
	posts, err := a.postRepo.CountPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}
	pending, err := a.postRepo.CountPendingPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending posts: %w", err)
	}
	users, err := a.userRepo.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	return &entity.StoreStats{
		MediaByCategory: byCategory,
		MediaBytes:      bytes,
		Posts:           posts,
		PendingPosts:    pending,
		Users:           users,
	}, nil
}

func (a *IntegrityAuditor) invalidateFeed(ctx context.Context) {
	if a.feedCache == nil {
		return
	}
	if err := a.feedCache.InvalidateFeed(ctx); err != nil {
		a.logger.Warningf("cache error: invalidate feed: %v", err)
	}
}
