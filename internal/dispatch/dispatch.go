// Package dispatch runs the recommendation rounds: gather, score, filter,
// dedup, threshold, fan out. Each round returns a Report with counts; only
// repository and validation failures abort a round.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kajiplatform/matching-service/internal/notify"
	"github.com/kajiplatform/matching-service/internal/selection"
	"github.com/kajiplatform/matching-service/internal/store"
	"github.com/kajiplatform/matching-service/internal/types"
)

const (
	defaultMinMatchScore   = 50.0
	defaultSimilarMinScore = 40.0
	defaultCandidateCap    = 200
	defaultPostingCap      = 100
	defaultSimilarLimit    = 5
)

// Options bound a dispatch round. Zero values take the defaults above.
type Options struct {
	// MinMatchScore is the shortlist threshold for new-posting and
	// skill-gap alternative rounds.
	MinMatchScore float64
	// SimilarMinScore is the looser threshold for similar-posting rounds.
	SimilarMinScore float64
	// CandidateCap caps the candidate pull per round.
	CandidateCap int
	// PostingCap caps the posting pull per round.
	PostingCap int
	// SimilarLimit caps how many alternatives one push carries.
	SimilarLimit int
}

func (o Options) withDefaults() Options {
	if o.MinMatchScore <= 0 {
		o.MinMatchScore = defaultMinMatchScore
	}
	if o.SimilarMinScore <= 0 {
		o.SimilarMinScore = defaultSimilarMinScore
	}
	if o.CandidateCap <= 0 {
		o.CandidateCap = defaultCandidateCap
	}
	if o.PostingCap <= 0 {
		o.PostingCap = defaultPostingCap
	}
	if o.SimilarLimit <= 0 {
		o.SimilarLimit = defaultSimilarLimit
	}
	return o
}

// Report accounts for one dispatch round.
type Report struct {
	Considered   int           `json:"considered"`
	Shortlisted  int           `json:"shortlisted"`
	DigestQueued int           `json:"digest_queued"`
	Delivery     notify.Report `json:"delivery"`
}

// Dispatcher owns the three recommendation flows.
type Dispatcher struct {
	repo     store.Repository
	selector *selection.Selector
	fanout   *notify.Fanout
	digest   notify.Queue
	log      *zap.Logger
	opts     Options
	now      func() time.Time
}

// NewDispatcher constructs a Dispatcher. A nil digest queue falls back to an
// in-memory one and a nil logger to zap.NewNop.
func NewDispatcher(repo store.Repository, selector *selection.Selector, fanout *notify.Fanout, digest notify.Queue, log *zap.Logger, opts Options) *Dispatcher {
	if digest == nil {
		digest = notify.NewMemoryQueue()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		repo:     repo,
		selector: selector,
		fanout:   fanout,
		digest:   digest,
		log:      log,
		opts:     opts.withDefaults(),
		now:      time.Now,
	}
}

// DispatchNewPostingRecommendations notifies matching candidates about a new
// posting. A posting that is inactive, unverified, or expired yields a no-op
// report rather than an error, since lifecycle races with the CRUD layer are
// expected.
func (d *Dispatcher) DispatchNewPostingRecommendations(ctx context.Context, postingID uuid.UUID) (Report, error) {
	posting, err := d.repo.GetPosting(ctx, postingID)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load posting %s: %w", postingID, err)
	}
	if !posting.OpenForMatching(d.now()) {
		d.log.Info("posting not open for matching, skipping round",
			zap.String("posting_id", postingID.String()))
		return Report{}, nil
	}

	candidates, err := d.repo.ListEligibleCandidates(ctx, store.CandidateFilters{
		AlertsOnly: true,
		Limit:      d.opts.CandidateCap,
	})
	if err != nil {
		return Report{}, fmt.Errorf("failed to list candidates: %w", err)
	}

	results, err := d.selector.ShortlistCandidatesForPosting(ctx, posting, candidates, selection.RankOptions{
		MinScore: d.opts.MinMatchScore,
	})
	if err != nil {
		return Report{}, err
	}

	report := Report{Considered: len(candidates), Shortlisted: len(results)}
	if len(results) == 0 {
		return report, nil
	}

	byID := make(map[string]*types.Candidate, len(candidates))
	for i := range candidates {
		byID[candidates[i].ID.String()] = &candidates[i]
	}

	deliveries := make([]notify.Delivery, 0, len(results))
	for _, result := range results {
		candidate := byID[result.SubjectID]
		if candidate == nil {
			continue
		}

		delivery := notify.Delivery{
			RecipientID: result.SubjectID,
			Address:     candidate.Email,
			Push:        recommendationPush(posting, result),
		}
		if candidate.Preference.EmailEnabled {
			if candidate.Preference.Frequency == types.FrequencyBatched {
				item := notify.DigestItem{
					RecipientID: result.SubjectID,
					Email:       candidate.Email,
					Title:       posting.Title,
					Body:        fmt.Sprintf("You are a %.0f%% match for %s", result.MatchScore, posting.Title),
					PostingID:   posting.ID.String(),
					QueuedAt:    d.now(),
				}
				if err := d.digest.Enqueue(ctx, item); err != nil {
					d.log.Warn("failed to queue digest item",
						zap.String("recipient", result.SubjectID),
						zap.Error(err))
				} else {
					report.DigestQueued++
				}
			} else {
				delivery.Email = &notify.Email{
					Subject: fmt.Sprintf("New job match: %s", posting.Title),
					Data: map[string]any{
						"posting_id":     posting.ID.String(),
						"posting_title":  posting.Title,
						"match_score":    result.MatchScore,
						"matched_skills": result.Breakdown.MatchedSkills,
					},
				}
			}
		}
		deliveries = append(deliveries, delivery)
	}

	report.Delivery = d.fanout.Deliver(ctx, deliveries)
	d.log.Info("new posting round complete",
		zap.String("posting_id", postingID.String()),
		zap.Int("considered", report.Considered),
		zap.Int("shortlisted", report.Shortlisted),
		zap.Int("digest_queued", report.DigestQueued),
		zap.Int("push_succeeded", report.Delivery.PushSucceeded),
		zap.Int("push_failed", report.Delivery.PushFailed))
	return report, nil
}

// DispatchSimilarPostingRecommendations pushes the top open postings of the
// same job type to a user who just applied, excluding the posting they
// applied to.
func (d *Dispatcher) DispatchSimilarPostingRecommendations(ctx context.Context, userID, appliedPostingID uuid.UUID) (Report, error) {
	candidate, err := d.repo.GetCandidate(ctx, userID)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load candidate %s: %w", userID, err)
	}
	applied, err := d.repo.GetPosting(ctx, appliedPostingID)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load posting %s: %w", appliedPostingID, err)
	}
	if !d.notifiable(candidate) {
		return Report{}, nil
	}

	postings, err := d.repo.ListOpenPostings(ctx, store.PostingFilters{
		JobType:   applied.JobType,
		ExcludeID: appliedPostingID,
		Limit:     d.opts.PostingCap,
	})
	if err != nil {
		return Report{}, fmt.Errorf("failed to list postings: %w", err)
	}

	results, err := d.selector.ShortlistPostingsForCandidate(ctx, candidate, postings, selection.RankOptions{
		MinScore: d.opts.SimilarMinScore,
		Limit:    d.opts.SimilarLimit,
	})
	if err != nil {
		return Report{}, err
	}

	report := Report{Considered: len(postings), Shortlisted: len(results)}
	if len(results) == 0 {
		return report, nil
	}

	report.Delivery = d.fanout.Deliver(ctx, []notify.Delivery{{
		RecipientID: userID.String(),
		Address:     candidate.Email,
		Push: &notify.Message{
			Type:  notify.TypeSimilarJobs,
			Title: fmt.Sprintf("%d more %s jobs for you", len(results), applied.JobType),
			Body:  "Jobs similar to the one you just applied to",
			Data: map[string]any{
				"applied_posting_id": appliedPostingID.String(),
				"alternatives":       alternativesData(results, postings),
			},
		},
	}})
	return report, nil
}

// DispatchSkillGapOnRejection tells a rejected user which required skills they
// were missing and pushes alternative postings they still clear the threshold
// for.
func (d *Dispatcher) DispatchSkillGapOnRejection(ctx context.Context, userID, rejectedPostingID uuid.UUID) (Report, error) {
	candidate, err := d.repo.GetCandidate(ctx, userID)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load candidate %s: %w", userID, err)
	}
	rejected, err := d.repo.GetPosting(ctx, rejectedPostingID)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load posting %s: %w", rejectedPostingID, err)
	}
	if !d.notifiable(candidate) {
		return Report{}, nil
	}

	gap, err := d.selector.Scorer().Score(rejected.MatchQuery(), candidate.Profile())
	if err != nil {
		return Report{}, err
	}

	postings, err := d.repo.ListOpenPostings(ctx, store.PostingFilters{
		JobType:   rejected.JobType,
		ExcludeID: rejectedPostingID,
		Limit:     d.opts.PostingCap,
	})
	if err != nil {
		return Report{}, fmt.Errorf("failed to list postings: %w", err)
	}

	alternatives, err := d.selector.ShortlistPostingsForCandidate(ctx, candidate, postings, selection.RankOptions{
		MinScore: d.opts.MinMatchScore,
		Limit:    d.opts.SimilarLimit,
	})
	if err != nil {
		return Report{}, err
	}

	report := Report{Considered: len(postings), Shortlisted: len(alternatives)}
	report.Delivery = d.fanout.Deliver(ctx, []notify.Delivery{{
		RecipientID: userID.String(),
		Address:     candidate.Email,
		Push: &notify.Message{
			Type:  notify.TypeSkillGap,
			Title: "Skills to work on",
			Body:  fmt.Sprintf("The role %s asked for skills you have not listed yet", rejected.Title),
			Data: map[string]any{
				"rejected_posting_id": rejectedPostingID.String(),
				"missing_skills":      gap.Breakdown.MissingSkills,
				"alternatives":        alternativesData(alternatives, postings),
			},
		},
	}})
	return report, nil
}

// notifiable applies the account-level gate single-user flows share with the
// eligible-candidates listing.
func (d *Dispatcher) notifiable(candidate *types.Candidate) bool {
	if candidate.Active && candidate.Verified && candidate.Preference.AlertsEnabled {
		return true
	}
	d.log.Info("candidate not notifiable, skipping round",
		zap.String("candidate_id", candidate.ID.String()))
	return false
}

func recommendationPush(posting *types.Posting, result types.MatchResult) *notify.Message {
	return &notify.Message{
		Type:  notify.TypeJobRecommendation,
		Title: "New job matches your skills",
		Body:  posting.Title,
		Data: map[string]any{
			"posting_id":     posting.ID.String(),
			"match_score":    result.MatchScore,
			"matched_skills": result.Breakdown.MatchedSkills,
		},
	}
}

// alternativesData shapes ranked posting results into push payload entries.
func alternativesData(results []types.MatchResult, postings []types.Posting) []map[string]any {
	titles := make(map[string]string, len(postings))
	for _, posting := range postings {
		titles[posting.ID.String()] = posting.Title
	}
	entries := make([]map[string]any, 0, len(results))
	for _, result := range results {
		entries = append(entries, map[string]any{
			"posting_id":  result.SubjectID,
			"title":       titles[result.SubjectID],
			"match_score": result.MatchScore,
		})
	}
	return entries
}
