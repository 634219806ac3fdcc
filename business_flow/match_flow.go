package businessflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/amirphl/collab-market/app/dto"
	"github.com/amirphl/collab-market/config"
	"github.com/amirphl/collab-market/matching"
	"github.com/amirphl/collab-market/models"
	"github.com/amirphl/collab-market/repository"
	"github.com/redis/go-redis/v9"
	"github.com/xuri/excelize/v2"
)

const creatorPoolCacheKey = "creator-pool:v1"

// MatchFlow ranks the creator directory for a campaign
type MatchFlow interface {
	SuggestCreators(ctx context.Context, req *dto.SuggestCreatorsRequest) (*dto.SuggestCreatorsResponse, error)
	CreatorBreakdown(ctx context.Context, req *dto.CreatorBreakdownRequest) (*dto.CreatorBreakdownResponse, error)
	ExportSuggestions(ctx context.Context, req *dto.ExportSuggestionsRequest) (*dto.ExportSuggestionsResponse, error)
}

// MatchFlowImpl implements the match business flow
type MatchFlowImpl struct {
	campaignRepo   repository.CampaignRepository
	creatorRepo    repository.CreatorRepository
	invitationRepo repository.InvitationRepository
	cacheConfig    config.CacheConfig
	matchConfig    config.MatchingConfig
	rc             *redis.Client
}

// NewMatchFlow creates a new match flow instance. rc may be nil, in which
// case the creator pool is read from the database on every request.
func NewMatchFlow(
	campaignRepo repository.CampaignRepository,
	creatorRepo repository.CreatorRepository,
	invitationRepo repository.InvitationRepository,
	rc *redis.Client,
	cacheConfig config.CacheConfig,
	matchConfig config.MatchingConfig,
) MatchFlow {
	return &MatchFlowImpl{
		campaignRepo:   campaignRepo,
		creatorRepo:    creatorRepo,
		invitationRepo: invitationRepo,
		cacheConfig:    cacheConfig,
		matchConfig:    matchConfig,
		rc:             rc,
	}
}

// poolEntry keeps the row id next to the profile so invitations can be joined
type poolEntry struct {
	ID      uint                  `json:"id"`
	Profile models.CreatorProfile `json:"profile"`
}

// SuggestCreators returns one page of the ranked creator list
func (s *MatchFlowImpl) SuggestCreators(ctx context.Context, req *dto.SuggestCreatorsRequest) (*dto.SuggestCreatorsResponse, error) {
	limit, offset, err := s.window(req.Limit, req.Offset)
	if err != nil {
		return nil, NewBusinessError("INVALID_PAGINATION", "Invalid pagination parameters", err)
	}

	campaign, err := getOwnedCampaign(ctx, s.campaignRepo, req.CampaignUUID, req.BrandID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}

	requirements := campaign.Requirements
	if req.Overrides != nil {
		requirements = requirements.Merge(models.CampaignRequirements{
			Category:        req.Overrides.Category,
			MinSubscribers:  req.Overrides.MinSubscribers,
			MinAverageViews: req.Overrides.MinAverageViews,
			Platforms:       req.Overrides.Platforms,
			Location:        req.Overrides.Location,
		})
		if err := requirements.Validate(); err != nil {
			return nil, NewBusinessError("INVALID_OVERRIDES", "Invalid requirement overrides", fmt.Errorf("%w: %v", ErrInvalidRequirements, err))
		}
	}

	pool, err := s.creatorPool(ctx)
	if err != nil {
		return nil, NewBusinessError("CREATOR_POOL_FAILED", "Failed to load creators", err)
	}
	invited, err := s.invitedSet(ctx, campaign.ID, pool)
	if err != nil {
		return nil, NewBusinessError("INVITATION_LOOKUP_FAILED", "Failed to load invitations", err)
	}

	results := matching.Suggest(requirements, profiles(pool))
	suggestionRequestsTotal.Inc()
	suggestionPoolSize.Observe(float64(len(pool)))

	items := make([]dto.CreatorSuggestionDTO, 0, limit)
	if offset < len(results) {
		end := min(offset+limit, len(results))
		for _, r := range results[offset:end] {
			items = append(items, toSuggestionDTO(r, invited[r.Creator.ID]))
		}
	}

	return &dto.SuggestCreatorsResponse{
		CampaignUUID: campaign.UUID.String(),
		Requirements: ToRequirementsDTO(requirements),
		Total:        len(results),
		Limit:        limit,
		Offset:       offset,
		Items:        items,
	}, nil
}

// CreatorBreakdown explains the score of one creator, eligible or not
func (s *MatchFlowImpl) CreatorBreakdown(ctx context.Context, req *dto.CreatorBreakdownRequest) (*dto.CreatorBreakdownResponse, error) {
	campaign, err := getOwnedCampaign(ctx, s.campaignRepo, req.CampaignUUID, req.BrandID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}

	creator, err := s.creatorRepo.ByUUID(ctx, req.CreatorUUID)
	if err != nil {
		return nil, NewBusinessError("CREATOR_LOOKUP_FAILED", "Failed to lookup creator", err)
	}
	if creator == nil {
		return nil, NewBusinessError("CREATOR_LOOKUP_FAILED", "Failed to lookup creator", ErrCreatorNotFound)
	}

	inv, err := s.invitationRepo.ByCampaignAndCreator(ctx, campaign.ID, creator.ID)
	if err != nil {
		return nil, NewBusinessError("INVITATION_LOOKUP_FAILED", "Failed to load invitations", err)
	}

	profile := creator.ToProfile()
	result := matching.MatchResult{
		Creator:       profile,
		MatchScore:    matching.Score(profile, campaign.Requirements),
		TotalCriteria: matching.ActiveCriteria(campaign.Requirements),
		Breakdown:     matching.CreatorBreakdown(profile, campaign.Requirements),
	}

	return &dto.CreatorBreakdownResponse{
		Eligible:   creator.Active() && matching.Eligible(profile, campaign.Requirements),
		Suggestion: toSuggestionDTO(result, inv != nil),
	}, nil
}

// ExportSuggestions writes the full ranked list to an XLSX workbook
func (s *MatchFlowImpl) ExportSuggestions(ctx context.Context, req *dto.ExportSuggestionsRequest) (*dto.ExportSuggestionsResponse, error) {
	campaign, err := getOwnedCampaign(ctx, s.campaignRepo, req.CampaignUUID, req.BrandID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}

	pool, err := s.creatorPool(ctx)
	if err != nil {
		return nil, NewBusinessError("CREATOR_POOL_FAILED", "Failed to load creators", err)
	}
	invited, err := s.invitedSet(ctx, campaign.ID, pool)
	if err != nil {
		return nil, NewBusinessError("INVITATION_LOOKUP_FAILED", "Failed to load invitations", err)
	}
	results := matching.Suggest(campaign.Requirements, profiles(pool))

	content, err := writeSuggestionsWorkbook(results, invited)
	if err != nil {
		return nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	return &dto.ExportSuggestionsResponse{
		Filename: fmt.Sprintf("campaign_%s_suggestions.xlsx", campaign.UUID),
		Rows:     len(results),
		Content:  content,
	}, nil
}

const suggestionsSheet = "suggestions"

func writeSuggestionsWorkbook(results []matching.MatchResult, invited map[string]bool) ([]byte, error) {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName(xl.GetSheetName(0), suggestionsSheet); err != nil {
		return nil, err
	}

	header := []string{"rank", "creator_id", "name", "category", "subscribers", "avg_views", "platforms", "location", "match_score", "total_criteria", "already_invited"}
	for _, c := range matching.Criteria() {
		header = append(header, string(c)+"_score", string(c)+"_matched")
	}
	if err := xl.SetSheetRow(suggestionsSheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, r := range results {
		record := []any{
			i + 1,
			r.Creator.ID,
			r.Creator.Name,
			r.Creator.Category,
			r.Creator.Subscribers,
			r.Creator.AvgViews,
			strings.Join(r.Creator.Platforms, ", "),
			r.Creator.Location,
			r.MatchScore,
			r.TotalCriteria,
			strconv.FormatBool(invited[r.Creator.ID]),
		}
		for _, b := range r.Breakdown {
			record = append(record, b.Score, strconv.FormatBool(b.Matched))
		}
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := xl.SetSheetRow(suggestionsSheet, cellRef, &record); err != nil {
			return nil, err
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *MatchFlowImpl) poolKey() string {
	return s.cacheConfig.RedisPrefix + creatorPoolCacheKey
}

// creatorPool returns the active directory, from redis when possible.
// Redis failures fall back to the database.
func (s *MatchFlowImpl) creatorPool(ctx context.Context) ([]poolEntry, error) {
	if s.rc != nil {
		bs, err := s.rc.Get(ctx, s.poolKey()).Bytes()
		switch {
		case err == nil:
			var pool []poolEntry
			if err := json.Unmarshal(bs, &pool); err == nil {
				creatorPoolCacheTotal.WithLabelValues("hit").Inc()
				return pool, nil
			}
			creatorPoolCacheTotal.WithLabelValues("corrupt").Inc()
		case errors.Is(err, redis.Nil):
			creatorPoolCacheTotal.WithLabelValues("miss").Inc()
		default:
			creatorPoolCacheTotal.WithLabelValues("error").Inc()
			log.Printf("match: creator pool cache read failed: %v", err)
		}
	}

	creators, err := s.creatorRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	pool := make([]poolEntry, 0, len(creators))
	for _, c := range creators {
		pool = append(pool, poolEntry{ID: c.ID, Profile: c.ToProfile()})
	}

	if s.rc != nil && s.matchConfig.CreatorPoolTTL > 0 {
		if bs, err := json.Marshal(pool); err == nil {
			if err := s.rc.Set(ctx, s.poolKey(), bs, s.matchConfig.CreatorPoolTTL).Err(); err != nil {
				log.Printf("match: creator pool cache write failed: %v", err)
			}
		}
	}
	return pool, nil
}

// invitedSet maps profile ids of already invited creators
func (s *MatchFlowImpl) invitedSet(ctx context.Context, campaignID uint, pool []poolEntry) (map[string]bool, error) {
	ids, err := s.invitationRepo.InvitedCreatorIDs(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]bool, len(ids))
	for _, id := range ids {
		byID[id] = true
	}
	out := make(map[string]bool, len(ids))
	for _, e := range pool {
		if byID[e.ID] {
			out[e.Profile.ID] = true
		}
	}
	return out, nil
}

func (s *MatchFlowImpl) window(limit, offset int) (int, int, error) {
	if offset < 0 {
		return 0, 0, ErrInvalidPage
	}
	if limit < 0 {
		return 0, 0, ErrInvalidPageSize
	}
	if limit == 0 {
		limit = s.matchConfig.DefaultLimit
	}
	if s.matchConfig.MaxLimit > 0 && limit > s.matchConfig.MaxLimit {
		limit = s.matchConfig.MaxLimit
	}
	return limit, offset, nil
}

func profiles(pool []poolEntry) []models.CreatorProfile {
	out := make([]models.CreatorProfile, 0, len(pool))
	for _, e := range pool {
		out = append(out, e.Profile)
	}
	return out
}

func toSuggestionDTO(r matching.MatchResult, invited bool) dto.CreatorSuggestionDTO {
	breakdown := make(map[string]dto.CriterionScoreDTO, len(r.Breakdown))
	for _, b := range r.Breakdown {
		breakdown[string(b.Criterion)] = dto.CriterionScoreDTO{Score: b.Score, Max: b.Max, Matched: b.Matched}
	}
	return dto.CreatorSuggestionDTO{
		CreatorID:      r.Creator.ID,
		Name:           r.Creator.Name,
		AvatarURL:      r.Creator.AvatarURL,
		Description:    r.Creator.Description,
		Category:       r.Creator.Category,
		Subscribers:    r.Creator.Subscribers,
		AvgViews:       r.Creator.AvgViews,
		Platforms:      r.Creator.Platforms,
		Location:       r.Creator.Location,
		MatchScore:     r.MatchScore,
		TotalCriteria:  r.TotalCriteria,
		Breakdown:      breakdown,
		AlreadyInvited: invited,
	}
}
