package services

import (
	"context"
	"fmt"
	"time"

	apperrors "pet_portrait_go_backend/internal/errors"
	"pet_portrait_go_backend/internal/models"

	"github.com/rs/zerolog/log"
)

// Estimated upstream cost of one generator call, recorded on audit events.
const generationCostCents = 2

// Caller is the resolved principal for one request. Account and Authz are nil
// for anonymous callers, which are identified by ClientIP instead.
type Caller struct {
	Account  *models.Account
	Authz    *AuthorizationStatus
	ClientIP string
}

type GenerationRequest struct {
	ImageData []byte
	MimeType  string
	StyleTag  string
}

type GenerationResult struct {
	Image       []byte
	MimeType    string
	Description string
	PriceCents  int
	Degraded    bool
	Quota       *QuotaStatus
}

// GenerationService is the single orchestration point for styled previews:
// authorize, gate on quota, validate, invoke the generator, account for usage.
// Gating is strict; accounting after a successful generation is best-effort.
type GenerationService struct {
	styler         ImageStyler
	quota          QuotaManager
	usage          UsageServiceDB
	anonymousLimit int
	adminLimit     int
	maxImageBytes  int64
	timeout        time.Duration
}

func NewGenerationService(styler ImageStyler, quota QuotaManager, usage UsageServiceDB, anonymousLimit, adminLimit int, maxImageBytes int64, timeout time.Duration) *GenerationService {
	return &GenerationService{
		styler:         styler,
		quota:          quota,
		usage:          usage,
		anonymousLimit: anonymousLimit,
		adminLimit:     adminLimit,
		maxImageBytes:  maxImageBytes,
		timeout:        timeout,
	}
}

// identityFor maps a caller to its quota identity key and daily cap.
func (s *GenerationService) identityFor(caller Caller) (string, int) {
	if caller.Account == nil {
		return AnonymousIdentityKey(caller.ClientIP), s.anonymousLimit
	}
	if caller.Authz != nil && caller.Authz.IsAdmin {
		return UserIdentityKey(caller.Account.ID), s.adminLimit
	}
	return UserIdentityKey(caller.Account.ID), caller.Account.DailyGenerationLimit
}

// QuotaFor reports the caller's current quota standing without mutating it.
func (s *GenerationService) QuotaFor(caller Caller) (*QuotaStatus, error) {
	key, limit := s.identityFor(caller)
	return s.quota.CheckLimit(key, limit)
}

// Generate runs the full preview flow. Terminal short-circuits (authorization,
// quota, validation) have no side effects. A generator failure degrades to
// echoing the source image and does not consume quota.
func (s *GenerationService) Generate(ctx context.Context, caller Caller, req GenerationRequest) (*GenerationResult, error) {
	if caller.Account != nil && (caller.Authz == nil || !caller.Authz.Allowed) {
		return nil, apperrors.New403Error("account is not allowlisted yet")
	}

	key, limit := s.identityFor(caller)

	quotaStatus, err := s.quota.CheckLimit(key, limit)
	if err != nil {
		log.Error().Err(err).Str("identity", key).Msg("quota check failed, denying generation")
		return nil, apperrors.New429Error("generation quota is unavailable, try again later", quotaDetails(quotaStatus))
	}
	if !quotaStatus.Allowed {
		return nil, apperrors.New429Error("daily generation limit reached", quotaDetails(quotaStatus))
	}

	style, ok := StyleByTag(req.StyleTag)
	if !ok {
		return nil, apperrors.New400Error("unknown style tag")
	}
	if len(req.ImageData) == 0 {
		return nil, apperrors.New400Error("image payload is required")
	}
	if int64(len(req.ImageData)) > s.maxImageBytes {
		return nil, apperrors.New413Error("image exceeds the 2 MiB limit")
	}

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	image, description, genErr := s.styler.StyleImage(genCtx, req.ImageData, req.MimeType, style.Tag)
	degraded := genErr != nil
	if degraded {
		log.Error().Err(genErr).Str("style", style.Tag).Msg("generator call failed, returning degraded result")
		image = req.ImageData
		description = fmt.Sprintf("A hand-painted %s portrait of your pet, lovingly reproduced on canvas by one of our artists.", style.Label)
	}

	if !degraded {
		if err := s.quota.RecordUsage(key); err != nil {
			log.Error().Err(err).Str("identity", key).Msg("failed to record quota usage")
		}
	}

	event := &models.UsageEvent{
		IdentityKey: key,
		APIType:     "genai",
		Operation:   "style_preview",
		Success:     !degraded,
		ImageCount:  1,
		CostCents:   generationCostCents,
		Metadata:    fmt.Sprintf(`{"style":%q}`, style.Tag),
	}
	if err := s.usage.CreateUsageEvent(event); err != nil {
		log.Error().Err(err).Str("identity", key).Msg("failed to write usage event")
	}

	updated, err := s.quota.CheckLimit(key, limit)
	if err != nil {
		log.Error().Err(err).Str("identity", key).Msg("post-generation quota check failed")
		updated = quotaStatus
	}

	return &GenerationResult{
		Image:       image,
		MimeType:    req.MimeType,
		Description: description,
		PriceCents:  style.PriceCents,
		Degraded:    degraded,
		Quota:       updated,
	}, nil
}

func quotaDetails(status *QuotaStatus) map[string]interface{} {
	if status == nil {
		return nil
	}
	return map[string]interface{}{
		"remaining":  status.Remaining,
		"limit":      status.Limit,
		"used_today": status.UsedToday,
		"resets_at":  status.ResetsAt,
	}
}
