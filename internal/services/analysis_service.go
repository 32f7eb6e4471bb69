package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lymphly/vps-ai-bridge/internal/models"
)

// AnalysisService runs the face and food pipelines: preprocess, cache
// lookup, model call, JSON extraction and normalization.
type AnalysisService struct {
	preprocessor *ImagePreprocessor
	client       ModelClient
	cache        *AnalysisCacheService
	faceModel    string
	foodModel    string
}

// NewAnalysisService creates the analysis pipeline. cache may be nil.
func NewAnalysisService(pre *ImagePreprocessor, client ModelClient, cache *AnalysisCacheService, faceModel, foodModel string) *AnalysisService {
	return &AnalysisService{
		preprocessor: pre,
		client:       client,
		cache:        cache,
		faceModel:    faceModel,
		foodModel:    foodModel,
	}
}

// AnalyzeFace scores facial puffiness for the request image.
func (s *AnalysisService) AnalyzeFace(ctx context.Context, req *models.AnalysisRequest, locale models.Locale) (*models.FaceAnalysisResult, error) {
	return analyze(ctx, s, models.AnalysisKindFace, s.faceModel, req, locale, NormalizeFace)
}

// AnalyzeFood estimates sodium and bloat risk for the request image.
func (s *AnalysisService) AnalyzeFood(ctx context.Context, req *models.AnalysisRequest, locale models.Locale) (*models.FoodAnalysisResult, error) {
	return analyze(ctx, s, models.AnalysisKindFood, s.foodModel, req, locale, NormalizeFood)
}

func analyze[T any](
	ctx context.Context,
	s *AnalysisService,
	kind models.AnalysisKind,
	model string,
	req *models.AnalysisRequest,
	locale models.Locale,
	normalize func(map[string]any, models.Locale) T,
) (*T, error) {
	start := time.Now()

	img, err := s.preprocessor.Prepare(req.ImageBase64)
	if err != nil {
		return nil, err
	}

	prompt := UserPrompt(kind, req)
	inputHash := AnalysisInputHash(img.SHA256, prompt)

	var cached T
	if s.cache.Get(kind, locale, inputHash, &cached) {
		log.Info().
			Str("kind", string(kind)).
			Str("locale", string(locale)).
			Bool("cached", true).
			Dur("elapsed", time.Since(start)).
			Msg("analysis completed")
		return &cached, nil
	}

	// The model call outlives a client disconnect; the client timeout bounds it.
	text, err := s.client.Ask(
		context.WithoutCancel(ctx),
		model,
		SystemInstruction(kind, locale),
		prompt,
		img.Data,
		img.MIMEType,
	)
	if err != nil {
		s.preprocessor.Discard(img)
		log.Warn().Err(err).Str("kind", string(kind)).Str("model", model).Msg("analysis: model call failed")
		return nil, err
	}

	obj, tier, err := extractJSON(text)
	if err != nil {
		s.preprocessor.Discard(img)
		log.Warn().Err(err).Str("kind", string(kind)).Int("response_len", len(text)).Msg("analysis: model output is not JSON")
		return nil, err
	}

	result := normalize(obj, locale)

	if err := s.cache.Set(kind, locale, inputHash, model, result); err != nil {
		log.Warn().Err(err).Str("kind", string(kind)).Msg("analysis cache: store failed")
	}

	log.Info().
		Str("kind", string(kind)).
		Str("locale", string(locale)).
		Str("model", model).
		Str("json_tier", tier).
		Int("width", img.Width).
		Int("height", img.Height).
		Dur("elapsed", time.Since(start)).
		Msg("analysis completed")

	return &result, nil
}
