// Package recommend fetches recipe recommendations from the inference endpoint.
package recommend

import (
	"context"

	"foodrec/internal/log"
	"foodrec/internal/metrics"
	"foodrec/internal/recipe"
	"foodrec/internal/session"
)

// PredictEndpoint is the remote procedure that returns recommendations.
const PredictEndpoint = "/predict"

// SessionCache hands out and drops the shared session.
type SessionCache interface {
	Get(ctx context.Context, endpointURL string) (session.Session, error)
	Invalidate()
}

// EndpointSource returns the endpoint URL to use for the next request.
type EndpointSource func() string

// Service runs the recommendation pipeline.
type Service struct {
	cache    SessionCache
	endpoint EndpointSource
}

// NewService creates a new Service.
func NewService(cache SessionCache, endpoint EndpointSource) *Service {
	return &Service{cache: cache, endpoint: endpoint}
}

// FetchRecommendations sends req to the endpoint and normalises the
// response. Any failure drops the cached session and returns an *Error;
// no partial result is returned.
func (s *Service) FetchRecommendations(ctx context.Context, req recipe.Request) ([]recipe.Recommendation, error) {
	logger := log.WithContext(ctx, log.WithComponent("recommend"))
	endpointURL := s.endpoint()

	sess, err := s.cache.Get(ctx, endpointURL)
	if err != nil {
		return nil, s.fail(ctx, newError(SessionEstablishment, err), endpointURL)
	}

	raw, err := sess.Predict(ctx, PredictEndpoint, req.PredictArgs())
	if err != nil {
		return nil, s.fail(ctx, newError(RemoteCall, err), endpointURL)
	}

	recs, shape := recipe.NormalizeWithShape(raw)
	metrics.RecordResponseShape(string(shape))
	metrics.RecordRecommendation("success")
	logger.Debug().Str("shape", string(shape)).Int("count", len(recs)).Msg("recommendations fetched")
	return recs, nil
}

func (s *Service) fail(ctx context.Context, e *Error, endpointURL string) error {
	s.cache.Invalidate()
	metrics.RecordRecommendation(e.Kind.String())

	logger := log.WithContext(ctx, log.WithComponent("recommend"))
	logger.Error().Err(e.Err).Str("kind", e.Kind.String()).Str("endpoint", endpointURL).Msg("API call failed")
	return e
}

// Recommend coerces a submitted form, fetches recommendations and keeps
// at most recipe.MaxResults of them.
func (s *Service) Recommend(ctx context.Context, form recipe.Form) ([]recipe.Recommendation, error) {
	recs, err := s.FetchRecommendations(ctx, form.Request())
	if err != nil {
		return nil, err
	}
	return recipe.Top(recs, recipe.MaxResults), nil
}
