package docsystem

import (
	"context"
	"log/slog"
	"strings"

	"draftdesk/internal/config"
	"draftdesk/internal/domain"
	models "draftdesk/internal/domain/models/docsystem"
	docsysSvc "draftdesk/internal/domain/services/docsystem"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type draftService struct {
	gateway   docsysSvc.Gateway
	converter docsysSvc.ContentConverter
	userID    string
	topK      int
	logger    *slog.Logger
}

// NewDraftService creates the question/answer service. converter, when not
// nil, rewrites evidence text into display-ready markdown.
func NewDraftService(gateway docsysSvc.Gateway, converter docsysSvc.ContentConverter, userID string, topK int, logger *slog.Logger) docsysSvc.DraftService {
	if topK <= 0 {
		topK = config.DefaultTopK
	}
	return &draftService{
		gateway:   gateway,
		converter: converter,
		userID:    userID,
		topK:      topK,
		logger:    logger,
	}
}

// Ask generates a draft for question over folderID (nil = all folders).
//
// Outcomes are kept apart so the caller can tell them to the user:
//   - backend had nothing indexed: *domain.NotFoundError (ReasonNotIndexed)
//   - no answer and no passages: *domain.EmptyResultError (ReasonNoEvidence)
//   - passages but no answer: *domain.EmptyResultError (ReasonNoAnswer)
//   - an answer without passages is returned as is; check HasEvidence
func (s *draftService) Ask(ctx context.Context, question string, folderID *string) (*models.DraftResult, error) {
	req := &models.QueryRequest{
		Question: strings.TrimSpace(question),
		FolderID: folderID,
		TopK:     s.topK,
	}
	if err := validateQuery(req); err != nil {
		return nil, err
	}

	s.logger.Debug("generating draft",
		"folder_id", deref(folderID),
		"question_length", len(req.Question),
		"top_k", req.TopK,
	)

	result, err := s.gateway.Query(ctx, s.userID, req)
	if err != nil {
		return nil, err
	}

	if result == nil {
		result = &models.DraftResult{}
	}
	if strings.TrimSpace(result.Draft) == "" {
		if !result.HasEvidence() {
			return nil, &domain.EmptyResultError{
				Message: "no relevant passages were found for this question",
				Reason:  domain.ReasonNoEvidence,
			}
		}
		return nil, &domain.EmptyResultError{
			Message: "passages were found but no draft could be generated",
			Reason:  domain.ReasonNoAnswer,
		}
	}

	s.convertEvidence(ctx, result)

	s.logger.Info("draft generated",
		"folder_id", deref(folderID),
		"evidences", len(result.Evidences),
		"sources", len(result.Sources),
	)
	return result, nil
}

// convertEvidence rewrites passage text in place. A passage that fails to
// convert keeps its original text.
func (s *draftService) convertEvidence(ctx context.Context, result *models.DraftResult) {
	if s.converter == nil {
		return
	}
	convert := func(text string) string {
		out, err := s.converter.Convert(ctx, text)
		if err != nil {
			s.logger.Warn("evidence conversion failed", "converter", s.converter.Name(), "error", err)
			return text
		}
		return out
	}
	for i := range result.Evidences {
		result.Evidences[i].Text = convert(result.Evidences[i].Text)
	}
	for i := range result.Sources {
		for j := range result.Sources[i].Chunks {
			result.Sources[i].Chunks[j].Text = convert(result.Sources[i].Chunks[j].Text)
		}
	}
}

func validateQuery(req *models.QueryRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Question,
			validation.Required.Error("please enter a question"),
			validation.RuneLength(1, config.MaxQuestionLength),
		),
		validation.Field(&req.TopK, validation.Min(1), validation.Max(config.MaxTopK)),
		validation.Field(&req.FolderID, validation.NilOrNotEmpty),
	)
	if err != nil {
		return &domain.ValidationError{Message: flattenValidation(err)}
	}
	return nil
}
