// FILE: internal/service/document_service.go
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/CustomGPTer/RAMS-Generator/internal/constant"
	"github.com/CustomGPTer/RAMS-Generator/internal/dto"
	"github.com/CustomGPTer/RAMS-Generator/internal/pkg/apperror"
	"github.com/CustomGPTer/RAMS-Generator/internal/pkg/logger"
	"github.com/CustomGPTer/RAMS-Generator/internal/repository/contract"
	"github.com/CustomGPTer/RAMS-Generator/pkg/rams/assembly"
	"github.com/CustomGPTer/RAMS-Generator/pkg/rams/prompt"
	"github.com/CustomGPTer/RAMS-Generator/pkg/rams/section"
)

// DocumentAssembler turns answers or ready-made section text into a DOCX.
type DocumentAssembler interface {
	Assemble(ctx context.Context, in assembly.Input) (*assembly.Output, error)
	RenderSection(ctx context.Context, kind section.Kind, content string) (*assembly.Output, error)
}

type IDocumentService interface {
	Generate(ctx context.Context, sessionId string) (*assembly.Output, error)
	GenerateFromAnswers(ctx context.Context, req *dto.GenerateFromAnswersRequest) (*assembly.Output, error)
	RenderSection(ctx context.Context, kind string, req *dto.RenderSectionRequest) (*assembly.Output, error)
}

type documentService struct {
	sessions         contract.SessionRepository
	assembler        DocumentAssembler
	publisherService IPublisherService
	logger           logger.ILogger
	answerCount      int
}

func NewDocumentService(
	sessions contract.SessionRepository,
	assembler DocumentAssembler,
	publisherService IPublisherService,
	logger logger.ILogger,
	answerCount int,
) IDocumentService {
	return &documentService{
		sessions:         sessions,
		assembler:        assembler,
		publisherService: publisherService,
		logger:           logger,
		answerCount:      answerCount,
	}
}

// Generate builds the document for a completed session and then discards
// the session. The session is claimed for the duration of the build, so a
// concurrent call gets a Conflict. A failed build releases the claim and
// leaves the session in place for a retry.
func (s *documentService) Generate(ctx context.Context, sessionId string) (*assembly.Output, error) {
	if sessionId == "" {
		return nil, apperror.Validation("session_id is required")
	}

	session, err := s.sessions.Claim(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	pairs := make([]prompt.Pair, len(session.Questions))
	for i, q := range session.Questions {
		pairs[i] = prompt.Pair{Question: q, Answer: session.Answers[i]}
	}

	out, err := s.assembler.Assemble(ctx, assembly.Input{Task: session.Task, Pairs: pairs})
	if err != nil {
		s.logger.Error("DOCUMENT", "Document generation failed", map[string]interface{}{
			"session_id": session.ID,
			"error":      err.Error(),
		})
		if relErr := s.sessions.Release(ctx, session.ID); relErr != nil {
			s.logger.Warn("DOCUMENT", "Failed to release session", map[string]interface{}{
				"session_id": session.ID,
				"error":      relErr.Error(),
			})
		}
		return nil, err
	}

	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		s.logger.Warn("DOCUMENT", "Failed to discard session", map[string]interface{}{
			"session_id": session.ID,
			"error":      err.Error(),
		})
	}

	s.logger.Info("DOCUMENT", "Document generated", map[string]interface{}{
		"session_id": session.ID,
		"bytes":      len(out.Bytes),
	})
	publishEvent(ctx, s.publisherService, s.logger, constant.EventDocumentGenerated, map[string]interface{}{
		"session_id": session.ID,
		"bytes":      len(out.Bytes),
	})
	return out, nil
}

func (s *documentService) GenerateFromAnswers(ctx context.Context, req *dto.GenerateFromAnswersRequest) (*assembly.Output, error) {
	if len(req.Answers) != s.answerCount {
		return nil, apperror.Validation(fmt.Sprintf("exactly %d answers are required", s.answerCount))
	}

	pairs := make([]prompt.Pair, len(req.Answers))
	for i, a := range req.Answers {
		a = strings.TrimSpace(a)
		if a == "" {
			return nil, apperror.Validation(fmt.Sprintf("answer %d must not be empty", i+1))
		}
		pairs[i] = prompt.Pair{Answer: a}
	}

	out, err := s.assembler.Assemble(ctx, assembly.Input{Task: strings.TrimSpace(req.Task), Pairs: pairs})
	if err != nil {
		s.logger.Error("DOCUMENT", "Document generation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	publishEvent(ctx, s.publisherService, s.logger, constant.EventDocumentGenerated, map[string]interface{}{
		"bytes": len(out.Bytes),
	})
	return out, nil
}

func (s *documentService) RenderSection(ctx context.Context, kind string, req *dto.RenderSectionRequest) (*assembly.Output, error) {
	k, ok := section.ParseKind(kind)
	if !ok {
		return nil, apperror.Validation(fmt.Sprintf("unknown section %q", kind))
	}
	return s.assembler.RenderSection(ctx, k, req.Content)
}
