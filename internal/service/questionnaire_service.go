// FILE: internal/service/questionnaire_service.go
package service

import (
	"context"
	"strings"

	"github.com/CustomGPTer/RAMS-Generator/internal/constant"
	"github.com/CustomGPTer/RAMS-Generator/internal/dto"
	"github.com/CustomGPTer/RAMS-Generator/internal/entity"
	"github.com/CustomGPTer/RAMS-Generator/internal/pkg/apperror"
	"github.com/CustomGPTer/RAMS-Generator/internal/pkg/logger"
	"github.com/CustomGPTer/RAMS-Generator/internal/repository/contract"
	"github.com/CustomGPTer/RAMS-Generator/pkg/events"
	"github.com/CustomGPTer/RAMS-Generator/pkg/rams/parser"
	"github.com/CustomGPTer/RAMS-Generator/pkg/rams/prompt"
	"github.com/CustomGPTer/RAMS-Generator/pkg/rams/section"
)

// questionsSection names the question-generation call in errors and logs.
const questionsSection = "questions"

// ContentGenerator runs one self-contained LLM call.
type ContentGenerator interface {
	Generate(ctx context.Context, req section.Request) (string, error)
}

type IQuestionnaireService interface {
	Start(ctx context.Context, req *dto.StartSessionRequest) (*dto.StartSessionResponse, error)
	SubmitAnswer(ctx context.Context, sessionId string, answer string) (*dto.SubmitAnswerResponse, error)
	Status(ctx context.Context, sessionId string) (*dto.SessionStatusResponse, error)
}

type questionnaireService struct {
	sessions         contract.SessionRepository
	generator        ContentGenerator
	publisherService IPublisherService
	logger           logger.ILogger
	systemPrompt     string
	questionCount    int
}

func NewQuestionnaireService(
	sessions contract.SessionRepository,
	generator ContentGenerator,
	publisherService IPublisherService,
	logger logger.ILogger,
	systemPrompt string,
	questionCount int,
) IQuestionnaireService {
	return &questionnaireService{
		sessions:         sessions,
		generator:        generator,
		publisherService: publisherService,
		logger:           logger,
		systemPrompt:     systemPrompt,
		questionCount:    questionCount,
	}
}

func (s *questionnaireService) Start(ctx context.Context, req *dto.StartSessionRequest) (*dto.StartSessionResponse, error) {
	task := strings.TrimSpace(req.Task)
	if task == "" {
		return nil, apperror.Validation("task must not be empty")
	}

	userPrompt, err := prompt.Questions(task, s.questionCount)
	if err != nil {
		return nil, err
	}

	// No lock is held while the model runs; the session only exists once
	// its questions do.
	text, err := s.generator.Generate(ctx, section.Request{
		Section:      questionsSection,
		SystemPrompt: s.systemPrompt,
		UserPrompt:   userPrompt,
	})
	if err != nil {
		return nil, err
	}

	questions, err := parser.ParseQuestions(text, s.questionCount)
	if err != nil {
		s.logger.Warn("SESSION", "Model returned too few questions", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	session, err := s.sessions.Create(ctx, task, questions)
	if err != nil {
		return nil, err
	}

	s.logger.Info("SESSION", "Session started", map[string]interface{}{
		"session_id": session.ID,
		"total":      len(session.Questions),
	})
	s.publish(ctx, constant.EventSessionStarted, map[string]interface{}{
		"session_id": session.ID,
		"total":      len(session.Questions),
	})

	question, index, _ := session.NextQuestion()
	return &dto.StartSessionResponse{
		SessionId: session.ID,
		Question:  question,
		Index:     index,
		Total:     len(session.Questions),
	}, nil
}

func (s *questionnaireService) SubmitAnswer(ctx context.Context, sessionId string, answer string) (*dto.SubmitAnswerResponse, error) {
	if sessionId == "" {
		return nil, apperror.Validation("session_id is required")
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, apperror.Validation("answer must not be empty")
	}

	session, err := s.sessions.AppendAnswer(ctx, sessionId, answer)
	if err != nil {
		return nil, err
	}

	question, index, ok := session.NextQuestion()
	if !ok {
		s.logger.Info("SESSION", "All questions answered", map[string]interface{}{
			"session_id": session.ID,
		})
		s.publish(ctx, constant.EventSessionCompleted, map[string]interface{}{
			"session_id": session.ID,
		})
		return &dto.SubmitAnswerResponse{Complete: true}, nil
	}

	return &dto.SubmitAnswerResponse{
		Question: question,
		Index:    index,
		Total:    len(session.Questions),
	}, nil
}

func (s *questionnaireService) Status(ctx context.Context, sessionId string) (*dto.SessionStatusResponse, error) {
	if sessionId == "" {
		return nil, apperror.Validation("session_id is required")
	}
	session, err := s.sessions.Get(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	return statusOf(session), nil
}

func statusOf(session *entity.Session) *dto.SessionStatusResponse {
	res := &dto.SessionStatusResponse{
		SessionId: session.ID,
		Task:      session.Task,
		Answered:  len(session.Answers),
		Total:     len(session.Questions),
		Complete:  session.IsComplete(),
	}
	if q, i, ok := session.NextQuestion(); ok {
		res.Question = q
		res.Index = i
	}
	return res
}

func (s *questionnaireService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	publishEvent(ctx, s.publisherService, s.logger, eventType, data)
}

// publishEvent never fails the caller; lifecycle events are informational.
func publishEvent(ctx context.Context, p IPublisherService, log logger.ILogger, eventType string, data map[string]interface{}) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, events.New(eventType, data)); err != nil {
		log.Warn("EVENTS", "Failed to publish lifecycle event", map[string]interface{}{
			"event_type": eventType,
			"error":      err.Error(),
		})
	}
}
