package bootstrap

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/CustomGPTer/RAMS-Generator/internal/config"
	"github.com/CustomGPTer/RAMS-Generator/internal/constant"
	"github.com/CustomGPTer/RAMS-Generator/internal/controller"
	"github.com/CustomGPTer/RAMS-Generator/internal/pkg/logger"
	"github.com/CustomGPTer/RAMS-Generator/internal/repository/memory"
	"github.com/CustomGPTer/RAMS-Generator/internal/service"
	"github.com/CustomGPTer/RAMS-Generator/pkg/events"
	"github.com/CustomGPTer/RAMS-Generator/pkg/llm"
	"github.com/CustomGPTer/RAMS-Generator/pkg/llm/factory"
	"github.com/CustomGPTer/RAMS-Generator/pkg/rams/assembly"
	"github.com/CustomGPTer/RAMS-Generator/pkg/rams/prompt"
	"github.com/CustomGPTer/RAMS-Generator/pkg/rams/section"
	"github.com/CustomGPTer/RAMS-Generator/pkg/rams/substitute"
	"github.com/CustomGPTer/RAMS-Generator/pkg/rams/template"

	pktNats "github.com/CustomGPTer/RAMS-Generator/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Options overrides infrastructure that tests replace. Zero values build
// everything from the config.
type Options struct {
	Logger    logger.ILogger
	Provider  llm.LLMProvider
	Templates template.Store
}

type Container struct {
	Logger logger.ILogger

	// Controllers
	RamsController   controller.IRamsController
	HealthController controller.IHealthController

	// Background Services (Exposed for main.go to run)
	AuditService service.IAuditService
	Sessions     *memory.SessionRepository

	publisherService service.IPublisherService
	pubSub           *gochannel.GoChannel
	natsPub          *pktNats.Publisher
	sweepInterval    time.Duration
}

func NewContainer(cfg *config.Config, opts Options) (*Container, error) {
	// 1. Core Facades
	sysLogger := opts.Logger
	if sysLogger == nil {
		sysLogger = logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	}

	provider := opts.Provider
	if provider == nil {
		var err error
		provider, err = factory.NewLLMProvider(factory.ProviderConfig{
			Provider:      cfg.Ai.LLMProvider,
			Model:         cfg.Ai.LLMModel,
			OpenAIAPIKey:  cfg.Ai.OpenAIAPIKey,
			OpenAIBaseURL: cfg.Ai.OpenAIBaseURL,
			OllamaBaseURL: cfg.Ai.OllamaBaseURL,
		})
		if err != nil {
			return nil, err
		}
	}

	templates := opts.Templates
	if templates == nil {
		templates = template.NewFileStore(cfg.Rams.TemplatePath)
	}
	if _, err := templates.Load(context.Background()); err != nil {
		// Requests will fail until the template is fixed, but the server
		// still answers health checks.
		sysLogger.Error("BOOTSTRAP", "RAMS template is not usable", map[string]interface{}{
			"path":  cfg.Rams.TemplatePath,
			"error": err.Error(),
		})
	}

	systemPrompt := loadSystemPrompt(cfg.Rams.PromptPath, sysLogger)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermillLogger,
	)

	var forwarder service.EventForwarder
	var natsPub *pktNats.Publisher
	if cfg.Events.NatsURL != "" {
		p, err := pktNats.NewPublisher(context.Background(), cfg.Events.NatsURL)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "NATS unavailable, lifecycle events stay local", map[string]interface{}{
				"url":   cfg.Events.NatsURL,
				"error": err.Error(),
			})
		} else {
			natsPub = p
			forwarder = p
		}
	}

	// 3. Domain
	generator := section.NewGenerator(provider, section.Options{
		Model:       cfg.Ai.LLMModel,
		Temperature: cfg.Ai.Temperature,
		MaxTokens:   cfg.Ai.MaxTokens,
		Timeout:     cfg.Ai.GenerationTimeout,
	})
	pipeline := assembly.NewPipeline(generator, templates, assembly.Config{
		SystemPrompt: systemPrompt,
		Filename:     constant.DocumentFilename,
		Markers: assembly.Markers{
			HazardSentinel: constant.HazardSentinel,
			SequenceMarker: constant.SequenceMarker,
			MethodMarker:   constant.MethodMarker,
			Table: substitute.TableOptions{
				MarkerColumn: constant.HazardMarkerColumn,
				MaxFields:    constant.HazardMaxFields,
			},
		},
	}, sysLogger)

	sessions := memory.NewSessionRepository(cfg.Session.TTL, cfg.Session.SweepInterval)

	// 4. Services
	publisherService := service.NewPublisherService(cfg.Events.Topic, pubSub)
	auditService := service.NewAuditService(pubSub, cfg.Events.Topic, forwarder, sysLogger)
	questionnaireService := service.NewQuestionnaireService(
		sessions,
		generator,
		publisherService,
		sysLogger,
		systemPrompt,
		cfg.Rams.QuestionCount,
	)
	documentService := service.NewDocumentService(
		sessions,
		pipeline,
		publisherService,
		sysLogger,
		cfg.Rams.QuestionCount,
	)

	// 5. Controllers
	return &Container{
		Logger:           sysLogger,
		RamsController:   controller.NewRamsController(questionnaireService, documentService, cfg.Session.TTL),
		HealthController: controller.NewHealthController(sysLogger),
		AuditService:     auditService,
		Sessions:         sessions,
		publisherService: publisherService,
		pubSub:           pubSub,
		natsPub:          natsPub,
		sweepInterval:    cfg.Session.SweepInterval,
	}, nil
}

// RunSweeper expires idle sessions until ctx is done.
func (c *Container) RunSweeper(ctx context.Context) error {
	return memory.RunSweeper(ctx, c.Sessions, c.sweepInterval, c.Logger, func(removed int) {
		event := events.New(constant.EventSessionsExpired, map[string]interface{}{"removed": removed})
		if err := c.publisherService.Publish(ctx, event); err != nil {
			c.Logger.Warn("SESSION", "Failed to publish expiry event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	})
}

func (c *Container) Close() error {
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	err := c.pubSub.Close()
	_ = c.Logger.Sync()
	return err
}

func loadSystemPrompt(path string, log logger.ILogger) string {
	text, err := prompt.LoadSystemPrompt(path, constant.SystemPromptCutMarker)
	switch {
	case err == nil:
		log.Info("BOOTSTRAP", "Loaded system prompt", map[string]interface{}{
			"path":  path,
			"chars": len(text),
		})
		return text
	case errors.Is(err, fs.ErrNotExist):
		log.Warn("BOOTSTRAP", "System prompt file not found, using built-in prompt", map[string]interface{}{
			"path": path,
		})
	default:
		log.Warn("BOOTSTRAP", "Failed to read system prompt, using built-in prompt", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}
	return prompt.DefaultSystemPrompt()
}
