package callService

import (
	"VoiceAgentGolang/internal/api/call"
	schedulingService "VoiceAgentGolang/internal/api/scheduling/service"
	uploadService "VoiceAgentGolang/internal/api/upload/service"
	"VoiceAgentGolang/pkg/extract"
	"VoiceAgentGolang/pkg/whatsapp"
	"context"

	"github.com/sirupsen/logrus"
)

type ICallService interface {
	HandleTurn(ctx context.Context, event call.TurnEvent) (*call.TurnResponse, error)
	Close()
}

type callService struct {
	log            *logrus.Logger
	extractor      extract.IExtractor
	scheduling     schedulingService.ISchedulingService
	upload         uploadService.IUploadService
	whatsappClient whatsapp.IWhatsappSender
	store          *sessionStore
	config         DialogConfig
}

func New(
	log *logrus.Logger,
	extractor extract.IExtractor,
	scheduling schedulingService.ISchedulingService,
	upload uploadService.IUploadService,
	whatsappClient whatsapp.IWhatsappSender,
	config DialogConfig,
) ICallService {
	return &callService{
		log:            log,
		extractor:      extractor,
		scheduling:     scheduling,
		upload:         upload,
		whatsappClient: whatsappClient,
		store:          newSessionStore(log, config.SessionIdleTimeout, config.JanitorInterval),
		config:         config,
	}
}

func (s *callService) Close() {
	s.store.Close()
}
