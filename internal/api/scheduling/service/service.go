package schedulingService

import (
	"VoiceAgentGolang/internal/api/scheduling"
	schedulingRepository "VoiceAgentGolang/internal/api/scheduling/repository"
	"context"

	"github.com/sirupsen/logrus"
)

type ISchedulingService interface {
	FindSlots(ctx context.Context, req scheduling.FindSlotsRequest) (*scheduling.FindSlotsResponse, error)
	Book(ctx context.Context, req scheduling.BookingRequest) (*scheduling.BookingResponse, error)
}

type schedulingService struct {
	log            *logrus.Logger
	schedulingRepo schedulingRepository.Repository
}

func New(log *logrus.Logger, repo schedulingRepository.Repository) ISchedulingService {
	return &schedulingService{
		log:            log,
		schedulingRepo: repo,
	}
}
