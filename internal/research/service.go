package research

import "context"

// Service is the research subsystem's provider contract, matching
// ResearchService's single request_research entry point.
type Service interface {
	Request(ctx context.Context, req Request) (Packet, error)
}

// NullService is the safe default: it performs no network activity and
// always reports the subsystem as disabled, matching NullResearchService.
type NullService struct{}

// NewNullService constructs a Service that never leaves the process.
func NewNullService() *NullService { return &NullService{} }

func (NullService) Request(_ context.Context, req Request) (Packet, error) {
	return disabledPacket(req), nil
}
