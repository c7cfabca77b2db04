package natsbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"contest-session-service/internal/app"
	"contest-session-service/internal/domain"
)

// Publisher is the slice of *nats.Conn the result publisher needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Connect dials NATS with reconnects enabled.
func Connect(url string, log zerolog.Logger) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("contest-session-service"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
}

// ResultPublisher records results in the wrapped store, then announces them on
// {prefix}.{contestID}. A publish failure is logged; the result stays recorded.
type ResultPublisher struct {
	next   app.ResultRepository
	bus    Publisher
	prefix string
	log    zerolog.Logger
}

func NewResultPublisher(next app.ResultRepository, bus Publisher, prefix string, log zerolog.Logger) *ResultPublisher {
	if prefix == "" {
		prefix = "contest.results"
	}
	return &ResultPublisher{
		next:   next,
		bus:    bus,
		prefix: prefix,
		log:    log.With().Str("component", "result_publisher").Logger(),
	}
}

func (p *ResultPublisher) Record(ctx context.Context, result domain.ContestResult) error {
	if err := p.next.Record(ctx, result); err != nil {
		return err
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	if err := p.bus.Publish(p.Subject(result.ContestID), payload); err != nil {
		p.log.Warn().Err(err).Str("attempt_id", result.AttemptID).Msg("failed to publish contest result")
	}
	return nil
}

func (p *ResultPublisher) List(ctx context.Context, contestID string) ([]domain.ContestResult, error) {
	return p.next.List(ctx, contestID)
}

// Subject returns the subject results of contestID are published on.
func (p *ResultPublisher) Subject(contestID string) string {
	return p.prefix + "." + contestID
}
