package service

import (
	"context"
	"encoding/json"
	"log"

	"wiki-craft-be/internal/repository/memory"
	"wiki-craft-be/pkg/events"
	pktNats "wiki-craft-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// DocumentChangeMessage is the in-process payload published on every
// document put or delete.
type DocumentChangeMessage struct {
	DocumentId    uuid.UUID `json:"document_id"`
	SourcePath    string    `json:"source_path"`
	Change        string    `json:"change"` // "ingested" or "deleted"
	ChunksChanged int64     `json:"chunks_changed"`
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService reacts to document changes: synthesized wiki entries may
// cite the changed document, so the whole cache is flushed, and the change
// is mirrored to NATS for external consumers (best effort).
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	wikiCache      *memory.WikiCacheRepository
	eventPublisher *pktNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	wikiCache *memory.WikiCacheRepository,
	eventPublisher *pktNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		wikiCache:      wikiCache,
		eventPublisher: eventPublisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload DocumentChangeMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal document change message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.wikiCache.Flush()

	if cs.eventPublisher != nil {
		var evt events.Event
		switch payload.Change {
		case "deleted":
			evt = events.NewDocumentDeleted(payload.DocumentId, payload.ChunksChanged)
		default:
			evt = events.NewDocumentIngested(payload.DocumentId, payload.SourcePath, int(payload.ChunksChanged))
		}
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			// External mirroring is best effort, the local state is done.
			log.Printf("[WARN] Failed to publish document event to NATS: %v", err)
		}
	}

	msg.Ack()
}
