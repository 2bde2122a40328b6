package server

import (
	"context"
	"encoding/json"
	"log"

	"waverider/internal/observability"
)

// Event type constants prevent typos in event names.
const (
	EventPostCreated        = "post_created"
	EventCommentCreated     = "comment_created"
	EventCommentDeleted     = "comment_deleted"
	EventCommentLikeUpdated = "comment_like_updated"
)

// publishFeedEvent fans a post-level aggregate event out to every feed
// subscriber. With Redis available the event goes through pub/sub so all
// instances deliver it; without Redis it reaches local connections only.
func (s *Server) publishFeedEvent(eventType string, payload map[string]interface{}) {
	event := map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal %s event: %v", eventType, err)
		return
	}

	observability.FeedEventsTotal.WithLabelValues(eventType).Inc()

	if s.notifier != nil {
		if err := s.notifier.PublishFeedEvent(context.Background(), string(eventJSON)); err != nil {
			log.Printf("failed to publish %s event: %v", eventType, err)
		}
		return
	}
	if s.hub != nil {
		s.hub.BroadcastAll(string(eventJSON))
	}
}
