package stream

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	channelPrefix = "itinerary:"
	channelSuffix = ":changes"
	subscribeWait = 5 * time.Second
)

// Hub fans itinerary change events out to websocket clients. With redis
// every event goes through the itinerary channel so all API instances see
// it; without redis delivery is local only.
type Hub struct {
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
	pubsub  *redis.PubSub
	done    chan struct{}
}

type Client struct {
	ItineraryID string
	Send        chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		clients: map[string]map[*Client]struct{}{},
		done:    make(chan struct{}),
	}
	if redisClient == nil {
		close(h.done)
		return h
	}

	ctx, cancel := context.WithTimeout(context.Background(), subscribeWait)
	defer cancel()
	pubsub := redisClient.PSubscribe(ctx, channelPrefix+"*"+channelSuffix)
	if _, err := pubsub.Receive(ctx); err != nil {
		slog.Warn("redis subscribe failed, change stream is local only", slog.String("error", err.Error()))
		_ = pubsub.Close()
		close(h.done)
		return h
	}

	h.redis = redisClient
	h.pubsub = pubsub
	go h.forward()
	return h
}

func (h *Hub) Register(itineraryID string) *Client {
	client := &Client{
		ItineraryID: itineraryID,
		Send:        make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[itineraryID] == nil {
		h.clients[itineraryID] = map[*Client]struct{}{}
	}
	h.clients[itineraryID][client] = struct{}{}
	return client
}

// Unregister removes the client and closes its Send channel. Calling it
// again for the same client is a no-op.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	itineraryClients, ok := h.clients[client.ItineraryID]
	if !ok {
		return
	}
	if _, ok := itineraryClients[client]; !ok {
		return
	}
	delete(itineraryClients, client)
	if len(itineraryClients) == 0 {
		delete(h.clients, client.ItineraryID)
	}
	close(client.Send)
}

// Broadcast delivers payload to every client watching the itinerary.
func (h *Hub) Broadcast(itineraryID string, payload []byte) {
	if h.redis != nil {
		err := h.redis.Publish(context.Background(), redisChannel(itineraryID), payload).Err()
		if err == nil {
			return
		}
		slog.Error("redis publish failed, delivering locally",
			slog.String("itinerary_id", itineraryID),
			slog.String("error", err.Error()),
		)
	}
	h.deliver(itineraryID, payload)
}

// Close stops the redis subscription.
func (h *Hub) Close() {
	if h.pubsub != nil {
		_ = h.pubsub.Close()
	}
	<-h.done
}

func (h *Hub) deliver(itineraryID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[itineraryID] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) forward() {
	defer close(h.done)

	for msg := range h.pubsub.Channel() {
		itineraryID := itineraryIDFromChannel(msg.Channel)
		if itineraryID == "" {
			continue
		}
		h.deliver(itineraryID, []byte(msg.Payload))
	}
}

func redisChannel(itineraryID string) string {
	return channelPrefix + itineraryID + channelSuffix
}

func itineraryIDFromChannel(ch string) string {
	if len(ch) <= len(channelPrefix)+len(channelSuffix) ||
		!strings.HasPrefix(ch, channelPrefix) || !strings.HasSuffix(ch, channelSuffix) {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(ch, channelPrefix), channelSuffix)
}
