package runtime

import (
	"context"
	"log/slog"
	"time"

	"chat-pulse/contract"
	"chat-pulse/domain"
	"chat-pulse/observability"
	"chat-pulse/protocol"
	"chat-pulse/repositories"

	"github.com/samber/lo"
)

// Router resolves which live sessions must receive an event and delivers it.
//
// Delivery is best-effort: members without a live session are skipped,
// offline catch-up is the job of the persisted history. Order across
// sessions is unspecified, order per session follows the call order because
// each sink queues FIFO.
type Router struct {
	log      *slog.Logger
	storage  repositories.Storage
	presence contract.IPresence
	stats    *observability.Stats
}

func NewRouter(log *slog.Logger, storage repositories.Storage, presence contract.IPresence, stats *observability.Stats) *Router {
	return &Router{log: log, storage: storage, presence: presence, stats: stats}
}

// BroadcastToChatMembers delivers the envelope to every live member of the
// chat, at most once per session per call.
func (r *Router) BroadcastToChatMembers(ctx context.Context, chatID domain.ChatID, env protocol.Envelope) {
	members, err := r.storage.GetChatMembers(ctx, chatID)
	if err != nil {
		r.log.Error("Failed to resolve chat membership", "chat_id", chatID, "error", err)
		return
	}

	for _, member := range lo.Uniq(members) {
		sink, live := r.presence.Get(member)
		if !live {
			continue
		}
		sink.Deliver(env)
		r.stats.IncrDeliveries()
	}
}

// BroadcastStatus notifies every live session of a presence change.
// Status changes are not chat-scoped.
func (r *Router) BroadcastStatus(id domain.UserID, status domain.Status) {
	now := time.Now().UTC()
	env := protocol.New(protocol.TypeUserStatus, protocol.UserStatus{
		UserID:   id,
		Status:   status,
		LastSeen: &now,
	})

	for _, sink := range r.presence.Sinks() {
		sink.Deliver(env)
		r.stats.IncrDeliveries()
	}
}
