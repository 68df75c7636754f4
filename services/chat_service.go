//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dm-relay/contract"
	"dm-relay/domain"
	"dm-relay/domain/event"
	"dm-relay/errors"
	"dm-relay/moderation"
	"dm-relay/repositories"

	"github.com/abadojack/whatlanggo"
	"github.com/samber/lo"
)

const (
	historyDefaultLimit = 50
	historyMaxLimit     = 200
)

type IChatService interface {
	Send(ctx context.Context, sender domain.UserIdentity, toUserID domain.UserID, body string) (domain.MessageView, error)
	JoinConversation(ctx context.Context, sender domain.UserIdentity, otherUserID domain.UserID) (domain.ConversationAddress, domain.Profile, error)
	History(ctx context.Context, sender domain.UserIdentity, otherUserID domain.UserID, limit int) ([]domain.MessageView, error)
}

// ChatService is the relay engine: it validates protocol commands,
// persists messages, and fans deliveries out to the recipient's
// personal address through the registry.
type ChatService struct {
	users           repositories.IUserRepository
	messages        repositories.IMessageRepository
	registry        contract.IRegistry
	moderator       *moderation.Moderator
	log             *slog.Logger
	deliveryTimeout time.Duration
}

// NewChatService wires the relay. moderator may be nil to disable
// censorship.
func NewChatService(users repositories.IUserRepository, messages repositories.IMessageRepository,
	registry contract.IRegistry, moderator *moderation.Moderator,
	log *slog.Logger, deliveryTimeout time.Duration) *ChatService {
	return &ChatService{
		users:           users,
		messages:        messages,
		registry:        registry,
		moderator:       moderator,
		log:             log,
		deliveryTimeout: deliveryTimeout,
	}
}

// Send validates, persists, then delivers. Persistence is the
// durability point: if it fails nothing is delivered; once it
// succeeds, live delivery is best-effort because history carries the
// message to any connection that missed it.
//
// The view is pushed to every connection currently bound to the
// recipient's personal address, not to a conversation room, so the
// recipient gets it even while viewing another thread. The same view
// is returned to the caller as the sender acknowledgment.
func (s *ChatService) Send(ctx context.Context, sender domain.UserIdentity, toUserID domain.UserID, body string) (domain.MessageView, error) {
	body = strings.TrimSpace(body)
	if body == "" || toUserID <= 0 {
		return domain.MessageView{}, errors.ErrInvalidPayload
	}

	recipient, err := s.users.GetByID(toUserID)
	if err != nil {
		return domain.MessageView{}, asRecipientError(err)
	}

	body = s.censor(sender, body)

	message, err := s.messages.CreateMessage(sender.ID, toUserID, body)
	if err != nil {
		return domain.MessageView{}, fmt.Errorf("%w: %v", errors.ErrStore, err)
	}

	view := domain.NewMessageView(message, sender.DisplayName, recipient.DisplayName)
	s.deliver(ctx, toUserID, view)
	return view, nil
}

// JoinConversation is a routing convenience: it validates the other
// participant, hands the client its conversation address and the other
// side's public profile. Joining never affects delivery.
func (s *ChatService) JoinConversation(_ context.Context, sender domain.UserIdentity, otherUserID domain.UserID) (domain.ConversationAddress, domain.Profile, error) {
	other, err := s.users.GetByID(otherUserID)
	if err != nil {
		return "", domain.Profile{}, asRecipientError(err)
	}

	address, err := domain.ConversationAddressFor(sender.ID, otherUserID)
	if err != nil {
		return "", domain.Profile{}, err
	}

	return address, domain.Profile{
		ID:          domain.UserID(other.ID),
		Username:    other.Username,
		DisplayName: other.DisplayName,
	}, nil
}

// History returns the tail of the conversation with the other user:
// at most limit messages, the most recent ones, in ascending
// chronological order. limit defaults to 50 and is clamped to 200.
func (s *ChatService) History(_ context.Context, sender domain.UserIdentity, otherUserID domain.UserID, limit int) ([]domain.MessageView, error) {
	switch {
	case limit == 0:
		limit = historyDefaultLimit
	case limit < 0:
		return nil, errors.ErrInvalidPayload
	case limit > historyMaxLimit:
		limit = historyMaxLimit
	}

	other, err := s.users.GetByID(otherUserID)
	if err != nil {
		return nil, asRecipientError(err)
	}

	messages, err := s.messages.History(sender.ID, otherUserID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStore, err)
	}

	names := map[domain.UserID]string{
		sender.ID:   sender.DisplayName,
		otherUserID: other.DisplayName,
	}
	return lo.Map(messages, func(item domain.Message, _ int) domain.MessageView {
		return domain.NewMessageView(item, names[item.FromUserID], names[item.ToUserID])
	}), nil
}

// deliver pushes the view to every live connection of the recipient.
// Zero connections means the recipient is offline; one or many all get
// the same event. Failures are logged, never surfaced to the sender.
func (s *ChatService) deliver(ctx context.Context, toUserID domain.UserID, view domain.MessageView) {
	sinks := s.registry.SinksFor(toUserID)
	if len(sinks) == 0 {
		return
	}

	evt := event.MessageDelivered{To: toUserID, View: view}
	for _, connectionSink := range sinks {
		deliveryCtx, cancel := context.WithTimeout(ctx, s.deliveryTimeout)
		if err := connectionSink.Consume(deliveryCtx, evt); err != nil {
			s.log.Warn("Live delivery failed",
				"recipient", toUserID,
				"message_id", view.ID,
				"error", err)
		}
		cancel()
	}
}

func (s *ChatService) censor(sender domain.UserIdentity, body string) string {
	if s.moderator == nil {
		return body
	}
	censored, found := s.moderator.Censor(body)
	if len(found) > 0 {
		info := whatlanggo.Detect(body)
		s.log.Warn("Censored message content",
			"from", sender.ID,
			"lang", info.Lang.Iso6391(),
			"matches", len(found))
	}
	return censored
}

func asRecipientError(err error) error {
	if stderrors.Is(err, errors.ErrUserNotFound) {
		return errors.ErrRecipientNotFound
	}
	return fmt.Errorf("%w: %v", errors.ErrStore, err)
}
