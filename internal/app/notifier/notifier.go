package notifier

import (
	"context"
	"fmt"
	"github.com/kotche/notekeeper/infrastructure/logger"
	"github.com/kotche/notekeeper/internal/metrics"
	"github.com/kotche/notekeeper/internal/model"
	"github.com/kotche/notekeeper/internal/service/events"
	"github.com/kotche/notekeeper/internal/service/kafka"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// Sender is the part of *telebot.Bot the notifier needs.
type Sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// Notifier forwards delete and restore events to the admin chat.
type Notifier struct {
	bot         Sender
	subscriber  kafka.Subscriber
	adminChatID int64
}

func New(bot Sender, subscriber kafka.Subscriber, adminChatID int64) *Notifier {
	return &Notifier{
		bot:         bot,
		subscriber:  subscriber,
		adminChatID: adminChatID,
	}
}

// Run consumes events until ctx is cancelled.
func (n *Notifier) Run(ctx context.Context) error {
	logger.Log.Info("notifier started")

	for {
		_, value, err := n.subscriber.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Log.Info("notifier stopped")
				return nil
			}
			logger.Log.WithError(err).Error("error reading note event")
			continue
		}

		if err = n.handle(value); err != nil {
			logger.Log.WithError(err).Error("error handling note event")
		}
	}
}

func (n *Notifier) handle(value []byte) error {
	event, err := events.Decode(value)
	if err != nil {
		return err
	}

	message, ok := noticeText(event)
	if !ok {
		return nil
	}

	if _, err = n.bot.Send(&telebot.Chat{ID: n.adminChatID}, message); err != nil {
		return fmt.Errorf("failed to send notice for note %d: %w", event.NoteID, err)
	}
	metrics.NoticeSent(string(event.Type))

	logger.Log.WithFields(logrus.Fields{
		"event":   event.Type,
		"note_id": event.NoteID,
	}).Info("notice sent to admin chat")
	return nil
}

func noticeText(event model.NoteEvent) (string, bool) {
	switch event.Type {
	case model.EventNoteDeleted:
		return fmt.Sprintf("Note %d %q of user %d was deleted by user %d",
			event.NoteID, event.Title, event.OwnerID, event.ActorID), true
	case model.EventNoteRestored:
		return fmt.Sprintf("Note %d %q of user %d was restored by admin %d",
			event.NoteID, event.Title, event.OwnerID, event.ActorID), true
	default:
		return "", false
	}
}
