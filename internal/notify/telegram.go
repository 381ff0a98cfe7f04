// Package notify отправляет уведомления о резервациях в Telegram-чат
// персонала: события создания/удаления и ежедневную сводку на день.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"rezervator/internal/config"
	"rezervator/internal/domain"
	"rezervator/internal/events"
	"rezervator/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

type Notifier struct {
	sender domain.TelegramSender
	agenda domain.AgendaSource
	config config.TelegramConfig
	logger *zerolog.Logger
}

func NewNotifier(sender domain.TelegramSender, agenda domain.AgendaSource, cfg config.TelegramConfig, logger *zerolog.Logger) *Notifier {
	return &Notifier{sender: sender, agenda: agenda, config: cfg, logger: logger}
}

// Subscribe подписывает notifier на события коллекции.
func (n *Notifier) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventReservationCreated, n.onReservationEvent("Nova rezervacija"))
	bus.Subscribe(events.EventReservationDeleted, n.onReservationEvent("Otkazana rezervacija"))
}

func (n *Notifier) onReservationEvent(title string) events.EventHandler {
	return func(event *events.Event) error {
		var payload events.ReservationEventPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return err
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "%s: %s\n", title, payload.Name)
		fmt.Fprintf(&sb, "Datum: %s u %s\n", models.FormatDisplayDate(payload.Date), payload.Time)
		fmt.Fprintf(&sb, "Gostiju: %d", payload.Guests)
		if payload.Type == models.TypeBirthday {
			sb.WriteString(" (rođendan)")
		}
		if payload.TableNumber != 0 {
			fmt.Fprintf(&sb, "\nSto: %d", payload.TableNumber)
		}

		msg := tgbotapi.NewMessage(n.config.ChatID, sb.String())
		if _, err := n.sender.Send(msg); err != nil {
			n.logger.Error().Err(err).Str("event", event.Type).Msg("notify: send error")
			return err
		}
		return nil
	}
}

// StartDailyAgenda schedules the daily agenda message for today's
// reservations at the configured local time.
func (n *Notifier) StartDailyAgenda(ctx context.Context) {
	if n == nil || n.sender == nil {
		return
	}

	go func() {
		hour := models.ReminderHour
		if n.config.ReminderTime != "" {
			var m int
			_, err := fmt.Sscanf(n.config.ReminderTime, "%d:%d", &hour, &m)
			if err != nil {
				n.logger.Error().Err(err).Str("reminder_time", n.config.ReminderTime).Msg("Invalid reminder time format")
				return
			}
		}

		// First wait until next agenda time local time, then tick every 24h.
		wait := timeUntilNextHour(hour)
		timer := time.NewTimer(wait)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				n.SendAgenda(time.Now().Format(models.DateLayout))
				timer.Reset(24 * time.Hour)
			}
		}
	}()
}

// SendAgenda отправляет сводку резерваций на дату.
func (n *Notifier) SendAgenda(date string) {
	reservations := n.agenda.ForDate(date)

	msg := tgbotapi.NewMessage(n.config.ChatID, formatAgendaMessage(date, reservations))
	if _, err := n.sender.Send(msg); err != nil {
		n.logger.Error().Err(err).Str("date", date).Msg("agenda: send error")
	}
}

func formatAgendaMessage(date string, reservations []models.Reservation) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Rezervacije za %s:\n", models.FormatDisplayDate(date))

	if len(reservations) == 0 {
		sb.WriteString("nema rezervacija")
		return sb.String()
	}

	for _, r := range reservations {
		fmt.Fprintf(&sb, "%s — %s, %d gostiju", r.Time, r.Name, r.Guests)
		if r.TableNumber != 0 {
			fmt.Fprintf(&sb, ", sto %d", r.TableNumber)
		}
		if r.Type == models.TypeBirthday {
			sb.WriteString(" (rođendan)")
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Ukupno: %d", len(reservations))

	return sb.String()
}

func timeUntilNextHour(hour int) time.Duration {
	now := time.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}
