package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/annel0/battleship3d/internal/eventbus"
	"github.com/annel0/battleship3d/internal/game"
	nats "github.com/nats-io/nats.go"
)

const (
	defaultURL = nats.DefaultURL
	timeFormat = "2006-01-02T15:04:05Z"
)

func main() {
	var (
		url        = flag.String("url", defaultURL, "NATS server URL")
		command    = flag.String("cmd", "tail", "Command: tail, stats")
		eventTypes = flag.String("types", "", "Event types filter (comma-separated)")
		boardID    = flag.String("board", "", "Board ID filter")
		since      = flag.String("since", "1h", "Time duration since now (e.g., 1h, 30m)")
		limit      = flag.Int("limit", 100, "Maximum number of events")
		follow     = flag.Bool("follow", false, "Follow new events (like tail -f)")
		wait       = flag.Duration("wait", 2*time.Second, "Idle timeout when not following")
	)
	flag.Parse()

	nc, err := nats.Connect(*url, nats.Name("event-cli"))
	if err != nil {
		log.Fatalf("❌ Failed to connect to NATS: %v", err)
	}
	defer nc.Close()

	js, err := nc.JetStream()
	if err != nil {
		log.Fatalf("❌ JetStream unavailable: %v", err)
	}

	start, err := parseSinceTime(*since, time.Now())
	if err != nil {
		log.Fatalf("❌ Invalid since: %v", err)
	}
	opts := &TailOptions{
		EventTypes: parseStringList(*eventTypes),
		BoardID:    *boardID,
		Since:      start,
		Limit:      *limit,
		Follow:     *follow,
		Wait:       *wait,
	}

	switch *command {
	case "tail":
		if err := tailEvents(js, opts); err != nil {
			log.Fatalf("❌ Tail failed: %v", err)
		}
	case "stats":
		if err := showStats(js, opts); err != nil {
			log.Fatalf("❌ Stats failed: %v", err)
		}
	default:
		fmt.Printf("❌ Unknown command: %s\n", *command)
		fmt.Println("Available commands: tail, stats")
		os.Exit(1)
	}
}

type TailOptions struct {
	EventTypes []string
	BoardID    string
	Since      time.Time
	Limit      int
	Follow     bool
	Wait       time.Duration
}

// readEvents вызывает fn для каждого подходящего события, пока не исчерпан лимит
// или (без follow) не истёк таймаут ожидания
func readEvents(js nats.JetStreamContext, opts *TailOptions, fn func(*eventbus.Envelope)) (int, error) {
	subject := eventbus.Subject("")
	if len(opts.EventTypes) == 1 {
		subject = eventbus.Subject(opts.EventTypes[0])
	}

	sub, err := js.SubscribeSync(subject, nats.StartTime(opts.Since), nats.AckNone())
	if err != nil {
		return 0, fmt.Errorf("subscribe %s: %w", subject, err)
	}
	defer sub.Unsubscribe()

	filter := eventbus.Filter{Types: opts.EventTypes}
	count := 0
	for opts.Limit <= 0 || count < opts.Limit {
		timeout := opts.Wait
		if opts.Follow {
			timeout = time.Hour
		}
		msg, err := sub.NextMsg(timeout)
		if errors.Is(err, nats.ErrTimeout) {
			if opts.Follow {
				continue
			}
			break
		}
		if err != nil {
			return count, err
		}

		ev, err := eventbus.DecodeEnvelope(msg.Data)
		if err != nil {
			fmt.Printf("⚠️ %v\n", err)
			continue
		}
		if !matches(ev, filter, opts.BoardID) {
			continue
		}
		fn(ev)
		count++
	}
	return count, nil
}

func matches(ev *eventbus.Envelope, f eventbus.Filter, boardID string) bool {
	if boardID != "" && ev.CorrelationID != boardID {
		return false
	}
	if len(f.Types) == 0 {
		return true
	}
	for _, t := range f.Types {
		if t == ev.EventType {
			return true
		}
	}
	return false
}

// tailEvents выводит события
func tailEvents(js nats.JetStreamContext, opts *TailOptions) error {
	fmt.Printf("🎬 Tailing events since %s (limit: %d, follow: %v)\n", opts.Since.UTC().Format(timeFormat), opts.Limit, opts.Follow)

	count, err := readEvents(js, opts, printEvent)
	fmt.Printf("\n📊 Total events: %d\n", count)
	return err
}

// showStats выводит количество событий по типам
func showStats(js nats.JetStreamContext, opts *TailOptions) error {
	fmt.Println("📊 Event statistics")

	byType := make(map[string]int)
	total, err := readEvents(js, opts, func(ev *eventbus.Envelope) { byType[ev.EventType]++ })
	if err != nil {
		return err
	}

	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)

	fmt.Printf("Since: %s\n", opts.Since.UTC().Format(timeFormat))
	fmt.Printf("Total events: %d\n", total)
	fmt.Println("\nBy event type:")
	for _, t := range types {
		fmt.Printf("  %s: %d events\n", t, byType[t])
	}
	return nil
}

// printEvent выводит событие в читаемом формате
func printEvent(ev *eventbus.Envelope) {
	fmt.Printf("[%s] %s [%s] %s board=%s\n",
		ev.Timestamp.Format("15:04:05"),
		ev.Source,
		ev.EventType,
		ev.ID,
		ev.CorrelationID)

	// Добавляем детали в зависимости от типа события
	switch ev.EventType {
	case game.EventShipPlaced:
		var p game.ShipPlacedPayload
		if game.DecodePayload(ev, &p) == nil {
			fmt.Printf("  Ship %d at %v size=%d %v\n", p.Placement, p.Origin, p.Size, p.Orientation)
		}
	case game.EventPlacementRejected:
		var p game.PlacementRejectedPayload
		if game.DecodePayload(ev, &p) == nil {
			fmt.Printf("  Rejected (%s): %s\n", p.Result, p.Error)
		}
	case game.EventShotResolved:
		var p game.ShotResolvedPayload
		if game.DecodePayload(ev, &p) == nil {
			fmt.Printf("  Shot %s (%d,%d) vertical=%v hits=%v\n", p.Tag, p.A, p.B, p.Vertical, p.Hits)
		}
	case game.EventShipSunk:
		var p game.ShipSunkPayload
		if game.DecodePayload(ev, &p) == nil {
			fmt.Printf("  Ship %d sunk, remaining=%d defeated=%v\n", p.Placement, p.Remaining, p.Defeated)
		}
	}
}

// parseStringList парсит строку с разделителями-запятыми
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// parseSinceTime парсит относительное время ("1h", "30m") или абсолютное
func parseSinceTime(since string, from time.Time) (time.Time, error) {
	if since == "" {
		return from, nil
	}

	duration, err := time.ParseDuration(since)
	if err != nil {
		return time.Parse(timeFormat, since)
	}
	return from.Add(-duration), nil
}
