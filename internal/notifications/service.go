package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"speakerscribe/internal/config"
)

const userAgent = "speakerscribe/0.1"

// RunOutcome summarizes a finished run for a completion notification.
type RunOutcome struct {
	Source        string
	Segments      int
	Speakers      []string
	Unknown       int
	Duration      time.Duration
	AnnotatedPath string
}

// Service is the notification surface used by the pipeline and CLI.
type Service interface {
	NotifyRunCompleted(ctx context.Context, outcome RunOutcome) error
	NotifyRunFailed(ctx context.Context, source string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds an ntfy-backed service, or a no-op one when no topic is
// configured.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := cfg.NotificationTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether svc actually delivers notifications.
func Enabled(svc Service) bool {
	_, noop := svc.(noopService)
	return svc != nil && !noop
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, outcome RunOutcome) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Transcribed %s: %d segments in %s", displaySource(outcome.Source), outcome.Segments, roundDuration(outcome.Duration))
	if len(outcome.Speakers) > 0 {
		fmt.Fprintf(&b, "\nSpeakers: %s", strings.Join(outcome.Speakers, ", "))
	}
	if outcome.Unknown > 0 {
		fmt.Fprintf(&b, "\nUnattributed segments: %d", outcome.Unknown)
	}
	if outcome.AnnotatedPath != "" {
		fmt.Fprintf(&b, "\n%s", outcome.AnnotatedPath)
	}
	return n.send(ctx, payload{
		title:   "speakerscribe - Transcript Ready",
		message: b.String(),
		tags:    []string{"speakerscribe", "transcript", "completed"},
	})
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, source string, err error) error {
	reason := "unknown"
	if err != nil {
		reason = strings.TrimSpace(err.Error())
	}
	return n.send(ctx, payload{
		title:    "speakerscribe - Run Failed",
		message:  fmt.Sprintf("Run for %s failed: %s", displaySource(source), reason),
		tags:     []string{"speakerscribe", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "speakerscribe - Test",
		message:  "Notification system test",
		tags:     []string{"speakerscribe", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func displaySource(source string) string {
	if source = strings.TrimSpace(source); source == "" {
		return "unknown source"
	}
	return source
}

func roundDuration(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d.Round(time.Second)
}

type noopService struct{}

func (noopService) NotifyRunCompleted(context.Context, RunOutcome) error { return nil }
func (noopService) NotifyRunFailed(context.Context, string, error) error { return nil }
func (noopService) TestNotification(context.Context) error               { return nil }
