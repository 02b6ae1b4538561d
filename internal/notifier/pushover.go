package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Pushover sends notifications via the pushover API. Notify targets
// UserKey; Escalate targets EscalationUserKey (falling back to UserKey
// when unset) with high priority so it breaks through quiet hours.
type Pushover struct {
	Token             string
	UserKey           string
	EscalationUserKey string
	Endpoint          string
	Client            *http.Client
}

func (p Pushover) client() *http.Client {
	if p.Client != nil {
		return p.Client
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func (p Pushover) Notify(ctx context.Context, evt Event) error {
	title := fmt.Sprintf("Hazard check: %s", evt.Verdict)
	return p.send(ctx, p.UserKey, title, evt.Summary, 0)
}

func (p Pushover) Escalate(ctx context.Context, evt Event) error {
	user := p.EscalationUserKey
	if user == "" {
		user = p.UserKey
	}
	message := fmt.Sprintf("%s\nUnacknowledged for %s (raised %s)",
		evt.Summary, evt.ElapsedSince.Round(time.Minute), evt.RaisedAt.UTC().Format(time.RFC3339))
	return p.send(ctx, user, "UNACKNOWLEDGED HAZARD ALERT", message, 1)
}

func (p Pushover) send(ctx context.Context, user, title, message string, priority int) error {
	if p.Token == "" || user == "" {
		return errors.New("pushover token and user are required")
	}
	endpoint := p.Endpoint
	if endpoint == "" {
		endpoint = "https://api.pushover.net/1/messages.json"
	}
	data := url.Values{}
	data.Set("token", p.Token)
	data.Set("user", user)
	data.Set("title", title)
	data.Set("message", message)
	if priority != 0 {
		data.Set("priority", fmt.Sprint(priority))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("pushover returned status %s", resp.Status)
	}
	return nil
}
