package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/karlseguin/ccache/v2"
	"github.com/pkg/errors"
)

// CountOutcome - result of one follower/member count lookup
type CountOutcome struct {
	Provider string
	Status   Status
	Count    *int64
	Err      error
	Latency  time.Duration
}

func countSuccess(name string, count int64, started time.Time) CountOutcome {
	return CountOutcome{Provider: name, Status: StatusSuccess, Count: &count, Latency: time.Since(started)}
}

func countNoData(name string, started time.Time) CountOutcome {
	return CountOutcome{Provider: name, Status: StatusNoData, Latency: time.Since(started)}
}

func countFailure(name string, err error, started time.Time) CountOutcome {
	return CountOutcome{Provider: name, Status: StatusError, Err: err, Latency: time.Since(started)}
}

// TwitterCounter - follower count lookup over a chain of mirror APIs.
// Mirrors die often, so each configured one is tried in order until a
// count comes back.
type TwitterCounter struct {
	client  *Client
	mirrors []DataSource
	cache   *ccache.Cache
}

// NewTwitterCounter -
func NewTwitterCounter(client *Client, mirrors []DataSource) *TwitterCounter {
	return &TwitterCounter{
		client:  client,
		mirrors: mirrors,
		cache:   ccache.New(ccache.Configure().MaxSize(5000)),
	}
}

// Name -
func (t *TwitterCounter) Name() string { return "twitter" }

type twitterMirrorResponse struct {
	User *struct {
		Followers int64 `json:"followers"`
	} `json:"user"`
}

// Count - resolves a handle to its follower count
func (t *TwitterCounter) Count(ctx context.Context, handle string) CountOutcome {
	started := time.Now()

	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		return countNoData(t.Name(), started)
	}
	if len(t.mirrors) == 0 {
		return countFailure(t.Name(), ErrNoDataSource, started)
	}

	item, err := t.cache.Fetch("followers:"+handle, time.Hour, func() (interface{}, error) {
		var lastErr error
		for i := range t.mirrors {
			var response twitterMirrorResponse
			link := fmt.Sprintf("%s/%s", t.mirrors[i].URL, url.PathEscape(handle))
			if err := t.client.GetJSON(ctx, link, nil, &response); err != nil {
				lastErr = err
				continue
			}
			if response.User == nil {
				return nil, ErrNotFound
			}
			return response.User.Followers, nil
		}
		return nil, lastErr
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return countNoData(t.Name(), started)
		}
		return countFailure(t.Name(), err, started)
	}

	return countSuccess(t.Name(), item.Value().(int64), started)
}

// DiscordCounter - member count behind a discord invite
type DiscordCounter struct {
	client *Client
	cfg    DataSource
	cache  *ccache.Cache
}

// NewDiscordCounter -
func NewDiscordCounter(client *Client, cfg DataSource) *DiscordCounter {
	return &DiscordCounter{
		client: client,
		cfg:    cfg,
		cache:  ccache.New(ccache.Configure().MaxSize(5000)),
	}
}

// Name -
func (d *DiscordCounter) Name() string { return "discord" }

type discordInviteResponse struct {
	ApproximateMemberCount *int64 `json:"approximate_member_count"`
}

// Count - resolves an invite URL to the guild member count
func (d *DiscordCounter) Count(ctx context.Context, inviteURL string) CountOutcome {
	started := time.Now()

	code := inviteCode(inviteURL)
	if code == "" {
		return countNoData(d.Name(), started)
	}

	item, err := d.cache.Fetch("invite:"+code, time.Hour, func() (interface{}, error) {
		var response discordInviteResponse
		link := fmt.Sprintf("%s/api/v10/invites/%s?with_counts=true", d.cfg.URL, code)
		if err := d.client.GetJSON(ctx, link, nil, &response); err != nil {
			return nil, err
		}
		if response.ApproximateMemberCount == nil {
			return nil, ErrNotFound
		}
		return *response.ApproximateMemberCount, nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return countNoData(d.Name(), started)
		}
		return countFailure(d.Name(), err, started)
	}

	return countSuccess(d.Name(), item.Value().(int64), started)
}

func inviteCode(inviteURL string) string {
	parsed, err := url.Parse(inviteURL)
	if err != nil {
		return ""
	}
	return strings.Trim(strings.TrimPrefix(parsed.Path, "/invite"), "/")
}

// TelegramCounter - chat member count through the bot API
type TelegramCounter struct {
	client *Client
	cfg    DataSource
	cache  *ccache.Cache
}

// NewTelegramCounter -
func NewTelegramCounter(client *Client, cfg DataSource) *TelegramCounter {
	return &TelegramCounter{
		client: client,
		cfg:    cfg,
		cache:  ccache.New(ccache.Configure().MaxSize(5000)),
	}
}

// Name -
func (t *TelegramCounter) Name() string { return "telegram" }

type telegramCountResponse struct {
	Ok     bool   `json:"ok"`
	Result *int64 `json:"result"`
}

// Count - resolves a t.me link to the chat member count
func (t *TelegramCounter) Count(ctx context.Context, chatURL string) CountOutcome {
	started := time.Now()

	name := chatName(chatURL)
	if name == "" {
		return countNoData(t.Name(), started)
	}
	if t.cfg.Key == "" {
		return countFailure(t.Name(), ErrNoDataSource, started)
	}

	item, err := t.cache.Fetch("members:"+name, time.Hour, func() (interface{}, error) {
		var response telegramCountResponse
		link := fmt.Sprintf("%s/bot%s/getChatMemberCount?chat_id=@%s", t.cfg.URL, t.cfg.Key, name)
		if err := t.client.GetJSON(ctx, link, nil, &response); err != nil {
			return nil, err
		}
		if !response.Ok || response.Result == nil {
			return nil, ErrNotFound
		}
		return *response.Result, nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return countNoData(t.Name(), started)
		}
		return countFailure(t.Name(), err, started)
	}

	return countSuccess(t.Name(), item.Value().(int64), started)
}

func chatName(chatURL string) string {
	parsed, err := url.Parse(chatURL)
	if err != nil {
		return ""
	}
	return strings.Trim(parsed.Path, "/")
}
