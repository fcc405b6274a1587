package coc

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/okian/clanstats/internal/domain/model"
	"github.com/okian/clanstats/pkg/logger"
)

// Clan fetches and decodes a clan.
func (c *Client) Clan(ctx context.Context, tag string) (model.Clan, error) {
	data, err := c.Fetch(ctx, ResourceClan, tag)
	if err != nil {
		return model.Clan{}, err
	}
	return model.ParseClan(data)
}

// Members fetches the clan member listing.
func (c *Client) Members(ctx context.Context, tag string) ([]model.ClanMember, error) {
	data, err := c.Fetch(ctx, ResourceMembers, tag)
	if err != nil {
		return nil, err
	}
	return model.ParseMembers(data)
}

// Player fetches the raw player payload.
func (c *Client) Player(ctx context.Context, tag string) (json.RawMessage, error) {
	return c.Fetch(ctx, ResourcePlayer, tag)
}

// CurrentWar fetches the clan's current war. A failed fetch yields a nil
// war and a nil error so callers report the war state as unknown; only
// auth failures and cancellation are returned.
func (c *Client) CurrentWar(ctx context.Context, tag string) (*model.War, error) {
	data, err := c.Fetch(ctx, ResourceCurrentWar, tag)
	if err != nil {
		if fatal(ctx, err) {
			return nil, err
		}
		c.log.Warn(ctx, "current war unavailable", logger.String("clan", tag), logger.Error(err))
		return nil, nil
	}
	war, err := model.ParseWar(data)
	if err != nil {
		c.log.Warn(ctx, "current war unreadable", logger.String("clan", tag), logger.Error(err))
		return nil, nil
	}
	return &war, nil
}

// WarLog fetches the clan war log. A failed fetch yields nil data and a
// nil error; the war log is often private.
func (c *Client) WarLog(ctx context.Context, tag string) (json.RawMessage, error) {
	data, err := c.Fetch(ctx, ResourceWarLog, tag)
	if err != nil {
		if fatal(ctx, err) {
			return nil, err
		}
		c.log.Warn(ctx, "war log unavailable", logger.String("clan", tag), logger.Error(err))
		return nil, nil
	}
	return data, nil
}

func fatal(ctx context.Context, err error) bool {
	return errors.Is(err, ErrAuth) || ctx.Err() != nil
}
