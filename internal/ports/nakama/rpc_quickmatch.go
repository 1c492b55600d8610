package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"
)

// QuickMatchRequest optionally asks for a table size.
type QuickMatchRequest struct {
	Players int `json:"players"`
}

// QuickMatchResponse is the payload returned to clients when requesting a table.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// quickMatchQuery finds dudo tables whose human seat is still open.
func quickMatchQuery(players int) string {
	query := fmt.Sprintf("+label.%s:%s +label.%s:>=1", MatchLabelKey_Game, GameLabel, MatchLabelKey_OpenSeats)
	if players > 0 {
		query += fmt.Sprintf(" +label.%s:%d", MatchLabelKey_Players, players)
	}
	return query
}

func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	var req QuickMatchRequest
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("invalid quick match payload", 3)
		}
	}

	limit := 10
	authoritative := true
	minSize := 0
	maxSize := 0 // open tables have nobody connected yet

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, quickMatchQuery(req.Players))
	if err != nil {
		logger.Error("QuickMatch [User:%s]: MatchList error: %v", userID, err)
		return "", err
	}

	resp := QuickMatchResponse{}
	if len(matches) > 0 {
		resp.MatchID = matches[0].MatchId
		logger.Info("QuickMatch [User:%s]: Found existing match %s", userID, resp.MatchID)
	} else {
		params := map[string]interface{}{}
		if req.Players > 0 {
			params[MatchLabelKey_Players] = req.Players
		}
		matchID, err := nk.MatchCreate(ctx, MatchNameDudo, params)
		if err != nil {
			logger.Error("QuickMatch [User:%s]: MatchCreate error: %v", userID, err)
			return "", err
		}
		resp = QuickMatchResponse{MatchID: matchID, IsNew: true}
		logger.Info("QuickMatch [User:%s]: Created new match %s", userID, matchID)
	}

	b, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
