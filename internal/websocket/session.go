package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"bikepulse/internal/dashboard"
	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/infrastructure"
	"bikepulse/internal/middleware"
	"bikepulse/pkg/contracts/domain"
	"bikepulse/pkg/contracts/events"
)

// viewTimeout bounds how long one selection may take to answer
const viewTimeout = 30 * time.Second

// handleMessage answers one client message. Every selection gets exactly one
// view or error reply.
func (c *Client) handleMessage(ctx context.Context, raw []byte) {
	var msg events.ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.hub.stats.RecordMessage(DirectionIn, "invalid", int64(len(raw)))
		c.sendError(ctx, apierrors.New(http.StatusBadRequest, "INVALID_JSON", "Message is not valid JSON"))
		return
	}

	c.hub.stats.RecordMessage(DirectionIn, string(msg.Type), int64(len(raw)))
	infrastructure.RecordWSMessage(ctx, c.hub.metrics, DirectionIn, string(msg.Type))

	switch msg.Type {
	case events.MessageTypeHeartbeat:
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.sendMessage(ctx, events.MessageTypeHeartbeatReply, "", nil)

	case events.MessageTypeSelection:
		c.handleSelection(ctx, msg)

	default:
		c.sendError(ctx, apierrors.New(http.StatusBadRequest, "INVALID_REQUEST",
			fmt.Sprintf("Unknown message type %q", msg.Type)))
	}
}

func (c *Client) handleSelection(ctx context.Context, msg events.ClientMessage) {
	dash := msg.Dashboard
	if dash == "" {
		dash = domain.DashboardOverview
	}

	if err := middleware.ValidateStruct(c.hub.validate, msg.Selection); err != nil {
		c.sendError(ctx, err)
		return
	}
	if msg.Options != nil {
		if err := middleware.ValidateStruct(c.hub.validate, msg.Options); err != nil {
			c.sendError(ctx, err)
			return
		}
	}
	sel, err := msg.Selection.ToSelection()
	if err != nil {
		c.sendError(ctx, err)
		return
	}

	viewCtx, cancel := context.WithTimeout(ctx, viewTimeout)
	defer cancel()

	start := time.Now()
	var view interface{}
	switch dash {
	case domain.DashboardOverview:
		view, err = c.hub.service.Overview(viewCtx, sel)
	case domain.DashboardExploration:
		params := dashboard.ExplorationParams{}
		if msg.Options != nil {
			params.K = msg.Options.K
			params.Seed = msg.Options.Seed
			if params.Features, err = msg.Options.FeatureFields(); err != nil {
				c.sendError(ctx, err)
				return
			}
		}
		view, err = c.hub.service.Exploration(viewCtx, sel, params)
	default:
		err = apierrors.ErrValidation("dashboard", fmt.Sprintf("unknown dashboard %q", dash))
	}
	if err != nil {
		c.sendError(ctx, err)
		return
	}

	c.logger.DebugContext(ctx, "view sent",
		slog.String("dashboard", string(dash)),
		slog.Duration("duration", time.Since(start)))
	c.sendMessage(ctx, events.MessageTypeView, dash, view)
}

// sendError replies with the problem details for err
func (c *Client) sendError(ctx context.Context, err error) {
	problem := c.hub.errorHandler.Problem(err, DefaultPath)

	level := slog.LevelDebug
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	c.logger.Log(ctx, level, "session request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status))

	c.hub.stats.RecordError(problem.Type)
	c.sendMessage(ctx, events.MessageTypeError, "", events.ErrorData{
		Type:   problem.Type,
		Title:  problem.Title,
		Status: problem.Status,
		Detail: problem.Detail,
		Errors: problem.Extensions["details"],
	})
}
