package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"guessgame-service/internal/app"
	"guessgame-service/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.GameService
	isAdmin  AdminFunc
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService, isAdmin AdminFunc, logger *slog.Logger) *WSHandler {
	if isAdmin == nil {
		isAdmin = AllowList(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{
		service: service,
		isAdmin: isAdmin,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type guessPayload struct {
	Text string `json:"text"`
}

type joinPayload struct {
	Name string `json:"name"`
}

type joinedPayload struct {
	Player domain.Player `json:"player"`
	Added  bool          `json:"added"`
}

type guessResult struct {
	Correct    bool `json:"correct"`
	Points     int  `json:"points"`
	TotalScore int  `json:"totalScore"`
	Rank       int  `json:"rank"`
}

type hintResult struct {
	Text            string `json:"text"`
	Number          int    `json:"number"`
	Remaining       int    `json:"remaining"`
	PotentialPoints int    `json:"potentialPoints"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ackPayload struct {
	Command string `json:"command"`
}

// ServeWS upgrades HTTP requests to websockets and wires chat commands into the game use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	displayName := r.URL.Query().Get("name")
	if userID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	logger := h.logger.With("conn", uuid.NewString(), "user", userID)
	logger.Debug("client connected")

	events, cancel := h.service.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				logger.Warn("ws write error", "error", err)
				return
			}
		}
	}()

	go func() {
		defer close(eventsDone)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: string(ev.Type()), Payload: ev}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "status", Payload: h.service.Status()}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		send <- h.handle(r.Context(), userID, displayName, inbound)
	}

	close(closeSignals)
	<-eventsDone
	close(send)
	<-writerDone
	logger.Debug("client disconnected")
}

func (h *WSHandler) handle(ctx context.Context, userID, displayName string, in inboundMessage) outboundMessage[any] {
	switch in.Type {
	case "join":
		var payload joinPayload
		if len(in.Payload) > 0 {
			if err := json.Unmarshal(in.Payload, &payload); err != nil {
				return outboundMessage[any]{Type: "error", Payload: errorPayload{Code: "bad_request", Message: "invalid join payload"}}
			}
		}
		if payload.Name != "" {
			displayName = payload.Name
		}
		player, added, err := h.service.Register(ctx, userID, displayName)
		if err != nil && !errors.Is(err, domain.ErrPersistenceUnavailable) {
			return errorMessage(err)
		}
		if err != nil {
			h.logger.Warn("player registered but not persisted", "user", userID, "error", err)
		}
		return outboundMessage[any]{Type: "joined", Payload: joinedPayload{Player: player, Added: added}}

	case "guess":
		var payload guessPayload
		if err := json.Unmarshal(in.Payload, &payload); err != nil {
			return outboundMessage[any]{Type: "error", Payload: errorPayload{Code: "bad_request", Message: "invalid guess payload"}}
		}
		res, err := h.service.SubmitGuess(ctx, userID, payload.Text)
		if err != nil && !(res.Correct && errors.Is(err, domain.ErrPersistenceUnavailable)) {
			return errorMessage(err)
		}
		return outboundMessage[any]{Type: "guessResult", Payload: guessResult{
			Correct:    res.Correct,
			Points:     res.Points,
			TotalScore: res.TotalScore,
			Rank:       res.Rank,
		}}

	case "hint":
		res, err := h.service.RequestHint(ctx, userID)
		if err != nil {
			return errorMessage(err)
		}
		return outboundMessage[any]{Type: "hint", Payload: hintResult{
			Text:            res.Text,
			Number:          res.Number,
			Remaining:       res.Remaining,
			PotentialPoints: res.PotentialPoints,
		}}

	case "scores":
		return outboundMessage[any]{Type: "scores", Payload: newScoreboard(h.service.Scores())}

	case "status":
		return outboundMessage[any]{Type: "status", Payload: h.service.Status()}

	case "stats":
		stats, err := h.service.PlayerStats(userID)
		if err != nil {
			return errorMessage(err)
		}
		return outboundMessage[any]{Type: "stats", Payload: stats}

	case "start", "next", "end", "reset_scores":
		if !h.isAdmin(userID) {
			return errorMessage(domain.ErrUnauthorized)
		}
		return h.handleAdmin(ctx, userID, in.Type)

	default:
		return outboundMessage[any]{Type: "error", Payload: errorPayload{Code: "bad_request", Message: "unsupported message type"}}
	}
}

func (h *WSHandler) handleAdmin(ctx context.Context, userID, command string) outboundMessage[any] {
	var err error
	switch command {
	case "start":
		err = h.service.Start(ctx)
	case "next":
		err = h.service.Next(ctx)
	case "end":
		var lb domain.Leaderboard
		lb, err = h.service.End(ctx)
		if err == nil {
			return outboundMessage[any]{Type: "scores", Payload: newScoreboard(lb)}
		}
	case "reset_scores":
		err = h.service.ResetScores(ctx)
	}
	if err != nil {
		return errorMessage(err)
	}
	h.logger.Info("admin command", "user", userID, "command", command)
	return outboundMessage[any]{Type: "ok", Payload: ackPayload{Command: command}}
}

func errorMessage(err error) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Code: errorCode(err), Message: err.Error()}}
}

// errorCode maps domain errors to stable codes the chat client can localize.
func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrQuestionClosed):
		return "question_closed"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrNotRegistered):
		return "not_registered"
	case errors.Is(err, domain.ErrUnknownPlayer):
		return "unknown_player"
	case errors.Is(err, domain.ErrHintLimitExceeded):
		return "hint_limit_exceeded"
	case errors.Is(err, domain.ErrNoActiveQuestion):
		return "no_active_question"
	case errors.Is(err, domain.ErrQuestionSetEmpty):
		return "question_set_empty"
	case errors.Is(err, domain.ErrQuestionSetNotFound):
		return "question_set_not_found"
	case errors.Is(err, domain.ErrNoPlayers):
		return "no_players"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrPersistenceUnavailable):
		return "persistence_unavailable"
	default:
		return "internal"
	}
}
