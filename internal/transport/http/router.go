package http

import (
	"encoding/json"
	"net/http"

	"guessgame-service/internal/app"
	"guessgame-service/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// leaderboardSize matches the top-N shown by the /scores chat command.
const leaderboardSize = 10

type scoreboard struct {
	Entries       []domain.LeaderboardEntry `json:"entries"`
	TotalPlayers  int                       `json:"totalPlayers"`
	ActivePlayers int                       `json:"activePlayers"`
	HighestScore  int                       `json:"highestScore"`
}

func newScoreboard(lb domain.Leaderboard) scoreboard {
	return scoreboard{
		Entries:       lb.Top(leaderboardSize),
		TotalPlayers:  len(lb.Entries),
		ActivePlayers: lb.ActivePlayers(),
		HighestScore:  lb.HighestScore(),
	}
}

// NewRouter mounts the websocket adapter and read-only HTTP endpoints.
func NewRouter(service *app.GameService, ws *WSHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws", ws.ServeWS)
	r.Get("/scores", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, newScoreboard(service.Scores()))
	})
	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, service.Status())
	})
	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
