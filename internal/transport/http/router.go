package http

import "net/http"

// NewRouter mounts the contest endpoints. metrics may be nil.
func NewRouter(ws *WSHandler, leaderboard *LeaderboardHandler, metrics http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", ws.ServeWS)
	mux.Handle("GET /contests/{id}/leaderboard", leaderboard)
	if metrics != nil {
		mux.Handle("/metrics", metrics)
	}
	return mux
}
