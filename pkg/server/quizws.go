package server

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/notjagan/dexweb/pkg/quiz"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// wsRound is pushed to the client at the start of every round.
type wsRound struct {
	Event   string      `json:"event"`
	Pokemon quizSubject `json:"pokemon"`
}

// wsGuess is what the client sends back.
type wsGuess struct {
	Selected []string `json:"selected"`
}

// wsResult carries the verdict for the round just played.
type wsResult struct {
	Event          string      `json:"event"`
	Pokemon        string      `json:"pokemon"`
	Result         quiz.Result `json:"result"`
	SuperEffective []string    `json:"superEffective"`
}

// handleQuizPlay runs the quiz as a session over a websocket: the
// server pushes a round, the client answers, the server scores it and
// pushes the next round, until the client disconnects.
func (s *Server) handleQuizPlay(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("failed to upgrade quiz connection: %v", err)
		return
	}
	defer conn.Close()

	for {
		round, err := s.game.NewRound(r.Context())
		if err != nil {
			log.Printf("failed to build quiz round: %v", err)
			_ = conn.WriteJSON(errorBody{Error: "data source unavailable", Retryable: true})
			return
		}

		err = conn.WriteJSON(wsRound{Event: "round", Pokemon: subjectOf(round.Pokemon)})
		if err != nil {
			log.Printf("failed to push quiz round: %v", err)
			return
		}

		var guess wsGuess
		err = conn.ReadJSON(&guess)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("quiz connection closed unexpectedly: %v", err)
			}
			return
		}

		err = conn.WriteJSON(wsResult{
			Event:          "result",
			Pokemon:        round.Pokemon.Name,
			Result:         round.Score(guess.Selected),
			SuperEffective: round.Table.SuperEffective(),
		})
		if err != nil {
			log.Printf("failed to push quiz result: %v", err)
			return
		}
	}
}
