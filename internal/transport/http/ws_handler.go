package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"contest-session-service/internal/app"
	"contest-session-service/internal/contest"
	"contest-session-service/internal/domain"
)

// buildUpgrader creates a websocket upgrader with origin validation.
// An empty allow list permits all origins.
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

type WSHandler struct {
	service   *app.ContestService
	upgrader  websocket.Upgrader
	validator *payloadValidator
	log       zerolog.Logger
}

func NewWSHandler(service *app.ContestService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		service:   service,
		upgrader:  buildUpgrader(allowedOrigins),
		validator: newPayloadValidator(),
		log:       log.With().Str("component", "ws_handler").Logger(),
	}
}

// session is the per-connection state shared by the read loop and its helpers.
type session struct {
	ctx     context.Context
	attempt *app.Attempt
	camera  *wsCamera
	send    func(outboundMessage[any]) bool
	wg      *sync.WaitGroup
	log     zerolog.Logger
}

// ServeWS upgrades the request and runs one contest attempt over the socket.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	query := joinQuery{
		ContestID: r.URL.Query().Get("contestId"),
		UserID:    r.URL.Query().Get("userId"),
		Name:      r.URL.Query().Get("name"),
	}
	if fields := h.validator.Check(&query); fields != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Code: "invalid_payload", Message: "missing contestId, userId, or name", Fields: fields})
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	outbox := make(chan outboundMessage[any], 16)
	closing := make(chan struct{})
	writerDone := make(chan struct{})
	send := func(msg outboundMessage[any]) bool {
		select {
		case outbox <- msg:
			return true
		case <-closing:
			return false
		}
	}

	// Single writer: gorilla connections support one concurrent writer.
	go func() {
		defer close(writerDone)
		for {
			select {
			case msg := <-outbox:
				if err := conn.WriteJSON(msg); err != nil {
					h.log.Debug().Err(err).Msg("ws write failed")
					return
				}
			case <-closing:
				return
			}
		}
	}()

	camera := newWSCamera(send)
	attempt, err := h.service.Start(ctx, query.ContestID, query.UserID, query.Name, camera)
	if err != nil {
		close(closing)
		<-writerDone
		h.log.Info().Err(err).Str("contest_id", query.ContestID).Msg("attempt rejected")
		_ = conn.WriteJSON(errorMessage(err))
		return
	}

	var wg sync.WaitGroup
	s := &session{
		ctx:     ctx,
		attempt: attempt,
		camera:  camera,
		send:    send,
		wg:      &wg,
		log:     h.log.With().Str("attempt_id", attempt.ID).Str("user_id", query.UserID).Logger(),
	}

	send(outboundMessage[any]{Type: msgJoined, Payload: joinedPayload{AttemptID: attempt.ID, ContestID: attempt.ContestID}})

	updates, unsubscribe := attempt.Controller.Subscribe()
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.forward(updates, closing)
	}()

	s.background(func() error {
		_, err := attempt.Controller.Begin(ctx)
		return err
	})

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.dispatch(s, inbound)
	}

	cancel()
	close(closing)
	unsubscribe()
	wg.Wait()
	<-writerDone
	h.service.End(context.Background(), attempt.ID)
}

func (h *WSHandler) dispatch(s *session, inbound inboundMessage) {
	ctrl := s.attempt.Controller
	switch inbound.Type {
	case msgCamera:
		var p cameraPayload
		if !h.decode(s, inbound.Payload, &p) {
			return
		}
		if !s.camera.answer(p) {
			s.send(outboundMessage[any]{Type: msgError, Payload: errorPayload{Code: "no_camera_request", Message: "no camera request outstanding"}})
		}
	case msgRetryCamera:
		s.background(func() error {
			_, err := ctrl.RetryCamera(s.ctx)
			return err
		})
	case msgNavigate:
		var p navigatePayload
		if !h.decode(s, inbound.Payload, &p) {
			return
		}
		s.reply(ctrl.Navigate(p.Index))
	case msgRun, msgSubmit:
		var p codePayload
		if !h.decode(s, inbound.Payload, &p) {
			return
		}
		mode := domain.ModeRun
		exec := ctrl.Run
		if inbound.Type == msgSubmit {
			mode = domain.ModeSubmit
			exec = ctrl.Submit
		}
		s.background(func() error {
			result, err := exec(s.ctx, p.Source, p.Language)
			if err != nil {
				return err
			}
			s.send(outboundMessage[any]{Type: msgTerminal, Payload: terminalPayload{Mode: mode, Result: result}})
			return nil
		})
	case msgMarkSolved:
		s.reply(ctrl.MarkSolved())
	case msgCloseTerminal:
		s.reply(ctrl.CloseTerminal())
	case msgSubmitContest:
		_, err := ctrl.SubmitContest()
		s.reply(err)
	default:
		s.send(outboundMessage[any]{Type: msgError, Payload: errorPayload{Code: "unsupported", Message: "unsupported message type"}})
	}
}

func (h *WSHandler) decode(s *session, raw json.RawMessage, dst interface{}) bool {
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, dst); err != nil {
			s.send(invalidPayload(map[string]string{"detail": err.Error()}))
			return false
		}
	}
	if fields := h.validator.Check(dst); fields != nil {
		s.send(invalidPayload(fields))
		return false
	}
	return true
}

// forward relays controller snapshots and the final summary to the socket.
func (s *session) forward(updates <-chan domain.Snapshot, closing <-chan struct{}) {
	done := s.attempt.Controller.Done()
	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if !s.send(outboundMessage[any]{Type: msgState, Payload: snap}) {
				return
			}
		case <-done:
			done = nil
			if summary, ok := s.attempt.Controller.Summary(); ok {
				s.send(outboundMessage[any]{Type: msgSummary, Payload: summary})
			}
		case <-closing:
			return
		}
	}
}

// background runs work that may block on the browser or the grader so the read
// loop keeps delivering camera answers and navigation.
func (s *session) background(fn func() error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.reply(fn())
	}()
}

func (s *session) reply(err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	s.log.Debug().Err(err).Msg("request rejected")
	s.send(errorMessage(err))
}

var _ contest.CameraProvider = (*wsCamera)(nil)
