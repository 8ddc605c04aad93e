package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/bastiangx/rankserve/internal/logger"
	"github.com/bastiangx/rankserve/internal/utils"
	"github.com/bastiangx/rankserve/pkg/config"
	"github.com/bastiangx/rankserve/pkg/controller"
	"github.com/bastiangx/rankserve/pkg/match"
	"github.com/bastiangx/rankserve/pkg/provider"
	"github.com/bastiangx/rankserve/pkg/result"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/time/rate"
)

var (
	ErrUnknownOp   = errors.New("unknown op")
	ErrNoSession   = errors.New("no such session")
	ErrRateLimited = errors.New("rate limited")
	ErrBadRequest  = errors.New("bad request")
)

type session struct {
	id       string
	ctrl     *controller.Controller
	lastUsed time.Time
}

// Server handles the IPC for autocomplete sessions.
type Server struct {
	configPath string
	providers  []provider.Provider
	reader     io.Reader
	writer     *bufio.Writer
	log        *log.Logger
	now        func() time.Time

	// guarded by mu; swapped by config reloads
	mu          sync.RWMutex
	cfg         *config.Config
	opts        result.Options
	engines     *match.SearchEngines
	groups      map[match.GroupID]result.GroupConfig
	limiter     *rate.Limiter
	notifyDelay time.Duration

	sessions map[string]*session
}

// NewServer creates a server using stdin/stdout for IPC.
func NewServer(cfg *config.Config, configPath string, providers ...provider.Provider) *Server {
	return NewServerWithIO(cfg, configPath, os.Stdin, os.Stdout, providers...)
}

// NewServerWithIO creates a server reading requests from r and writing replies to w.
func NewServerWithIO(cfg *config.Config, configPath string, r io.Reader, w io.Writer, providers ...provider.Provider) *Server {
	s := &Server{
		configPath: configPath,
		providers:  providers,
		reader:     r,
		writer:     bufio.NewWriter(w),
		log:        logger.New("server"),
		now:        time.Now,
		sessions:   make(map[string]*session),
	}
	s.Reload(cfg)
	return s
}

// Reload applies cfg to sessions started from now on.
func (s *Server) Reload(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg = cfg
	s.opts = cfg.Options()
	s.engines = cfg.SearchEngines()
	s.groups = cfg.SuggestionGroups()
	s.notifyDelay = time.Duration(cfg.Server.NotifyDelayMs) * time.Millisecond

	limit := rate.Inf
	if cfg.Server.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.Server.RequestsPerSecond)
	}
	burst := max(cfg.Server.Burst, 1)
	if s.limiter == nil {
		s.limiter = rate.NewLimiter(limit, burst)
	} else {
		s.limiter.SetLimit(limit)
		s.limiter.SetBurst(burst)
	}
	s.log.Debug("Config applied", "max_matches", s.opts.MaxMatches, "engines", s.engines.Len(), "groups", len(s.groups))
}

// Start signals readiness and serves requests until the reader is exhausted
// or ctx is cancelled. With watch_config set, config file changes are
// applied while serving.
func (s *Server) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.RLock()
	watch := s.cfg.Server.WatchConfig && s.configPath != ""
	s.mu.RUnlock()
	if watch {
		go func() {
			if err := config.Watch(ctx, s.configPath, s.Reload); err != nil {
				s.log.Warn("Config watcher stopped", "err", err)
			}
		}()
	}

	s.log.Debug("Starting Server.")
	s.send(StatusResponse{Status: "ready"})

	dec := msgpack.NewDecoder(bufio.NewReader(s.reader))
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		var raw msgpack.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading request: %w", err)
		}
		s.handleRaw(raw)
	}
}

func (s *Server) handleRaw(raw msgpack.RawMessage) {
	var req Request
	if err := msgpack.Unmarshal(raw, &req); err != nil {
		s.log.Errorf("Unmarshaling request: %v", err)
		s.sendError("", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	reply, err := s.handleRequest(req)
	if err != nil {
		s.log.Debug("Request failed", "id", req.ID, "op", req.Op, "err", err)
		s.sendError(req.ID, err)
		return
	}
	s.send(reply)
}

// handleRequest dispatches one request and returns the reply to send.
func (s *Server) handleRequest(req Request) (any, error) {
	if !s.limiter.Allow() {
		return nil, ErrRateLimited
	}
	start := s.now()

	var (
		sess *session
		u    *controller.Update
		err  error
	)
	switch req.Op {
	case OpStart:
		sess, u, err = s.handleStart(req)
	case OpPass:
		sess, u, err = s.handlePass(req)
	case OpFlush:
		sess, err = s.lookup(req.Session)
		if err == nil {
			u, _ = sess.ctrl.Flush()
		}
	case OpStop:
		sess, err = s.lookup(req.Session)
		if err == nil {
			sess.ctrl.Stop(req.Clear)
		}
	case OpClose:
		if _, err := s.lookup(req.Session); err != nil {
			return nil, err
		}
		delete(s.sessions, req.Session)
		s.log.Debug("Session closed", "session", req.Session, "open", len(s.sessions))
		return StatusResponse{ID: req.ID, Status: "closed"}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, req.Op)
	}
	if err != nil {
		return nil, err
	}
	sess.lastUsed = s.now()
	return s.buildResponse(req.ID, sess, u, s.now().Sub(start)), nil
}

func (s *Server) handleStart(req Request) (*session, *controller.Update, error) {
	s.mu.RLock()
	cfg := s.cfg
	opts, engines, groups, delay := s.opts, s.engines, s.groups, s.notifyDelay
	s.mu.RUnlock()

	if err := utils.ValidateInput(req.Text, cfg.Server.MaxInputLength, true); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	in, err := parseInput(req)
	if err != nil {
		return nil, nil, err
	}

	var sess *session
	if req.Session != "" {
		if sess, err = s.lookup(req.Session); err != nil {
			return nil, nil, err
		}
		sess.ctrl.SetOptions(opts)
	} else {
		s.evictIfFull(cfg.Server.MaxSessions)
		sess = &session{
			id: uuid.NewString(),
			ctrl: controller.New(opts, engines,
				controller.WithNotifyDelay(delay),
				controller.WithGroups(groups),
				controller.WithClock(s.now),
			),
		}
		s.sessions[sess.id] = sess
		s.log.Debug("Session opened", "session", sess.id, "open", len(s.sessions))
	}

	ids := make([]match.ProviderID, 0, len(s.providers)+len(req.Providers))
	for _, p := range s.providers {
		ids = append(ids, p.ID())
	}
	for _, id := range req.Providers {
		ids = append(ids, match.ProviderID(id))
	}
	sess.ctrl.Start(in, req.Clear, ids...)

	var (
		last    *controller.Update
		changed bool
	)
	for _, p := range s.providers {
		if u, ok := sess.ctrl.Update(controller.Batch{Provider: p.ID(), Matches: p.Start(in), Done: true}); ok {
			last = u
			changed = changed || u.DefaultChanged
		}
	}
	if last != nil {
		last.DefaultChanged = changed
	}
	return sess, last, nil
}

func (s *Server) handlePass(req Request) (*session, *controller.Update, error) {
	sess, err := s.lookup(req.Session)
	if err != nil {
		return nil, nil, err
	}
	if req.Provider == "" {
		return nil, nil, fmt.Errorf("%w: pass without provider", ErrBadRequest)
	}
	id := match.ProviderID(req.Provider)
	class := match.ParseProviderClass(req.Class)

	matches := make([]match.Match, 0, len(req.Matches))
	for i, im := range req.Matches {
		m, err := im.toMatch(id, class)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: match %d: %w", ErrBadRequest, i, err)
		}
		matches = append(matches, m)
	}
	u, _ := sess.ctrl.Update(controller.Batch{Provider: id, Matches: matches, Done: req.Done})
	return sess, u, nil
}

func (s *Server) lookup(id string) (*session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoSession, id)
	}
	return sess, nil
}

// evictIfFull drops the least recently used session when limit is reached.
func (s *Server) evictIfFull(limit int) {
	if limit <= 0 || len(s.sessions) < limit {
		return
	}
	var oldest *session
	for _, sess := range s.sessions {
		if oldest == nil || sess.lastUsed.Before(oldest.lastUsed) {
			oldest = sess
		}
	}
	delete(s.sessions, oldest.id)
	s.log.Warn("Session limit reached, evicted least recently used", "session", oldest.id, "limit", limit)
}

// buildResponse reports u when a notification was delivered, and the
// last delivered result marked pending otherwise.
func (s *Server) buildResponse(id string, sess *session, u *controller.Update, took time.Duration) ResultResponse {
	res := sess.ctrl.Result()
	resp := ResultResponse{
		ID:        id,
		Session:   sess.id,
		Pending:   sess.ctrl.Pending(),
		Done:      sess.ctrl.AllDone(),
		TimeTaken: took.Microseconds(),
	}
	if u != nil {
		res = u.Result
		resp.DefaultChanged = u.DefaultChanged
		resp.Done = u.Done
	}
	resp.Matches = toResultMatches(res)
	resp.Count = len(resp.Matches)
	return resp
}

func toResultMatches(res *result.Result) []ResultMatch {
	out := make([]ResultMatch, 0, res.Size())
	for i := range res.Size() {
		m := res.MatchAt(i)
		out = append(out, ResultMatch{
			Destination:  m.Destination,
			Contents:     m.Contents,
			Description:  m.Description,
			Relevance:    m.Relevance,
			Type:         m.Type.String(),
			Default:      i == 0 && m.AllowedToBeDefault,
			FromPrevious: m.FromPrevious,
			Group:        int(m.SuggestionGroupID),
			Inline:       m.InlineAutocompletion,
			Duplicates:   len(m.Duplicates),
		})
	}
	return out
}

func (im IncomingMatch) toMatch(id match.ProviderID, class match.ProviderClass) (match.Match, error) {
	t, ok := match.ParseType(im.Type)
	if !ok {
		return match.Match{}, fmt.Errorf("unknown match type %q", im.Type)
	}
	fill := im.FillIntoEdit
	if fill == "" {
		fill = im.Contents
	}
	return match.Match{
		Provider:             id,
		ProviderClass:        class,
		Relevance:            im.Relevance,
		Type:                 t,
		AllowedToBeDefault:   im.AllowedToBeDefault,
		Destination:          im.Destination,
		FillIntoEdit:         fill,
		InlineAutocompletion: im.Inline,
		Contents:             im.Contents,
		Description:          im.Description,
		EntityID:             im.EntityID,
		SuggestionGroupID:    match.GroupID(im.Group),
		Signals:              im.Signals,
	}, nil
}

func parseInput(req Request) (match.Input, error) {
	in := match.Input{
		Text:                      req.Text,
		Kind:                      match.ParseInputKind(req.Kind),
		Page:                      match.PageOther,
		PreventInlineAutocomplete: req.PreventInline,
	}
	if req.Page != "" {
		page, ok := match.ParsePage(req.Page)
		if !ok {
			return in, fmt.Errorf("%w: unknown page %q", ErrBadRequest, req.Page)
		}
		in.Page = page
	}
	if in.Kind == match.InputUnknown {
		in.Kind = match.ClassifyInput(in.Text)
	}
	return in, nil
}

func errorCode(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrUnknownOp):
		return 400
	case errors.Is(err, ErrNoSession):
		return 404
	case errors.Is(err, ErrRateLimited):
		return 429
	default:
		return 500
	}
}

// send encodes one reply and flushes it to the client.
func (s *Server) send(v any) {
	if err := msgpack.NewEncoder(s.writer).Encode(v); err != nil {
		s.log.Errorf("Encoding response: %v", err)
		return
	}
	if err := s.writer.Flush(); err != nil {
		s.log.Errorf("Writing response: %v", err)
	}
}

func (s *Server) sendError(id string, err error) {
	s.send(ErrorResponse{ID: id, Error: err.Error(), Code: errorCode(err)})
}
