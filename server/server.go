package server

import (
	"context"
	"net/http"
	"net/rpc"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wfunc/triviaserver/broadcast"
	"github.com/wfunc/triviaserver/config"
	"github.com/wfunc/triviaserver/game"
	"github.com/wfunc/triviaserver/logger"
	"github.com/wfunc/triviaserver/monitor"
	"github.com/wfunc/triviaserver/network"
	"github.com/wfunc/triviaserver/persistence"
	"github.com/wfunc/triviaserver/room"
	triviaserver_rpc "github.com/wfunc/triviaserver/rpc"
	"github.com/wfunc/triviaserver/services"
	"github.com/wfunc/triviaserver/session"
	"github.com/wfunc/triviaserver/timer"
	"github.com/wfunc/triviaserver/trivia"
)

// ContentProvider is the question source consumed by game starts and the
// read-only question endpoints.
type ContentProvider interface {
	FetchQuestions(ctx context.Context, amount int, categoryID int, difficulty string) ([]trivia.Question, error)
	FetchCategories(ctx context.Context) ([]trivia.Category, error)
}

// GameServer binds inbound realtime events to the room and game registries
// and fans registry results back out as broadcasts.
type GameServer struct {
	httpAddr    string
	metricsAddr string
	upgrader    websocket.Upgrader

	roomRegistry   *room.Registry
	gameRegistry   *game.Registry
	sessionManager *session.Manager
	broadcaster    broadcast.Broadcaster
	timers         *timer.Manager
	provider       ContentProvider
	userService    *services.UserService
	resultService  *services.ResultService

	monitor      *monitor.Monitor
	rpcServer    *triviaserver_rpc.Server
	shutdownChan chan struct{}
}

func NewGameServer(cfg *config.Config, db persistence.Database, provider ContentProvider) *GameServer {
	s := newGameServer(cfg.Server.HTTPAddress, db, provider)
	s.metricsAddr = cfg.Server.MetricsAddress
	s.monitor = monitor.NewMonitor("triviaserver")

	rpcServer, err := triviaserver_rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer

	statsService := triviaserver_rpc.NewStatsService(s.userService, s.resultService)
	rpc.Register(statsService)

	return s
}

// newGameServer wires the coordinator without the process-wide listeners.
// Tests construct through here.
func newGameServer(addr string, db persistence.Database, provider ContentProvider) *GameServer {
	s := &GameServer{
		httpAddr:       addr,
		roomRegistry:   room.NewRegistry(),
		sessionManager: session.NewManager(),
		timers:         timer.NewManager(),
		provider:       provider,
		userService:    services.NewUserService(db),
		resultService:  services.NewResultService(db),
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	s.gameRegistry = game.NewRegistry(provider, s.timers)
	s.broadcaster = broadcast.NewRoomBroadcaster(s.roomRegistry, s.sessionManager)
	return s
}

func (s *GameServer) Start() error {
	if s.rpcServer != nil {
		go s.rpcServer.Start()
	}
	if s.monitor != nil {
		s.monitor.StartServer(s.metricsAddr)
	}

	engine := gin.Default()
	s.registerRoutes(engine)
	engine.GET("/ws", s.handleWebSocket)

	logger.Log.Infof("Trivia server listening on %s", s.httpAddr)
	return engine.Run(s.httpAddr)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.timers.Stop()
	if s.rpcServer != nil {
		s.rpcServer.Stop()
	}
}

func (s *GameServer) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	if s.monitor != nil {
		s.monitor.IncOnlinePlayers()
	}

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
	sess.Send(network.EventWelcome, gin.H{"sessionId": sess.GetID()})

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.handleDisconnect(sess)
		wsConn.Close()
		if s.monitor != nil {
			s.monitor.DecOnlinePlayers()
		}
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			ev, err := wsConn.ReadEvent()
			if err != nil {
				return
			}
			s.dispatch(sess, ev)
		}
	}
}

// dispatch routes one inbound event to its handler. Unknown event names are
// logged and dropped.
func (s *GameServer) dispatch(sess *session.Session, ev *network.Event) {
	start := time.Now()
	if s.monitor != nil {
		s.monitor.IncEventsReceived()
	}

	switch ev.Event {
	case network.EventRoomCreate:
		s.handleCreateRoom(sess, ev)
	case network.EventRoomJoin:
		s.handleJoinRoom(sess, ev)
	case network.EventRoomLeave:
		s.handleLeaveRoom(sess, ev)
	case network.EventRoomReady:
		s.handleSetReady(sess, ev)
	case network.EventGameStart:
		s.handleStartGame(sess, ev)
	case network.EventGameAnswer:
		s.handleSubmitAnswer(sess, ev)
	case network.EventGameNext:
		s.handleNextQuestion(sess, ev)
	default:
		logger.Log.Infof("Unknown event type: %s", ev.Event)
	}

	if s.monitor != nil {
		s.monitor.ObserveEventLatency(time.Since(start))
	}
}

// handleDisconnect synthesizes a room leave for a dropped connection using
// the session's room index, then removes the session.
func (s *GameServer) handleDisconnect(sess *session.Session) {
	s.sessionManager.Remove(sess.GetID())

	roomID := sess.Room()
	if roomID == "" {
		return
	}

	r, gone, err := s.roomRegistry.Leave(roomID, sess.GetID())
	if err != nil {
		return
	}
	if !gone {
		s.broadcaster.BroadcastToRoom(roomID, network.EventRoomPlayerLeft, gin.H{
			"playerId": sess.GetID(),
			"room":     r.Snapshot(),
		})
	}
	if s.monitor != nil {
		s.monitor.SetActiveRooms(s.roomRegistry.Count())
	}
}
